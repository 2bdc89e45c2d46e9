package models

const (
	UserRoleUser  = "USER"
	UserRoleAdmin = "ADMIN"
)

type User struct {
	BaseModel

	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	// Global role flag, informational only. Project permissions come from
	// memberships, never from this field.
	Role string `gorm:"not null;default:USER"`

	// Relationships
	OwnedProjects []Project      `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Memberships   []Membership   `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Notifications []Notification `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
