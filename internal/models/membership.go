package models

type Role string

const (
	RoleOwner  Role = "OWNER"
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

type Membership struct {
	BaseModel

	ProjectID uint `gorm:"not null;uniqueIndex:idx_project_user"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_project_user"`
	Role      Role `gorm:"type:varchar(16);not null;default:MEMBER"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
