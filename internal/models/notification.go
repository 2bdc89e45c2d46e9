package models

import (
	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationTaskAssigned        NotificationType = "TASK_ASSIGNED"
	NotificationTaskUpdated         NotificationType = "TASK_UPDATED"
	NotificationProjectInvitation   NotificationType = "PROJECT_INVITATION"
	NotificationDeadlineApproaching NotificationType = "DEADLINE_APPROACHING"
	NotificationNewMessage          NotificationType = "NEW_MESSAGE"
)

type Notification struct {
	BaseModel

	UserID  uint             `gorm:"not null;index"`
	Type    NotificationType `gorm:"type:varchar(32);not null"`
	Message string           `gorm:"not null"`
	Read    bool             `gorm:"not null;default:false"`
	// Structured context (task/project ids) so clients can deep-link.
	Data datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
