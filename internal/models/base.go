package models

import "time"

// BaseModel is embedded by every table. Rows are hard-deleted: memberships in
// particular must be re-creatable after removal without tripping their unique
// index, which a soft-delete column would break.
type BaseModel struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
