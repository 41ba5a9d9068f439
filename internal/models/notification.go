package models

import (
	"time"

	"gorm.io/datatypes"
)

// Notification represents a domain event surfaced to admins (or to a single
// user when UserID is set). Rows are append-only apart from the read flag.
type Notification struct {
	BaseModel

	Type    string `gorm:"type:varchar(64);not null;index" json:"type"`
	Title   string `gorm:"type:varchar(255);not null" json:"title"`
	Message string `gorm:"type:text" json:"message"`
	// MessageFr carries the French body variant shown by localized clients.
	MessageFr string `gorm:"type:text" json:"message_fr,omitempty"`

	// Data holds the JSON correlation payload, e.g. {"mission_order_id":9}.
	Data datatypes.JSON `json:"data,omitempty"`

	// UserID targets a single recipient; empty means the admin broadcast feed.
	UserID *string `gorm:"type:uuid;index" json:"user_id,omitempty"`
	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	IsRead bool       `gorm:"default:false;index" json:"is_read"`
	ReadAt *time.Time `json:"read_at,omitempty"`
}
