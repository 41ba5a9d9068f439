package models

import "time"

// UrgentMessage is a chat item sent by an employee to the admin team. It is
// mutated exactly once, when an admin replies, and removed only by an
// explicit admin delete.
type UrgentMessage struct {
	BaseModel

	FromUserID string `gorm:"type:uuid;not null;index" json:"from_user_id"`
	FromUser   *User  `gorm:"foreignKey:FromUserID" json:"from_user,omitempty"`

	Text string `gorm:"type:text;not null" json:"text"`

	AdminReply string     `gorm:"type:text" json:"admin_reply,omitempty"`
	IsReplied  bool       `gorm:"default:false;index" json:"is_replied"`
	RepliedAt  *time.Time `json:"replied_at,omitempty"`
}
