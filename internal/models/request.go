package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/hrdesk-io/hrdesk/internal/requests"
)

// Request is the single storage row behind all five request variants. The
// variants are structurally identical at this level; Kind tags which one a
// row is, and RefID is only unique within its kind.
type Request struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Kind  requests.Kind `gorm:"type:varchar(40);not null;uniqueIndex:idx_requests_kind_ref,priority:1" json:"type"`
	RefID int64         `gorm:"not null;uniqueIndex:idx_requests_kind_ref,priority:2" json:"id"`

	Status   requests.Status `gorm:"type:varchar(32);index" json:"status"`
	FilePath string          `gorm:"type:text" json:"file_path,omitempty"`

	OwnerName   string  `gorm:"type:varchar(255)" json:"owner_name"`
	OwnerUserID *string `gorm:"type:uuid;index" json:"owner_user_id,omitempty"`
	OwnerUser   *User   `gorm:"foreignKey:OwnerUserID" json:"owner_user,omitempty"`

	// Details carries the per-variant form payload; the lifecycle core never
	// inspects it.
	Details datatypes.JSON `json:"details,omitempty"`

	DecidedAt *time.Time `json:"decided_at,omitempty"`
	DecidedBy *string    `gorm:"type:uuid" json:"decided_by,omitempty"`
}

// Key returns the composite identity of the row.
func (r Request) Key() requests.CompositeKey {
	return requests.CompositeKey{ID: r.RefID, Kind: r.Kind}
}

// HasFile reports whether an admin attachment exists.
func (r Request) HasFile() bool {
	return r.FilePath != ""
}
