package models

// User represents a portal account. Session issuance lives in an external
// identity service; this table only backs ownership references and the
// admin user directory.
type User struct {
	BaseModel

	Username string `gorm:"uniqueIndex;type:varchar(64);not null" json:"username"`
	Email    string `gorm:"uniqueIndex;type:varchar(255);not null" json:"email"`
	FullName string `gorm:"type:varchar(255)" json:"full_name"`
	Password string `gorm:"type:varchar(255)" json:"-"`
	IsAdmin  bool   `gorm:"default:false;index" json:"is_admin"`
}
