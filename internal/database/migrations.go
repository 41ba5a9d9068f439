package database

import (
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/hrdesk-io/hrdesk/internal/models"
)

// AutoMigrate creates or updates the database schema for all models.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Request{},
		&models.Notification{},
		&models.UrgentMessage{},
	)
}

// SeedData inserts the bootstrap admin account when no admin exists yet.
// The identity provider owns real credential management; this hash only
// lets a fresh install be claimed.
func SeedData(db *gorm.DB) error {
	var admins int64
	if err := db.Model(&models.User{}).Where("is_admin = ?", true).Count(&admins).Error; err != nil {
		return err
	}
	if admins > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("changeme"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Username: "admin",
		Email:    "admin@hrdesk.local",
		FullName: "Administrator",
		Password: string(hash),
		IsAdmin:  true,
	}

	return db.Where(models.User{Username: admin.Username}).Attrs(admin).FirstOrCreate(&models.User{}).Error
}

// NextRefID allocates the next per-kind numeric id for a new request row.
// RefIDs restart at 1 for every kind; only the (kind, ref_id) pair is
// globally unique.
func NextRefID(db *gorm.DB, kind string) (int64, error) {
	var current int64
	err := db.Model(&models.Request{}).
		Where("kind = ?", kind).
		Select("COALESCE(MAX(ref_id), 0)").
		Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}
