package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrdesk-io/hrdesk/internal/models"
	"github.com/hrdesk-io/hrdesk/internal/requests"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
}

func TestPostgresDSNDefaults(t *testing.T) {
	dsn, err := postgresDSN(Config{User: "hrdesk", Name: "hrdesk"})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=localhost")
	require.Contains(t, dsn, "port=5432")
	require.Contains(t, dsn, "sslmode=disable")
}

func TestPostgresDSNRequiresUserAndName(t *testing.T) {
	_, err := postgresDSN(Config{})
	require.Error(t, err)
}

func TestMySQLDSNDefaults(t *testing.T) {
	dsn, err := mysqlDSN(Config{User: "hrdesk", Password: "s3cret", Name: "hrdesk"})
	require.NoError(t, err)
	require.Contains(t, dsn, "hrdesk:s3cret@tcp(127.0.0.1:3306)/hrdesk")
	require.Contains(t, dsn, "charset=utf8mb4")
	require.Contains(t, dsn, "parseTime=True")
}

func TestMergeOptionsOverridesAndSorts(t *testing.T) {
	pairs := mergeOptions(
		map[string]string{"sslmode": "disable", "connect_timeout": "5"},
		map[string]string{"sslmode": "require"},
	)
	require.Equal(t, []string{"connect_timeout=5", "sslmode=require"}, pairs)
}

func TestNextRefIDIsPerKind(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	first, err := NextRefID(db, string(requests.KindVacation))
	require.NoError(t, err)
	require.Equal(t, int64(1), first)

	require.NoError(t, db.Create(&models.Request{
		Kind:   requests.KindVacation,
		RefID:  first,
		Status: requests.StatusPending,
	}).Error)

	second, err := NextRefID(db, string(requests.KindVacation))
	require.NoError(t, err)
	require.Equal(t, int64(2), second)

	// A different kind starts over at 1: numeric ids are only unique per kind.
	other, err := NextRefID(db, string(requests.KindMissionOrder))
	require.NoError(t, err)
	require.Equal(t, int64(1), other)
}

func TestSeedDataCreatesSingleAdmin(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite", DSN: "file:seedtest?mode=memory&cache=shared&_foreign_keys=1"})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, SeedData(db))
	require.NoError(t, SeedData(db)) // idempotent

	var admins int64
	require.NoError(t, db.Model(&models.User{}).Where("is_admin = ?", true).Count(&admins).Error)
	require.Equal(t, int64(1), admins)
}
