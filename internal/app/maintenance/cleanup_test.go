package maintenance

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"

	testutil "github.com/hrdesk-io/hrdesk/internal/database/testutil"
	"github.com/hrdesk-io/hrdesk/internal/models"
	"github.com/hrdesk-io/hrdesk/internal/requests"
	"github.com/hrdesk-io/hrdesk/internal/services"
)

func TestSweepUploads(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	dir := t.TempDir()

	writeUpload := func(kind requests.Kind, name string) string {
		kindDir := filepath.Join(dir, kind.Slug())
		require.NoError(t, os.MkdirAll(kindDir, 0o755))
		path := filepath.Join(kindDir, name)
		require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
		return path
	}

	kept := models.Request{Kind: requests.KindVacation, RefID: 1, Status: requests.StatusApproved}
	rejected := models.Request{Kind: requests.KindVacation, RefID: 2, Status: requests.StatusRejected}
	require.NoError(t, db.Create(&kept).Error)
	require.NoError(t, db.Create(&rejected).Error)

	keptFile := writeUpload(requests.KindVacation, "1.pdf")
	rejectedFile := writeUpload(requests.KindVacation, "2.pdf")
	orphanFile := writeUpload(requests.KindWorkCertificate, "9.pdf")
	strayFile := writeUpload(requests.KindMissionOrder, "notes.txt")

	removed, err := SweepUploads(context.Background(), db, dir)
	require.NoError(t, err)
	require.Equal(t, int64(2), removed)

	require.FileExists(t, keptFile)
	require.NoFileExists(t, rejectedFile)
	require.NoFileExists(t, orphanFile)
	require.FileExists(t, strayFile, "files without a numeric ref are left alone")
}

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	dir := t.TempDir()

	notifications, err := services.NewNotificationService(db, nil)
	require.NoError(t, err)

	clock := fixedClock{current: time.Date(2026, 5, 20, 9, 0, 0, 0, time.UTC)}

	stale := models.Notification{Type: "urgent", Title: "old", Message: "old", IsRead: true}
	require.NoError(t, db.Create(&stale).Error)
	require.NoError(t, db.Model(&stale).Update("created_at", clock.Now().AddDate(0, 0, -10)).Error)

	fresh := models.Notification{Type: "urgent", Title: "fresh", Message: "fresh", IsRead: true}
	require.NoError(t, db.Create(&fresh).Error)
	require.NoError(t, db.Model(&fresh).Update("created_at", clock.Now().AddDate(0, 0, -1)).Error)

	rejected := models.Request{Kind: requests.KindVacation, RefID: 1, Status: requests.StatusRejected}
	require.NoError(t, db.Create(&rejected).Error)
	kindDir := filepath.Join(dir, requests.KindVacation.Slug())
	require.NoError(t, os.MkdirAll(kindDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(kindDir, "1.pdf"), []byte("x"), 0o644))

	c := NewCleaner(db, notifications,
		WithNow(clock.Now),
		WithRetentionDays(7),
		WithUploadDir(dir),
		WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))),
	)

	require.NoError(t, c.RunOnce(context.Background()))

	var feedCount int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&feedCount).Error)
	require.Equal(t, int64(1), feedCount)

	require.NoFileExists(t, filepath.Join(kindDir, "1.pdf"))
}

func TestCleanerStartRegistersJobs(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	notifications, err := services.NewNotificationService(db, nil)
	require.NoError(t, err)

	scheduler := cron.New(cron.WithLogger(cron.DiscardLogger))
	c := NewCleaner(db, notifications,
		WithUploadDir(t.TempDir()),
		WithCron(scheduler),
	)

	require.NoError(t, c.Start())
	require.Len(t, scheduler.Entries(), 2)
	<-c.Stop().Done()
}

func TestSweepUploadsRequiresDB(t *testing.T) {
	_, err := SweepUploads(context.Background(), nil, t.TempDir())
	require.Error(t, err)
}

type fixedClock struct {
	current time.Time
}

func (c *fixedClock) Now() time.Time {
	return c.current
}
