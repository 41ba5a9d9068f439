package maintenance

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hrdesk-io/hrdesk/internal/models"
	"github.com/hrdesk-io/hrdesk/internal/requests"
	"github.com/hrdesk-io/hrdesk/internal/services"
	"github.com/hrdesk-io/hrdesk/pkg/logger"
)

const (
	defaultRetentionDays = 90
	defaultFeedSpec      = "@daily"
	defaultUploadSpec    = "@daily"
)

// Cleaner coordinates background maintenance: pruning read notifications past
// their retention window and sweeping upload files whose request was rejected.
type Cleaner struct {
	db            *gorm.DB
	notifications *services.NotificationService
	cron          *cron.Cron
	now           func() time.Time
	log           *zap.Logger
	enabled       bool
	retention     int
	uploadDir     string

	feedSchedule   string
	uploadSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for retention comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithRetentionDays adjusts how long read notifications are retained.
func WithRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithFeedSchedule overrides the cron specification for feed pruning.
func WithFeedSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.feedSchedule = spec
		}
	}
}

// WithUploadDir enables the upload sweep over the given directory.
func WithUploadDir(dir string) Option {
	return func(cleaner *Cleaner) {
		cleaner.uploadDir = dir
	}
}

// WithUploadSchedule overrides the cron specification for the upload sweep.
func WithUploadSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.uploadSchedule = spec
		}
	}
}

// NewCleaner constructs a Cleaner with sensible defaults. Any nil dependency
// results in the corresponding job being skipped.
func NewCleaner(db *gorm.DB, notifications *services.NotificationService, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:             db,
		notifications:  notifications,
		now:            time.Now,
		retention:      defaultRetentionDays,
		feedSchedule:   defaultFeedSpec,
		uploadSchedule: defaultUploadSpec,
		log:            logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	if cleaner.cron == nil {
		cleaner.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	cleaner.enabled = cleaner.notifications != nil || (cleaner.db != nil && cleaner.uploadDir != "")

	return cleaner
}

// Start registers the jobs with the cron scheduler and launches it if at least one is enabled.
func (c *Cleaner) Start() error {
	if !c.enabled {
		return nil
	}

	if c.notifications != nil && c.retention > 0 {
		if _, err := c.cron.AddFunc(c.feedSchedule, func() {
			cutoff := c.now().AddDate(0, 0, -c.retention)
			if _, err := c.notifications.PruneRead(context.Background(), cutoff); err != nil {
				c.log.Warn("feed prune failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	if c.db != nil && c.uploadDir != "" {
		if _, err := c.cron.AddFunc(c.uploadSchedule, func() {
			if _, err := SweepUploads(context.Background(), c.db, c.uploadDir); err != nil {
				c.log.Warn("upload sweep failed", zap.Error(err))
			}
		}); err != nil {
			return err
		}
	}

	c.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (c *Cleaner) Stop() context.Context {
	if c.cron == nil {
		return context.Background()
	}
	return c.cron.Stop()
}

// RunOnce executes all configured jobs sequentially. Primarily used in tests
// and during graceful shutdown.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if c.notifications != nil && c.retention > 0 {
		cutoff := c.now().AddDate(0, 0, -c.retention)
		if _, err := c.notifications.PruneRead(ctx, cutoff); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	if c.db != nil && c.uploadDir != "" {
		if _, err := SweepUploads(ctx, c.db, c.uploadDir); err != nil {
			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// SweepUploads removes stored attachments whose request row is gone or was
// rejected after the file landed. Files it cannot attribute to a request are
// left alone.
func SweepUploads(ctx context.Context, db *gorm.DB, dir string) (int64, error) {
	if db == nil {
		return 0, errors.New("sweep uploads: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var removed int64
	var errs error

	for _, kind := range requests.Kinds() {
		kindDir := filepath.Join(dir, kind.Slug())
		entries, err := os.ReadDir(kindDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			errs = multierr.Append(errs, fmt.Errorf("sweep uploads: read %s: %w", kindDir, err))
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			name := entry.Name()
			base := strings.TrimSuffix(name, filepath.Ext(name))
			refID, err := strconv.ParseInt(base, 10, 64)
			if err != nil {
				continue
			}

			var row models.Request
			err = db.WithContext(ctx).
				Where("kind = ? AND ref_id = ?", kind, refID).
				First(&row).Error
			keep := err == nil && requests.NormalizeStatus(row.Status) != requests.StatusRejected
			if keep {
				continue
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				errs = multierr.Append(errs, fmt.Errorf("sweep uploads: load %s/%d: %w", kind, refID, err))
				continue
			}

			if err := os.Remove(filepath.Join(kindDir, name)); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("sweep uploads: remove %s: %w", name, err))
				continue
			}
			removed++
		}
	}

	return removed, errs
}
