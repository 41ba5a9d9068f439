package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/hrdesk-io/hrdesk/internal/database"
	"github.com/hrdesk-io/hrdesk/internal/models"
	"github.com/hrdesk-io/hrdesk/internal/realtime"
	"github.com/hrdesk-io/hrdesk/internal/requests"
	apperrors "github.com/hrdesk-io/hrdesk/pkg/errors"
	"github.com/hrdesk-io/hrdesk/pkg/metrics"
)

// DefaultMaxUploadBytes caps admin file attachments when no limit is configured.
const DefaultMaxUploadBytes = 10 << 20 // 10 MiB

// RequestDTO is the API view of a request row. ID is the per-kind numeric id;
// Key is the globally unique composite identity.
type RequestDTO struct {
	ID        int64              `json:"id"`
	Type      requests.Kind      `json:"type"`
	Key       string             `json:"key"`
	Status    requests.Status    `json:"status"`
	FilePath  string             `json:"file_path,omitempty"`
	OwnerName string             `json:"owner_name"`
	OwnerUser *models.User       `json:"owner_user,omitempty"`
	Meta      requests.Metadata  `json:"meta"`
	Controls  []requests.Control `json:"controls,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
	DecidedAt *time.Time         `json:"decided_at,omitempty"`
}

// SubmitRequestInput captures an employee submission.
type SubmitRequestInput struct {
	Kind        requests.Kind
	OwnerName   string
	OwnerUserID string
	Urgent      bool
	Details     map[string]any
}

// UploadConfig controls where admin attachments are stored.
type UploadConfig struct {
	Dir      string
	MaxBytes int64
}

// RequestService owns every durable write to the requests table. Other
// packages read through it; nothing else mutates request rows.
type RequestService struct {
	db            *gorm.DB
	hub           *realtime.Hub
	notifications *NotificationService
	uploads       UploadConfig
}

// NewRequestService constructs a RequestService.
func NewRequestService(db *gorm.DB, hub *realtime.Hub, notifications *NotificationService, uploads UploadConfig) (*RequestService, error) {
	if db == nil {
		return nil, errors.New("request service: db is required")
	}
	if uploads.MaxBytes <= 0 {
		uploads.MaxBytes = DefaultMaxUploadBytes
	}
	return &RequestService{
		db:            db,
		hub:           hub,
		notifications: notifications,
		uploads:       uploads,
	}, nil
}

// List returns every request ordered by recency, across all kinds.
func (s *RequestService) List(ctx context.Context) ([]RequestDTO, error) {
	ctx = ensureContext(ctx)

	var rows []models.Request
	if err := s.db.WithContext(ctx).
		Preload("OwnerUser").
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("request service: list requests: %w", err)
	}

	return mapRequestRows(rows), nil
}

// ListForOwner returns the requests submitted by a single user.
func (s *RequestService) ListForOwner(ctx context.Context, userID string) ([]RequestDTO, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("request service: user id is required")
	}

	var rows []models.Request
	if err := s.db.WithContext(ctx).
		Where("owner_user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("request service: list owner requests: %w", err)
	}

	return mapRequestRows(rows), nil
}

// Submit records a new employee request and notifies the admin feed.
func (s *RequestService) Submit(ctx context.Context, input SubmitRequestInput) (*RequestDTO, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(string(input.Kind)) == "" {
		return nil, apperrors.ErrTypeMissing
	}

	refID, err := database.NextRefID(s.db.WithContext(ctx), string(input.Kind))
	if err != nil {
		return nil, fmt.Errorf("request service: allocate ref id: %w", err)
	}

	status := requests.StatusPending
	if input.Urgent {
		status = requests.StatusUrgent
	}

	row := models.Request{
		Kind:      input.Kind,
		RefID:     refID,
		Status:    status,
		OwnerName: strings.TrimSpace(input.OwnerName),
	}
	if ownerID := strings.TrimSpace(input.OwnerUserID); ownerID != "" {
		row.OwnerUserID = &ownerID
		if row.OwnerName == "" {
			var owner models.User
			if err := s.db.WithContext(ctx).Where("id = ?", ownerID).First(&owner).Error; err == nil {
				row.OwnerName = defaultIfEmpty(owner.FullName, owner.Username)
			}
		}
	}
	if input.Details != nil {
		data, err := json.Marshal(input.Details)
		if err != nil {
			return nil, fmt.Errorf("request service: marshal details: %w", err)
		}
		row.Details = datatypes.JSON(data)
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("request service: create request: %w", err)
	}

	dto := mapRequest(row)
	s.emitRequestEvent("request.created", row)
	s.notify(ctx, row, "request.created",
		fmt.Sprintf("New %s", strings.ToLower(row.Kind.Meta().Label)),
		fmt.Sprintf("%s submitted a %s", displayOwner(row), strings.ToLower(row.Kind.Meta().Label)),
		fmt.Sprintf("%s a soumis une demande: %s", displayOwner(row), strings.ToLower(row.Kind.Meta().Label)),
		"", // admin broadcast
	)
	return &dto, nil
}

// Get loads a single request by composite identity.
func (s *RequestService) Get(ctx context.Context, kind requests.Kind, refID int64) (*RequestDTO, error) {
	row, err := s.load(ensureContext(ctx), kind, refID)
	if err != nil {
		return nil, err
	}
	dto := mapRequest(*row)
	return &dto, nil
}

// UpdateStatus applies a durable lifecycle transition requested by an admin.
// Repeating the current status is a no-op success: the endpoint stays
// idempotent and emits no duplicate side effects.
func (s *RequestService) UpdateStatus(ctx context.Context, kind requests.Kind, refID int64, desired requests.Status, actorID string) (*RequestDTO, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(string(kind)) == "" {
		return nil, apperrors.ErrTypeMissing
	}

	row, err := s.load(ctx, kind, refID)
	if err != nil {
		return nil, err
	}

	current := requests.NormalizeStatus(row.Status)
	desired = requests.NormalizeStatus(desired)

	if requests.Canonical(current) == requests.Canonical(desired) {
		dto := mapRequest(*row)
		return &dto, nil
	}

	if !requests.Allowed(current, desired) {
		return nil, apperrors.ErrInvalidTransition
	}

	now := time.Now().UTC()
	updates := map[string]any{
		"status":     desired,
		"decided_at": now,
	}
	if actor := strings.TrimSpace(actorID); actor != "" {
		updates["decided_by"] = actor
	}

	if err := s.db.WithContext(ctx).Model(row).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("request service: update status: %w", err)
	}

	row.Status = desired
	row.DecidedAt = &now
	metrics.RequestTransitions.WithLabelValues(string(row.Kind), string(desired)).Inc()

	dto := mapRequest(*row)
	s.emitRequestEvent("request.updated", *row)

	label := strings.ToLower(row.Kind.Meta().Label)
	switch desired {
	case requests.StatusApproved:
		s.notify(ctx, *row, "request.approved",
			fmt.Sprintf("%s approved", row.Kind.Meta().Label),
			fmt.Sprintf("Your %s #%d was approved", label, row.RefID),
			fmt.Sprintf("Votre demande %s n°%d a été approuvée", label, row.RefID),
			ownerID(*row),
		)
	case requests.StatusRejected:
		s.notify(ctx, *row, "request.rejected",
			fmt.Sprintf("%s rejected", row.Kind.Meta().Label),
			fmt.Sprintf("Your %s #%d was rejected", label, row.RefID),
			fmt.Sprintf("Votre demande %s n°%d a été rejetée", label, row.RefID),
			ownerID(*row),
		)
	}

	return &dto, nil
}

// Reject is the soft-delete path: rows are never removed by an admin delete,
// they re-enter the table as rejected.
func (s *RequestService) Reject(ctx context.Context, kind requests.Kind, refID int64, actorID string) (*RequestDTO, error) {
	return s.UpdateStatus(ctx, kind, refID, requests.StatusRejected, actorID)
}

// AttachFile stores the admin attachment and resolves the awaiting-file state.
// The durable status becomes approved with the stored file path.
func (s *RequestService) AttachFile(ctx context.Context, kind requests.Kind, refID int64, filename string, file io.Reader) (*RequestDTO, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(string(kind)) == "" {
		return nil, apperrors.ErrTypeMissing
	}
	if file == nil {
		return nil, apperrors.ErrFileRequired
	}

	row, err := s.load(ctx, kind, refID)
	if err != nil {
		return nil, err
	}

	if !requests.CanUpload(row.Status, row.HasFile()) {
		return nil, apperrors.ErrInvalidTransition
	}

	storedPath, err := s.storeFile(kind, refID, filename, file)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"file_path": storedPath,
		"status":    requests.StatusApproved,
	}
	if err := s.db.WithContext(ctx).Model(row).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("request service: attach file: %w", err)
	}

	row.FilePath = storedPath
	row.Status = requests.StatusApproved

	dto := mapRequest(*row)
	s.emitRequestEvent("request.updated", *row)

	label := strings.ToLower(row.Kind.Meta().Label)
	s.notify(ctx, *row, "request.file_added",
		fmt.Sprintf("%s document ready", row.Kind.Meta().Label),
		fmt.Sprintf("A document was attached to your %s #%d", label, row.RefID),
		fmt.Sprintf("Un document a été joint à votre demande %s n°%d", label, row.RefID),
		ownerID(*row),
	)

	return &dto, nil
}

func (s *RequestService) load(ctx context.Context, kind requests.Kind, refID int64) (*models.Request, error) {
	var row models.Request
	err := s.db.WithContext(ctx).
		Preload("OwnerUser").
		Where("kind = ? AND ref_id = ?", kind, refID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("request service: load request: %w", err)
	}
	return &row, nil
}

func (s *RequestService) storeFile(kind requests.Kind, refID int64, filename string, file io.Reader) (string, error) {
	dir := s.uploads.Dir
	if dir == "" {
		dir = "./data/uploads"
	}

	kindDir := filepath.Join(dir, kind.Slug())
	if err := os.MkdirAll(kindDir, 0o755); err != nil {
		return "", fmt.Errorf("request service: create upload dir: %w", err)
	}

	ext := filepath.Ext(filename)
	target := filepath.Join(kindDir, fmt.Sprintf("%d%s", refID, ext))

	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("request service: create upload file: %w", err)
	}
	defer out.Close()

	written, err := io.Copy(out, io.LimitReader(file, s.uploads.MaxBytes+1))
	if err != nil {
		return "", fmt.Errorf("request service: write upload: %w", err)
	}
	if written > s.uploads.MaxBytes {
		_ = os.Remove(target)
		return "", apperrors.NewBadRequest("attachment exceeds the configured size limit")
	}
	if written == 0 {
		_ = os.Remove(target)
		return "", apperrors.ErrFileRequired
	}

	return filepath.ToSlash(target), nil
}

// emitRequestEvent publishes a generic request event on the broadcast
// request stream; the data payload carries the correlation key so consoles
// can tie the event back to a table row.
func (s *RequestService) emitRequestEvent(event string, row models.Request) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastStream(realtime.StreamRequests, realtime.Message{
		Stream: realtime.StreamRequests,
		Event:  event,
		Data: map[string]any{
			row.Kind.DataKey(): row.RefID,
			"status":           requests.NormalizeStatus(row.Status),
		},
	})
}

func (s *RequestService) notify(ctx context.Context, row models.Request, eventType, title, message, messageFr, userID string) {
	if s.notifications == nil {
		return
	}
	_, err := s.notifications.Create(ctx, CreateNotificationInput{
		Type:      eventType,
		Title:     title,
		Message:   message,
		MessageFr: messageFr,
		UserID:    userID,
		Data: map[string]any{
			row.Kind.DataKey(): row.RefID,
		},
	})
	if err != nil {
		// Feed emission is best-effort; the durable transition already happened.
		return
	}
}

func ownerID(row models.Request) string {
	if row.OwnerUserID == nil {
		return ""
	}
	return *row.OwnerUserID
}

func displayOwner(row models.Request) string {
	return defaultIfEmpty(row.OwnerName, "An employee")
}

func mapRequestRows(rows []models.Request) []RequestDTO {
	items := make([]RequestDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapRequest(row))
	}
	return items
}

func mapRequest(row models.Request) RequestDTO {
	status := requests.NormalizeStatus(row.Status)
	return RequestDTO{
		ID:        row.RefID,
		Type:      row.Kind,
		Key:       row.Key().String(),
		Status:    status,
		FilePath:  row.FilePath,
		OwnerName: row.OwnerName,
		OwnerUser: row.OwnerUser,
		Meta:      row.Kind.Meta(),
		Controls:  requests.Controls(status, row.HasFile()),
		CreatedAt: row.CreatedAt,
		DecidedAt: row.DecidedAt,
	}
}
