package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/hrdesk-io/hrdesk/internal/chat"
	"github.com/hrdesk-io/hrdesk/internal/models"
	apperrors "github.com/hrdesk-io/hrdesk/pkg/errors"
)

// UrgentMessageDTO is the API view of an urgent chat item.
type UrgentMessageDTO struct {
	ID         string       `json:"id"`
	FromUserID string       `json:"from_user_id"`
	FromUser   *models.User `json:"from_user,omitempty"`
	Text       string       `json:"text"`
	AdminReply string       `json:"admin_reply,omitempty"`
	IsReplied  bool         `json:"is_replied"`
	RepliedAt  *time.Time   `json:"replied_at,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}

// UrgentService manages the urgent-message channel between employees and the
// admin team. Messages mutate exactly once, when the reply lands.
type UrgentService struct {
	db            *gorm.DB
	chat          *chat.Hub
	notifications *NotificationService
}

// NewUrgentService constructs an UrgentService.
func NewUrgentService(db *gorm.DB, chatHub *chat.Hub, notifications *NotificationService) (*UrgentService, error) {
	if db == nil {
		return nil, errors.New("urgent service: db is required")
	}
	return &UrgentService{db: db, chat: chatHub, notifications: notifications}, nil
}

// List returns every urgent message, newest first. Admin view.
func (s *UrgentService) List(ctx context.Context) ([]UrgentMessageDTO, error) {
	ctx = ensureContext(ctx)

	var rows []models.UrgentMessage
	if err := s.db.WithContext(ctx).
		Preload("FromUser").
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("urgent service: list messages: %w", err)
	}

	return mapUrgentRows(rows), nil
}

// ListForUser returns one employee's own urgent messages, newest first.
func (s *UrgentService) ListForUser(ctx context.Context, userID string) ([]UrgentMessageDTO, error) {
	ctx = ensureContext(ctx)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("urgent service: user id is required")
	}

	var rows []models.UrgentMessage
	if err := s.db.WithContext(ctx).
		Where("from_user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("urgent service: list user messages: %w", err)
	}

	return mapUrgentRows(rows), nil
}

// Send records a new urgent message and pushes an urgent-typed notification
// onto the admin feed so it surfaces even without the chat socket open.
func (s *UrgentService) Send(ctx context.Context, fromUserID, text string) (*UrgentMessageDTO, error) {
	ctx = ensureContext(ctx)
	fromUserID = strings.TrimSpace(fromUserID)
	if fromUserID == "" {
		return nil, errors.New("urgent service: sender id is required")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperrors.NewBadRequest("message text is required")
	}

	row := models.UrgentMessage{
		FromUserID: fromUserID,
		Text:       text,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("urgent service: create message: %w", err)
	}
	if err := s.db.WithContext(ctx).Preload("FromUser").First(&row, "id = ?", row.ID).Error; err != nil {
		return nil, fmt.Errorf("urgent service: reload message: %w", err)
	}

	dto := mapUrgent(row)

	if s.chat != nil {
		s.chat.Broadcast(row.FromUserID, chat.Event{
			Event:   "urgent.created",
			Message: dto,
		})
	}

	if s.notifications != nil {
		sender := fromUserID
		if row.FromUser != nil {
			sender = defaultIfEmpty(row.FromUser.FullName, row.FromUser.Username)
		}
		_, _ = s.notifications.Create(ctx, CreateNotificationInput{
			Type:      "urgent",
			Title:     "Urgent message",
			Message:   fmt.Sprintf("%s sent an urgent message", sender),
			MessageFr: fmt.Sprintf("%s a envoyé un message urgent", sender),
			Data:      map[string]any{"urgent_message_id": row.ID},
		})
	}

	return &dto, nil
}

// Reply attaches the admin answer to a message. A message accepts exactly one
// reply: a second attempt conflicts instead of overwriting the first.
func (s *UrgentService) Reply(ctx context.Context, messageID, replyText string) (*UrgentMessageDTO, error) {
	ctx = ensureContext(ctx)
	replyText = strings.TrimSpace(replyText)
	if replyText == "" {
		return nil, apperrors.NewBadRequest("reply text is required")
	}

	row, err := s.load(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if row.IsReplied {
		return nil, apperrors.NewConflict("message already has a reply")
	}

	now := time.Now().UTC()
	if err := s.db.WithContext(ctx).Model(row).Updates(map[string]any{
		"admin_reply": replyText,
		"is_replied":  true,
		"replied_at":  now,
	}).Error; err != nil {
		return nil, fmt.Errorf("urgent service: reply: %w", err)
	}

	row.AdminReply = replyText
	row.IsReplied = true
	row.RepliedAt = &now

	dto := mapUrgent(*row)
	if s.chat != nil {
		s.chat.Broadcast(row.FromUserID, chat.Event{
			Event:   "urgent.replied",
			Message: dto,
		})
	}

	return &dto, nil
}

// Delete removes a message permanently and tells the sender's open chat
// sessions to drop it.
func (s *UrgentService) Delete(ctx context.Context, messageID string) error {
	ctx = ensureContext(ctx)

	row, err := s.load(ctx, messageID)
	if err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Delete(row).Error; err != nil {
		return fmt.Errorf("urgent service: delete message: %w", err)
	}

	if s.chat != nil {
		s.chat.Broadcast(row.FromUserID, chat.Event{
			Event:     "urgent.deleted",
			MessageID: row.ID,
		})
	}
	return nil
}

func (s *UrgentService) load(ctx context.Context, messageID string) (*models.UrgentMessage, error) {
	messageID = strings.TrimSpace(messageID)
	if messageID == "" {
		return nil, apperrors.NewBadRequest("message id is required")
	}

	var row models.UrgentMessage
	err := s.db.WithContext(ctx).
		Preload("FromUser").
		Where("id = ?", messageID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("urgent service: load message: %w", err)
	}
	return &row, nil
}

func mapUrgentRows(rows []models.UrgentMessage) []UrgentMessageDTO {
	items := make([]UrgentMessageDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapUrgent(row))
	}
	return items
}

func mapUrgent(row models.UrgentMessage) UrgentMessageDTO {
	return UrgentMessageDTO{
		ID:         row.ID,
		FromUserID: row.FromUserID,
		FromUser:   row.FromUser,
		Text:       row.Text,
		AdminReply: row.AdminReply,
		IsReplied:  row.IsReplied,
		RepliedAt:  row.RepliedAt,
		CreatedAt:  row.CreatedAt,
	}
}
