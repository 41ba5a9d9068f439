package services

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hrdesk-io/hrdesk/internal/models"
	"github.com/hrdesk-io/hrdesk/internal/requests"
)

// KindSummary breaks one request kind down by lifecycle status.
type KindSummary struct {
	Kind     requests.Kind             `json:"kind"`
	Label    string                    `json:"label"`
	Total    int64                     `json:"total"`
	ByStatus map[requests.Status]int64 `json:"by_status"`
}

// DashboardSummary is the admin landing-page aggregate.
type DashboardSummary struct {
	Requests        []KindSummary `json:"requests"`
	TotalRequests   int64         `json:"total_requests"`
	PendingActions  int64         `json:"pending_actions"`
	UrgentUnreplied int64         `json:"urgent_unreplied"`
	UnreadFeed      int64         `json:"unread_feed"`
	Users           int64         `json:"users"`
}

// SummaryService aggregates dashboard counters.
type SummaryService struct {
	db *gorm.DB
}

// NewSummaryService constructs a SummaryService.
func NewSummaryService(db *gorm.DB) (*SummaryService, error) {
	if db == nil {
		return nil, errors.New("summary service: db is required")
	}
	return &SummaryService{db: db}, nil
}

// Summarize computes the admin dashboard counters in one pass per table.
func (s *SummaryService) Summarize(ctx context.Context) (*DashboardSummary, error) {
	ctx = ensureContext(ctx)

	type bucket struct {
		Kind   requests.Kind
		Status requests.Status
		Count  int64
	}

	var buckets []bucket
	if err := s.db.WithContext(ctx).
		Model(&models.Request{}).
		Select("kind, status, COUNT(*) AS count").
		Group("kind, status").
		Scan(&buckets).Error; err != nil {
		return nil, fmt.Errorf("summary service: count requests: %w", err)
	}

	byKind := make(map[requests.Kind]*KindSummary)
	for _, kind := range requests.Kinds() {
		byKind[kind] = &KindSummary{
			Kind:     kind,
			Label:    kind.Meta().Label,
			ByStatus: make(map[requests.Status]int64),
		}
	}

	summary := &DashboardSummary{}
	for _, b := range buckets {
		status := requests.NormalizeStatus(b.Status)
		entry, ok := byKind[b.Kind]
		if !ok {
			// Unknown kinds still count toward totals.
			entry = &KindSummary{
				Kind:     b.Kind,
				Label:    string(b.Kind),
				ByStatus: make(map[requests.Status]int64),
			}
			byKind[b.Kind] = entry
		}
		entry.Total += b.Count
		entry.ByStatus[status] += b.Count
		summary.TotalRequests += b.Count
		if status == requests.StatusPending || status == requests.StatusUrgent {
			summary.PendingActions += b.Count
		}
	}

	for _, kind := range requests.Kinds() {
		summary.Requests = append(summary.Requests, *byKind[kind])
		delete(byKind, kind)
	}
	for _, entry := range byKind {
		summary.Requests = append(summary.Requests, *entry)
	}

	if err := s.db.WithContext(ctx).
		Model(&models.UrgentMessage{}).
		Where("is_replied = ?", false).
		Count(&summary.UrgentUnreplied).Error; err != nil {
		return nil, fmt.Errorf("summary service: count urgent: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("is_read = ?", false).
		Count(&summary.UnreadFeed).Error; err != nil {
		return nil, fmt.Errorf("summary service: count unread: %w", err)
	}

	if err := s.db.WithContext(ctx).
		Model(&models.User{}).
		Count(&summary.Users).Error; err != nil {
		return nil, fmt.Errorf("summary service: count users: %w", err)
	}

	return summary, nil
}
