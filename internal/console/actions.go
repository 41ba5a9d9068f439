package console

import (
	"context"
	"errors"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/hrdesk-io/hrdesk/internal/requests"
	apperrors "github.com/hrdesk-io/hrdesk/pkg/errors"
	"github.com/hrdesk-io/hrdesk/pkg/logger"
)

// Feedback is what Actions reports back to the view layer after each call:
// a localized message plus whether it is an error toast.
type Feedback struct {
	Message string
	IsError bool
}

// Actions drives the admin mutations: optimistic overlay first, then the
// backend, then reconciliation. One instance serves one mounted view.
type Actions struct {
	client *Client
	store  *Store
	locale Locale
	log    *zap.Logger
}

// NewActions constructs an Actions facade over the store and client.
func NewActions(client *Client, store *Store, locale Locale) *Actions {
	return &Actions{
		client: client,
		store:  store,
		locale: locale,
		log:    logger.WithModule("console"),
	}
}

// Approve moves a pending or urgent row toward approval. The overlay shows
// waiting_admin_file immediately; the confirmed row is patched in place
// without a full refresh. On failure the overlay rolls back so the row never
// keeps displaying a transition that did not happen.
func (a *Actions) Approve(ctx context.Context, key requests.CompositeKey) Feedback {
	return a.transition(ctx, key, requests.StatusApproved, requests.StatusWaitingFile, false)
}

// Reject marks the row rejected. Delete-as-reject shares this path: rows are
// never removed, they re-enter as rejected. A successful reject triggers a
// full authoritative refresh.
func (a *Actions) Reject(ctx context.Context, key requests.CompositeKey) Feedback {
	return a.transition(ctx, key, requests.StatusRejected, requests.StatusRejected, true)
}

func (a *Actions) transition(ctx context.Context, key requests.CompositeKey, desired, optimistic requests.Status, refresh bool) Feedback {
	if strings.TrimSpace(string(key.Kind)) == "" {
		return a.errorFeedback(MsgTypeMissing)
	}

	overlay := a.store.Overlay()
	if err := overlay.Acquire(key); err != nil {
		return a.errorFeedback(MsgRowBusy)
	}
	defer overlay.Release(key)

	overlay.Set(key, OverlayState{Status: optimistic, Loading: true})
	defer overlay.SetLoading(key, false)

	confirmed, err := a.client.UpdateStatus(ctx, key, desired)
	if err != nil {
		overlay.Clear(key)
		return a.failureFeedback(err)
	}

	if refresh {
		a.refresh(ctx)
		overlay.Clear(key)
	} else {
		a.store.PatchRequest(confirmed)
	}

	if desired == requests.StatusRejected {
		return a.okFeedback(MsgRequestDeleted)
	}
	return a.okFeedback(MsgStatusUpdated)
}

// UploadFile attaches the admin document and resolves the awaiting-file
// state. A successful upload triggers a full authoritative refresh.
func (a *Actions) UploadFile(ctx context.Context, key requests.CompositeKey, filename string, file io.Reader) Feedback {
	if strings.TrimSpace(string(key.Kind)) == "" {
		return a.errorFeedback(MsgTypeMissing)
	}
	if file == nil {
		return a.errorFeedback(MsgFileRequired)
	}

	overlay := a.store.Overlay()
	if err := overlay.Acquire(key); err != nil {
		return a.errorFeedback(MsgRowBusy)
	}
	defer overlay.Release(key)

	overlay.SetLoading(key, true)
	defer overlay.SetLoading(key, false)

	if _, err := a.client.UploadFile(ctx, key, filename, file); err != nil {
		return a.failureFeedback(err)
	}

	a.refresh(ctx)
	overlay.Clear(key)
	return a.okFeedback(MsgFileAdded)
}

// Reply posts the admin answer to an urgent message.
func (a *Actions) Reply(ctx context.Context, messageID, reply string) Feedback {
	if err := a.client.ReplyUrgent(ctx, messageID, reply); err != nil {
		return a.failureFeedback(err)
	}
	return a.okFeedback(MsgReplySent)
}

// DeleteUrgent removes an urgent message.
func (a *Actions) DeleteUrgent(ctx context.Context, messageID string) Feedback {
	if err := a.client.DeleteUrgent(ctx, messageID); err != nil {
		return a.failureFeedback(err)
	}
	return Feedback{}
}

// Refresh re-fetches the authoritative request list.
func (a *Actions) Refresh(ctx context.Context) error {
	return a.refresh(ctx)
}

func (a *Actions) refresh(ctx context.Context) error {
	rows, err := a.client.FetchRequests(ctx)
	if err != nil {
		a.log.Warn("request refresh failed", zap.Error(err))
		return err
	}
	a.store.SetRequests(rows)
	return nil
}

func (a *Actions) okFeedback(key string) Feedback {
	return Feedback{Message: Localize(a.locale, key)}
}

func (a *Actions) errorFeedback(key string) Feedback {
	return Feedback{Message: Localize(a.locale, key), IsError: true}
}

func (a *Actions) failureFeedback(err error) Feedback {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch {
		case errors.Is(appErr, apperrors.ErrTypeMissing) || appErr.Code == apperrors.ErrTypeMissing.Code:
			return a.errorFeedback(MsgTypeMissing)
		case appErr.Code == apperrors.ErrFileRequired.Code:
			return a.errorFeedback(MsgFileRequired)
		}
		if appErr.Message != "" {
			return Feedback{Message: appErr.Message, IsError: true}
		}
	}
	return a.errorFeedback(MsgNetworkFailure)
}
