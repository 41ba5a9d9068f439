package console

import (
	"context"
	"sync"
	"time"

	"github.com/hrdesk-io/hrdesk/internal/requests"
)

const (
	// highlight resolution retries while rows render asynchronously
	defaultResolveInterval = 150 * time.Millisecond
	defaultResolveAttempts = 10
)

// Highlighter tracks the composite-key target requested for visual emphasis
// in the admin table, the client-side equivalent of a "highlight" URL
// parameter. The target never expires on its own; only an explicit user
// interaction clears it.
type Highlighter struct {
	mu     sync.Mutex
	target *requests.CompositeKey

	interval time.Duration
	attempts int
}

// NewHighlighter constructs a Highlighter with the standard retry policy.
func NewHighlighter() *Highlighter {
	return &Highlighter{
		interval: defaultResolveInterval,
		attempts: defaultResolveAttempts,
	}
}

// SetRetryPolicy overrides the resolution cadence, primarily for tests.
func (h *Highlighter) SetRetryPolicy(interval time.Duration, attempts int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if interval > 0 {
		h.interval = interval
	}
	if attempts > 0 {
		h.attempts = attempts
	}
}

// NavigateFromNotification derives the highlight target from a notification
// payload. A payload without a correlation id yields no navigation and no
// error; malformed data behaves the same way.
func (h *Highlighter) NavigateFromNotification(item Notification) (string, bool) {
	key := requests.Correlate(item.Data)
	if key == nil {
		return "", false
	}

	h.mu.Lock()
	h.target = key
	h.mu.Unlock()
	return key.String(), true
}

// SetTarget applies a highlight target carried in from URL state.
func (h *Highlighter) SetTarget(value string) bool {
	key, err := requests.ParseCompositeKey(value)
	if err != nil {
		return false
	}

	h.mu.Lock()
	h.target = &key
	h.mu.Unlock()
	return true
}

// Target returns the current highlight target.
func (h *Highlighter) Target() (requests.CompositeKey, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.target == nil {
		return requests.CompositeKey{}, false
	}
	return *h.target, true
}

// ClearOnInteraction removes the target. Search input, filter changes, and
// row clicks all route through here; nothing else removes the target.
func (h *Highlighter) ClearOnInteraction() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.target = nil
}

// Resolve polls until the row for the current target is present, then calls
// scroll with its key. Rows render asynchronously, so it retries on a fixed
// interval up to the attempt cap and gives up silently after that.
func (h *Highlighter) Resolve(ctx context.Context, locate func(requests.CompositeKey) bool, scroll func(requests.CompositeKey)) bool {
	h.mu.Lock()
	target := h.target
	interval := h.interval
	attempts := h.attempts
	h.mu.Unlock()

	if target == nil {
		return false
	}

	key := *target
	for attempt := 0; attempt < attempts; attempt++ {
		if locate(key) {
			if scroll != nil {
				scroll(key)
			}
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(interval):
		}
	}
	return false
}
