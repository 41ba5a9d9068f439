package console

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrdesk-io/hrdesk/internal/requests"
)

func TestNavigateFromNotificationPayload(t *testing.T) {
	h := NewHighlighter()

	target, ok := h.NavigateFromNotification(Notification{Data: `{"mission_order_id":9}`})
	require.True(t, ok)
	require.Equal(t, "9-missionOrder", target)

	key, ok := h.Target()
	require.True(t, ok)
	require.Equal(t, requests.CompositeKey{ID: 9, Kind: requests.KindMissionOrder}, key)
}

func TestNavigateMalformedPayloadIsSilent(t *testing.T) {
	h := NewHighlighter()

	_, ok := h.NavigateFromNotification(Notification{Data: `{bad json`})
	require.False(t, ok)
	_, ok = h.Target()
	require.False(t, ok, "malformed data yields no navigation, not an error")

	_, ok = h.NavigateFromNotification(Notification{Data: `{"unrelated":1}`})
	require.False(t, ok)
}

func TestCorrelationPriorityOrder(t *testing.T) {
	h := NewHighlighter()

	// work_certificate_id wins over any later key in the fixed order.
	target, ok := h.NavigateFromNotification(Notification{
		Data: `{"vacation_request_id":3,"work_certificate_id":7}`,
	})
	require.True(t, ok)
	require.Equal(t, "7-workCertificate", target)
}

func TestResolveRetriesUntilRowRenders(t *testing.T) {
	h := NewHighlighter()
	h.SetRetryPolicy(5*time.Millisecond, 10)
	require.True(t, h.SetTarget("5-vacationRequest"))

	var calls atomic.Int32
	var scrolled atomic.Bool

	found := h.Resolve(context.Background(), func(requests.CompositeKey) bool {
		// Row appears on the third poll.
		return calls.Add(1) >= 3
	}, func(requests.CompositeKey) {
		scrolled.Store(true)
	})

	require.True(t, found)
	require.True(t, scrolled.Load())
	require.Equal(t, int32(3), calls.Load())
}

func TestResolveGivesUpSilently(t *testing.T) {
	h := NewHighlighter()
	h.SetRetryPolicy(time.Millisecond, 4)
	require.True(t, h.SetTarget("5-vacationRequest"))

	var calls atomic.Int32
	found := h.Resolve(context.Background(), func(requests.CompositeKey) bool {
		calls.Add(1)
		return false
	}, nil)

	require.False(t, found)
	require.Equal(t, int32(4), calls.Load())

	// Giving up does not clear the target; only interaction does.
	_, ok := h.Target()
	require.True(t, ok)
}

func TestClearOnInteractionIsOnlyRemovalPath(t *testing.T) {
	h := NewHighlighter()
	require.True(t, h.SetTarget("2-workCertificate"))

	h.ClearOnInteraction()
	_, ok := h.Target()
	require.False(t, ok)

	require.False(t, h.SetTarget("junk"))
	require.False(t, h.SetTarget("3-notAKind"))
}
