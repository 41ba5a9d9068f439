package chat

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"

	"github.com/stretchr/testify/require"
)

func dialChat(t *testing.T, hub *Hub, userID string) *websocket.Conn {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(userID, w, r)
	}))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, err := websocket.Dial(url, "", "http://localhost/")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClient(t *testing.T, hub *Hub, userID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		_, ok := hub.clients[userID]
		hub.mu.RUnlock()
		if ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no chat client registered for user %q", userID)
}

func TestHandshakeSubprotocolNegotiation(t *testing.T) {
	hub := NewHub()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve("user-1", w, r)
	}))
	t.Cleanup(server.Close)
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	withProto, err := websocket.Dial(url, "json", "http://localhost/")
	require.NoError(t, err)
	t.Cleanup(func() { _ = withProto.Close() })
	require.Equal(t, []string{"json"}, withProto.Config().Protocol)

	bare, err := websocket.Dial(url, "", "http://localhost/")
	require.NoError(t, err)
	t.Cleanup(func() { _ = bare.Close() })
	require.Empty(t, bare.Config().Protocol)

	waitForClient(t, hub, "user-1")

	hub.Broadcast("user-1", Event{Event: "urgent.replied", MessageID: "m-1"})
	var got Event
	require.NoError(t, withProto.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, websocket.JSON.Receive(withProto, &got))
	require.Equal(t, "m-1", got.MessageID)
}

func TestBroadcastReachesOwnerOnly(t *testing.T) {
	hub := NewHub()
	owner := dialChat(t, hub, "user-1")
	other := dialChat(t, hub, "user-2")

	waitForClient(t, hub, "user-1")
	waitForClient(t, hub, "user-2")

	hub.Broadcast("user-1", Event{Event: "urgent.replied", MessageID: "m-1"})

	var got Event
	require.NoError(t, owner.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, websocket.JSON.Receive(owner, &got))
	require.Equal(t, "urgent.replied", got.Event)
	require.Equal(t, "m-1", got.MessageID)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var stray Event
	require.Error(t, websocket.JSON.Receive(other, &stray))
}

func TestBroadcastManyFansOut(t *testing.T) {
	hub := NewHub()
	first := dialChat(t, hub, "user-1")
	second := dialChat(t, hub, "user-2")

	waitForClient(t, hub, "user-1")
	waitForClient(t, hub, "user-2")

	hub.BroadcastMany([]string{"user-1", "user-2"}, Event{Event: "urgent.created"})

	for _, conn := range []*websocket.Conn{first, second} {
		var got Event
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, websocket.JSON.Receive(conn, &got))
		require.Equal(t, "urgent.created", got.Event)
	}
}
