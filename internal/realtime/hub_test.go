package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

func serveHub(t *testing.T, hub *Hub, userID string, streams []string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(userID, streams, nil, w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func waitForSubscribers(t *testing.T, hub *Hub, stream string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		_, ok := hub.subscriptions[stream]
		hub.mu.RUnlock()
		if ok {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("no subscriber appeared on stream %q", stream)
}

func TestBroadcastStreamReachesSubscriber(t *testing.T) {
	hub := NewHub()
	server := serveHub(t, hub, "admin-1", []string{StreamRequests})
	conn := dial(t, server)

	waitForSubscribers(t, hub, StreamRequests)
	hub.BroadcastStream(StreamRequests, Message{
		Event: "request.updated",
		Data:  map[string]any{"vacation_request_id": 5},
	})

	msg := readMessage(t, conn)
	require.Equal(t, StreamRequests, msg.Stream)
	require.Equal(t, "request.updated", msg.Event)
}

func TestBroadcastToUserIsPrivate(t *testing.T) {
	hub := NewHub()
	aliceServer := serveHub(t, hub, "alice", []string{StreamNotifications})
	bobServer := serveHub(t, hub, "bob", []string{StreamNotifications})

	alice := dial(t, aliceServer)
	bob := dial(t, bobServer)

	waitForSubscribers(t, hub, StreamNotifications)
	hub.BroadcastToUser(StreamNotifications, "alice", Message{Event: "urgent.reply"})

	msg := readMessage(t, alice)
	require.Equal(t, "urgent.reply", msg.Event)

	require.NoError(t, bob.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var stray Message
	require.Error(t, bob.ReadJSON(&stray), "bob must not receive alice's private event")
}

func TestDeliveryPreservesSendOrder(t *testing.T) {
	hub := NewHub()
	server := serveHub(t, hub, "admin-1", []string{StreamNotifications})
	conn := dial(t, server)

	waitForSubscribers(t, hub, StreamNotifications)
	for i := 0; i < 5; i++ {
		hub.BroadcastStream(StreamNotifications, Message{
			Event: "notification.created",
			Meta:  map[string]any{"seq": i},
		})
	}

	for i := 0; i < 5; i++ {
		msg := readMessage(t, conn)
		require.EqualValues(t, i, msg.Meta["seq"])
	}
}

func TestControlMessageSubscribesNewStream(t *testing.T) {
	hub := NewHub()
	server := serveHub(t, hub, "admin-1", []string{StreamNotifications})
	conn := dial(t, server)

	waitForSubscribers(t, hub, StreamNotifications)
	require.NoError(t, conn.WriteJSON(controlMessage{Action: "subscribe", Streams: []string{StreamRequests}}))

	waitForSubscribers(t, hub, StreamRequests)
	hub.BroadcastStream(StreamRequests, Message{Event: "request.created"})

	msg := readMessage(t, conn)
	require.Equal(t, "request.created", msg.Event)
}
