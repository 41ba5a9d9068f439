package console

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/hrdesk-io/hrdesk/internal/realtime"
	"github.com/hrdesk-io/hrdesk/pkg/logger"
)

// DefaultFloatingWindow is how long the transient notification indicator
// stays visible after a qualifying arrival.
const DefaultFloatingWindow = 5 * time.Second

// Subscription is one live channel attachment. Close tears it down; events
// received after Close are dropped by the store, never delivered.
type Subscription struct {
	conn *websocket.Conn
	once sync.Once
	done chan struct{}
}

// Close cancels the subscription.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

// Done reports subscription teardown, for callers that want to wait.
func (s *Subscription) Done() <-chan struct{} {
	if s == nil {
		closed := make(chan struct{})
		close(closed)
		return closed
	}
	return s.done
}

// Channels establishes the three push subscriptions: the broadcast
// notification feed, the broadcast request-event stream, and the private
// per-user chat channel. Without a credential every subscribe is skipped
// silently; the user is simply not authenticated yet.
type Channels struct {
	baseURL string
	creds   CredentialSource
	store   *Store
	log     *zap.Logger

	// onRequestEvent runs for every request stream event, typically wired to
	// an authoritative refresh.
	onRequestEvent func(event string, data json.RawMessage)

	floatMu     sync.Mutex
	floatTimer  *time.Timer
	floatWindow time.Duration
	floating    bool
}

// NewChannels constructs a channel manager bound to a store.
func NewChannels(baseURL string, creds CredentialSource, store *Store) *Channels {
	return &Channels{
		baseURL:     strings.TrimRight(baseURL, "/"),
		creds:       creds,
		store:       store,
		log:         logger.WithModule("console"),
		floatWindow: DefaultFloatingWindow,
	}
}

// OnRequestEvent registers the handler invoked for request stream events.
func (c *Channels) OnRequestEvent(fn func(event string, data json.RawMessage)) {
	c.onRequestEvent = fn
}

// SetFloatingWindow overrides the indicator window, primarily for tests.
func (c *Channels) SetFloatingWindow(d time.Duration) {
	if d > 0 {
		c.floatWindow = d
	}
}

// SubscribeNotifications attaches to the broadcast notification stream.
// A nil subscription with nil error means "no credential yet, skipped".
func (c *Channels) SubscribeNotifications(ctx context.Context) (*Subscription, error) {
	return c.dialStreams(ctx, realtime.StreamNotifications)
}

// SubscribeRequests attaches to the broadcast request-event stream.
func (c *Channels) SubscribeRequests(ctx context.Context) (*Subscription, error) {
	return c.dialStreams(ctx, realtime.StreamRequests)
}

// SubscribeChat attaches to the private per-user urgent channel.
func (c *Channels) SubscribeChat(ctx context.Context) (*Subscription, error) {
	token, ok := c.credential()
	if !ok {
		return nil, nil
	}

	conn, err := c.dial(ctx, "/api/chat?token="+token, "json")
	if err != nil {
		return nil, err
	}

	sub := &Subscription{conn: conn, done: make(chan struct{})}
	go c.readChat(sub)
	return sub, nil
}

// FloatingVisible reports whether the transient indicator is currently shown.
func (c *Channels) FloatingVisible() bool {
	c.floatMu.Lock()
	defer c.floatMu.Unlock()
	return c.floating
}

func (c *Channels) dialStreams(ctx context.Context, stream string) (*Subscription, error) {
	token, ok := c.credential()
	if !ok {
		return nil, nil
	}

	conn, err := c.dial(ctx, "/api/realtime?streams="+stream+"&token="+token, "")
	if err != nil {
		return nil, err
	}

	sub := &Subscription{conn: conn, done: make(chan struct{})}
	go c.readStreams(sub)
	return sub, nil
}

func (c *Channels) credential() (string, bool) {
	if c.creds == nil {
		return "", false
	}
	token, ok := c.creds.Token()
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func (c *Channels) dial(ctx context.Context, path, subprotocol string) (*websocket.Conn, error) {
	url := c.baseURL + path
	if strings.HasPrefix(url, "http") {
		url = "ws" + strings.TrimPrefix(url, "http")
	}

	dialer := websocket.Dialer{}
	if subprotocol != "" {
		dialer.Subprotocols = []string{subprotocol}
	}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

func (c *Channels) readStreams(sub *Subscription) {
	defer sub.Close()

	for {
		var message realtime.Message
		if err := sub.conn.ReadJSON(&message); err != nil {
			return
		}

		select {
		case <-sub.done:
			return
		default:
		}

		raw, err := json.Marshal(message.Data)
		if err != nil {
			continue
		}

		switch message.Stream {
		case realtime.StreamNotifications:
			c.ingestNotification(raw)
		case realtime.StreamRequests:
			if c.onRequestEvent != nil {
				c.onRequestEvent(message.Event, raw)
			}
		}
	}
}

func (c *Channels) readChat(sub *Subscription) {
	defer sub.Close()

	for {
		var event struct {
			Event     string          `json:"event"`
			Message   json.RawMessage `json:"message"`
			MessageID string          `json:"message_id"`
		}
		if err := sub.conn.ReadJSON(&event); err != nil {
			return
		}

		select {
		case <-sub.done:
			return
		default:
		}

		switch event.Event {
		case "urgent.deleted":
			c.store.RemoveChat(event.MessageID)
		case "urgent.replied":
			if item, ok := decodeChat(event.Message); ok {
				c.store.ReplaceChat(item)
			}
		default:
			if item, ok := decodeChat(event.Message); ok {
				c.store.AppendChat(item)
			}
		}
	}
}

// ingestNotification normalizes both payload shapes the backend emits:
// a {"notification": {...}} wrapper or a bare notification object.
func (c *Channels) ingestNotification(raw []byte) {
	item, ok := normalizeNotification(raw)
	if !ok {
		return
	}

	if !c.store.AppendNotification(item) {
		return
	}
	if item.Type != "urgent" {
		c.restartFloating()
	}
}

func normalizeNotification(raw []byte) (Notification, bool) {
	var wrapper struct {
		Notification *wireNotification `json:"notification"`
	}
	if err := json.Unmarshal(raw, &wrapper); err == nil && wrapper.Notification != nil {
		return Notification(*wrapper.Notification), true
	}

	var bare wireNotification
	if err := json.Unmarshal(raw, &bare); err == nil && bare.ID != "" {
		return Notification(bare), true
	}
	return Notification{}, false
}

// restartFloating shows the indicator and arms the single dismissal timer,
// cancelling any previous one.
func (c *Channels) restartFloating() {
	c.floatMu.Lock()
	defer c.floatMu.Unlock()

	c.floating = true
	if c.floatTimer != nil {
		c.floatTimer.Stop()
	}
	c.floatTimer = time.AfterFunc(c.floatWindow, func() {
		c.floatMu.Lock()
		defer c.floatMu.Unlock()
		c.floating = false
	})
}

func decodeChat(data json.RawMessage) (ChatMessage, bool) {
	if len(data) == 0 {
		return ChatMessage{}, false
	}

	var raw struct {
		ID         string    `json:"id"`
		FromUserID string    `json:"from_user_id"`
		Text       string    `json:"text"`
		AdminReply string    `json:"admin_reply"`
		IsReplied  bool      `json:"is_replied"`
		CreatedAt  time.Time `json:"created_at"`
	}
	if err := json.Unmarshal(data, &raw); err != nil || raw.ID == "" {
		return ChatMessage{}, false
	}
	return ChatMessage(raw), true
}
