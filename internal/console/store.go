package console

import (
	"sync"
	"time"

	"github.com/hrdesk-io/hrdesk/internal/requests"
)

// DefaultFeedCap bounds the in-memory notification feed.
const DefaultFeedCap = 100

// Request is the console's view of one request row, merged from the
// authoritative list and the local overlay at read time.
type Request struct {
	ID        int64
	Kind      requests.Kind
	Status    requests.Status
	FilePath  string
	OwnerName string
	CreatedAt time.Time

	// Loading mirrors the overlay's in-flight flag; view code swaps the row
	// controls for an indicator while it is set.
	Loading bool
}

// Key returns the composite identity of the row.
func (r Request) Key() requests.CompositeKey {
	return requests.CompositeKey{ID: r.ID, Kind: r.Kind}
}

// Controls derives the actions currently offered for the merged row state.
func (r Request) Controls() []requests.Control {
	return requests.Controls(r.Status, r.FilePath != "")
}

// Notification is a feed item as the console holds it.
type Notification struct {
	ID        string
	Type      string
	Title     string
	Message   string
	MessageFr string
	Data      string
	IsRead    bool
	CreatedAt time.Time
}

// ChatMessage is one urgent-channel item.
type ChatMessage struct {
	ID         string
	FromUserID string
	Text       string
	AdminReply string
	IsReplied  bool
	CreatedAt  time.Time
}

// Store is the single writer for the console's shared client-side caches:
// the authoritative request list and the notification feed. Every consumer
// reads through it; nothing else mutates the lists. After Close, all writes
// are dropped silently so late responses cannot resurrect a torn-down view.
type Store struct {
	mu       sync.RWMutex
	closed   bool
	feedCap  int
	requests []Request
	byKey    map[requests.CompositeKey]int
	feed     []Notification
	chat     []ChatMessage
	overlay  *Overlay
}

// NewStore constructs a Store with an empty overlay.
func NewStore() *Store {
	return &Store{
		feedCap: DefaultFeedCap,
		byKey:   make(map[requests.CompositeKey]int),
		overlay: NewOverlay(),
	}
}

// Overlay exposes the ephemeral overlay bound to this store.
func (s *Store) Overlay() *Overlay {
	return s.overlay
}

// Close drops the store. Subsequent writes are ignored.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Closed reports whether the store has been torn down.
func (s *Store) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// SetRequests replaces the authoritative list. The overlay entries whose
// rows now carry the confirmed state are superseded and removed.
func (s *Store) SetRequests(rows []Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.requests = make([]Request, len(rows))
	copy(s.requests, rows)

	s.byKey = make(map[requests.CompositeKey]int, len(rows))
	for i, row := range s.requests {
		s.byKey[row.Key()] = i
	}

	s.overlay.Reconcile()
}

// PatchRequest updates a single authoritative row in place, used by the
// approve path which patches locally instead of re-fetching. The overlay
// entry for the key is superseded.
func (s *Store) PatchRequest(row Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	key := row.Key()
	if i, ok := s.byKey[key]; ok {
		s.requests[i] = row
	} else {
		s.byKey[key] = len(s.requests)
		s.requests = append(s.requests, row)
	}
	s.overlay.Clear(key)
}

// Requests returns the merged view: authoritative rows with any overlay
// state layered on top. The two layers are never merged in place.
func (s *Store) Requests() []Request {
	s.mu.RLock()
	defer s.mu.RUnlock()

	merged := make([]Request, len(s.requests))
	copy(merged, s.requests)
	for i := range merged {
		if state, ok := s.overlay.Get(merged[i].Key()); ok {
			if state.Status != "" {
				merged[i].Status = state.Status
			}
			merged[i].Loading = state.Loading
		}
	}
	return merged
}

// Request returns the merged view of one row.
func (s *Store) Request(key requests.CompositeKey) (Request, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byKey[key]
	if !ok {
		return Request{}, false
	}

	row := s.requests[i]
	if state, ok := s.overlay.Get(key); ok {
		if state.Status != "" {
			row.Status = state.Status
		}
		row.Loading = state.Loading
	}
	return row, true
}

// AppendNotification prepends a feed item, keeping most-recent-first order.
// An item whose id matches the current head is discarded: double delivery
// from a duplicated subscription must not grow the feed.
func (s *Store) AppendNotification(item Notification) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	if len(s.feed) > 0 && s.feed[0].ID == item.ID {
		return false
	}

	s.feed = append([]Notification{item}, s.feed...)
	if s.feedCap > 0 && len(s.feed) > s.feedCap {
		s.feed = s.feed[:s.feedCap]
	}
	return true
}

// SetNotifications replaces the feed from an authoritative fetch.
func (s *Store) SetNotifications(items []Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.feed = make([]Notification, len(items))
	copy(s.feed, items)
	if s.feedCap > 0 && len(s.feed) > s.feedCap {
		s.feed = s.feed[:s.feedCap]
	}
}

// Notifications returns a copy of the feed, most recent first.
func (s *Store) Notifications() []Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]Notification, len(s.feed))
	copy(items, s.feed)
	return items
}

// MarkNotificationRead flags one feed item locally.
func (s *Store) MarkNotificationRead(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	for i := range s.feed {
		if s.feed[i].ID == id {
			s.feed[i].IsRead = true
			return
		}
	}
}

// AppendChat records an urgent-channel item, newest first.
func (s *Store) AppendChat(item ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.chat = append([]ChatMessage{item}, s.chat...)
}

// ReplaceChat updates a chat item in place when its reply arrives.
func (s *Store) ReplaceChat(item ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	for i := range s.chat {
		if s.chat[i].ID == item.ID {
			s.chat[i] = item
			return
		}
	}
	s.chat = append([]ChatMessage{item}, s.chat...)
}

// RemoveChat drops a chat item after an admin delete event.
func (s *Store) RemoveChat(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	for i := range s.chat {
		if s.chat[i].ID == id {
			s.chat = append(s.chat[:i], s.chat[i+1:]...)
			return
		}
	}
}

// Chat returns a copy of the urgent-channel items, newest first.
func (s *Store) Chat() []ChatMessage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]ChatMessage, len(s.chat))
	copy(items, s.chat)
	return items
}
