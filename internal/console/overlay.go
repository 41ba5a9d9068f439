package console

import (
	"sync"

	"github.com/hrdesk-io/hrdesk/internal/requests"
	apperrors "github.com/hrdesk-io/hrdesk/pkg/errors"
)

// OverlayState is the ephemeral per-row state layered over the authoritative
// list: an optimistic display status and the in-flight indicator. It is never
// persisted.
type OverlayState struct {
	Status  requests.Status
	Loading bool
}

// Overlay keys ephemeral row state by composite identity, so two requests of
// different kinds sharing a numeric id can never collide. It also carries the
// per-key in-flight gate that serializes actions on one row.
type Overlay struct {
	mu       sync.Mutex
	states   map[requests.CompositeKey]OverlayState
	inFlight map[requests.CompositeKey]struct{}
}

// NewOverlay constructs an empty overlay.
func NewOverlay() *Overlay {
	return &Overlay{
		states:   make(map[requests.CompositeKey]OverlayState),
		inFlight: make(map[requests.CompositeKey]struct{}),
	}
}

// Acquire takes the in-flight gate for a key. A second action on the same
// row before the first resolves fails with ErrRowBusy instead of racing.
func (o *Overlay) Acquire(key requests.CompositeKey) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if _, busy := o.inFlight[key]; busy {
		return apperrors.ErrRowBusy
	}
	o.inFlight[key] = struct{}{}
	return nil
}

// Release frees the in-flight gate.
func (o *Overlay) Release(key requests.CompositeKey) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, key)
}

// Set records the optimistic state for a key.
func (o *Overlay) Set(key requests.CompositeKey, state OverlayState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.states[key] = state
}

// SetLoading flips only the in-flight indicator, keeping any optimistic status.
func (o *Overlay) SetLoading(key requests.CompositeKey, loading bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	state := o.states[key]
	state.Loading = loading
	if state == (OverlayState{}) {
		delete(o.states, key)
		return
	}
	o.states[key] = state
}

// Get returns the overlay state for a key.
func (o *Overlay) Get(key requests.CompositeKey) (OverlayState, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	state, ok := o.states[key]
	return state, ok
}

// Clear removes the overlay entry once the authoritative state arrives.
func (o *Overlay) Clear(key requests.CompositeKey) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.states, key)
}

// Reconcile drops overlay entries after an authoritative refresh. Entries
// whose key is still in flight are kept so a concurrent action's indicator
// survives the refresh.
func (o *Overlay) Reconcile() {
	o.mu.Lock()
	defer o.mu.Unlock()

	for key := range o.states {
		if _, busy := o.inFlight[key]; busy {
			continue
		}
		delete(o.states, key)
	}
}

// Len reports the number of live overlay entries.
func (o *Overlay) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.states)
}
