// Package session ties browser sessions to cart stores and reacts to
// authentication state changes.
package session

import "sync"

// EventKind is the kind of authentication state change.
type EventKind string

const (
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
)

// Event is an authentication state change scoped to one session.
type Event struct {
	Kind      EventKind
	SessionID string
	UserID    string
}

// Hub fans authentication events out to subscribers. Subscribers are
// invoked synchronously on the publishing goroutine.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]func(Event))}
}

// Subscribe registers a handler and returns its teardown function.
// Calling the teardown removes the handler; calling it twice is safe.
func (h *Hub) Subscribe(fn func(Event)) func() {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++
	h.subs[id] = fn

	return func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
}

// Publish delivers the event to all current subscribers.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	fns := make([]func(Event), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
