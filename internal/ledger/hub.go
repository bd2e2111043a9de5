package ledger

import "sync"

// EventKind distinguishes ledger change events.
type EventKind string

const (
	EventCreated EventKind = "created"
	EventDeleted EventKind = "deleted"
)

// Event is a per-change notification delivered to watchers of a
// user's ledger.
type Event struct {
	UserID        string
	TransactionID string
	Kind          EventKind
}

// Hub fans ledger change events out to in-process subscribers,
// keyed by user id. Slow subscribers drop events rather than block
// the publisher.
type Hub struct {
	mu     sync.Mutex
	subs   map[string]map[chan Event]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan Event]struct{})}
}

// Subscribe registers a watcher for one user's ledger. The returned
// cancel function must be called when the watcher goes away.
func (h *Hub) Subscribe(userID string) (<-chan Event, func()) {
	ch := make(chan Event, 8)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[chan Event]struct{})
	}
	h.subs[userID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[userID]; ok {
			if _, subscribed := set[ch]; subscribed {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subs, userID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Close ends every subscription so watchers blocked on their channel
// return. Used during server shutdown; subsequent Subscribe calls
// get an already-closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for _, set := range h.subs {
		for ch := range set {
			close(ch)
		}
	}
	h.subs = make(map[string]map[chan Event]struct{})
}

// Publish delivers an event to every watcher of the event's user.
func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs[e.UserID] {
		select {
		case ch <- e:
		default:
			// subscriber is not keeping up; it will refetch on the
			// next event it does receive
		}
	}
}
