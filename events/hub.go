// Package events is an in-process fan-out of book availability changes,
// consumed by the SSE endpoint.
package events

import (
	"sync"
	"time"
)

type Availability struct {
	BookID    int64     `json:"book_id"`
	Title     string    `json:"title"`
	Quantity  int64     `json:"quantity"`
	Available bool      `json:"available"`
	At        time.Time `json:"at"`
}

type Hub struct {
	mu   sync.RWMutex
	subs map[chan Availability]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Availability]struct{})}
}

// Subscribe returns a buffered event channel and an unsubscribe func.
// The channel is closed by the unsubscribe func, never by Publish.
func (h *Hub) Subscribe() (<-chan Availability, func()) {
	ch := make(chan Availability, 16)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Publish never blocks; subscribers that cannot keep up lose events.
func (h *Hub) Publish(ev Availability) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
