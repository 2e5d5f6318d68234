// Package realtime fans named events out to every connected observer.
package realtime

import (
	"sync"

	"github.com/rs/zerolog"
)

// DefaultBuffer is the per-observer queue length used when none is given
const DefaultBuffer = 64

// Hub is a process-wide broadcast bus. Broadcasts are serialized so every
// observer sees events in the same relative order.
type Hub struct {
	mu        sync.Mutex
	observers map[*Observer]struct{}
	buffer    int
	log       zerolog.Logger
}

// NewHub creates an empty hub whose observers queue up to buffer events
func NewHub(buffer int, logger zerolog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		observers: make(map[*Observer]struct{}),
		buffer:    buffer,
		log:       logger.With().Str("component", "realtime").Logger(),
	}
}

// Subscribe registers a new observer. It receives every broadcast made after this call returns.
func (h *Hub) Subscribe(id string) *Observer {
	o := newObserver(id, h.buffer)
	h.mu.Lock()
	h.observers[o] = struct{}{}
	o.state.Store(int32(Connected))
	n := len(h.observers)
	h.mu.Unlock()

	h.log.Debug().Str("observer", id).Int("observers", n).Msg("observer connected")
	return o
}

// Unsubscribe disconnects the observer and closes its channel. Calling it twice is a no-op.
func (h *Hub) Unsubscribe(o *Observer) {
	h.mu.Lock()
	if _, ok := h.observers[o]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.observers, o)
	o.state.Store(int32(Disconnected))
	close(o.events)
	n := len(h.observers)
	h.mu.Unlock()

	h.log.Debug().Str("observer", o.ID).Int("observers", n).Msg("observer disconnected")
}

// Broadcast delivers the event to every connected observer, the originator included.
// Delivery is best effort: an observer with a full queue misses the event.
func (h *Hub) Broadcast(name string, payload any) {
	ev := Event{Name: name, Data: payload}
	h.mu.Lock()
	defer h.mu.Unlock()
	for o := range h.observers {
		select {
		case o.events <- ev:
		default:
			o.drops.Add(1)
			h.log.Warn().Str("observer", o.ID).Str("event", name).Msg("observer lagging, event dropped")
		}
	}
}

// Count returns the number of connected observers
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.observers)
}

// Close disconnects every observer
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for o := range h.observers {
		delete(h.observers, o)
		o.state.Store(int32(Disconnected))
		close(o.events)
	}
}
