package realtime

import "sync/atomic"

// State is the lifecycle of an observer connection
type State int32

const (
	// Connecting observers exist but receive nothing yet
	Connecting State = iota
	// Connected observers receive every broadcast
	Connected
	// Disconnected is terminal; nothing is queued or replayed
	Disconnected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	}
	return "unknown"
}

// Event is one named notification. It is also the JSON frame written to sockets.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

// Observer is one subscriber of a Hub
type Observer struct {
	ID     string
	events chan Event
	state  atomic.Int32
	drops  atomic.Int64
}

func newObserver(id string, buffer int) *Observer {
	return &Observer{ID: id, events: make(chan Event, buffer)}
}

// Events returns the channel broadcasts arrive on. It is closed on disconnect.
func (o *Observer) Events() <-chan Event {
	return o.events
}

// State returns the current lifecycle state
func (o *Observer) State() State {
	return State(o.state.Load())
}

// Dropped returns how many events were discarded because the buffer was full
func (o *Observer) Dropped() int64 {
	return o.drops.Load()
}
