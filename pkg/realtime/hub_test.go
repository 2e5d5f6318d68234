package realtime

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(buffer int) *Hub {
	return NewHub(buffer, zerolog.Nop())
}

func receive(t *testing.T, o *Observer) Event {
	t.Helper()
	select {
	case ev, ok := <-o.Events():
		require.True(t, ok, "channel closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestHub_SubscribeConnects(t *testing.T) {
	h := newTestHub(0)
	o := h.Subscribe("a")
	assert.Equal(t, Connected, o.State())
	assert.Equal(t, 1, h.Count())
	assert.Equal(t, DefaultBuffer, cap(o.events))
}

func TestHub_BroadcastDeliversToEveryObserver(t *testing.T) {
	h := newTestHub(4)
	a := h.Subscribe("a")
	b := h.Subscribe("b")

	h.Broadcast("groupUpdated", map[string]string{"id": "g1"})

	for _, o := range []*Observer{a, b} {
		ev := receive(t, o)
		assert.Equal(t, "groupUpdated", ev.Name)
		assert.Equal(t, map[string]string{"id": "g1"}, ev.Data)
	}
}

func TestHub_LateObserverMissesEarlierEvents(t *testing.T) {
	h := newTestHub(4)
	early := h.Subscribe("early")
	h.Broadcast("postCreated", "p1")

	late := h.Subscribe("late")
	h.Broadcast("postCreated", "p2")

	assert.Equal(t, "p1", receive(t, early).Data)
	assert.Equal(t, "p2", receive(t, early).Data)
	assert.Equal(t, "p2", receive(t, late).Data)
	select {
	case ev := <-late.Events():
		t.Fatalf("late observer got unexpected event %v", ev)
	default:
	}
}

func TestHub_UnsubscribeIsTerminal(t *testing.T) {
	h := newTestHub(4)
	o := h.Subscribe("a")
	h.Unsubscribe(o)
	h.Unsubscribe(o)

	assert.Equal(t, Disconnected, o.State())
	assert.Equal(t, 0, h.Count())

	h.Broadcast("newMessage", "m1")
	_, open := <-o.Events()
	assert.False(t, open, "channel should be closed after Unsubscribe")
}

func TestHub_DropsWhenObserverLags(t *testing.T) {
	h := newTestHub(1)
	o := h.Subscribe("slow")
	h.Broadcast("e", 1)
	h.Broadcast("e", 2)

	assert.Equal(t, int64(1), o.Dropped())
	assert.Equal(t, 1, receive(t, o).Data)
}

func TestHub_PreservesOrderPerObserver(t *testing.T) {
	const n = 50
	h := newTestHub(n * 2)
	a := h.Subscribe("a")
	b := h.Subscribe("b")

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h.Broadcast("e", i)
		}(i)
	}
	wg.Wait()

	var seqA, seqB []any
	for i := 0; i < n; i++ {
		seqA = append(seqA, receive(t, a).Data)
		seqB = append(seqB, receive(t, b).Data)
	}
	assert.Equal(t, seqA, seqB, "observers must see broadcasts in the same order")
}

func TestHub_Close(t *testing.T) {
	h := newTestHub(1)
	obs := make([]*Observer, 3)
	for i := range obs {
		obs[i] = h.Subscribe(fmt.Sprint(i))
	}
	h.Close()
	assert.Equal(t, 0, h.Count())
	for _, o := range obs {
		assert.Equal(t, Disconnected, o.State())
	}
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "unknown", State(9).String())
}
