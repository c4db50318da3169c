package gpio

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sweeney/vibration-sensor/internal/events"
	"github.com/sweeney/vibration-sensor/internal/gesture"
)

// FakeSource is a test double standing in for the interrupt lines. Each method
// behaves like the corresponding hardware interrupt: queue the edge (if any),
// then set the pending bit.
type FakeSource struct {
	pending *events.Pending
	edges   chan gesture.Edge
	drops   atomic.Uint32

	// Closed tracks if Close was called
	Closed bool
}

// NewFakeSource creates a FakeSource setting bits on p.
func NewFakeSource(p *events.Pending) *FakeSource {
	return &FakeSource{
		pending: p,
		edges:   make(chan gesture.Edge, EdgeBuffer),
	}
}

func (f *FakeSource) edge(pressed bool, at time.Time) {
	select {
	case f.edges <- gesture.Edge{Pressed: pressed, At: at}:
	default:
		f.drops.Add(1)
	}
	f.pending.Set(events.Button)
}

// Press simulates the button going down at at.
func (f *FakeSource) Press(at time.Time) { f.edge(true, at) }

// Release simulates the button going up at at.
func (f *FakeSource) Release(at time.Time) { f.edge(false, at) }

// Tap queues n press/release pairs starting at start, spaced by period.
func (f *FakeSource) Tap(n int, start time.Time, period time.Duration) {
	for i := 0; i < n; i++ {
		down := start.Add(time.Duration(i) * period)
		f.Press(down)
		f.Release(down.Add(period / 2))
	}
}

// Motion simulates an accelerometer transient interrupt.
func (f *FakeSource) Motion() { f.pending.Set(events.Motion) }

// Reed simulates a reed switch transition.
func (f *FakeSource) Reed() { f.pending.Set(events.ReedSwitch) }

// Tick simulates an RTC alarm.
func (f *FakeSource) Tick() { f.pending.Set(events.RTCTick) }

// Edges delivers queued button edges.
func (f *FakeSource) Edges() <-chan gesture.Edge { return f.edges }

// Dropped returns how many edges did not fit in the channel.
func (f *FakeSource) Dropped() uint32 { return f.drops.Load() }

// Close marks the source as closed.
func (f *FakeSource) Close() error {
	f.Closed = true
	return nil
}

// FakeIndicator records LED state changes.
type FakeIndicator struct {
	mu     sync.Mutex
	states []bool

	// SetError, if set, will be returned by Set (the state is still recorded).
	SetError error
}

// NewFakeIndicator creates a FakeIndicator.
func NewFakeIndicator() *FakeIndicator {
	return &FakeIndicator{}
}

// Set records the requested state.
func (f *FakeIndicator) Set(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states = append(f.states, on)
	return f.SetError
}

// States returns every state set so far.
func (f *FakeIndicator) States() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.states...)
}

// On reports the most recent state.
func (f *FakeIndicator) On() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.states) > 0 && f.states[len(f.states)-1]
}
