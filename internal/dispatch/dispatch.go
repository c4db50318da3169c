// Package dispatch is the event loop that drains the pending interrupt bitmask,
// routes each kind to its handler, hands armed samples to the transport and
// suspends only when nothing is pending.
package dispatch

import (
	"context"

	"github.com/sweeney/vibration-sensor/internal/events"
	"github.com/sweeney/vibration-sensor/internal/gesture"
	"github.com/sweeney/vibration-sensor/internal/motion"
)

// GestureDetector runs one button counting window.
type GestureDetector interface {
	Detect(ctx context.Context) (gesture.Gesture, error)
}

// Sampler takes one accelerometer reading.
type Sampler interface {
	SampleAndEncode(t motion.Trigger) (motion.Sample, error)
}

// Transport delivers an encoded record. Delivery is at-most-once.
type Transport interface {
	Send(payload []byte) error
}

// Suspender blocks until an interrupt may have arrived.
type Suspender interface {
	Suspend(ctx context.Context) error
}

// Outcome is how a Step or Run ended.
type Outcome int

const (
	Continue Outcome = iota // keep looping
	Reset                   // the user asked for a device reset
	Stopped                 // the context ended
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Reset:
		return "reset"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

// State is the loop's power state.
type State int

const (
	Idle     State = iota // nothing pending, eligible to suspend
	Draining              // at least one kind pending
)

func (s State) String() string {
	if s == Draining {
		return "DRAINING"
	}
	return "IDLE"
}

// Observer is told about everything the loop does. All calls happen on the
// loop goroutine.
type Observer interface {
	Woke()
	Handled(k events.Kind)
	Gesture(g gesture.Gesture)
	Armed(s motion.Sample, dropped bool)
	Sent(s motion.Sample)
	Failed(err error)
	State(s State)
}

// NopObserver ignores everything.
type NopObserver struct{}

func (NopObserver) Woke()                     {}
func (NopObserver) Handled(events.Kind)       {}
func (NopObserver) Gesture(gesture.Gesture)   {}
func (NopObserver) Armed(motion.Sample, bool) {}
func (NopObserver) Sent(motion.Sample)        {}
func (NopObserver) Failed(error)              {}
func (NopObserver) State(State)               {}
