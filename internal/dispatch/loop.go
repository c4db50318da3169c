package dispatch

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/vibration-sensor/internal/events"
	"github.com/sweeney/vibration-sensor/internal/gate"
	"github.com/sweeney/vibration-sensor/internal/gesture"
	"github.com/sweeney/vibration-sensor/internal/motion"
)

// Deps are the capabilities the loop consumes. Observer may be nil.
type Deps struct {
	Pending   *events.Pending
	Detector  GestureDetector
	Sampler   Sampler
	Transport Transport
	Suspender Suspender
	Gate      *gate.Gate
	Observer  Observer
}

// Loop is the dispatch loop. It must be driven from a single goroutine.
type Loop struct {
	pending   *events.Pending
	detector  GestureDetector
	sampler   Sampler
	transport Transport
	suspender Suspender
	gate      *gate.Gate
	observer  Observer

	state State
	log   *log.Entry
}

// New creates a loop in the Idle state. A nil Gate is replaced by an
// overwrite gate.
func New(d Deps) *Loop {
	l := &Loop{
		pending:   d.Pending,
		detector:  d.Detector,
		sampler:   d.Sampler,
		transport: d.Transport,
		suspender: d.Suspender,
		gate:      d.Gate,
		observer:  d.Observer,
		state:     Idle,
		log:       log.WithField("component", "dispatch"),
	}
	if l.gate == nil {
		l.gate = gate.New(gate.Overwrite, 1)
	}
	if l.observer == nil {
		l.observer = NopObserver{}
	}
	return l
}

// State returns the current power state.
func (l *Loop) State() State {
	return l.state
}

// Run steps the loop until a reset is requested or ctx ends. It suspends only
// after a step leaves the bitmask empty; otherwise it steps again at once.
// Capability errors are reported to the observer and never stop the loop.
func (l *Loop) Run(ctx context.Context) (Outcome, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Stopped, err
		}
		if l.Step(ctx) == Reset {
			return Reset, nil
		}
		if !l.pending.IsEmpty() {
			continue
		}

		l.setState(Idle)
		if err := l.suspender.Suspend(ctx); err != nil {
			if ctx.Err() != nil {
				return Stopped, ctx.Err()
			}
			l.fail(fmt.Errorf("suspend: %w", err))
			continue
		}
		l.observer.Woke()
	}
}

// Step runs one iteration: every kind set in a snapshot of the bitmask is
// handled in priority order and cleared, then armed samples are sent.
// A four-press gesture ends the step immediately with Reset; nothing is sent.
func (l *Loop) Step(ctx context.Context) Outcome {
	mask := l.pending.Peek()
	if mask == 0 {
		l.drain()
		return Continue
	}
	l.setState(Draining)
	l.log.WithField("pending", mask).Debug("woke")

	for _, k := range mask.Kinds() {
		out := l.handle(ctx, k)
		l.pending.Clear(k)
		l.observer.Handled(k)
		if out == Reset {
			l.log.Warn("reset requested by button gesture")
			return Reset
		}
	}
	l.drain()
	return Continue
}

func (l *Loop) handle(ctx context.Context, k events.Kind) Outcome {
	switch k {
	case events.Button:
		return l.handleButton(ctx)
	case events.Motion:
		l.sample(motion.TriggerMotion)
	case events.RTCTick, events.ReedSwitch:
		// reserved for periodic and lid work
	}
	return Continue
}

func (l *Loop) handleButton(ctx context.Context) Outcome {
	g, err := l.detector.Detect(ctx)
	if err != nil {
		l.fail(err)
	}
	l.observer.Gesture(g)
	l.log.WithField("gesture", g).Info("button gesture")

	switch g {
	case gesture.TwoPresses:
		l.sample(motion.TriggerButton)
	case gesture.FourPresses:
		return Reset
	}
	return Continue
}

// sample reads the sensor and arms the gate. A failed read arms nothing.
func (l *Loop) sample(t motion.Trigger) {
	s, err := l.sampler.SampleAndEncode(t)
	if err != nil {
		l.fail(err)
		return
	}
	dropped := l.gate.Arm(s)
	if dropped {
		l.log.WithField("trigger", t).Debug("unsent sample replaced")
	}
	l.observer.Armed(s, dropped)
}

// drain hands every armed sample to the transport, oldest first. A sample is
// disarmed before the send and is not re-armed if the send fails.
func (l *Loop) drain() {
	for {
		s, ok := l.gate.TryTake()
		if !ok {
			return
		}
		if err := l.transport.Send(s.Encode().Bytes()); err != nil {
			l.fail(err)
			continue
		}
		l.log.WithFields(log.Fields{"x": s.X, "y": s.Y, "z": s.Z}).Info("sample sent")
		l.observer.Sent(s)
	}
}

func (l *Loop) fail(err error) {
	l.log.WithError(err).Error("capability error")
	l.observer.Failed(err)
}

func (l *Loop) setState(s State) {
	if s == l.state {
		return
	}
	l.log.Debugf("%s -> %s", l.state, s)
	l.state = s
	l.observer.State(s)
}
