//go:build linux

package gpio

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/warthog618/go-gpiocdev"
	"golang.org/x/sys/unix"

	"github.com/sweeney/vibration-sensor/internal/events"
	"github.com/sweeney/vibration-sensor/internal/gesture"
)

// RealSource watches GPIO lines using the Linux GPIO character device. Each
// line's event handler runs on a gpiocdev goroutine and only sets bits and
// queues edges; it never blocks.
type RealSource struct {
	pending *events.Pending
	edges   chan gesture.Edge
	drops   atomic.Uint32
	clock   clockRef

	button *gpiocdev.Line
	reed   *gpiocdev.Line
	motion *gpiocdev.Line
}

// NewRealSource requests the button, reed and motion interrupt lines.
func NewRealSource(l Lines, p *events.Pending) (*RealSource, error) {
	s := &RealSource{
		pending: p,
		edges:   make(chan gesture.Edge, EdgeBuffer),
	}
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		return nil, fmt.Errorf("read monotonic clock: %w", err)
	}
	s.clock = clockRef{wall: time.Now(), mono: time.Duration(ts.Nano())}

	buttonOpts := []gpiocdev.LineReqOption{
		gpiocdev.AsInput,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(s.onButton),
	}
	if l.ButtonActiveLow {
		buttonOpts = append(buttonOpts, gpiocdev.AsActiveLow, gpiocdev.WithPullUp)
	} else {
		buttonOpts = append(buttonOpts, gpiocdev.WithPullDown)
	}
	if l.Debounce > 0 {
		buttonOpts = append(buttonOpts, gpiocdev.WithDebounce(l.Debounce))
	}

	var err error
	s.button, err = gpiocdev.RequestLine(l.Chip, l.Button, buttonOpts...)
	if err != nil {
		return nil, fmt.Errorf("request button pin %d: %w", l.Button, err)
	}

	if l.Reed >= 0 {
		reedOpts := []gpiocdev.LineReqOption{
			gpiocdev.AsInput,
			gpiocdev.WithBothEdges,
			gpiocdev.WithEventHandler(s.onKind(events.ReedSwitch)),
		}
		if l.Debounce > 0 {
			reedOpts = append(reedOpts, gpiocdev.WithDebounce(l.Debounce))
		}
		s.reed, err = gpiocdev.RequestLine(l.Chip, l.Reed, reedOpts...)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("request reed pin %d: %w", l.Reed, err)
		}
	}

	// The accelerometer drives its INT pin high on a transient.
	s.motion, err = gpiocdev.RequestLine(l.Chip, l.MotionInt,
		gpiocdev.AsInput,
		gpiocdev.WithPullDown,
		gpiocdev.WithRisingEdge,
		gpiocdev.WithEventHandler(s.onKind(events.Motion)))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("request motion pin %d: %w", l.MotionInt, err)
	}

	return s, nil
}

func (s *RealSource) onButton(evt gpiocdev.LineEvent) {
	e := gesture.Edge{
		Pressed: evt.Type == gpiocdev.LineEventRisingEdge,
		At:      s.clock.at(evt.Timestamp),
	}
	select {
	case s.edges <- e:
	default:
		s.drops.Add(1)
	}
	s.pending.Set(events.Button)
}

func (s *RealSource) onKind(k events.Kind) gpiocdev.EventHandler {
	return func(gpiocdev.LineEvent) {
		s.pending.Set(k)
	}
}

// Edges delivers button edges.
func (s *RealSource) Edges() <-chan gesture.Edge {
	return s.edges
}

// Dropped returns the number of button edges lost to a full channel.
func (s *RealSource) Dropped() uint32 {
	return s.drops.Load()
}

// Levels returns the current logical levels of the button and reed lines.
func (s *RealSource) Levels() (button, reed bool, err error) {
	b, err := s.button.Value()
	if err != nil {
		return false, false, fmt.Errorf("read button pin: %w", err)
	}
	if s.reed == nil {
		return b == 1, false, nil
	}
	r, err := s.reed.Value()
	if err != nil {
		return false, false, fmt.Errorf("read reed pin: %w", err)
	}
	return b == 1, r == 1, nil
}

// Close releases GPIO resources.
func (s *RealSource) Close() error {
	var errs []error
	for name, l := range map[string]*gpiocdev.Line{"button": s.button, "reed": s.reed, "motion": s.motion} {
		if l == nil {
			continue
		}
		if err := l.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// RealIndicator drives an LED on an output line.
type RealIndicator struct {
	line *gpiocdev.Line
}

// NewRealIndicator requests the LED line as an output, initially off.
func NewRealIndicator(l Lines) (*RealIndicator, error) {
	if l.LED < 0 {
		return nil, ErrNoLED
	}
	line, err := gpiocdev.RequestLine(l.Chip, l.LED, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request led pin %d: %w", l.LED, err)
	}
	return &RealIndicator{line: line}, nil
}

// Set switches the LED.
func (i *RealIndicator) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := i.line.SetValue(v); err != nil {
		return fmt.Errorf("set led: %w", err)
	}
	return nil
}

// Close turns the LED off and releases the line.
func (i *RealIndicator) Close() error {
	var errs []error
	if err := i.line.SetValue(0); err != nil {
		errs = append(errs, fmt.Errorf("clear led: %w", err))
	}
	if err := i.line.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close led pin: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
