package gesture

import (
	"context"
	"fmt"
	"time"
)

// Indicator is the visual busy signal shown while presses are being counted.
type Indicator interface {
	Set(on bool) error
}

// Detector runs one counting window per Detect call, reading edges from the
// interrupt origin.
type Detector struct {
	cfg   Config
	edges <-chan Edge
	ind   Indicator
	now   func() time.Time
}

// NewDetector creates a detector reading from edges. ind may be nil.
func NewDetector(cfg Config, edges <-chan Edge, ind Indicator) *Detector {
	return &Detector{
		cfg:   cfg,
		edges: edges,
		ind:   ind,
		now:   time.Now,
	}
}

// Detect counts presses until the quiet period elapses, the press ceiling is
// reached, or ctx is done, and returns the classified gesture. A cancelled
// window yields NoPress.
//
// Edges still queued when the window ends are discarded. The indicator is on
// for the whole window and is switched off on every exit path. Indicator
// failures do not affect counting; the first one is returned alongside the
// gesture.
func (d *Detector) Detect(ctx context.Context) (g Gesture, err error) {
	if d.ind != nil {
		if ierr := d.ind.Set(true); ierr != nil {
			err = fmt.Errorf("indicator on: %w", ierr)
		}
		defer func() {
			if ierr := d.ind.Set(false); ierr != nil && err == nil {
				err = fmt.Errorf("indicator off: %w", ierr)
			}
		}()
	}

	g = d.count(ctx)
	d.discard()
	return g, err
}

// count runs one window to completion.
func (d *Detector) count(ctx context.Context) Gesture {
	w := NewWindow(d.cfg, d.now())
	for {
		now := d.now()
		if w.Expired(now) {
			return w.Result()
		}
		timer := time.NewTimer(w.Deadline().Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return NoPress
		case e, ok := <-d.edges:
			timer.Stop()
			if !ok {
				return w.Result()
			}
			if w.Observe(e) {
				return w.Result()
			}
		case <-timer.C:
			return w.Result()
		}
	}
}

// discard drops edges still queued when a window ends, so presses past the
// ceiling or racing the quiet timer never join the next gesture.
func (d *Detector) discard() {
	for {
		select {
		case _, ok := <-d.edges:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
