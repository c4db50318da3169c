package gesture

import "time"

// Window counts presses for a single gesture.
type Window struct {
	cfg       Config
	opened    time.Time
	lastEdge  time.Time // last accepted edge
	lastPress time.Time // last counted press
	accepted  bool      // whether any edge has been accepted yet
	pressed   bool      // debounced level
	count     int
	done      bool
}

// NewWindow opens a counting window at openedAt. The button is assumed released.
func NewWindow(cfg Config, openedAt time.Time) *Window {
	return &Window{
		cfg:    cfg,
		opened: openedAt,
	}
}

// Observe feeds one edge into the window and reports whether the window is now
// finalized. Edges that repeat the current level are ignored, as are presses
// within Debounce of the previous counted press. Edges more than QuietPeriod
// older than the window belong to an earlier gesture and are dropped.
// Once finalized, further edges are ignored.
func (w *Window) Observe(e Edge) bool {
	if w.done {
		return true
	}
	if e.At.Before(w.opened.Add(-w.cfg.QuietPeriod)) {
		return false
	}
	if e.Pressed == w.pressed {
		return false
	}
	if e.Pressed {
		if w.count > 0 && e.At.Sub(w.lastPress) < w.cfg.Debounce {
			return false
		}
		w.count++
		w.lastPress = e.At
	}

	w.pressed = e.Pressed
	w.lastEdge = e.At
	w.accepted = true
	if e.Pressed && w.cfg.MaxPresses > 0 && w.count >= w.cfg.MaxPresses {
		w.done = true
	}
	return w.done
}

// Deadline is the instant the window closes if no further edge is accepted.
// Edges queued before the window opened never pull it earlier than
// openedAt+QuietPeriod.
func (w *Window) Deadline() time.Time {
	from := w.opened
	if w.accepted && w.lastEdge.After(from) {
		from = w.lastEdge
	}
	return from.Add(w.cfg.QuietPeriod)
}

// Expired reports whether the quiet period has elapsed at now. A window that
// hit the press ceiling is always expired.
func (w *Window) Expired(now time.Time) bool {
	return w.done || !now.Before(w.Deadline())
}

// Count returns the number of presses counted so far.
func (w *Window) Count() int {
	return w.count
}

// Result classifies the current count.
func (w *Window) Result() Gesture {
	return Classify(w.count)
}
