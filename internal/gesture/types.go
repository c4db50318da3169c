// Package gesture counts button presses inside a bounded window and classifies
// the result.
//
// Window is pure: it has no channels, timers or hardware, and time is always
// passed in. Detector drives a Window from a live edge channel.
package gesture

import "time"

// Gesture is the classified outcome of one counting window.
type Gesture int

const (
	NoPress Gesture = iota
	OnePress
	TwoPresses
	ThreePresses
	FourPresses
	FivePresses
)

func (g Gesture) String() string {
	switch g {
	case NoPress:
		return "NO_PRESS"
	case OnePress:
		return "ONE_PRESS"
	case TwoPresses:
		return "TWO_PRESSES"
	case ThreePresses:
		return "THREE_PRESSES"
	case FourPresses:
		return "FOUR_PRESSES"
	case FivePresses:
		return "FIVE_PRESSES"
	}
	return "UNKNOWN"
}

// Classify maps a press count to a gesture. Counts with no mapping are NoPress.
func Classify(count int) Gesture {
	if count < 0 || count > int(FivePresses) {
		return NoPress
	}
	return Gesture(count)
}

// Edge is a button level change as seen by the interrupt origin.
type Edge struct {
	Pressed bool      // true = button now down
	At      time.Time // when the edge was observed
}

// Config controls window timing.
type Config struct {
	// Debounce is the minimum spacing between counted presses.
	Debounce time.Duration
	// QuietPeriod ends the window when no edge has been accepted for this long.
	QuietPeriod time.Duration
	// MaxPresses ends the window as soon as this many presses are counted.
	MaxPresses int
}

// DefaultConfig returns the timing used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Debounce:    50 * time.Millisecond,
		QuietPeriod: 800 * time.Millisecond,
		MaxPresses:  int(FivePresses),
	}
}
