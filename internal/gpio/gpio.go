// Package gpio is the interrupt origin for the button, reed switch and
// accelerometer interrupt lines, and drives the busy LED.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"errors"
	"time"

	"github.com/sweeney/vibration-sensor/internal/gesture"
)

// Source turns line edges into pending event bits and button edges.
type Source interface {
	// Edges delivers every button level change, in order.
	Edges() <-chan gesture.Edge

	// Dropped returns how many button edges were discarded because the
	// consumer fell behind.
	Dropped() uint32

	// Close releases GPIO resources.
	Close() error
}

// Lines selects the GPIO offsets on Chip.
type Lines struct {
	Chip            string
	Button          int
	Reed            int // negative disables
	MotionInt       int
	LED             int // negative disables
	ButtonActiveLow bool
	Debounce        time.Duration // applied in the kernel to button and reed lines
}

// ErrNoLED is returned when the LED line is disabled.
var ErrNoLED = errors.New("gpio: led line disabled")

// Pin definitions (BCM numbering)
const (
	DefaultPinButton = 17
	DefaultPinReed   = 27
	DefaultPinMotion = 22
	DefaultPinLED    = 23
)

// EdgeBuffer is the capacity of the button edge channel.
const EdgeBuffer = 32

// clockRef maps kernel event timestamps (CLOCK_MONOTONIC) onto time.Time
// values comparable with time.Now.
type clockRef struct {
	wall time.Time
	mono time.Duration
}

func (c clockRef) at(ts time.Duration) time.Time {
	return c.wall.Add(ts - c.mono)
}
