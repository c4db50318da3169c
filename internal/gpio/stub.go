//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/vibration-sensor/internal/events"
	"github.com/sweeney/vibration-sensor/internal/gesture"
)

var errUnsupported = errors.New("gpio: not supported on this platform (requires Linux)")

// RealSource is not available on non-Linux platforms.
type RealSource struct{}

// NewRealSource returns an error on non-Linux platforms.
func NewRealSource(Lines, *events.Pending) (*RealSource, error) {
	return nil, errUnsupported
}

// Edges is not implemented on non-Linux platforms.
func (s *RealSource) Edges() <-chan gesture.Edge { return nil }

// Dropped is not implemented on non-Linux platforms.
func (s *RealSource) Dropped() uint32 { return 0 }

// Levels is not implemented on non-Linux platforms.
func (s *RealSource) Levels() (bool, bool, error) { return false, false, errUnsupported }

// Close is not implemented on non-Linux platforms.
func (s *RealSource) Close() error { return nil }

// RealIndicator is not available on non-Linux platforms.
type RealIndicator struct{}

// NewRealIndicator returns an error on non-Linux platforms.
func NewRealIndicator(Lines) (*RealIndicator, error) {
	return nil, errUnsupported
}

// Set is not implemented on non-Linux platforms.
func (i *RealIndicator) Set(bool) error { return errUnsupported }

// Close is not implemented on non-Linux platforms.
func (i *RealIndicator) Close() error { return nil }
