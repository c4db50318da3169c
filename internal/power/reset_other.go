//go:build !linux

package power

// Reboot is not available on non-Linux platforms.
type Reboot struct{}

// Reset is not implemented on non-Linux platforms.
func (Reboot) Reset() error { return errUnsupported }

// Reexec is not available on non-Linux platforms.
type Reexec struct{}

// Reset is not implemented on non-Linux platforms.
func (Reexec) Reset() error { return errUnsupported }
