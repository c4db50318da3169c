// Package power provides the suspend-until-interrupt and device reset
// capabilities used around the dispatch loop.
package power

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sweeney/vibration-sensor/internal/events"
)

// Suspender blocks until an interrupt may have arrived.
type Suspender interface {
	Suspend(ctx context.Context) error
}

// InterruptWaiter suspends the calling goroutine on the pending bitmask's wake
// channel. A Set that lands between the caller's empty check and Suspend leaves
// a token queued, so the wakeup is never lost.
type InterruptWaiter struct {
	pending *events.Pending
}

// NewInterruptWaiter creates a Suspender woken by p.
func NewInterruptWaiter(p *events.Pending) *InterruptWaiter {
	return &InterruptWaiter{pending: p}
}

// Suspend waits for the next Set or for ctx to end.
func (w *InterruptWaiter) Suspend(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-w.pending.Wake():
		return nil
	}
}

// Resetter restarts the device. A successful Reset normally does not return.
type Resetter interface {
	Reset() error
}

// Mode selects how a reset is carried out.
type Mode string

const (
	ModeReboot Mode = "reboot" // reboot(2) the whole board
	ModeReexec Mode = "reexec" // replace the process image with a fresh copy
	ModeExit   Mode = "exit"   // exit and let the supervisor restart us
)

// ExitCode is the status used by ModeExit (EX_TEMPFAIL).
const ExitCode = 75

var errUnsupported = errors.New("power: reset mode not supported on this platform")

// NewResetter returns the Resetter for mode.
func NewResetter(mode Mode) (Resetter, error) {
	switch mode {
	case ModeReboot:
		return Reboot{}, nil
	case ModeReexec:
		return Reexec{}, nil
	case ModeExit:
		return Exit{Code: ExitCode}, nil
	}
	return nil, fmt.Errorf("unknown reset mode %q", mode)
}

// Exit terminates the process so a supervisor (systemd Restart=) starts it again.
type Exit struct {
	Code int
}

// Reset exits the process.
func (e Exit) Reset() error {
	os.Exit(e.Code)
	return nil
}

// FakeResetter records resets for tests.
type FakeResetter struct {
	Calls int
	Err   error
}

// Reset records the call and returns Err.
func (f *FakeResetter) Reset() error {
	f.Calls++
	return f.Err
}
