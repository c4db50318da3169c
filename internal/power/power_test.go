package power

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/vibration-sensor/internal/events"
)

func TestSuspendWokenBySet(t *testing.T) {
	p := events.New()
	w := NewInterruptWaiter(p)

	done := make(chan error, 1)
	go func() { done <- w.Suspend(context.Background()) }()

	select {
	case <-done:
		t.Fatal("Suspend returned before any interrupt")
	case <-time.After(20 * time.Millisecond):
	}

	p.Set(events.Motion)
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Suspend not woken by Set")
	}
}

func TestSuspendSetBeforeCallIsNotLost(t *testing.T) {
	p := events.New()
	w := NewInterruptWaiter(p)
	p.Set(events.Button) // lands between the empty check and Suspend

	done := make(chan error, 1)
	go func() { done <- w.Suspend(context.Background()) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Suspend slept through an interrupt that had already fired")
	}
}

func TestSuspendCancelled(t *testing.T) {
	w := NewInterruptWaiter(events.New())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := w.Suspend(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("got %v, want context.Canceled", err)
	}
}

func TestNewResetter(t *testing.T) {
	cases := map[Mode]Resetter{
		ModeReboot: Reboot{},
		ModeReexec: Reexec{},
		ModeExit:   Exit{Code: ExitCode},
	}
	for mode, want := range cases {
		got, err := NewResetter(mode)
		if err != nil {
			t.Errorf("NewResetter(%q): unexpected error: %v", mode, err)
			continue
		}
		if got != want {
			t.Errorf("NewResetter(%q): got %#v, want %#v", mode, got, want)
		}
	}
	if _, err := NewResetter("halt"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestFakeResetter(t *testing.T) {
	f := &FakeResetter{}
	if err := f.Reset(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	f.Err = errors.New("simulated error")
	if err := f.Reset(); err == nil {
		t.Error("expected error")
	}
	if f.Calls != 2 {
		t.Errorf("Calls: got %d, want 2", f.Calls)
	}
}
