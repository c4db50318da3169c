package gpio

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/vibration-sensor/internal/events"
)

func TestFakeSourcePressSetsButton(t *testing.T) {
	p := events.New()
	f := NewFakeSource(p)
	at := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	f.Press(at)
	if !p.Peek().Has(events.Button) {
		t.Error("press should set BUTTON")
	}
	select {
	case e := <-f.Edges():
		if !e.Pressed || !e.At.Equal(at) {
			t.Errorf("unexpected edge: %+v", e)
		}
	default:
		t.Fatal("press should queue an edge")
	}
}

func TestFakeSourceTap(t *testing.T) {
	p := events.New()
	f := NewFakeSource(p)
	start := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	f.Tap(2, start, 200*time.Millisecond)
	want := []struct {
		pressed bool
		at      time.Duration
	}{
		{true, 0},
		{false, 100 * time.Millisecond},
		{true, 200 * time.Millisecond},
		{false, 300 * time.Millisecond},
	}
	for i, w := range want {
		e := <-f.Edges()
		if e.Pressed != w.pressed || !e.At.Equal(start.Add(w.at)) {
			t.Errorf("edge %d: got %+v, want pressed=%v at +%v", i, e, w.pressed, w.at)
		}
	}
}

func TestFakeSourceOtherKinds(t *testing.T) {
	p := events.New()
	f := NewFakeSource(p)
	f.Motion()
	f.Reed()
	f.Tick()
	want := events.Mask(events.Motion | events.ReedSwitch | events.RTCTick)
	if p.Peek() != want {
		t.Errorf("got %v, want %v", p.Peek(), want)
	}
	select {
	case e := <-f.Edges():
		t.Errorf("non-button interrupts should not queue edges, got %+v", e)
	default:
	}
}

func TestFakeSourceDropsWhenFull(t *testing.T) {
	f := NewFakeSource(events.New())
	now := time.Now()
	for i := 0; i < EdgeBuffer+3; i++ {
		f.Press(now)
	}
	if f.Dropped() != 3 {
		t.Errorf("Dropped: got %d, want 3", f.Dropped())
	}
}

func TestFakeSourceClose(t *testing.T) {
	f := NewFakeSource(events.New())
	if f.Closed {
		t.Error("should not be closed initially")
	}
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}
}

func TestFakeIndicator(t *testing.T) {
	ind := NewFakeIndicator()
	if ind.On() {
		t.Error("indicator should start off")
	}
	ind.Set(true)
	if !ind.On() {
		t.Error("indicator should be on")
	}
	ind.Set(false)
	got := ind.States()
	if len(got) != 2 || !got[0] || got[1] {
		t.Errorf("States: got %v, want [true false]", got)
	}

	ind.SetError = errors.New("simulated error")
	if err := ind.Set(true); err == nil {
		t.Error("expected error")
	}
}
