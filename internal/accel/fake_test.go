package accel

import (
	"errors"
	"testing"
)

func TestFakeReaderRead(t *testing.T) {
	f := NewFakeReader([]Sample{{X: 1, Y: 2, Z: 3}, {X: -4, Y: -5, Z: -6}})

	x, y, z, err := f.ReadAcceleration()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if x != 1 || y != 2 || z != 3 {
		t.Errorf("sample 0: got (%d, %d, %d), want (1, 2, 3)", x, y, z)
	}

	x, y, z, _ = f.ReadAcceleration()
	if x != -4 || y != -5 || z != -6 {
		t.Errorf("sample 1: got (%d, %d, %d), want (-4, -5, -6)", x, y, z)
	}

	// Exhausted: repeat last
	x, _, _, _ = f.ReadAcceleration()
	if x != -4 {
		t.Errorf("sample 2 (repeat): got X=%d, want -4", x)
	}
	if f.Reads() != 3 {
		t.Errorf("Reads: got %d, want 3", f.Reads())
	}
}

func TestFakeReaderNoSamples(t *testing.T) {
	f := NewFakeReader(nil)
	if _, _, _, err := f.ReadAcceleration(); err == nil {
		t.Error("expected error with no samples")
	}
}

func TestFakeReaderError(t *testing.T) {
	f := NewFakeReader([]Sample{{X: 1}})
	f.ReadError = errors.New("simulated error")
	_, _, _, err := f.ReadAcceleration()
	if err == nil || err.Error() != "simulated error" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestFakeReaderCloseAndReset(t *testing.T) {
	f := NewFakeReader([]Sample{{X: 1}, {X: 2}})
	f.ReadAcceleration()
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("should be closed after Close()")
	}

	f.Reset()
	if f.Closed || f.Reads() != 0 {
		t.Error("Reset should clear Closed and read count")
	}
	x, _, _, _ := f.ReadAcceleration()
	if x != 1 {
		t.Errorf("after reset: got X=%d, want 1", x)
	}
}
