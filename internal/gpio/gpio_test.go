package gpio

import (
	"testing"
	"time"
)

func TestClockRefMapsKernelTimestamps(t *testing.T) {
	wall := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := clockRef{wall: wall, mono: 10 * time.Second}

	if got := c.at(10*time.Second + 30*time.Millisecond); !got.Equal(wall.Add(30 * time.Millisecond)) {
		t.Errorf("later event: got %v", got)
	}
	// Events queued by the kernel before the source was opened land in the past.
	if got := c.at(9 * time.Second); !got.Equal(wall.Add(-time.Second)) {
		t.Errorf("earlier event: got %v", got)
	}
}
