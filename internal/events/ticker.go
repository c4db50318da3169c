package events

import (
	"context"
	"time"
)

// RunTicker acts as the RTC interrupt origin: it sets RTCTick every interval
// until ctx is done. A non-positive interval disables the tick and returns
// immediately.
func RunTicker(ctx context.Context, p *Pending, interval time.Duration) {
	if interval <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			p.Set(RTCTick)
		}
	}
}
