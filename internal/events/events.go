// Package events holds the pending-interrupt bitmask shared between interrupt
// origins and the dispatch loop.
//
// Origins only ever Set bits; the dispatch loop only ever Clears them. Every
// operation is a single atomic access, so a Set racing a Clear of a different
// kind is never lost.
package events

import (
	"strings"
	"sync/atomic"
)

// Kind identifies one class of interrupt.
type Kind uint32

const (
	RTCTick    Kind = 1 << iota // periodic RTC alarm
	Button                      // button edge
	ReedSwitch                  // reed switch transition
	Motion                      // accelerometer transient detection
)

// Order is the fixed priority in which the dispatch loop handles kinds.
var Order = [...]Kind{RTCTick, Button, ReedSwitch, Motion}

func (k Kind) String() string {
	switch k {
	case RTCTick:
		return "RTC_TICK"
	case Button:
		return "BUTTON"
	case ReedSwitch:
		return "REED_SWITCH"
	case Motion:
		return "MOTION"
	}
	return "UNKNOWN"
}

// Mask is a snapshot of the pending bitmask.
type Mask uint32

// Has reports whether kind k is set in the mask.
func (m Mask) Has(k Kind) bool {
	return uint32(m)&uint32(k) == uint32(k)
}

// Kinds returns the set kinds in dispatch order.
func (m Mask) Kinds() []Kind {
	var out []Kind
	for _, k := range Order {
		if m.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

func (m Mask) String() string {
	if m == 0 {
		return "none"
	}
	kinds := m.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = k.String()
	}
	return strings.Join(names, "|")
}

// Pending is the process-wide pending event bitmask.
type Pending struct {
	bits atomic.Uint32
	wake chan struct{}
}

// New returns an empty bitmask.
func New() *Pending {
	return &Pending{wake: make(chan struct{}, 1)}
}

// Set marks kind k pending and wakes any waiter. Safe to call from any goroutine,
// never blocks.
func (p *Pending) Set(k Kind) {
	p.bits.Or(uint32(k))
	select {
	case p.wake <- struct{}{}:
	default:
		// a wakeup is already queued
	}
}

// Peek returns the current bitmask without modifying it.
func (p *Pending) Peek() Mask {
	return Mask(p.bits.Load())
}

// Clear removes exactly kind k from the bitmask.
func (p *Pending) Clear(k Kind) {
	p.bits.And(^uint32(k))
}

// IsEmpty reports whether no kind is pending.
func (p *Pending) IsEmpty() bool {
	return p.bits.Load() == 0
}

// Wake is signalled after every Set. A receive may be spurious: a stale token
// can remain after the bits it announced were already handled.
func (p *Pending) Wake() <-chan struct{} {
	return p.wake
}
