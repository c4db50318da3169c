// Package gate holds samples between the handler that produced them and the
// hand-off to the transport.
package gate

import (
	"fmt"

	"github.com/sweeney/vibration-sensor/internal/motion"
)

// Policy decides what happens when a sample is armed before the previous one
// was taken.
type Policy string

const (
	// Overwrite keeps a single slot: the newest sample replaces an unsent one.
	Overwrite Policy = "overwrite"
	// Queue keeps up to the gate's capacity and sends all of them in order,
	// dropping the oldest when full.
	Queue Policy = "queue"
)

// ParsePolicy validates a policy name.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case Overwrite, Queue:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown gate policy %q (want %q or %q)", s, Overwrite, Queue)
}

// Gate is the transmit gate. It is owned by the dispatch loop and is not safe
// for concurrent use.
type Gate struct {
	policy Policy
	slots  *ring
}

// New creates a gate. Overwrite always has capacity 1; for Queue a capacity
// below 1 is raised to 1.
func New(policy Policy, capacity int) *Gate {
	if policy != Queue || capacity < 1 {
		capacity = 1
	}
	return &Gate{policy: policy, slots: newRing(capacity)}
}

// Policy returns the configured policy.
func (g *Gate) Policy() Policy {
	return g.policy
}

// Arm stores s for sending. It reports whether an unsent sample was discarded
// to make room.
func (g *Gate) Arm(s motion.Sample) (dropped bool) {
	return g.slots.push(s)
}

// TryTake returns the oldest armed sample and removes it. It returns false
// when nothing is armed.
func (g *Gate) TryTake() (motion.Sample, bool) {
	return g.slots.pop()
}

// Armed reports whether a sample is waiting.
func (g *Gate) Armed() bool {
	return g.slots.len() > 0
}

// Len returns the number of waiting samples.
func (g *Gate) Len() int {
	return g.slots.len()
}
