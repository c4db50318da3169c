package gate

import "github.com/sweeney/vibration-sensor/internal/motion"

// ring is a fixed-capacity FIFO of samples that overwrites the oldest entry
// when full. Not safe for concurrent use.
type ring struct {
	buf   []motion.Sample
	head  int // next write position
	count int
}

func newRing(capacity int) *ring {
	return &ring{buf: make([]motion.Sample, capacity)}
}

// push appends s and reports whether the oldest entry was overwritten.
func (r *ring) push(s motion.Sample) bool {
	capacity := len(r.buf)
	r.buf[r.head] = s
	r.head = (r.head + 1) % capacity
	if r.count == capacity {
		return true
	}
	r.count++
	return false
}

// pop removes and returns the oldest entry.
func (r *ring) pop() (motion.Sample, bool) {
	if r.count == 0 {
		return motion.Sample{}, false
	}
	capacity := len(r.buf)
	start := (r.head - r.count + capacity) % capacity
	s := r.buf[start]
	r.buf[start] = motion.Sample{}
	r.count--
	return s, true
}

func (r *ring) len() int {
	return r.count
}
