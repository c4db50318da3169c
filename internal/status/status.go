// Package status provides a thread-safe status tracker for the vibration
// sensor. The dispatch loop writes to it as its observer; HTTP handlers and
// heartbeat publishing read snapshots.
package status

import (
	"errors"
	"sync"
	"time"

	"github.com/sweeney/vibration-sensor/internal/dispatch"
	"github.com/sweeney/vibration-sensor/internal/events"
	"github.com/sweeney/vibration-sensor/internal/gesture"
	"github.com/sweeney/vibration-sensor/internal/motion"
	"github.com/sweeney/vibration-sensor/internal/mqtt"
)

// NetworkInfo contains network state.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Version        string
	DeviceID       string
	Broker         string
	HTTPPort       string
	HeartbeatMs    int64
	RTCIntervalMs  int64
	DebounceMs     int64
	QuietPeriodMs  int64
	MaxPresses     int
	GatePolicy     string
	GateCapacity   int
	ResetMode      string
	AccelThreshold uint8
	AccelCount     uint8
}

// Counts are running totals since start.
type Counts struct {
	RTCTick    int
	Button     int
	ReedSwitch int
	Motion     int
	Wakes      int

	Armed       int
	Overwritten int
	Sent        int

	SensorErrors    int
	TransportErrors int
	OtherErrors     int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	State    dispatch.State
	Counts   Counts
	Gestures [gesture.FivePresses + 1]int

	LastGesture   gesture.Gesture
	LastGestureAt time.Time

	LastSample   motion.Sample
	LastSentAt   time.Time // zero until the first send
	LastError    string
	LastErrorAt  time.Time
	DroppedEdges uint32

	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// HasSample reports whether any sample has been sent.
func (s Snapshot) HasSample() bool {
	return !s.LastSentAt.IsZero()
}

// Tracker holds mutable daemon state behind an RWMutex. It implements
// dispatch.Observer.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

var _ dispatch.Observer = (*Tracker)(nil)

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now: time.Now,
	}
}

// Woke counts a return from suspend.
func (t *Tracker) Woke() {
	t.mu.Lock()
	t.snap.Counts.Wakes++
	t.mu.Unlock()
}

// Handled counts a cleared interrupt kind.
func (t *Tracker) Handled(k events.Kind) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch k {
	case events.RTCTick:
		t.snap.Counts.RTCTick++
	case events.Button:
		t.snap.Counts.Button++
	case events.ReedSwitch:
		t.snap.Counts.ReedSwitch++
	case events.Motion:
		t.snap.Counts.Motion++
	}
}

// Gesture records a classified button window.
func (t *Tracker) Gesture(g gesture.Gesture) {
	now := t.now()
	t.mu.Lock()
	if g >= 0 && int(g) < len(t.snap.Gestures) {
		t.snap.Gestures[g]++
	}
	t.snap.LastGesture = g
	t.snap.LastGestureAt = now
	t.mu.Unlock()
}

// Armed counts a sample placed in the transmit gate.
func (t *Tracker) Armed(_ motion.Sample, dropped bool) {
	t.mu.Lock()
	t.snap.Counts.Armed++
	if dropped {
		t.snap.Counts.Overwritten++
	}
	t.mu.Unlock()
}

// Sent records a sample handed to the transport.
func (t *Tracker) Sent(s motion.Sample) {
	now := t.now()
	t.mu.Lock()
	t.snap.Counts.Sent++
	t.snap.LastSample = s
	t.snap.LastSentAt = now
	t.mu.Unlock()
}

// Failed classifies and records a capability error.
func (t *Tracker) Failed(err error) {
	if err == nil {
		return
	}
	now := t.now()
	var sre *motion.SensorReadError
	var te *mqtt.TransportError

	t.mu.Lock()
	defer t.mu.Unlock()
	switch {
	case errors.As(err, &sre):
		t.snap.Counts.SensorErrors++
	case errors.As(err, &te):
		t.snap.Counts.TransportErrors++
	default:
		t.snap.Counts.OtherErrors++
	}
	t.snap.LastError = err.Error()
	t.snap.LastErrorAt = now
}

// State records the loop's power state.
func (t *Tracker) State(s dispatch.State) {
	t.mu.Lock()
	t.snap.State = s
	t.mu.Unlock()
}

// SetDroppedEdges records how many button edges the interrupt origin dropped.
func (t *Tracker) SetDroppedEdges(n uint32) {
	t.mu.Lock()
	t.snap.DroppedEdges = n
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
