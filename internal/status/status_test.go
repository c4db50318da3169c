package status

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/vibration-sensor/internal/dispatch"
	"github.com/sweeney/vibration-sensor/internal/events"
	"github.com/sweeney/vibration-sensor/internal/gesture"
	"github.com/sweeney/vibration-sensor/internal/motion"
	"github.com/sweeney/vibration-sensor/internal/mqtt"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// fixedTracker returns a tracker whose clock always reads at.
func fixedTracker(at time.Time, cfg Config) *Tracker {
	tr := NewTracker(start, cfg)
	tr.now = func() time.Time { return at }
	return tr
}

func TestNewTracker(t *testing.T) {
	cfg := Config{Version: "VIBR_v2.0.0", Broker: "tcp://localhost:1883", HTTPPort: ":80"}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.Version != "VIBR_v2.0.0" {
		t.Errorf("Config.Version: got %q", snap.Config.Version)
	}
	if snap.State != dispatch.Idle {
		t.Errorf("State: got %v, want IDLE", snap.State)
	}
	if snap.HasSample() {
		t.Error("expected no sample initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestObserverCounts(t *testing.T) {
	tr := NewTracker(start, Config{})

	tr.Woke()
	tr.Woke()
	tr.Handled(events.RTCTick)
	tr.Handled(events.Button)
	tr.Handled(events.Button)
	tr.Handled(events.ReedSwitch)
	tr.Handled(events.Motion)
	tr.Armed(motion.Sample{}, false)
	tr.Armed(motion.Sample{}, true)
	tr.State(dispatch.Draining)

	snap := tr.Snapshot()
	c := snap.Counts
	if c.Wakes != 2 {
		t.Errorf("Wakes: got %d, want 2", c.Wakes)
	}
	if c.RTCTick != 1 || c.Button != 2 || c.ReedSwitch != 1 || c.Motion != 1 {
		t.Errorf("kind counts: got %+v", c)
	}
	if c.Armed != 2 || c.Overwritten != 1 {
		t.Errorf("Armed/Overwritten: got %d/%d, want 2/1", c.Armed, c.Overwritten)
	}
	if snap.State != dispatch.Draining {
		t.Errorf("State: got %v, want DRAINING", snap.State)
	}
}

func TestGestureRecorded(t *testing.T) {
	at := start.Add(time.Minute)
	tr := fixedTracker(at, Config{})

	tr.Gesture(gesture.TwoPresses)
	tr.Gesture(gesture.TwoPresses)
	tr.Gesture(gesture.OnePress)

	snap := tr.Snapshot()
	if snap.Gestures[gesture.TwoPresses] != 2 {
		t.Errorf("TwoPresses: got %d, want 2", snap.Gestures[gesture.TwoPresses])
	}
	if snap.LastGesture != gesture.OnePress {
		t.Errorf("LastGesture: got %v, want ONE_PRESS", snap.LastGesture)
	}
	if !snap.LastGestureAt.Equal(at) {
		t.Errorf("LastGestureAt: got %v, want %v", snap.LastGestureAt, at)
	}
}

func TestSentRecordsLastSample(t *testing.T) {
	at := start.Add(2 * time.Minute)
	tr := fixedTracker(at, Config{})
	s := motion.Sample{EventID: motion.EventVibration, X: 1000, Y: -2000, Z: 32000}

	tr.Sent(s)

	snap := tr.Snapshot()
	if !snap.HasSample() {
		t.Fatal("expected a sample")
	}
	if snap.LastSample != s {
		t.Errorf("LastSample: got %+v, want %+v", snap.LastSample, s)
	}
	if snap.Counts.Sent != 1 {
		t.Errorf("Sent: got %d, want 1", snap.Counts.Sent)
	}
}

func TestFailedClassifies(t *testing.T) {
	tr := fixedTracker(start.Add(time.Second), Config{})

	tr.Failed(&motion.SensorReadError{Trigger: motion.TriggerMotion, Err: errors.New("spi")})
	tr.Failed(fmt.Errorf("wrapped: %w", &mqtt.TransportError{Op: "send", Err: errors.New("eof")}))
	tr.Failed(errors.New("led gone"))
	tr.Failed(nil)

	snap := tr.Snapshot()
	if snap.Counts.SensorErrors != 1 || snap.Counts.TransportErrors != 1 || snap.Counts.OtherErrors != 1 {
		t.Errorf("error counts: got %+v", snap.Counts)
	}
	if snap.LastError != "led gone" {
		t.Errorf("LastError: got %q, want %q", snap.LastError, "led gone")
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}

	tr.SetMQTTConnected(false)
	if tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=false")
	}
}

func TestSetNetwork(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	if tr.Snapshot().Network != nil {
		t.Error("expected nil Network initially")
	}

	tr.SetNetwork(&NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected"})

	snap := tr.Snapshot()
	if snap.Network == nil {
		t.Fatal("expected non-nil Network")
	}
	if snap.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want %q", snap.Network.IP, "192.168.1.42")
	}
}

func TestSetDroppedEdges(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.SetDroppedEdges(3)
	if got := tr.Snapshot().DroppedEdges; got != 3 {
		t.Errorf("DroppedEdges: got %d, want 3", got)
	}
}

func TestSnapshotUptime(t *testing.T) {
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(15 * time.Minute),
	}

	if snap.Uptime() != 15*time.Minute {
		t.Errorf("Uptime: got %v, want 15m", snap.Uptime())
	}
}

func TestSnapshotNowIsSet(t *testing.T) {
	tr := NewTracker(start, Config{})

	before := time.Now()
	snap := tr.Snapshot()
	after := time.Now()

	if snap.Now.Before(before) || snap.Now.After(after) {
		t.Errorf("Now (%v) not between %v and %v", snap.Now, before, after)
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.Handled(events.Motion)
	tr.Gesture(gesture.TwoPresses)

	snap1 := tr.Snapshot()

	tr.Handled(events.Motion)
	tr.Gesture(gesture.TwoPresses)

	// snap1 should still reflect old state
	if snap1.Counts.Motion != 1 {
		t.Error("snapshot should be a copy; Counts was modified")
	}
	if snap1.Gestures[gesture.TwoPresses] != 1 {
		t.Error("snapshot should be a copy; Gestures was modified")
	}
}

func TestFormatJSON(t *testing.T) {
	snap := Snapshot{
		State:         dispatch.Idle,
		Counts:        Counts{Motion: 5, Button: 2, Wakes: 7, Armed: 3, Overwritten: 1, Sent: 2},
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		LastSample:    motion.Sample{EventID: motion.EventVibration, X: 1000, Y: -2000, Z: 32000},
		LastSentAt:    start.Add(14 * time.Minute),
		Config: Config{
			Version:    "VIBR_v2.0.0",
			Broker:     "tcp://localhost:1883",
			HTTPPort:   ":80",
			GatePolicy: "overwrite",
			MaxPresses: 5,
		},
	}
	snap.Gestures[gesture.TwoPresses] = 2

	data := FormatJSON(snap)

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.State != "IDLE" {
		t.Errorf("State: got %q, want IDLE", parsed.Status.State)
	}
	if parsed.Status.Version != "VIBR_v2.0.0" {
		t.Errorf("Version: got %q", parsed.Status.Version)
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
	if !parsed.Status.MQTT.Connected {
		t.Error("expected MQTT.Connected=true")
	}
	if parsed.Status.Interrupts.Motion != 5 || parsed.Status.Interrupts.Wakes != 7 {
		t.Errorf("Interrupts: got %+v", parsed.Status.Interrupts)
	}
	if parsed.Status.Gestures["TWO_PRESSES"] != 2 {
		t.Errorf("Gestures: got %v", parsed.Status.Gestures)
	}
	if parsed.Status.Samples.Sent != 2 || parsed.Status.Samples.Overwritten != 1 {
		t.Errorf("Samples: got %+v", parsed.Status.Samples)
	}
	last := parsed.Status.Samples.Last
	if last == nil {
		t.Fatal("expected last sample")
	}
	if last.Hex != "0103e8f8307d00" {
		t.Errorf("Last.Hex: got %q, want 0103e8f8307d00", last.Hex)
	}
	if last.Y != -2000 {
		t.Errorf("Last.Y: got %d, want -2000", last.Y)
	}
	if parsed.Status.Config.GatePolicy != "overwrite" {
		t.Errorf("Config.GatePolicy: got %q", parsed.Status.Config.GatePolicy)
	}
	// Event and Reason should be omitted
	if parsed.Status.Event != "" {
		t.Errorf("expected empty Event for web format, got %q", parsed.Status.Event)
	}
	if parsed.Status.Reason != "" {
		t.Errorf("expected empty Reason for web format, got %q", parsed.Status.Reason)
	}
}

func TestFormatJSONNoActivity(t *testing.T) {
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(time.Second),
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(FormatJSON(snap), &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	status := raw["status"].(map[string]interface{})
	if _, exists := status["last_gesture"]; exists {
		t.Error("last_gesture should be omitted before any gesture")
	}
	samples := status["samples"].(map[string]interface{})
	if _, exists := samples["last"]; exists {
		t.Error("samples.last should be omitted before any send")
	}
}

func TestFormatStatusEvent(t *testing.T) {
	snap := Snapshot{
		Counts:        Counts{Motion: 3},
		StartTime:     start,
		Now:           start.Add(15 * time.Minute),
		MQTTConnected: true,
		Config:        Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatStatusEvent(snap, "HEARTBEAT", "")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "HEARTBEAT" {
		t.Errorf("Event: got %q, want HEARTBEAT", parsed.Status.Event)
	}
	if parsed.Status.Reason != "" {
		t.Errorf("Reason: got %q, want empty", parsed.Status.Reason)
	}
	if parsed.Status.Interrupts.Motion != 3 {
		t.Errorf("Interrupts.Motion: got %d, want 3", parsed.Status.Interrupts.Motion)
	}
	if parsed.Status.UptimeSeconds != 900 {
		t.Errorf("UptimeSeconds: got %d, want 900", parsed.Status.UptimeSeconds)
	}
}

func TestFormatStatusEventShutdown(t *testing.T) {
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(30 * time.Minute),
		Config:    Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatStatusEvent(snap, "SHUTDOWN", "RESET")

	var parsed StatusJSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Status.Event != "SHUTDOWN" {
		t.Errorf("Event: got %q, want SHUTDOWN", parsed.Status.Event)
	}
	if parsed.Status.Reason != "RESET" {
		t.Errorf("Reason: got %q, want RESET", parsed.Status.Reason)
	}
}

func TestFormatStatusEventOmitsReasonWhenEmpty(t *testing.T) {
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(time.Second),
	}

	data := FormatStatusEvent(snap, "STARTUP", "")

	// Verify "reason" is not in the raw JSON output
	var raw map[string]interface{}
	json.Unmarshal(data, &raw)
	status := raw["status"].(map[string]interface{})
	if _, exists := status["reason"]; exists {
		t.Error("reason should be omitted when empty")
	}
	if status["event"] != "STARTUP" {
		t.Errorf("event: got %v, want STARTUP", status["event"])
	}
}

func TestFormatJSONWithNetwork(t *testing.T) {
	snap := Snapshot{
		StartTime: start,
		Now:       start.Add(time.Minute),
		Network:   &NetworkInfo{Type: "wifi", IP: "192.168.1.42", Status: "connected", SSID: "MyNet"},
		Config:    Config{Broker: "tcp://localhost:1883"},
	}

	data := FormatJSON(snap)

	var parsed StatusJSON
	json.Unmarshal(data, &parsed)

	if parsed.Status.Network == nil {
		t.Fatal("expected Network in JSON")
	}
	if parsed.Status.Network.IP != "192.168.1.42" {
		t.Errorf("Network.IP: got %q, want 192.168.1.42", parsed.Status.Network.IP)
	}
	if parsed.Status.Network.SSID != "MyNet" {
		t.Errorf("Network.SSID: got %q, want MyNet", parsed.Status.Network.SSID)
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	var wg sync.WaitGroup

	// Writer
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			tr.Handled(events.Motion)
			tr.Sent(motion.Sample{X: int16(i)})
			tr.SetMQTTConnected(i%2 == 0)
			tr.SetNetwork(&NetworkInfo{IP: "1.2.3.4"})
		}
	}()

	// Reader
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			snap := tr.Snapshot()
			_ = FormatJSON(snap)
		}
	}()

	wg.Wait()
}
