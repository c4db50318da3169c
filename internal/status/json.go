package status

import (
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/sweeney/vibration-sensor/internal/gesture"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string         `json:"event,omitempty"`
	Reason        string         `json:"reason,omitempty"`
	Version       string         `json:"version"`
	Device        string         `json:"device"`
	State         string         `json:"state"`
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     string         `json:"start_time"`
	Timestamp     string         `json:"timestamp"`
	MQTT          MQTTStatus     `json:"mqtt"`
	Interrupts    InterruptsJSON `json:"interrupt_counts"`
	Gestures      map[string]int `json:"gestures"`
	LastGesture   string         `json:"last_gesture,omitempty"`
	Samples       SamplesJSON    `json:"samples"`
	Errors        ErrorsJSON     `json:"errors"`
	Network       *NetworkJSON   `json:"network,omitempty"`
	Config        ConfigJSON     `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// InterruptsJSON counts handled interrupt kinds.
type InterruptsJSON struct {
	RTCTick      int    `json:"rtc_tick"`
	Button       int    `json:"button"`
	ReedSwitch   int    `json:"reed_switch"`
	Motion       int    `json:"motion"`
	Wakes        int    `json:"wakes"`
	DroppedEdges uint32 `json:"dropped_edges"`
}

// SamplesJSON reports transmit gate activity.
type SamplesJSON struct {
	Armed       int         `json:"armed"`
	Overwritten int         `json:"overwritten"`
	Sent        int         `json:"sent"`
	Last        *SampleJSON `json:"last,omitempty"`
}

// SampleJSON is the last sent sample, decoded and as wire bytes.
type SampleJSON struct {
	EventID int    `json:"event_id"`
	X       int16  `json:"x"`
	Y       int16  `json:"y"`
	Z       int16  `json:"z"`
	Hex     string `json:"hex"`
	SentAt  string `json:"sent_at"`
}

// ErrorsJSON counts capability errors.
type ErrorsJSON struct {
	Sensor    int    `json:"sensor"`
	Transport int    `json:"transport"`
	Other     int    `json:"other"`
	Last      string `json:"last,omitempty"`
	LastAt    string `json:"last_at,omitempty"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Broker         string `json:"broker"`
	HTTPPort       string `json:"http_port"`
	HeartbeatMs    int64  `json:"heartbeat_ms"`
	RTCIntervalMs  int64  `json:"rtc_interval_ms"`
	DebounceMs     int64  `json:"debounce_ms"`
	QuietPeriodMs  int64  `json:"quiet_period_ms"`
	MaxPresses     int    `json:"max_presses"`
	GatePolicy     string `json:"gate_policy"`
	GateCapacity   int    `json:"gate_capacity"`
	ResetMode      string `json:"reset_mode"`
	AccelThreshold uint8  `json:"accel_threshold"`
	AccelCount     uint8  `json:"accel_count"`
}

func buildInner(snap Snapshot) StatusInner {
	gestures := make(map[string]int, len(snap.Gestures))
	for g, n := range snap.Gestures {
		gestures[gesture.Gesture(g).String()] = n
	}

	inner := StatusInner{
		Version:       snap.Config.Version,
		Device:        snap.Config.DeviceID,
		State:         snap.State.String(),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Interrupts: InterruptsJSON{
			RTCTick:      snap.Counts.RTCTick,
			Button:       snap.Counts.Button,
			ReedSwitch:   snap.Counts.ReedSwitch,
			Motion:       snap.Counts.Motion,
			Wakes:        snap.Counts.Wakes,
			DroppedEdges: snap.DroppedEdges,
		},
		Gestures: gestures,
		Samples: SamplesJSON{
			Armed:       snap.Counts.Armed,
			Overwritten: snap.Counts.Overwritten,
			Sent:        snap.Counts.Sent,
		},
		Errors: ErrorsJSON{
			Sensor:    snap.Counts.SensorErrors,
			Transport: snap.Counts.TransportErrors,
			Other:     snap.Counts.OtherErrors,
			Last:      snap.LastError,
		},
		Config: ConfigJSON{
			Broker:         snap.Config.Broker,
			HTTPPort:       snap.Config.HTTPPort,
			HeartbeatMs:    snap.Config.HeartbeatMs,
			RTCIntervalMs:  snap.Config.RTCIntervalMs,
			DebounceMs:     snap.Config.DebounceMs,
			QuietPeriodMs:  snap.Config.QuietPeriodMs,
			MaxPresses:     snap.Config.MaxPresses,
			GatePolicy:     snap.Config.GatePolicy,
			GateCapacity:   snap.Config.GateCapacity,
			ResetMode:      snap.Config.ResetMode,
			AccelThreshold: snap.Config.AccelThreshold,
			AccelCount:     snap.Config.AccelCount,
		},
	}
	if !snap.LastGestureAt.IsZero() {
		inner.LastGesture = snap.LastGesture.String()
	}
	if !snap.LastErrorAt.IsZero() {
		inner.Errors.LastAt = snap.LastErrorAt.UTC().Format(time.RFC3339)
	}
	if snap.HasSample() {
		s := snap.LastSample
		r := s.Encode()
		inner.Samples.Last = &SampleJSON{
			EventID: int(s.EventID),
			X:       s.X,
			Y:       s.Y,
			Z:       s.Z,
			Hex:     hex.EncodeToString(r[:]),
			SentAt:  snap.LastSentAt.UTC().Format(time.RFC3339),
		}
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
