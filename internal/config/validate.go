package config

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/vibration-sensor/internal/gate"
	"github.com/sweeney/vibration-sensor/internal/power"
)

// Error is a configuration problem. It is fatal at startup.
type Error struct {
	Field string
	Msg   string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("config %s: %s: %v", e.Field, e.Msg, e.Err)
	}
	return fmt.Sprintf("config %s: %s", e.Field, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	switch {
	case c.MQTT.Broker == "":
		return &Error{Field: "mqtt.broker", Msg: "must be set"}
	case c.MQTT.Topic == "":
		return &Error{Field: "mqtt.topic", Msg: "must be set"}
	case c.MQTT.QoS < 0 || c.MQTT.QoS > 2:
		return &Error{Field: "mqtt.qos", Msg: fmt.Sprintf("%d out of range 0..2", c.MQTT.QoS)}
	case c.Button.QuietPeriod.Duration <= 0:
		return &Error{Field: "button.quiet_period", Msg: "must be positive"}
	case c.Button.MaxPresses < 1:
		return &Error{Field: "button.max_presses", Msg: "must be at least 1"}
	case c.Button.EventID < -8 || c.Button.EventID > 7:
		return &Error{Field: "button.event_id", Msg: fmt.Sprintf("%d does not fit a signed nibble", c.Button.EventID)}
	case c.Loop.GateCapacity < 1:
		return &Error{Field: "loop.gate_capacity", Msg: "must be at least 1"}
	}

	if _, err := gate.ParsePolicy(c.Loop.GatePolicy); err != nil {
		return &Error{Field: "loop.gate_policy", Msg: "invalid", Err: err}
	}
	if _, err := power.NewResetter(power.Mode(c.Reset.Mode)); err != nil {
		return &Error{Field: "reset.mode", Msg: "invalid", Err: err}
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return &Error{Field: "log.level", Msg: "invalid", Err: err}
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return &Error{Field: "log.format", Msg: fmt.Sprintf("unknown format %q", c.Log.Format)}
	}
	return nil
}
