package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/vibration-sensor/internal/accel"
	"github.com/sweeney/vibration-sensor/internal/gesture"
	"github.com/sweeney/vibration-sensor/internal/gpio"
)

// Config is the full sensor configuration.
type Config struct {
	Device DeviceConfig `toml:"device" yaml:"device"`
	MQTT   MQTTConfig   `toml:"mqtt" yaml:"mqtt"`
	GPIO   GPIOConfig   `toml:"gpio" yaml:"gpio"`
	Button ButtonConfig `toml:"button" yaml:"button"`
	Accel  AccelConfig  `toml:"accel" yaml:"accel"`
	Loop   LoopConfig   `toml:"loop" yaml:"loop"`
	HTTP   HTTPConfig   `toml:"http" yaml:"http"`
	Reset  ResetConfig  `toml:"reset" yaml:"reset"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

type DeviceConfig struct {
	ID string `toml:"id" yaml:"id"`
}

type MQTTConfig struct {
	Broker      string   `toml:"broker" yaml:"broker"`
	ClientID    string   `toml:"client_id" yaml:"client_id"`
	Topic       string   `toml:"topic" yaml:"topic"`
	TopicSystem string   `toml:"topic_system" yaml:"topic_system"`
	QoS         int      `toml:"qos" yaml:"qos"`
	Timeout     Duration `toml:"timeout" yaml:"timeout"`
}

// GPIOConfig names the character device and line offsets.
type GPIOConfig struct {
	Chip            string   `toml:"chip" yaml:"chip"`
	Button          int      `toml:"button" yaml:"button"`
	Reed            int      `toml:"reed" yaml:"reed"`
	Motion          int      `toml:"motion" yaml:"motion"`
	LED             int      `toml:"led" yaml:"led"`
	ButtonActiveLow bool     `toml:"button_active_low" yaml:"button_active_low"`
	Debounce        Duration `toml:"debounce" yaml:"debounce"`
}

type ButtonConfig struct {
	Debounce    Duration `toml:"debounce" yaml:"debounce"`
	QuietPeriod Duration `toml:"quiet_period" yaml:"quiet_period"`
	MaxPresses  int      `toml:"max_presses" yaml:"max_presses"`
	EventID     int      `toml:"event_id" yaml:"event_id"`
}

// AccelConfig locates the accelerometer. Threshold and Count describe the
// transient interrupt the sensor is set up with; they are logged and reported
// in status but not written to the device.
type AccelConfig struct {
	SPI       string `toml:"spi" yaml:"spi"`
	CS        string `toml:"cs" yaml:"cs"`
	Threshold uint8  `toml:"threshold" yaml:"threshold"`
	Count     uint8  `toml:"count" yaml:"count"`
}

type LoopConfig struct {
	RTCInterval  Duration `toml:"rtc_interval" yaml:"rtc_interval"`
	GatePolicy   string   `toml:"gate_policy" yaml:"gate_policy"`
	GateCapacity int      `toml:"gate_capacity" yaml:"gate_capacity"`
	Heartbeat    Duration `toml:"heartbeat" yaml:"heartbeat"`
}

type HTTPConfig struct {
	Addr       string   `toml:"addr" yaml:"addr"`
	WSInterval Duration `toml:"ws_interval" yaml:"ws_interval"`
}

type ResetConfig struct {
	Mode string `toml:"mode" yaml:"mode"`
}

type LogConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

// Format is a configuration file syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// Default returns the built-in configuration.
func Default() *Config {
	btn := gesture.DefaultConfig()
	return &Config{
		Device: DeviceConfig{ID: "vibration-sensor"},
		MQTT: MQTTConfig{
			Broker:      "tcp://localhost:1883",
			ClientID:    "vibration-sensor",
			Topic:       "sensor/vibration/events",
			TopicSystem: "sensor/vibration/system",
			QoS:         0,
			Timeout:     Duration{5 * time.Second},
		},
		GPIO: GPIOConfig{
			Chip:            "gpiochip0",
			Button:          gpio.DefaultPinButton,
			Reed:            gpio.DefaultPinReed,
			Motion:          gpio.DefaultPinMotion,
			LED:             gpio.DefaultPinLED,
			ButtonActiveLow: true,
			Debounce:        Duration{5 * time.Millisecond},
		},
		Button: ButtonConfig{
			Debounce:    Duration{btn.Debounce},
			QuietPeriod: Duration{btn.QuietPeriod},
			MaxPresses:  btn.MaxPresses,
			EventID:     1,
		},
		Accel: AccelConfig{
			SPI:       "/dev/spidev0.0",
			CS:        "GPIO8",
			Threshold: accel.DefaultTransient.Threshold,
			Count:     accel.DefaultTransient.Count,
		},
		Loop: LoopConfig{
			RTCInterval:  Duration{time.Hour},
			GatePolicy:   "overwrite",
			GateCapacity: 1,
			Heartbeat:    Duration{15 * time.Minute},
		},
		HTTP: HTTPConfig{
			Addr:       ":80",
			WSInterval: Duration{time.Second},
		},
		Reset: ResetConfig{Mode: "exit"},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// LoadFile reads path, choosing the syntax from its extension. A missing file
// yields the defaults.
func LoadFile(path string) (*Config, error) {
	format, err := formatFor(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			applyEnvOverrides(cfg)
			return cfg, cfg.Validate()
		}
		return nil, err
	}
	defer f.Close()
	return Load(f, format)
}

// Load decodes r over the defaults, applies environment overrides and
// validates.
func Load(r io.Reader, format Format) (*Config, error) {
	cfg := Default()
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode toml: %w", err)
		}
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(cfg); err != nil && err != io.EOF {
			return nil, fmt.Errorf("decode yaml: %w", err)
		}
	default:
		return nil, &Error{Field: "format", Msg: fmt.Sprintf("unsupported %q", format)}
	}
	applyEnvOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func formatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", &Error{Field: "path", Msg: fmt.Sprintf("cannot tell format of %q", path)}
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VIBRATION_MQTT_BROKER"); v != "" {
		cfg.MQTT.Broker = v
	}
	if v := os.Getenv("VIBRATION_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}
