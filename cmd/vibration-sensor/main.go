// Command vibration-sensor wakes on button, reed switch, RTC and accelerometer
// interrupts, and publishes acceleration records to MQTT.
package main

import (
	"context"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/sweeney/vibration-sensor/internal/accel"
	"github.com/sweeney/vibration-sensor/internal/config"
	"github.com/sweeney/vibration-sensor/internal/dispatch"
	"github.com/sweeney/vibration-sensor/internal/events"
	"github.com/sweeney/vibration-sensor/internal/gate"
	"github.com/sweeney/vibration-sensor/internal/gesture"
	"github.com/sweeney/vibration-sensor/internal/gpio"
	"github.com/sweeney/vibration-sensor/internal/motion"
	"github.com/sweeney/vibration-sensor/internal/mqtt"
	"github.com/sweeney/vibration-sensor/internal/power"
	"github.com/sweeney/vibration-sensor/internal/status"
	"github.com/sweeney/vibration-sensor/internal/web"
)

// version is overridden at link time with -ldflags "-X main.version=...".
var version = "VIBR_v2.0.0"

func main() {
	configPath := flag.String("config", "/etc/vibration-sensor/config.toml", "Config file (.toml, .yaml or .yml)")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	httpAddr := flag.String("http", "", "HTTP status address (overrides config, \"off\" disables)")
	heartbeat := flag.Duration("heartbeat", 0, "Heartbeat interval (overrides config, 0 disables)")
	printState := flag.Bool("print-state", false, "Print one accelerometer reading and the button/reed levels, then exit")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
	applyFlags(cfg, set, *broker, *httpAddr, *heartbeat)

	if err := setupLogging(cfg.Log); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	outcome, err := run(cfg, *printState)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if outcome == dispatch.Reset {
		resetter, err := power.NewResetter(power.Mode(cfg.Reset.Mode))
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
		log.Printf("resetting device (mode=%s)", cfg.Reset.Mode)
		if err := resetter.Reset(); err != nil {
			log.Fatalf("reset failed: %v", err)
		}
	}
}

// applyFlags copies explicitly set flags over the loaded configuration.
func applyFlags(cfg *config.Config, set map[string]bool, broker, httpAddr string, heartbeat time.Duration) {
	if set["broker"] {
		cfg.MQTT.Broker = broker
	}
	if set["http"] {
		if httpAddr == "off" {
			httpAddr = ""
		}
		cfg.HTTP.Addr = httpAddr
	}
	if set["heartbeat"] {
		cfg.Loop.Heartbeat = config.Duration{Duration: heartbeat}
	}
}

func setupLogging(c config.LogConfig) error {
	level, err := log.ParseLevel(c.Level)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	log.SetLevel(level)
	switch c.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	default:
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	return nil
}

// printStateOnce prints one accelerometer reading and the current line levels.
func printStateOnce(sampler *motion.Sampler, source *gpio.RealSource) error {
	s, err := sampler.SampleAndEncode(motion.TriggerMotion)
	if err != nil {
		return err
	}
	button, reed, err := source.Levels()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	r := s.Encode()
	fmt.Printf("X: %d, Y: %d, Z: %d, record: %s\n", s.X, s.Y, s.Z, hex.EncodeToString(r[:]))
	fmt.Printf("BUTTON: %s, REED: %s\n", levelString(button, "PRESSED", "RELEASED"), levelString(reed, "CLOSED", "OPEN"))
	return nil
}

func levelString(v bool, high, low string) string {
	if v {
		return high
	}
	return low
}

func run(cfg *config.Config, printState bool) (dispatch.Outcome, error) {
	// Initialize accelerometer
	sensor, err := accel.NewRealReader(cfg.Accel.SPI, cfg.Accel.CS, accel.Transient{
		Threshold: cfg.Accel.Threshold,
		Count:     cfg.Accel.Count,
	})
	if err != nil {
		return dispatch.Stopped, fmt.Errorf("init accelerometer: %w", err)
	}
	defer sensor.Close()

	sampler := motion.NewSampler(sensor)
	sampler.SetEventID(motion.TriggerButton, motion.EventID(cfg.Button.EventID))

	// Initialize interrupt lines
	pending := events.New()
	lines := gpio.Lines{
		Chip:            cfg.GPIO.Chip,
		Button:          cfg.GPIO.Button,
		Reed:            cfg.GPIO.Reed,
		MotionInt:       cfg.GPIO.Motion,
		LED:             cfg.GPIO.LED,
		ButtonActiveLow: cfg.GPIO.ButtonActiveLow,
		Debounce:        cfg.GPIO.Debounce.Duration,
	}
	source, err := gpio.NewRealSource(lines, pending)
	if err != nil {
		return dispatch.Stopped, fmt.Errorf("init gpio: %w", err)
	}
	defer source.Close()

	// Print state mode
	if printState {
		return dispatch.Stopped, printStateOnce(sampler, source)
	}

	// A missing LED is not fatal; the device just has no busy signal.
	var indicator gesture.Indicator
	if lines.LED >= 0 {
		led, err := gpio.NewRealIndicator(lines)
		if err != nil {
			log.Warnf("led unavailable: %v", err)
		} else {
			defer led.Close()
			indicator = led
		}
	}

	// Initialize MQTT
	transport, err := mqtt.NewRealTransport(mqtt.Options{
		Broker:      cfg.MQTT.Broker,
		ClientID:    cfg.MQTT.ClientID,
		Topic:       cfg.MQTT.Topic,
		TopicSystem: cfg.MQTT.TopicSystem,
		QoS:         byte(cfg.MQTT.QoS),
		Timeout:     cfg.MQTT.Timeout.Duration,
	})
	if err != nil {
		return dispatch.Stopped, fmt.Errorf("init mqtt: %w", err)
	}
	defer transport.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(time.Now(), status.Config{
		Version:        version,
		DeviceID:       cfg.Device.ID,
		Broker:         cfg.MQTT.Broker,
		HTTPPort:       cfg.HTTP.Addr,
		HeartbeatMs:    cfg.Loop.Heartbeat.Milliseconds(),
		RTCIntervalMs:  cfg.Loop.RTCInterval.Milliseconds(),
		DebounceMs:     cfg.Button.Debounce.Milliseconds(),
		QuietPeriodMs:  cfg.Button.QuietPeriod.Milliseconds(),
		MaxPresses:     cfg.Button.MaxPresses,
		GatePolicy:     cfg.Loop.GatePolicy,
		GateCapacity:   cfg.Loop.GateCapacity,
		ResetMode:      cfg.Reset.Mode,
		AccelThreshold: cfg.Accel.Threshold,
		AccelCount:     cfg.Accel.Count,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}
	tracker.SetMQTTConnected(transport.IsConnected())

	publishSystem(transport, tracker, "STARTUP", "")

	// Start HTTP status server
	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker, cfg.HTTP.WSInterval.Duration)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTP.Addr)
	}

	policy, _ := gate.ParsePolicy(cfg.Loop.GatePolicy) // validated by config
	loop := dispatch.New(dispatch.Deps{
		Pending: pending,
		Detector: gesture.NewDetector(gesture.Config{
			Debounce:    cfg.Button.Debounce.Duration,
			QuietPeriod: cfg.Button.QuietPeriod.Duration,
			MaxPresses:  cfg.Button.MaxPresses,
		}, source.Edges(), indicator),
		Sampler:   sampler,
		Transport: &pulseTransport{Transport: transport, ind: indicator},
		Suspender: power.NewInterruptWaiter(pending),
		Gate:      gate.New(policy, cfg.Loop.GateCapacity),
		Observer:  tracker,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go events.RunTicker(ctx, pending, cfg.Loop.RTCInterval.Duration)

	log.Printf("started %s: quiet=%v debounce=%v gate=%s broker=%s heartbeat=%v",
		version, cfg.Button.QuietPeriod, cfg.Button.Debounce, policy, cfg.MQTT.Broker, cfg.Loop.Heartbeat)

	var heartbeatC <-chan time.Time
	if hb := cfg.Loop.Heartbeat.Duration; hb > 0 {
		ticker := time.NewTicker(hb)
		defer ticker.Stop()
		heartbeatC = ticker.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	return runLoop(ctx, loop, transport, transport, tracker, source, heartbeatC, sigCh)
}

// runLoop runs the dispatch loop until a signal arrives or a reset gesture is
// seen, publishing heartbeats meanwhile. A SHUTDOWN event is published in both
// cases.
func runLoop(ctx context.Context, loop *dispatch.Loop, publisher mqtt.SystemPublisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, source gpio.Source, heartbeat <-chan time.Time, sig <-chan os.Signal) (dispatch.Outcome, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		outcome dispatch.Outcome
		err     error
	}
	done := make(chan result, 1)
	go func() {
		out, err := loop.Run(ctx)
		done <- result{out, err}
	}()

	refresh := func() {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		if source != nil {
			tracker.SetDroppedEdges(source.Dropped())
		}
	}

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			cancel()
			r := <-done
			if r.err != nil && !errors.Is(r.err, context.Canceled) {
				log.Printf("dispatch loop: %v", r.err)
			}
			refresh()
			publishSystem(publisher, tracker, "SHUTDOWN", signalName(s))
			return dispatch.Stopped, nil

		case r := <-done:
			refresh()
			if r.outcome == dispatch.Reset {
				publishSystem(publisher, tracker, "SHUTDOWN", "RESET")
				return dispatch.Reset, nil
			}
			if r.err != nil && !errors.Is(r.err, context.Canceled) {
				return r.outcome, fmt.Errorf("dispatch loop: %w", r.err)
			}
			return r.outcome, nil

		case <-heartbeat:
			refresh()
			// Refresh network info for heartbeat
			if net := readNetworkInfo(); net != nil {
				tracker.SetNetwork(net)
			}
			snap := tracker.Snapshot()
			log.Printf("heartbeat: uptime=%v wakes=%d motion=%d button=%d sent=%d errors=%d",
				snap.Uptime().Truncate(time.Second), snap.Counts.Wakes, snap.Counts.Motion, snap.Counts.Button,
				snap.Counts.Sent, snap.Counts.SensorErrors+snap.Counts.TransportErrors+snap.Counts.OtherErrors)
			publishSystem(publisher, tracker, "HEARTBEAT", "")
		}
	}
}

// publishSystem publishes a lifecycle event carrying the full status snapshot.
// STARTUP and SHUTDOWN are retained.
func publishSystem(publisher mqtt.SystemPublisher, tracker *status.Tracker, event, reason string) {
	snap := tracker.Snapshot()
	e := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      event,
		Reason:     reason,
		Retained:   event != "HEARTBEAT",
		RawPayload: status.FormatStatusEvent(snap, event, reason),
	}
	if err := publisher.PublishSystem(e); err != nil {
		log.Printf("failed to publish %s event: %v", event, err)
		return
	}
	log.Debugf("published %s event", event)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// pulseTransport lights the indicator for the duration of each send.
type pulseTransport struct {
	mqtt.Transport
	ind gesture.Indicator
}

func (p *pulseTransport) Send(payload []byte) error {
	if p.ind != nil {
		if err := p.ind.Set(true); err != nil {
			log.Debugf("led on: %v", err)
		}
		defer func() {
			if err := p.ind.Set(false); err != nil {
				log.Debugf("led off: %v", err)
			}
		}()
	}
	return p.Transport.Send(payload)
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
