package mqtt

import (
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Options configures the real transport.
type Options struct {
	Broker      string
	ClientID    string
	Topic       string
	TopicSystem string
	QoS         byte // for motion records; system events always use QoS 1
	Timeout     time.Duration
}

// RealTransport publishes to an actual MQTT broker.
type RealTransport struct {
	client  paho.Client
	opts    Options
	timeout time.Duration
}

// NewRealTransport creates a transport connected to the configured broker.
func NewRealTransport(o Options) (*RealTransport, error) {
	if o.Topic == "" {
		o.Topic = DefaultTopic
	}
	if o.TopicSystem == "" {
		o.TopicSystem = DefaultTopicSystem
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}

	will, err := FormatSystemPayload(WillEvent(time.Now()))
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(o.TopicSystem, will, 1, true).
		SetOnConnectHandler(func(paho.Client) {
			log.Printf("mqtt: connected to %s", o.Broker)
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, errors.New("connection timeout")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return &RealTransport{
		client:  client,
		opts:    o,
		timeout: o.Timeout,
	}, nil
}

// Send publishes an encoded record, not retained.
func (t *RealTransport) Send(payload []byte) error {
	token := t.client.Publish(t.opts.Topic, t.opts.QoS, false, payload)
	if !token.WaitTimeout(t.timeout) {
		return &TransportError{Op: "send", Err: errors.New("publish timeout")}
	}
	if err := token.Error(); err != nil {
		return &TransportError{Op: "send", Err: err}
	}
	return nil
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (t *RealTransport) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	token := t.client.Publish(t.opts.TopicSystem, 1, event.Retained, payload)
	if !token.WaitTimeout(t.timeout) {
		return &TransportError{Op: "publish system", Err: errors.New("publish timeout")}
	}
	if err := token.Error(); err != nil {
		return &TransportError{Op: "publish system", Err: err}
	}
	return nil
}

// IsConnected reports whether the client currently holds an open connection.
func (t *RealTransport) IsConnected() bool {
	return t.client.IsConnectionOpen()
}

// Close disconnects from the broker.
func (t *RealTransport) Close() error {
	t.client.Disconnect(1000) // 1 second timeout
	return nil
}
