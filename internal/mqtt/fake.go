package mqtt

import "sync"

// FakeTransport records sent payloads and system events for test assertions.
// Safe for concurrent use: the heartbeat goroutine and the dispatch loop may
// both publish.
type FakeTransport struct {
	mu sync.Mutex

	// Sent contains every payload passed to Send, in order.
	Sent [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// SendError, if set, will be returned by Send.
	SendError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Attempts counts Send calls, including failed ones.
	Attempts int

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakeTransport creates a FakeTransport for testing.
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{}
}

// Send records a copy of payload.
func (f *FakeTransport) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Attempts++
	if f.SendError != nil {
		return &TransportError{Op: "send", Err: f.SendError}
	}
	f.Sent = append(f.Sent, append([]byte(nil), payload...))
	return nil
}

// PublishSystem records the system event.
func (f *FakeTransport) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.PublishSystemError != nil {
		return &TransportError{Op: "publish system", Err: f.PublishSystemError}
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemEvents = append(f.SystemEvents, event)
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// SentPayloads returns a snapshot of the sent payloads.
func (f *FakeTransport) SentPayloads() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.Sent...)
}

// Close marks the transport as closed.
func (f *FakeTransport) Close() error {
	f.mu.Lock()
	f.Closed = true
	f.mu.Unlock()
	return nil
}

// IsConnected reports whether the fake transport is "connected".
func (f *FakeTransport) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Reset clears recorded events.
func (f *FakeTransport) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Sent = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.SendError = nil
	f.PublishSystemError = nil
	f.Attempts = 0
	f.Closed = false
	f.Connected = false
}
