package mqtt

import (
	"sync"
	"time"

	"github.com/sweeney/sensor-node/internal/logic"
)

// FakePublisher records published reports for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	// Attributes contains all attribute reports, in order.
	Attributes []logic.Attribute

	// Payloads contains the JSON payloads for attribute reports.
	Payloads [][]byte

	// SystemEvents contains all system events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for system events.
	SystemPayloads [][]byte

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool

	// Now stamps attribute payloads; defaults to time.Now.
	Now func() time.Time
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{Now: time.Now}
}

// AttributeChanged records the report.
func (f *FakePublisher) AttributeChanged(a logic.Attribute) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Attributes = append(f.Attributes, a)
	if payload, err := FormatAttributePayload(a, f.Now()); err == nil {
		f.Payloads = append(f.Payloads, payload)
	}
}

// PublishSystem records the system event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)
	return nil
}

// Values returns the reported values of one attribute.
func (f *FakePublisher) Values(id logic.AttributeID) []int32 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []int32
	for _, a := range f.Attributes {
		if a.ID == id {
			out = append(out, a.Value)
		}
	}
	return out
}

// SystemEventNames returns the Event field of each recorded system event.
func (f *FakePublisher) SystemEventNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.SystemEvents))
	for i, e := range f.SystemEvents {
		names[i] = e.Event
	}
	return names
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Reset clears recorded reports.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Attributes = nil
	f.Payloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishSystemError = nil
	f.Connected = false
}
