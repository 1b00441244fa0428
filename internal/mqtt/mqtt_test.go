package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/sensor-node/internal/logic"
	"github.com/sweeney/sensor-node/internal/node"
)

func TestNewTopics(t *testing.T) {
	topics := NewTopics("sensors", "hall")
	if topics.Attributes != "sensors/hall/attributes" {
		t.Errorf("attributes topic: %s", topics.Attributes)
	}
	if topics.System != "sensors/hall/system" {
		t.Errorf("system topic: %s", topics.System)
	}
	if topics.Set != "sensors/hall/set" {
		t.Errorf("set topic: %s", topics.Set)
	}
}

func TestFormatAttributePayloadExactJSON(t *testing.T) {
	ts := time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC)
	payload, err := FormatAttributePayload(logic.Attribute{ID: logic.AttrTemperature, Value: 2137}, ts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"attribute":{"timestamp":"2026-03-01T09:15:00Z","name":"temperature","endpoint":1,"cluster":1026,"attribute":0,"value":2137}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatAttributePayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ts := time.Date(2026, 3, 1, 10, 15, 0, 0, loc)
	payload, err := FormatAttributePayload(logic.Attribute{ID: logic.AttrOccupancy, Value: 1}, ts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed AttributePayload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Attribute.Timestamp != "2026-03-01T09:15:00Z" {
		t.Errorf("expected UTC timestamp, got %s", parsed.Attribute.Timestamp)
	}
	if parsed.Attribute.Name != "occupancy" || parsed.Attribute.Endpoint != 3 {
		t.Errorf("unexpected attribute: %+v", parsed.Attribute)
	}
}

func TestFormatSystemPayloadExactJSON(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"SHUTDOWN","reason":"MQTT_DISCONNECT"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	payload, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC),
		Event:     "RECONNECTED",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-10T14:30:00Z","event":"RECONNECTED"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", payload, expected)
	}
}

func TestFormatSystemPayloadRaw(t *testing.T) {
	raw := []byte(`{"system":{"event":"HEARTBEAT"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "IGNORED", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("expected raw payload passthrough, got %s", payload)
	}
}

func TestDecodeSetPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    node.Message
	}{
		{
			name:    "by name",
			payload: `{"name":"occupancy_timeout","value":120}`,
			want:    node.AttributeWrite{ID: logic.AttrOccupancyDelay, Value: 120},
		},
		{
			name:    "by address",
			payload: `{"endpoint":1,"cluster":1027,"attribute":20,"value":-2}`,
			want:    node.AttributeWrite{ID: logic.AttrPressureScale, Value: -2},
		},
		{
			name:    "zero value",
			payload: `{"name":"occupancy_timeout","value":0}`,
			want:    node.AttributeWrite{ID: logic.AttrOccupancyDelay, Value: 0},
		},
		{
			name:    "reset",
			payload: `{"command":"reset"}`,
			want:    node.ResetCommand{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSetPayload([]byte(tt.payload))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestDecodeSetPayloadErrors(t *testing.T) {
	for _, payload := range []string{
		`not json`,
		`{"command":"reboot"}`,
		`{"name":"occupancy_timeout"}`,
		`{"name":"bogus","value":1}`,
		`{"endpoint":1,"value":1}`,
	} {
		_, err := DecodeSetPayload([]byte(payload))
		if !errors.Is(err, ErrBadCommand) {
			t.Errorf("%s: expected ErrBadCommand, got %v", payload, err)
		}
	}
}

func TestFakePublisherRecordsAttributes(t *testing.T) {
	f := NewFakePublisher()
	f.Now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	f.AttributeChanged(logic.Attribute{ID: logic.AttrContact, Value: 1})
	f.AttributeChanged(logic.Attribute{ID: logic.AttrHumidity, Value: 4500})
	f.AttributeChanged(logic.Attribute{ID: logic.AttrContact, Value: 0})

	if len(f.Attributes) != 3 || len(f.Payloads) != 3 {
		t.Fatalf("expected 3 reports, got %d/%d", len(f.Attributes), len(f.Payloads))
	}
	if got := f.Values(logic.AttrContact); len(got) != 2 || got[0] != 1 || got[1] != 0 {
		t.Errorf("unexpected contact values %v", got)
	}
}

func TestFakePublisherSystemEvents(t *testing.T) {
	f := NewFakePublisher()
	f.PublishSystem(SystemEvent{Event: "STARTUP", Retained: true})
	f.PublishSystem(SystemEvent{Event: "HEARTBEAT"})

	names := f.SystemEventNames()
	if len(names) != 2 || names[0] != "STARTUP" || names[1] != "HEARTBEAT" {
		t.Errorf("unexpected events %v", names)
	}
	if !f.SystemEvents[0].Retained || f.SystemEvents[1].Retained {
		t.Error("retained flag not recorded")
	}

	f.PublishSystemError = errors.New("simulated error")
	if err := f.PublishSystem(SystemEvent{Event: "SHUTDOWN"}); err == nil {
		t.Error("expected error to be returned")
	}
	if len(f.SystemEvents) != 2 {
		t.Error("failed publish should not be recorded")
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.AttributeChanged(logic.Attribute{ID: logic.AttrContact, Value: 1})
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Close()
	f.Connected = true

	f.Reset()

	if len(f.Attributes) != 0 || len(f.SystemEvents) != 0 || f.Closed || f.IsConnected() {
		t.Error("reset should clear all state")
	}
}
