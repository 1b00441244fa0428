// Package mqtt is the node's reporting gateway: attribute reports and system
// events go out to a broker, attribute writes come back in on a subscription.
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sweeney/sensor-node/internal/logic"
	"github.com/sweeney/sensor-node/internal/node"
)

// DefaultPrefix is the topic prefix used when none is configured.
const DefaultPrefix = "sensors"

// Topics holds the topics for one node.
type Topics struct {
	Attributes string
	System     string
	Set        string
}

// NewTopics builds the topic set <prefix>/<nodeID>/{attributes,system,set}.
func NewTopics(prefix, nodeID string) Topics {
	base := prefix + "/" + nodeID
	return Topics{
		Attributes: base + "/attributes",
		System:     base + "/system",
		Set:        base + "/set",
	}
}

// Publisher publishes node reports to MQTT.
type Publisher interface {
	// AttributeChanged queues an attribute report. It never blocks on the
	// network.
	AttributeChanged(a logic.Attribute)

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// AttributePayload is the MQTT message for one attribute report.
type AttributePayload struct {
	Attribute AttributeReport `json:"attribute"`
}

// AttributeReport contains the report details.
type AttributeReport struct {
	Timestamp string `json:"timestamp"`
	Name      string `json:"name"`
	Endpoint  uint8  `json:"endpoint"`
	Cluster   uint16 `json:"cluster"`
	Attribute uint16 `json:"attribute"`
	Value     int32  `json:"value"`
}

// FormatAttributePayload creates the JSON payload for an attribute report.
func FormatAttributePayload(a logic.Attribute, ts time.Time) ([]byte, error) {
	return json.Marshal(AttributePayload{
		Attribute: AttributeReport{
			Timestamp: ts.UTC().Format(time.RFC3339),
			Name:      a.ID.Name(),
			Endpoint:  a.ID.Endpoint,
			Cluster:   a.ID.Cluster,
			Attribute: a.ID.Attribute,
			Value:     a.Value,
		},
	})
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}

// SetPayload is an inbound command on the set topic. An attribute is
// addressed either by name or by endpoint/cluster/attribute.
type SetPayload struct {
	Command   string  `json:"command,omitempty"`
	Name      string  `json:"name,omitempty"`
	Endpoint  *uint8  `json:"endpoint,omitempty"`
	Cluster   *uint16 `json:"cluster,omitempty"`
	Attribute *uint16 `json:"attribute,omitempty"`
	Value     *int32  `json:"value,omitempty"`
}

var ErrBadCommand = errors.New("mqtt: bad set command")

// DecodeSetPayload turns a set-topic message into a node message.
func DecodeSetPayload(data []byte) (node.Message, error) {
	var p SetPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCommand, err)
	}

	if p.Command != "" {
		if p.Command == "reset" {
			return node.ResetCommand{}, nil
		}
		return nil, fmt.Errorf("%w: unknown command %q", ErrBadCommand, p.Command)
	}

	if p.Value == nil {
		return nil, fmt.Errorf("%w: missing value", ErrBadCommand)
	}

	var id logic.AttributeID
	switch {
	case p.Name != "":
		var ok bool
		if id, ok = logic.AttributeByName(p.Name); !ok {
			return nil, fmt.Errorf("%w: unknown attribute %q", ErrBadCommand, p.Name)
		}
	case p.Endpoint != nil && p.Cluster != nil && p.Attribute != nil:
		id = logic.AttributeID{Endpoint: *p.Endpoint, Cluster: *p.Cluster, Attribute: *p.Attribute}
	default:
		return nil, fmt.Errorf("%w: no attribute given", ErrBadCommand)
	}
	return node.AttributeWrite{ID: id, Value: *p.Value}, nil
}
