package mqtt

import (
	"errors"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sweeney/sensor-node/internal/logic"
	"github.com/sweeney/sensor-node/internal/node"
)

// Options configures a RealPublisher.
type Options struct {
	Broker   string
	Prefix   string
	NodeID   string
	ClientID string // generated when empty
	// BufferSize bounds attribute reports held while disconnected.
	BufferSize int
	// Inbound receives decoded set commands; nil disables the subscription.
	Inbound chan<- node.Message
}

// RealPublisher publishes to an actual MQTT broker.
type RealPublisher struct {
	client  paho.Client
	topics  Topics
	outbox  *outbox
	inbound chan<- node.Message
	now     func() time.Time
}

// NewRealPublisher creates a publisher and starts connecting in the
// background. Reports made before the first connection are buffered.
func NewRealPublisher(opts Options) (*RealPublisher, error) {
	if opts.Broker == "" {
		return nil, errors.New("mqtt: broker address required")
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.ClientID == "" {
		opts.ClientID = "sensor-node-" + uuid.NewString()[:8]
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = 256
	}

	p := &RealPublisher{
		topics:  NewTopics(opts.Prefix, opts.NodeID),
		inbound: opts.Inbound,
		now:     time.Now,
	}
	p.outbox = newOutbox(opts.BufferSize, p.send)

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	co := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(p.topics.System, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(co)
	p.client.Connect()
	log.Info().Str("broker", opts.Broker).Str("client_id", opts.ClientID).Msg("mqtt connecting")
	return p, nil
}

func (p *RealPublisher) onConnect(c paho.Client) {
	if p.inbound != nil {
		token := c.Subscribe(p.topics.Set, 1, p.onSet)
		go func() {
			if token.WaitTimeout(5*time.Second) && token.Error() != nil {
				log.Warn().Err(token.Error()).Str("topic", p.topics.Set).Msg("mqtt subscribe failed")
			}
		}()
	}
	replayed := p.outbox.online()
	log.Info().Int("replayed", replayed).Msg("mqtt connected")
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.outbox.offline()
	log.Warn().Err(err).Msg("mqtt connection lost")
}

// onSet runs on a paho goroutine.
func (p *RealPublisher) onSet(_ paho.Client, m paho.Message) {
	msg, err := DecodeSetPayload(m.Payload())
	if err != nil {
		log.Warn().Err(err).Str("topic", m.Topic()).Msg("ignoring set command")
		return
	}
	select {
	case p.inbound <- msg:
	default:
		log.Warn().Msg("inbound queue full, dropping set command")
	}
}

// send publishes without waiting for the token.
func (p *RealPublisher) send(msg bufferedMsg) {
	token := p.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	go func() {
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			log.Warn().Err(token.Error()).Str("topic", msg.topic).Msg("mqtt publish failed")
		}
	}()
}

// AttributeChanged publishes an attribute report, QoS 0, not retained.
func (p *RealPublisher) AttributeChanged(a logic.Attribute) {
	payload, err := FormatAttributePayload(a, p.now())
	if err != nil {
		log.Warn().Err(err).Msg("format attribute payload")
		return
	}
	p.outbox.publish(bufferedMsg{topic: p.topics.Attributes, payload: payload})
}

// PublishSystem sends a system lifecycle event and waits for delivery.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	if !p.outbox.isOnline() {
		p.outbox.publish(bufferedMsg{topic: p.topics.System, payload: payload, qos: 1, retained: event.Retained})
		return nil
	}

	// QoS 1 (at-least-once) for lifecycle events - we want to ensure delivery
	token := p.client.Publish(p.topics.System, 1, event.Retained, payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish system timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.outbox.isOnline()
}

// Buffered returns how many messages wait for a connection.
func (p *RealPublisher) Buffered() int {
	return p.outbox.buffered()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
