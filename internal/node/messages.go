package node

import (
	"github.com/rs/zerolog/log"

	"github.com/sweeney/sensor-node/internal/logic"
)

// Message is an item delivered through the inbox. The concrete types are
// KeyChange, AttributeWrite, ResetCommand and Incoming.
type Message interface {
	isMessage()
}

// KeyChange is a raw edge on one of the digital inputs.
type KeyChange struct {
	PortAndAction logic.PortAndAction
	Code          uint8
}

// AttributeWrite asks the node to change a writable attribute.
type AttributeWrite struct {
	ID    logic.AttributeID
	Value int32
}

// ResetCommand restores the compiled-in settings.
type ResetCommand struct{}

// Incoming is any other protocol message. Its payload is dropped.
type Incoming struct {
	Topic   string
	Payload []byte
}

func (KeyChange) isMessage()      {}
func (AttributeWrite) isMessage() {}
func (ResetCommand) isMessage()   {}
func (Incoming) isMessage()       {}

// Post enqueues msg and raises the inbound event. It must be called from
// the goroutine that runs the dispatcher.
func (n *Node) Post(msg Message) {
	n.inbox = append(n.inbox, msg)
	n.raise(logic.EventInbound)
}

// Pending returns the number of queued inbound messages.
func (n *Node) Pending() int {
	return len(n.inbox)
}

func (n *Node) drainInbox() {
	for len(n.inbox) > 0 {
		msg := n.inbox[0]
		n.inbox[0] = nil
		n.inbox = n.inbox[1:]
		n.handleMessage(msg)
	}
	n.inbox = nil
}

func (n *Node) handleMessage(msg Message) {
	switch m := msg.(type) {
	case KeyChange:
		n.handleKey(m)
	case AttributeWrite:
		n.handleAttributeWrite(m)
	case ResetCommand:
		n.handleReset()
	case Incoming:
		log.Debug().Str("topic", m.Topic).Int("bytes", len(m.Payload)).Msg("ignoring incoming message")
	default:
		log.Warn().Msgf("unhandled message type %T", msg)
	}
}
