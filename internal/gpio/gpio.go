// Package gpio provides the node's digital inputs and outputs with hardware
// abstraction. The real implementation uses the Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

import (
	"time"

	"github.com/sweeney/sensor-node/internal/logic"
)

// Edge is one raw transition on an input line.
type Edge struct {
	Key    logic.PortAndAction
	Offset int
}

// Board drives the inputs and outputs of the node.
type Board interface {
	// Levels returns the electrical level of the contact and motion inputs
	// (true = high).
	Levels() (contact, motion bool, err error)

	// Edges delivers input transitions. The channel is closed by Close.
	Edges() <-chan Edge

	// SetBias configures pull and sensed edge for an input: pull-up with
	// falling-edge sensing, or pull-down with rising-edge sensing.
	SetBias(port logic.Port, pullUp bool) error

	SetMotionPower(on bool) error
	BlinkLED() error

	// Close releases GPIO resources.
	Close() error
}

// Pins holds line offsets (BCM numbering).
type Pins struct {
	Contact     int
	Motion      int
	Button      int
	MotionPower int
	LED         int
}

// DefaultPins matches the reference wiring.
var DefaultPins = Pins{
	Contact:     17,
	Motion:      27,
	Button:      22,
	MotionPower: 23,
	LED:         24,
}

// BlinkDuration is how long the LED stays lit per blink.
const BlinkDuration = 50 * time.Millisecond

// edgeBuffer bounds queued edges when the consumer falls behind.
const edgeBuffer = 32

// Port maps a line offset back to its input port.
func (p Pins) Port(offset int) (logic.Port, bool) {
	switch offset {
	case p.Contact:
		return logic.PortContact, true
	case p.Motion:
		return logic.PortMotion, true
	case p.Button:
		return logic.PortButton, true
	}
	return 0, false
}

// Offset returns the line offset of an input port.
func (p Pins) Offset(port logic.Port) int {
	switch port {
	case logic.PortMotion:
		return p.Motion
	case logic.PortButton:
		return p.Button
	}
	return p.Contact
}

// edgeFor builds the edge for a transition seen on offset. ok is false for
// lines that are not inputs.
func (p Pins) edgeFor(offset int, rising bool) (Edge, bool) {
	port, ok := p.Port(offset)
	if !ok {
		return Edge{}, false
	}
	return Edge{Key: logic.NewPortAndAction(port, rising), Offset: offset}, true
}
