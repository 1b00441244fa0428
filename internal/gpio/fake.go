package gpio

import (
	"sync"

	"github.com/sweeney/sensor-node/internal/logic"
)

// FakeBoard is a test double that records output calls and lets tests inject
// edges.
type FakeBoard struct {
	Pins Pins

	// ContactLevel and MotionLevel are returned by Levels.
	ContactLevel bool
	MotionLevel  bool

	// LevelsError, if set, will be returned by Levels.
	LevelsError error

	mu     sync.Mutex
	bias   map[logic.Port]bool
	power  []bool
	blinks int
	closed bool
	edges  chan Edge
}

// NewFakeBoard creates a FakeBoard with the default pins.
func NewFakeBoard() *FakeBoard {
	return &FakeBoard{
		Pins:  DefaultPins,
		bias:  map[logic.Port]bool{},
		edges: make(chan Edge, edgeBuffer),
	}
}

func (f *FakeBoard) Levels() (bool, bool, error) {
	if f.LevelsError != nil {
		return false, false, f.LevelsError
	}
	return f.ContactLevel, f.MotionLevel, nil
}

func (f *FakeBoard) Edges() <-chan Edge {
	return f.edges
}

// Emit injects a transition on an input port, as the line watcher would.
func (f *FakeBoard) Emit(port logic.Port, rising bool) {
	edge, _ := f.Pins.edgeFor(f.Pins.Offset(port), rising)
	f.edges <- edge
}

func (f *FakeBoard) SetBias(port logic.Port, pullUp bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bias[port] = pullUp
	return nil
}

func (f *FakeBoard) SetMotionPower(on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.power = append(f.power, on)
	return nil
}

func (f *FakeBoard) BlinkLED() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blinks++
	return nil
}

// Bias returns the last bias applied to port and whether one was applied.
func (f *FakeBoard) Bias(port logic.Port) (pullUp, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	pullUp, ok = f.bias[port]
	return pullUp, ok
}

// Power returns every motion power value set, in order.
func (f *FakeBoard) Power() []bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]bool(nil), f.power...)
}

func (f *FakeBoard) Blinks() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.blinks
}

// Close marks the board as closed and closes the edge channel.
func (f *FakeBoard) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.edges)
	}
	return nil
}

func (f *FakeBoard) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
