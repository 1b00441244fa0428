//go:build linux

package gpio

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/warthog618/go-gpiocdev"

	"github.com/sweeney/sensor-node/internal/logic"
)

// RealBoard drives actual hardware through the Linux GPIO character device.
type RealBoard struct {
	pins Pins
	chip *gpiocdev.Chip

	contact *gpiocdev.Line
	motion  *gpiocdev.Line
	button  *gpiocdev.Line
	power   *gpiocdev.Line
	led     *gpiocdev.Line

	edges chan Edge

	mu     sync.Mutex
	closed bool
}

// NewRealBoard requests the node's lines on the named chip.
func NewRealBoard(chipName string, pins Pins) (*RealBoard, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	b := &RealBoard{
		pins:  pins,
		chip:  chip,
		edges: make(chan Edge, edgeBuffer),
	}

	// Inputs start pulled down and sensing rising edges; Boot re-polarises
	// them from the sampled levels.
	b.contact, err = chip.RequestLine(pins.Contact, gpiocdev.AsInput, gpiocdev.WithPullDown,
		gpiocdev.WithRisingEdge, gpiocdev.WithEventHandler(b.onEvent))
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request contact pin %d: %w", pins.Contact, err)
	}
	b.motion, err = chip.RequestLine(pins.Motion, gpiocdev.AsInput, gpiocdev.WithPullDown,
		gpiocdev.WithRisingEdge, gpiocdev.WithEventHandler(b.onEvent))
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request motion pin %d: %w", pins.Motion, err)
	}
	b.button, err = chip.RequestLine(pins.Button, gpiocdev.AsInput, gpiocdev.WithPullDown,
		gpiocdev.WithBothEdges, gpiocdev.WithDebounce(10*time.Millisecond), gpiocdev.WithEventHandler(b.onEvent))
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request button pin %d: %w", pins.Button, err)
	}
	b.power, err = chip.RequestLine(pins.MotionPower, gpiocdev.AsOutput(1))
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request motion power pin %d: %w", pins.MotionPower, err)
	}
	b.led, err = chip.RequestLine(pins.LED, gpiocdev.AsOutput(0))
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("request led pin %d: %w", pins.LED, err)
	}
	return b, nil
}

// onEvent runs on the gpiocdev watcher goroutine.
func (b *RealBoard) onEvent(evt gpiocdev.LineEvent) {
	edge, ok := b.pins.edgeFor(evt.Offset, evt.Type == gpiocdev.LineEventRisingEdge)
	if !ok {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	select {
	case b.edges <- edge:
	default:
		log.Warn().Int("offset", evt.Offset).Msg("edge queue full, dropping edge")
	}
}

func (b *RealBoard) Edges() <-chan Edge {
	return b.edges
}

// Levels reads the raw contact and motion levels.
func (b *RealBoard) Levels() (bool, bool, error) {
	contact, err := b.contact.Value()
	if err != nil {
		return false, false, fmt.Errorf("read contact pin: %w", err)
	}
	motion, err := b.motion.Value()
	if err != nil {
		return false, false, fmt.Errorf("read motion pin: %w", err)
	}
	return contact == 1, motion == 1, nil
}

func (b *RealBoard) SetBias(port logic.Port, pullUp bool) error {
	var line *gpiocdev.Line
	switch port {
	case logic.PortContact:
		line = b.contact
	case logic.PortMotion:
		line = b.motion
	default:
		return fmt.Errorf("set bias: port %s has fixed bias", port)
	}
	var err error
	if pullUp {
		err = line.Reconfigure(gpiocdev.WithPullUp, gpiocdev.WithFallingEdge)
	} else {
		err = line.Reconfigure(gpiocdev.WithPullDown, gpiocdev.WithRisingEdge)
	}
	if err != nil {
		return fmt.Errorf("reconfigure %s pin: %w", port, err)
	}
	return nil
}

func (b *RealBoard) SetMotionPower(on bool) error {
	v := 0
	if on {
		v = 1
	}
	if err := b.power.SetValue(v); err != nil {
		return fmt.Errorf("set motion power: %w", err)
	}
	return nil
}

// BlinkLED lights the LED and schedules it off again without blocking.
func (b *RealBoard) BlinkLED() error {
	if err := b.led.SetValue(1); err != nil {
		return fmt.Errorf("set led: %w", err)
	}
	time.AfterFunc(BlinkDuration, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.closed {
			return
		}
		if err := b.led.SetValue(0); err != nil {
			log.Warn().Err(err).Msg("clear led failed")
		}
	})
	return nil
}

// Close releases GPIO resources.
// Reconfigures inputs to pull-down (matching Pi boot defaults) before
// closing to ensure clean state for system shutdown/reboot.
func (b *RealBoard) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	var errs []error
	for _, in := range []struct {
		name string
		line *gpiocdev.Line
	}{{"contact", b.contact}, {"motion", b.motion}, {"button", b.button}} {
		if in.line == nil {
			continue
		}
		if err := in.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure %s pin: %w", in.name, err))
		}
		if err := in.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", in.name, err))
		}
	}
	for _, out := range []struct {
		name string
		line *gpiocdev.Line
	}{{"motion power", b.power}, {"led", b.led}} {
		if out.line == nil {
			continue
		}
		if err := out.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s pin: %w", out.name, err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	close(b.edges)

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
