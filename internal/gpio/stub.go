//go:build !linux

package gpio

import (
	"errors"

	"github.com/sweeney/sensor-node/internal/logic"
)

var errUnsupported = errors.New("gpio: not supported")

// RealBoard is not available on non-Linux platforms.
type RealBoard struct{}

// NewRealBoard returns an error on non-Linux platforms.
func NewRealBoard(chipName string, pins Pins) (*RealBoard, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

func (b *RealBoard) Levels() (bool, bool, error) { return false, false, errUnsupported }
func (b *RealBoard) Edges() <-chan Edge { return nil }
func (b *RealBoard) SetBias(port logic.Port, pullUp bool) error { return errUnsupported }
func (b *RealBoard) SetMotionPower(on bool) error { return errUnsupported }
func (b *RealBoard) BlinkLED() error { return errUnsupported }
func (b *RealBoard) Close() error { return nil }
