// Package settings defines the node's persisted application settings and
// their fixed-size binary record.
package settings

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

// ItemID is the non-volatile item the record lives in.
const ItemID uint16 = 0x0402

// Bus light resolution modes (BH1750 opcodes).
const (
	BusLightContinuousHighRes  uint8 = 0x10
	BusLightContinuousHighRes2 uint8 = 0x11
	BusLightContinuousLowRes   uint8 = 0x13
	BusLightOneTimeHighRes     uint8 = 0x20
	BusLightOneTimeHighRes2    uint8 = 0x21
	BusLightOneTimeLowRes      uint8 = 0x23
)

var ErrShortRecord = errors.New("settings: short record")

// Settings is the working copy of the persisted record.
type Settings struct {
	// OccupiedDelay is the occupied to unoccupied delay in seconds.
	OccupiedDelay uint16
	// PressureScale is the power of ten applied to pascals for the scaled
	// pressure attribute.
	PressureScale int8
	// ContactOn is the last logical state of the contact channel.
	ContactOn bool
	// BusLightMode is the BH1750 measurement opcode.
	BusLightMode uint8
	// BusLightLowResDelay and BusLightHighResDelay are conversion times in
	// milliseconds.
	BusLightLowResDelay  uint16
	BusLightHighResDelay uint16
	// MotionSettleEdges is how many PIR edges follow a power-up.
	MotionSettleEdges uint8
}

// Defaults returns the compiled-in settings.
func Defaults() Settings {
	return Settings{
		OccupiedDelay:        90,
		PressureScale:        -1,
		ContactOn:            false,
		BusLightMode:         BusLightOneTimeHighRes,
		BusLightLowResDelay:  30,
		BusLightHighResDelay: 180,
		MotionSettleEdges:    2,
	}
}

// record is the on-flash layout. Field order is part of the format.
type record struct {
	OccupiedDelay        uint16
	PressureScale        int8
	ContactOn            uint8
	BusLightMode         uint8
	BusLightLowResDelay  uint16
	BusLightHighResDelay uint16
	MotionSettleEdges    uint8
}

// Size is the encoded record length in bytes.
var Size = binary.Size(record{})

// MarshalBinary encodes s as a fixed-size little-endian record.
func (s Settings) MarshalBinary() ([]byte, error) {
	r := record{
		OccupiedDelay:        s.OccupiedDelay,
		PressureScale:        s.PressureScale,
		BusLightMode:         s.BusLightMode,
		BusLightLowResDelay:  s.BusLightLowResDelay,
		BusLightHighResDelay: s.BusLightHighResDelay,
		MotionSettleEdges:    s.MotionSettleEdges,
	}
	if s.ContactOn {
		r.ContactOn = 1
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, r); err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a record produced by MarshalBinary.
func (s *Settings) UnmarshalBinary(data []byte) error {
	if len(data) < Size {
		return fmt.Errorf("%w: %d bytes, want %d", ErrShortRecord, len(data), Size)
	}
	var r record
	if err := binary.Read(bytes.NewReader(data[:Size]), binary.LittleEndian, &r); err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}
	*s = Settings{
		OccupiedDelay:        r.OccupiedDelay,
		PressureScale:        r.PressureScale,
		ContactOn:            r.ContactOn != 0,
		BusLightMode:         r.BusLightMode,
		BusLightLowResDelay:  r.BusLightLowResDelay,
		BusLightHighResDelay: r.BusLightHighResDelay,
		MotionSettleEdges:    r.MotionSettleEdges,
	}
	return nil
}

// IsBusLightMode reports whether m is a valid BH1750 measurement opcode.
func IsBusLightMode(m uint8) bool {
	switch m {
	case BusLightContinuousHighRes, BusLightContinuousHighRes2, BusLightContinuousLowRes,
		BusLightOneTimeHighRes, BusLightOneTimeHighRes2, BusLightOneTimeLowRes:
		return true
	}
	return false
}

// BusLightDelay returns how long a conversion in the configured mode takes.
func (s Settings) BusLightDelay() time.Duration {
	if s.BusLightMode == BusLightContinuousLowRes || s.BusLightMode == BusLightOneTimeLowRes {
		return time.Duration(s.BusLightLowResDelay) * time.Millisecond
	}
	return time.Duration(s.BusLightHighResDelay) * time.Millisecond
}

// OccupiedDelayDuration returns OccupiedDelay as a duration.
func (s Settings) OccupiedDelayDuration() time.Duration {
	return time.Duration(s.OccupiedDelay) * time.Second
}
