// Package sensors provides the node's sensor drivers behind small
// interfaces. Real drivers talk to I2C through periph and to IIO/power
// supply attributes through sysfs; fakes return scripted values.
package sensors

import "errors"

// ErrNotDetected is returned when a device does not answer its identity
// check.
var ErrNotDetected = errors.New("sensors: device not detected")

// Illuminance reads a raw photo-resistor ADC sample.
type Illuminance interface {
	Read() (int32, error)
}

// Climate is one environmental sample in fixed-point units.
type Climate struct {
	TemperatureCenti int32 // 0.01 °C
	PressurePa       int32 // Pa
	HumidityCenti    int32 // 0.01 %RH
}

// PressureHPa returns the pressure rounded down to whole hectopascals.
func (c Climate) PressureHPa() int32 {
	return c.PressurePa / 100
}

// Environment reads temperature, pressure and humidity.
type Environment interface {
	// Detect checks the device identity once at boot.
	Detect() error
	Read() (Climate, error)
}

// BusLight is an ambient light sensor with a start / wait / read protocol.
type BusLight interface {
	// Detect checks that the device answers in the given mode.
	Detect(mode uint8) error
	// Start powers the device on and starts a conversion in mode.
	Start(mode uint8) error
	// Result reads the finished conversion, in lux.
	Result() (int32, error)
	// PowerDown puts the device to sleep.
	PowerDown() error
}

// Battery reads the supply voltage.
type Battery interface {
	Millivolts() (int32, error)
}
