package sensors

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/bmxx80"
	"periph.io/x/host/v3"
)

// OpenI2C initialises the host drivers and opens the named I2C bus
// ("" opens the first one found).
func OpenI2C(name string) (i2c.BusCloser, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host drivers: %w", err)
	}
	bus, err := i2creg.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", name, err)
	}
	return bus, nil
}

// BME280 reads the environmental sensor through periph's bmxx80 driver.
type BME280 struct {
	bus  i2c.Bus
	addr uint16
	dev  *bmxx80.Dev
}

// NewBME280 returns a driver for the device at addr. Nothing is sent on the
// bus until Detect.
func NewBME280(bus i2c.Bus, addr uint16) *BME280 {
	return &BME280{bus: bus, addr: addr}
}

// Detect probes the chip id and configures forced-mode oversampling.
func (b *BME280) Detect() error {
	dev, err := bmxx80.NewI2C(b.bus, b.addr, &bmxx80.DefaultOpts)
	if err != nil {
		return fmt.Errorf("%w: bme280 at %#x: %v", ErrNotDetected, b.addr, err)
	}
	b.dev = dev
	return nil
}

// Read takes one forced measurement.
func (b *BME280) Read() (Climate, error) {
	if b.dev == nil {
		return Climate{}, ErrNotDetected
	}
	var env physic.Env
	if err := b.dev.Sense(&env); err != nil {
		return Climate{}, fmt.Errorf("sense bme280: %w", err)
	}
	return climateFromEnv(env), nil
}

func climateFromEnv(env physic.Env) Climate {
	return Climate{
		TemperatureCenti: int32((env.Temperature - physic.ZeroCelsius) / (physic.Celsius / 100)),
		PressurePa:       int32(env.Pressure / physic.Pascal),
		HumidityCenti:    int32(env.Humidity / (physic.PercentRH / 100)),
	}
}

// BH1750 opcodes.
const (
	bh1750PowerDown byte = 0x00
	bh1750PowerOn   byte = 0x01
)

// BH1750 drives the ambient light sensor with raw I2C transactions.
type BH1750 struct {
	dev  *i2c.Dev
	mode uint8
}

// NewBH1750 returns a driver for the device at addr.
func NewBH1750(bus i2c.Bus, addr uint16) *BH1750 {
	return &BH1750{dev: &i2c.Dev{Bus: bus, Addr: addr}}
}

// Detect powers the device on and off again; a NACK means it is absent.
func (b *BH1750) Detect(mode uint8) error {
	if err := b.write(bh1750PowerOn); err != nil {
		return fmt.Errorf("%w: bh1750 at %#x: %v", ErrNotDetected, b.dev.Addr, err)
	}
	if err := b.write(mode); err != nil {
		return fmt.Errorf("%w: bh1750 rejected mode %#x: %v", ErrNotDetected, mode, err)
	}
	return b.PowerDown()
}

// Start powers the device on and starts a conversion.
func (b *BH1750) Start(mode uint8) error {
	if err := b.write(bh1750PowerOn); err != nil {
		return fmt.Errorf("bh1750 power on: %w", err)
	}
	if err := b.write(mode); err != nil {
		return fmt.Errorf("bh1750 start mode %#x: %w", mode, err)
	}
	b.mode = mode
	return nil
}

// Result reads the conversion and converts counts to lux.
func (b *BH1750) Result() (int32, error) {
	var buf [2]byte
	if err := b.dev.Tx(nil, buf[:]); err != nil {
		return 0, fmt.Errorf("bh1750 read: %w", err)
	}
	return bh1750Lux(buf, b.mode), nil
}

// PowerDown puts the device to sleep.
func (b *BH1750) PowerDown() error {
	if err := b.write(bh1750PowerDown); err != nil {
		return fmt.Errorf("bh1750 power down: %w", err)
	}
	return nil
}

func (b *BH1750) write(op byte) error {
	_, err := b.dev.Write([]byte{op})
	return err
}

// bh1750Lux converts raw counts: lux = counts / 1.2, halved again in the
// high-resolution-2 modes.
func bh1750Lux(buf [2]byte, mode uint8) int32 {
	counts := int32(buf[0])<<8 | int32(buf[1])
	lux := counts * 10 / 12
	if mode == 0x11 || mode == 0x21 {
		lux /= 2
	}
	return lux
}
