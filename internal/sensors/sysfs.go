package sensors

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ADCIlluminance reads an IIO voltage channel, e.g.
// /sys/bus/iio/devices/iio:device0/in_voltage0_raw.
type ADCIlluminance struct {
	Path string
}

func (a ADCIlluminance) Read() (int32, error) {
	v, err := readSysfsInt(a.Path)
	if err != nil {
		return 0, fmt.Errorf("read adc: %w", err)
	}
	return int32(v), nil
}

// SupplyBattery reads a power-supply voltage_now attribute (microvolts).
type SupplyBattery struct {
	Path string
}

func (b SupplyBattery) Millivolts() (int32, error) {
	uv, err := readSysfsInt(b.Path)
	if err != nil {
		return 0, fmt.Errorf("read battery voltage: %w", err)
	}
	return int32(uv / 1000), nil
}

func readSysfsInt(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}
