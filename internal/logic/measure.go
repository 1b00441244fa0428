package logic

// Quantity is a physical quantity the node samples.
type Quantity uint8

const (
	QuantityIlluminance Quantity = iota
	QuantityBusIlluminance
	QuantityTemperature
	QuantityPressure
	QuantityHumidity
)

func (q Quantity) String() string {
	switch q {
	case QuantityIlluminance:
		return "illuminance"
	case QuantityBusIlluminance:
		return "illuminance_bus"
	case QuantityTemperature:
		return "temperature"
	case QuantityPressure:
		return "pressure"
	case QuantityHumidity:
		return "humidity"
	}
	return "unknown"
}

// Threshold returns the absolute delta, in the quantity's native scale, a
// sample must exceed to be reported on a gated pass.
func (q Quantity) Threshold() uint32 {
	switch q {
	case QuantityIlluminance:
		return 100 // raw ADC counts
	case QuantityBusIlluminance:
		return 10 // lux
	case QuantityTemperature:
		return 50 // 0.5 °C
	case QuantityPressure:
		return 1 // hPa
	case QuantityHumidity:
		return 1000 // 10 %RH
	}
	return 0
}

// Attribute returns the attribute the quantity is reported on.
func (q Quantity) Attribute() AttributeID {
	switch q {
	case QuantityIlluminance:
		return AttrIlluminance
	case QuantityBusIlluminance:
		return AttrBusIlluminance
	case QuantityTemperature:
		return AttrTemperature
	case QuantityPressure:
		return AttrPressure
	case QuantityHumidity:
		return AttrHumidity
	}
	return AttributeID{}
}

// Measurement holds the last sample of a quantity and the value that was
// last reported for it.
type Measurement struct {
	Current      int32
	LastReported int32
	// Present is false when the sensor failed detection at boot.
	Present bool
}

// Sample stores v as the current value and reports whether it must be
// reported. LastReported follows Current exactly when it returns true.
func (m *Measurement) Sample(v int32, threshold uint32, mode Mode) bool {
	m.Current = v
	if Delta(m.Current, m.LastReported) > threshold || mode == ModeUnconditional {
		m.LastReported = m.Current
		return true
	}
	return false
}

// Delta returns |a-b| without overflow.
func Delta(a, b int32) uint32 {
	if a > b {
		return uint32(int64(a) - int64(b))
	}
	return uint32(int64(b) - int64(a))
}

// ScalePressure converts pascals to the scaled representation
// pa × 10^scale using integer arithmetic only.
func ScalePressure(pa int32, scale int8) int32 {
	v := int64(pa)
	for ; scale > 0; scale-- {
		v *= 10
	}
	for ; scale < 0; scale++ {
		v /= 10
	}
	return clamp32(v)
}

// BatteryPercentage maps a cell voltage to half-percent units (0..200)
// on a linear 2.0 V..3.0 V discharge curve.
func BatteryPercentage(millivolts int32) int32 {
	const (
		empty = 2000
		full  = 3000
	)
	switch {
	case millivolts <= empty:
		return 0
	case millivolts >= full:
		return 200
	}
	return (millivolts - empty) * 200 / (full - empty)
}

func clamp32(v int64) int32 {
	const (
		maxInt32 = 1<<31 - 1
		minInt32 = -1 << 31
	)
	if v > maxInt32 {
		return maxInt32
	}
	if v < minInt32 {
		return minInt32
	}
	return int32(v)
}
