// Package logic contains the pure decision logic of the sensor node:
// change detection, the sampling phase machine and the debounce state
// machines for the digital inputs.
// This package has NO external dependencies (no GPIO, MQTT, I2C, storage or
// time.Sleep). Callers turn its decisions into side effects.
package logic

// Endpoints exposed by the node.
const (
	EndpointSensors   uint8 = 1
	EndpointContact   uint8 = 2
	EndpointOccupancy uint8 = 3
	EndpointBusLight  uint8 = 4
)

// Cluster identifiers.
const (
	ClusterPowerConfig uint16 = 0x0001
	ClusterOnOff       uint16 = 0x0006
	ClusterIlluminance uint16 = 0x0400
	ClusterTemperature uint16 = 0x0402
	ClusterPressure    uint16 = 0x0403
	ClusterHumidity    uint16 = 0x0405
	ClusterOccupancy   uint16 = 0x0406
)

// AttributeID addresses one attribute on one endpoint.
type AttributeID struct {
	Endpoint  uint8
	Cluster   uint16
	Attribute uint16
}

// Attribute is a reported value. Values are always in the attribute's
// native fixed-point scale.
type Attribute struct {
	ID    AttributeID
	Value int32
}

var (
	AttrIlluminance        = AttributeID{EndpointSensors, ClusterIlluminance, 0x0000}
	AttrTemperature        = AttributeID{EndpointSensors, ClusterTemperature, 0x0000}
	AttrPressure           = AttributeID{EndpointSensors, ClusterPressure, 0x0000}
	AttrPressureScaled     = AttributeID{EndpointSensors, ClusterPressure, 0x0010}
	AttrPressureScale      = AttributeID{EndpointSensors, ClusterPressure, 0x0014}
	AttrHumidity           = AttributeID{EndpointSensors, ClusterHumidity, 0x0000}
	AttrBatteryVoltage     = AttributeID{EndpointSensors, ClusterPowerConfig, 0x0020}
	AttrBatteryPercentage  = AttributeID{EndpointSensors, ClusterPowerConfig, 0x0021}
	AttrContact            = AttributeID{EndpointContact, ClusterOnOff, 0x0000}
	AttrOccupancy          = AttributeID{EndpointOccupancy, ClusterOccupancy, 0x0000}
	AttrOccupancyDelay     = AttributeID{EndpointOccupancy, ClusterOccupancy, 0x0010}
	AttrBusIlluminance     = AttributeID{EndpointBusLight, ClusterIlluminance, 0x0000}
	AttrBusIlluminanceMode = AttributeID{EndpointBusLight, ClusterIlluminance, 0xF000}
)

var attributeNames = map[AttributeID]string{
	AttrIlluminance:        "illuminance",
	AttrTemperature:        "temperature",
	AttrPressure:           "pressure",
	AttrPressureScaled:     "pressure_scaled",
	AttrPressureScale:      "pressure_scale",
	AttrHumidity:           "humidity",
	AttrBatteryVoltage:     "battery_voltage",
	AttrBatteryPercentage:  "battery_percentage",
	AttrContact:            "contact",
	AttrOccupancy:          "occupancy",
	AttrOccupancyDelay:     "occupancy_timeout",
	AttrBusIlluminance:     "illuminance_bus",
	AttrBusIlluminanceMode: "illuminance_bus_mode",
}

// Name returns a stable short name for the attribute, or "unknown".
func (id AttributeID) Name() string {
	if n, ok := attributeNames[id]; ok {
		return n
	}
	return "unknown"
}

// Mode distinguishes a threshold-gated sampling pass from an unconditional
// (heartbeat) pass.
type Mode uint8

const (
	ModeGated Mode = iota
	ModeUnconditional
)

func (m Mode) String() string {
	if m == ModeUnconditional {
		return "unconditional"
	}
	return "gated"
}

// Port identifies a digital input.
type Port uint8

const (
	PortContact Port = iota
	PortMotion
	PortButton
)

func (p Port) String() string {
	switch p {
	case PortContact:
		return "contact"
	case PortMotion:
		return "motion"
	case PortButton:
		return "button"
	}
	return "unknown"
}

// PortAndAction packs the input port and the edge direction, the way the key
// source delivers them.
type PortAndAction uint8

const (
	KeyPort0 PortAndAction = 0x01
	KeyPort1 PortAndAction = 0x02
	KeyPort2 PortAndAction = 0x04
	KeyPress PortAndAction = 0x80
)

// NewPortAndAction encodes a port and an edge direction.
func NewPortAndAction(p Port, pressed bool) PortAndAction {
	var pa PortAndAction
	switch p {
	case PortContact:
		pa = KeyPort0
	case PortMotion:
		pa = KeyPort1
	case PortButton:
		pa = KeyPort2
	}
	if pressed {
		pa |= KeyPress
	}
	return pa
}

// Port decodes the port. ok is false when no known port bit is set.
// Lower ports win when several bits are set.
func (pa PortAndAction) Port() (Port, bool) {
	switch {
	case pa&KeyPort0 != 0:
		return PortContact, true
	case pa&KeyPort1 != 0:
		return PortMotion, true
	case pa&KeyPort2 != 0:
		return PortButton, true
	}
	return 0, false
}

// Pressed reports whether the edge is a press (electrical level high).
func (pa PortAndAction) Pressed() bool {
	return pa&KeyPress != 0
}

// AttributeByName looks up an attribute by its short name.
func AttributeByName(name string) (AttributeID, bool) {
	for id, n := range attributeNames {
		if n == name {
			return id, true
		}
	}
	return AttributeID{}, false
}
