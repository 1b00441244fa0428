// Package node is the application core of the sensor node: it owns all
// mutable node state and turns dispatched events into sampling, debounce,
// reporting and settings actions. It runs on a single goroutine; a Node is
// not safe for concurrent use.
package node

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sweeney/sensor-node/internal/logic"
	"github.com/sweeney/sensor-node/internal/nv"
	"github.com/sweeney/sensor-node/internal/sensors"
	"github.com/sweeney/sensor-node/internal/settings"
)

// Timers is the timer facility the node arms its events on.
type Timers interface {
	ArmRepeating(kind logic.EventKind, period time.Duration)
	ArmOnce(kind logic.EventKind, delay time.Duration)
	Disarm(kind logic.EventKind)
}

// Reporter receives attribute changes. Calls must not block.
type Reporter interface {
	AttributeChanged(a logic.Attribute)
}

// Outputs drives the node's digital outputs and input biasing.
type Outputs interface {
	// SetBias configures the input's pull and sensed edge so that the
	// transition away from the current level is detected.
	SetBias(port logic.Port, pullUp bool) error
	SetMotionPower(on bool) error
	BlinkLED() error
}

// Sensors groups the drivers. A nil driver counts as not detected.
type Sensors struct {
	Light    sensors.Illuminance
	BusLight sensors.BusLight
	Env      sensors.Environment
	Battery  sensors.Battery
}

// Intervals holds the node's timing constants.
type Intervals struct {
	Report         time.Duration // unconditional phased pass
	Measure        time.Duration // gated inline pass
	SampleTick     time.Duration // phase tick during a phased pass
	ContactConfirm time.Duration
	SaveDelay      time.Duration
	MotionMeasure  time.Duration // gated pass after motion begins
	ButtonReport   time.Duration
	MotionSettle   time.Duration // settle timeout after PIR power-up
}

// DefaultIntervals returns the stock timing.
func DefaultIntervals() Intervals {
	return Intervals{
		Report:         30 * time.Minute,
		Measure:        10 * time.Second,
		SampleTick:     100 * time.Millisecond,
		ContactConfirm: 500 * time.Millisecond,
		SaveDelay:      2 * time.Second,
		MotionMeasure:  100 * time.Millisecond,
		ButtonReport:   200 * time.Millisecond,
		MotionSettle:   3 * time.Second,
	}
}

// lightDetectThreshold is the ADC reading above which a photo-resistor is
// assumed fitted; a floating input reads lower.
const lightDetectThreshold = 1000

// Config wires a Node to its collaborators.
type Config struct {
	Timers    Timers
	Reporter  Reporter
	Outputs   Outputs
	Sensors   Sensors
	Store     nv.Store
	Intervals Intervals
}

// Node is the single owned application state.
type Node struct {
	timers    Timers
	reporter  Reporter
	outputs   Outputs
	sensors   Sensors
	store     nv.Store
	intervals Intervals

	settings settings.Settings
	mode     logic.Mode // mode of the most recently started pass
	cursor   logic.Phase
	passMode logic.Mode // mode of the phased pass

	busReadMode    logic.Mode
	busReadPending bool

	illuminance    logic.Measurement
	busIlluminance logic.Measurement
	temperature    logic.Measurement
	pressure       logic.Measurement
	humidity       logic.Measurement
	pressureScaled int32
	batteryMV      int32

	contact logic.ContactChannel
	motion  logic.MotionChannel

	inbox  []Message
	raised logic.EventSet

	reports int
}

// New creates a Node with compiled-in settings. Call Boot before
// dispatching.
func New(cfg Config) *Node {
	return &Node{
		timers:    cfg.Timers,
		reporter:  cfg.Reporter,
		outputs:   cfg.Outputs,
		sensors:   cfg.Sensors,
		store:     cfg.Store,
		intervals: cfg.Intervals,
		settings:  settings.Defaults(),
	}
}

// Boot restores settings, probes sensors, seeds the input channels from
// their electrical levels and arms the periodic timers.
func (n *Node) Boot(contactLevel, motionLevel bool) {
	n.restoreSettings()
	n.detectSensors()

	n.contact.Seed(contactLevel)
	n.settings.ContactOn = n.contact.Closed
	n.setBias(logic.PortContact, n.contact.PullUp)

	n.motion.Seed(motionLevel)
	n.setBias(logic.PortMotion, n.motion.PullUp)
	n.setMotionPower(true)

	n.timers.ArmRepeating(logic.EventReport, n.intervals.Report)
	n.timers.ArmRepeating(logic.EventMeasure, n.intervals.Measure)

	log.Info().
		Bool("contact", contactLevel).
		Bool("occupied", motionLevel).
		Bool("light", n.illuminance.Present).
		Bool("bus_light", n.busIlluminance.Present).
		Bool("environment", n.temperature.Present).
		Msg("node booted")
}

func (n *Node) detectSensors() {
	if n.sensors.Light != nil {
		v, err := n.sensors.Light.Read()
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("light sensor read failed, sampling disabled")
		case v <= lightDetectThreshold:
			log.Warn().Int32("adc", v).Msg("light sensor not detected, sampling disabled")
		default:
			n.illuminance.Present = true
			n.illuminance.Current = v
		}
	}

	if n.sensors.Env != nil {
		if err := n.sensors.Env.Detect(); err != nil {
			log.Warn().Err(err).Msg("environment sensor not detected, sampling disabled")
		} else {
			n.temperature.Present = true
			n.pressure.Present = true
			n.humidity.Present = true
		}
	}

	if n.sensors.BusLight != nil {
		if err := n.sensors.BusLight.Detect(n.settings.BusLightMode); err != nil {
			log.Warn().Err(err).Msg("bus light sensor not detected, sampling disabled")
		} else {
			n.busIlluminance.Present = true
		}
	}
}

func (n *Node) report(id logic.AttributeID, value int32) {
	n.reports++
	log.Debug().Str("attribute", id.Name()).Int32("value", value).Msg("report")
	if n.reporter != nil {
		n.reporter.AttributeChanged(logic.Attribute{ID: id, Value: value})
	}
}

func (n *Node) setBias(port logic.Port, pullUp bool) {
	if err := n.outputs.SetBias(port, pullUp); err != nil {
		log.Warn().Err(err).Stringer("port", port).Bool("pull_up", pullUp).Msg("set input bias failed")
	}
}

func (n *Node) setMotionPower(on bool) {
	if err := n.outputs.SetMotionPower(on); err != nil {
		log.Warn().Err(err).Bool("on", on).Msg("set motion sensor power failed")
	}
}

func (n *Node) blink() {
	if err := n.outputs.BlinkLED(); err != nil {
		log.Warn().Err(err).Msg("blink led failed")
	}
}

func boolValue(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// State is a point-in-time copy of the node state.
type State struct {
	Mode           logic.Mode
	Cursor         logic.Phase
	Illuminance    logic.Measurement
	BusIlluminance logic.Measurement
	Temperature    logic.Measurement
	Pressure       logic.Measurement
	Humidity       logic.Measurement
	PressureScaled int32
	BatteryMV      int32
	Contact        logic.ContactChannel
	Motion         logic.MotionChannel
	Settings       settings.Settings
	Reports        int
}

// State returns a copy of the current node state.
func (n *Node) State() State {
	return State{
		Mode:           n.mode,
		Cursor:         n.cursor,
		Illuminance:    n.illuminance,
		BusIlluminance: n.busIlluminance,
		Temperature:    n.temperature,
		Pressure:       n.pressure,
		Humidity:       n.humidity,
		PressureScaled: n.pressureScaled,
		BatteryMV:      n.batteryMV,
		Contact:        n.contact,
		Motion:         n.motion,
		Settings:       n.settings,
		Reports:        n.reports,
	}
}
