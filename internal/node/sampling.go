package node

import (
	"github.com/rs/zerolog/log"

	"github.com/sweeney/sensor-node/internal/logic"
)

// handleReport starts a phased, unconditional pass: one phase per sample
// tick so no single dispatch blocks on every sensor at once.
func (n *Node) handleReport() {
	n.mode = logic.ModeUnconditional
	n.passMode = logic.ModeUnconditional
	n.timers.ArmRepeating(logic.EventReadSensors, n.intervals.SampleTick)
}

// handleMeasure runs a gated pass inline. The phased cursor and its mode
// are left alone so a phased pass in flight is not disturbed.
func (n *Node) handleMeasure() {
	n.mode = logic.ModeGated
	for _, p := range logic.Phases {
		n.runPhase(p, logic.ModeGated)
	}
}

func (n *Node) handleReadSensors() {
	run, next := logic.Advance(n.cursor)
	n.cursor = next
	if run == logic.PhaseDone {
		n.timers.Disarm(logic.EventReadSensors)
		log.Debug().Stringer("mode", n.passMode).Msg("sampling pass complete")
		return
	}
	n.runPhase(run, n.passMode)
}

// runPhase is shared by the inline and the phased pass; mode is the mode of
// the pass it belongs to.
func (n *Node) runPhase(p logic.Phase, mode logic.Mode) {
	switch p {
	case logic.PhaseLight:
		n.sampleLight(mode)
	case logic.PhaseBattery:
		n.sampleBattery(mode)
	case logic.PhaseEnvironment:
		n.sampleEnvironment(mode)
	case logic.PhaseBusLightStart:
		n.startBusLight(mode)
	}
}

func (n *Node) sampleLight(mode logic.Mode) {
	if mode == logic.ModeUnconditional {
		n.blink()
	}
	if !n.illuminance.Present {
		return
	}
	v, err := n.sensors.Light.Read()
	if err != nil {
		log.Warn().Err(err).Msg("read illuminance failed")
		return
	}
	n.sample(&n.illuminance, logic.QuantityIlluminance, v, mode)
}

func (n *Node) sampleBattery(mode logic.Mode) {
	if mode != logic.ModeUnconditional || n.sensors.Battery == nil {
		return
	}
	mv, err := n.sensors.Battery.Millivolts()
	if err != nil {
		log.Warn().Err(err).Msg("read battery failed")
		return
	}
	n.batteryMV = mv
	n.report(logic.AttrBatteryVoltage, mv/100)
	n.report(logic.AttrBatteryPercentage, logic.BatteryPercentage(mv))
}

func (n *Node) sampleEnvironment(mode logic.Mode) {
	if !n.temperature.Present {
		return
	}
	c, err := n.sensors.Env.Read()
	if err != nil {
		log.Warn().Err(err).Msg("read environment failed")
		return
	}
	n.sample(&n.temperature, logic.QuantityTemperature, c.TemperatureCenti, mode)
	n.pressureScaled = logic.ScalePressure(c.PressurePa, n.settings.PressureScale)
	if n.sample(&n.pressure, logic.QuantityPressure, c.PressureHPa(), mode) {
		n.report(logic.AttrPressureScaled, n.pressureScaled)
	}
	n.sample(&n.humidity, logic.QuantityHumidity, c.HumidityCenti, mode)
}

// startBusLight triggers a conversion and arms its read. A read still
// pending for an unconditional pass keeps that mode when a gated pass
// restarts the conversion.
func (n *Node) startBusLight(mode logic.Mode) {
	if !n.busIlluminance.Present {
		return
	}
	if err := n.sensors.BusLight.Start(n.settings.BusLightMode); err != nil {
		log.Warn().Err(err).Msg("start bus light conversion failed")
		return
	}
	if !n.busReadPending || mode == logic.ModeUnconditional {
		n.busReadMode = mode
	}
	n.busReadPending = true
	n.timers.ArmOnce(logic.EventBusLightRead, n.settings.BusLightDelay())
}

func (n *Node) handleBusLightRead() {
	if !n.busIlluminance.Present {
		return
	}
	mode := n.busReadMode
	n.busReadPending = false
	lux, err := n.sensors.BusLight.Result()
	if perr := n.sensors.BusLight.PowerDown(); perr != nil {
		log.Warn().Err(perr).Msg("power down bus light failed")
	}
	if err != nil {
		log.Warn().Err(err).Msg("read bus light failed")
		return
	}
	n.sample(&n.busIlluminance, logic.QuantityBusIlluminance, lux, mode)
}

// sample runs change detection in mode and reports on change.
func (n *Node) sample(m *logic.Measurement, q logic.Quantity, v int32, mode logic.Mode) bool {
	if !m.Sample(v, q.Threshold(), mode) {
		return false
	}
	n.report(q.Attribute(), m.Current)
	return true
}
