package node

import (
	"github.com/rs/zerolog/log"

	"github.com/sweeney/sensor-node/internal/logic"
)

func (n *Node) handleKey(k KeyChange) {
	port, ok := k.PortAndAction.Port()
	if !ok {
		log.Debug().Uint8("port_and_action", uint8(k.PortAndAction)).Msg("key change on unknown port")
		return
	}
	pressed := k.PortAndAction.Pressed()
	log.Debug().Stringer("port", port).Bool("pressed", pressed).Uint8("code", k.Code).Msg("key change")

	switch port {
	case logic.PortContact:
		n.contactEdge(pressed)
	case logic.PortMotion:
		n.motionEdge(pressed)
	case logic.PortButton:
		if pressed {
			n.timers.ArmOnce(logic.EventReport, n.intervals.ButtonReport)
		}
	}
}

func (n *Node) contactEdge(level bool) {
	if n.contact.Edge(level) {
		log.Info().Bool("closed", level).Msg("contact changed")
	}
	n.setBias(logic.PortContact, n.contact.PullUp)
	n.blink()
	n.timers.ArmOnce(logic.EventContactDelay, n.intervals.ContactConfirm)
}

func (n *Node) handleContactDelay() {
	closed := n.contact.Confirm()
	n.settings.ContactOn = closed
	n.report(logic.AttrContact, boolValue(closed))
}

func (n *Node) motionEdge(level bool) {
	action := n.motion.Edge(level)
	n.setBias(logic.PortMotion, n.motion.PullUp)
	n.blink()

	switch action {
	case logic.MotionBegin:
		n.raise(logic.EventMotionBegin)
		n.timers.ArmOnce(logic.EventMeasure, n.intervals.MotionMeasure)
	case logic.MotionRefresh:
		log.Debug().Int("refreshes", n.motion.Refreshes).Msg("presence refresh")
	case logic.MotionSettled:
		n.raise(logic.EventMotionEnd)
	}
}

func (n *Node) handleMotionBegin() {
	n.motion.Begin()
	n.setMotionPower(false)
	n.report(logic.AttrOccupancy, 1)
	n.timers.ArmOnce(logic.EventMotionDelay, n.settings.OccupiedDelayDuration())
	log.Info().Dur("delay", n.settings.OccupiedDelayDuration()).Msg("occupied")
}

func (n *Node) handleMotionDelay() {
	n.motion.Expire(int(n.settings.MotionSettleEdges))
	n.report(logic.AttrOccupancy, 0)
	n.setMotionPower(true)
	if n.motion.Phase == logic.ChannelSettling {
		n.timers.ArmOnce(logic.EventMotionEnd, n.intervals.MotionSettle)
	}
	log.Info().Int("settle_edges", n.motion.SettleRemaining()).Msg("unoccupied")
}

// handleMotionEnd returns the motion channel to idle once the PIR has
// settled after power-up. It never reports.
func (n *Node) handleMotionEnd() {
	n.timers.Disarm(logic.EventMotionEnd)
	if n.motion.Rearm() {
		log.Debug().Msg("motion sensor re-armed")
	}
}
