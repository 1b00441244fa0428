package node

import (
	"github.com/rs/zerolog/log"

	"github.com/sweeney/sensor-node/internal/logic"
)

// Dispatch handles one unit of work from pending and returns what is left,
// including events raised while handling it.
//
// Inbound is exclusive: when present, the inbox is drained and nothing else
// runs in this call. Otherwise the first recognised kind in scan order is
// handled. Unknown bits ride along with the remainder, but a set holding only
// unknown bits is discarded.
func (n *Node) Dispatch(pending logic.EventSet) logic.EventSet {
	if pending.Has(logic.EventInbound) {
		n.raised = n.raised.Without(logic.EventInbound)
		n.drainInbox()
		return pending.Without(logic.EventInbound) | n.takeRaised()
	}

	for _, kind := range logic.ScanOrder[1:] {
		if !pending.Has(kind) {
			continue
		}
		log.Debug().Stringer("event", kind).Msg("dispatch")
		n.handle(kind)
		return pending.Without(kind) | n.takeRaised()
	}

	if pending != 0 {
		log.Debug().Stringer("events", pending).Msg("discarding unknown events")
	}
	return n.takeRaised()
}

// Service runs Dispatch until no work is left.
func (n *Node) Service(pending logic.EventSet) {
	pending |= n.takeRaised()
	for pending != 0 {
		pending = n.Dispatch(pending)
	}
}

func (n *Node) handle(kind logic.EventKind) {
	switch kind {
	case logic.EventMeasure:
		n.handleMeasure()
	case logic.EventReport:
		n.handleReport()
	case logic.EventReadSensors:
		n.handleReadSensors()
	case logic.EventMotionBegin:
		n.handleMotionBegin()
	case logic.EventMotionEnd:
		n.handleMotionEnd()
	case logic.EventMotionDelay:
		n.handleMotionDelay()
	case logic.EventContactDelay:
		n.handleContactDelay()
	case logic.EventBusLightRead:
		n.handleBusLightRead()
	case logic.EventSaveSettings:
		n.saveSettings()
	}
}

func (n *Node) raise(kind logic.EventKind) {
	n.raised = n.raised.With(kind)
}

func (n *Node) takeRaised() logic.EventSet {
	r := n.raised
	n.raised = 0
	return r
}
