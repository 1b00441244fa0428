package node

import (
	"github.com/rs/zerolog/log"

	"github.com/sweeney/sensor-node/internal/logic"
	"github.com/sweeney/sensor-node/internal/nv"
	"github.com/sweeney/sensor-node/internal/settings"
)

// restoreSettings loads the persisted record. Any failure leaves the
// compiled-in defaults in place.
func (n *Node) restoreSettings() {
	if n.store == nil {
		return
	}
	status, err := n.store.Init(settings.ItemID, settings.Size)
	if err != nil {
		log.Warn().Err(err).Msg("settings store init failed, using defaults")
		return
	}
	if status == nv.StatusUninitialized {
		log.Info().Msg("settings store empty, writing defaults")
		n.writeSettings()
		return
	}

	buf := make([]byte, settings.Size)
	if err := n.store.Read(settings.ItemID, buf); err != nil {
		log.Warn().Err(err).Msg("settings read failed, using defaults")
		return
	}
	var s settings.Settings
	if err := s.UnmarshalBinary(buf); err != nil {
		log.Warn().Err(err).Msg("settings decode failed, using defaults")
		return
	}
	n.settings = s
	log.Info().
		Uint16("occupied_delay", s.OccupiedDelay).
		Int8("pressure_scale", s.PressureScale).
		Uint8("bus_light_mode", s.BusLightMode).
		Msg("settings restored")
}

func (n *Node) writeSettings() {
	if n.store == nil {
		return
	}
	buf, err := n.settings.MarshalBinary()
	if err != nil {
		log.Warn().Err(err).Msg("settings encode failed")
		return
	}
	if err := n.store.Write(settings.ItemID, buf); err != nil {
		log.Warn().Err(err).Msg("settings write failed")
	}
}

// requestSave coalesces bursts of changes into a single write.
func (n *Node) requestSave() {
	n.timers.ArmOnce(logic.EventSaveSettings, n.intervals.SaveDelay)
}

func (n *Node) saveSettings() {
	n.writeSettings()
	log.Debug().Msg("settings saved")
}

func (n *Node) handleAttributeWrite(w AttributeWrite) {
	switch w.ID {
	case logic.AttrOccupancyDelay:
		if w.Value < 0 || w.Value > 0xFFFF {
			n.rejectWrite(w, "out of range")
			return
		}
		n.settings.OccupiedDelay = uint16(w.Value)
	case logic.AttrPressureScale:
		if w.Value < -127 || w.Value > 127 {
			n.rejectWrite(w, "out of range")
			return
		}
		n.settings.PressureScale = int8(w.Value)
	case logic.AttrBusIlluminanceMode:
		if w.Value < 0 || w.Value > 0xFF || !settings.IsBusLightMode(uint8(w.Value)) {
			n.rejectWrite(w, "unknown mode")
			return
		}
		n.settings.BusLightMode = uint8(w.Value)
	default:
		n.rejectWrite(w, "not writable")
		return
	}
	log.Info().Str("attribute", w.ID.Name()).Int32("value", w.Value).Msg("attribute written")
	n.report(w.ID, w.Value)
	n.requestSave()
}

func (n *Node) rejectWrite(w AttributeWrite, reason string) {
	log.Warn().
		Uint8("endpoint", w.ID.Endpoint).
		Uint16("cluster", w.ID.Cluster).
		Uint16("attribute", w.ID.Attribute).
		Int32("value", w.Value).
		Str("reason", reason).
		Msg("attribute write rejected")
}

func (n *Node) handleReset() {
	n.settings = settings.Defaults()
	n.settings.ContactOn = n.contact.Closed
	n.timers.Disarm(logic.EventSaveSettings)
	n.writeSettings()
	log.Info().Msg("settings reset to defaults")
}
