package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/sensor-node/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string        `json:"event,omitempty"`
	Reason        string        `json:"reason,omitempty"`
	Ready         bool          `json:"ready"`
	UptimeSeconds int64         `json:"uptime_seconds"`
	StartTime     string        `json:"start_time"`
	Timestamp     string        `json:"timestamp"`
	MQTT          MQTTStatus    `json:"mqtt"`
	Sampling      SamplingJSON  `json:"sampling"`
	Sensors       SensorsJSON   `json:"sensors"`
	BatteryMV     int32         `json:"battery_mv"`
	Contact       ContactJSON   `json:"contact"`
	Occupancy     OccupancyJSON `json:"occupancy"`
	Settings      SettingsJSON  `json:"settings"`
	Reports       int           `json:"reports"`
	Network       *NetworkJSON  `json:"network,omitempty"`
	Config        ConfigJSON    `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// SamplingJSON reports the scheduler state.
type SamplingJSON struct {
	Mode  string `json:"mode"`
	Phase string `json:"phase"`
}

// MeasurementJSON is one sampled quantity. Absent sensors are null.
type MeasurementJSON struct {
	Value        int32 `json:"value"`
	LastReported int32 `json:"last_reported"`
}

// SensorsJSON groups the sampled quantities.
type SensorsJSON struct {
	Illuminance    *MeasurementJSON `json:"illuminance"`
	BusIlluminance *MeasurementJSON `json:"illuminance_bus"`
	Temperature    *MeasurementJSON `json:"temperature"`
	Pressure       *MeasurementJSON `json:"pressure"`
	PressureScaled int32            `json:"pressure_scaled"`
	Humidity       *MeasurementJSON `json:"humidity"`
}

// ContactJSON is the contact channel.
type ContactJSON struct {
	Closed bool   `json:"closed"`
	Phase  string `json:"phase"`
	Edges  int    `json:"edges"`
}

// OccupancyJSON is the motion channel.
type OccupancyJSON struct {
	Occupied  bool   `json:"occupied"`
	Phase     string `json:"phase"`
	Powered   bool   `json:"sensor_powered"`
	Refreshes int    `json:"refreshes"`
}

// SettingsJSON is the persisted settings record.
type SettingsJSON struct {
	OccupiedDelay        uint16 `json:"occupancy_timeout_s"`
	PressureScale        int8   `json:"pressure_scale"`
	BusLightMode         uint8  `json:"illuminance_bus_mode"`
	BusLightLowResDelay  uint16 `json:"illuminance_bus_lowres_delay_ms"`
	BusLightHighResDelay uint16 `json:"illuminance_bus_highres_delay_ms"`
	MotionSettleEdges    uint8  `json:"motion_settle_edges"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type   string `json:"type"`
	IP     string `json:"ip"`
	Status string `json:"status"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	NodeID      string `json:"node_id"`
	ReportMs    int64  `json:"report_ms"`
	MeasureMs   int64  `json:"measure_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

func measurement(m logic.Measurement) *MeasurementJSON {
	if !m.Present {
		return nil
	}
	return &MeasurementJSON{Value: m.Current, LastReported: m.LastReported}
}

func buildInner(snap Snapshot) StatusInner {
	st := snap.Node
	s := st.Settings
	return StatusInner{
		Ready:         snap.Booted,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Sampling:      SamplingJSON{Mode: st.Mode.String(), Phase: st.Cursor.String()},
		Sensors: SensorsJSON{
			Illuminance:    measurement(st.Illuminance),
			BusIlluminance: measurement(st.BusIlluminance),
			Temperature:    measurement(st.Temperature),
			Pressure:       measurement(st.Pressure),
			PressureScaled: st.PressureScaled,
			Humidity:       measurement(st.Humidity),
		},
		BatteryMV: st.BatteryMV,
		Contact: ContactJSON{
			Closed: st.Contact.Closed,
			Phase:  st.Contact.Phase.String(),
			Edges:  st.Contact.Edges,
		},
		Occupancy: OccupancyJSON{
			Occupied:  st.Motion.Occupied,
			Phase:     st.Motion.Phase.String(),
			Powered:   st.Motion.Powered,
			Refreshes: st.Motion.Refreshes,
		},
		Settings: SettingsJSON{
			OccupiedDelay:        s.OccupiedDelay,
			PressureScale:        s.PressureScale,
			BusLightMode:         s.BusLightMode,
			BusLightLowResDelay:  s.BusLightLowResDelay,
			BusLightHighResDelay: s.BusLightHighResDelay,
			MotionSettleEdges:    s.MotionSettleEdges,
		},
		Reports: st.Reports,
		Config: ConfigJSON{
			NodeID:      snap.Config.NodeID,
			ReportMs:    snap.Config.ReportMs,
			MeasureMs:   snap.Config.MeasureMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:   snap.Network.Type,
			IP:     snap.Network.IP,
			Status: snap.Network.Status,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatCompactJSON returns the same document on one line, for streaming.
func FormatCompactJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
