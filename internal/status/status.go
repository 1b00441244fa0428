// Package status provides a thread-safe status tracker for the sensor-node
// daemon. It is read by the HTTP handlers and the websocket hub.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/sensor-node/internal/node"
)

// NetworkInfo contains network state.
type NetworkInfo struct {
	Type   string
	IP     string
	Status string
}

// Config contains daemon configuration for display.
type Config struct {
	NodeID      string
	ReportMs    int64
	MeasureMs   int64
	HeartbeatMs int64
	Broker      string
	HTTPAddr    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Node          node.State
	Booted        bool
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu      sync.RWMutex
	snap    Snapshot
	now     func() time.Time
	changes chan struct{}
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
		now:     time.Now,
		changes: make(chan struct{}, 1),
	}
}

// Update stores the latest node state. Called from the run loop after every
// dispatch round.
func (t *Tracker) Update(st node.State) {
	t.mu.Lock()
	changed := !t.snap.Booted || t.snap.Node != st
	t.snap.Node = st
	t.snap.Booted = true
	t.mu.Unlock()
	if changed {
		t.notify()
	}
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	changed := t.snap.MQTTConnected != connected
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
	if changed {
		t.notify()
	}
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Changes signals after the tracked state changed. Signals coalesce.
func (t *Tracker) Changes() <-chan struct{} {
	return t.changes
}

func (t *Tracker) notify() {
	select {
	case t.changes <- struct{}{}:
	default:
	}
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
