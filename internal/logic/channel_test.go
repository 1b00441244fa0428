package logic

import "testing"

func TestContactSeed(t *testing.T) {
	var c ContactChannel
	c.Seed(true)
	if !c.Closed || !c.PullUp {
		t.Errorf("seed high: got closed=%v pullUp=%v, want true/true", c.Closed, c.PullUp)
	}
	if c.Phase != ChannelIdle {
		t.Errorf("seed phase: got %s, want idle", c.Phase)
	}

	c.Seed(false)
	if c.Closed || c.PullUp {
		t.Errorf("seed low: got closed=%v pullUp=%v, want false/false", c.Closed, c.PullUp)
	}
}

func TestContactOptimisticUpdate(t *testing.T) {
	var c ContactChannel
	c.Seed(false)

	for i, level := range []bool{true, false, true} {
		if !c.Edge(level) {
			t.Errorf("edge %d: expected state change", i)
		}
		if c.Closed != level {
			t.Errorf("edge %d: Closed=%v, want %v without confirm", i, c.Closed, level)
		}
		if c.PullUp != level {
			t.Errorf("edge %d: PullUp=%v, want %v", i, c.PullUp, level)
		}
		if c.Phase != ChannelConfirming {
			t.Errorf("edge %d: phase %s, want confirming", i, c.Phase)
		}
	}
	if c.Edges != 3 {
		t.Errorf("Edges: got %d, want 3", c.Edges)
	}

	if got := c.Confirm(); !got {
		t.Error("Confirm should return current state (true)")
	}
	if c.Phase != ChannelConfirmed {
		t.Errorf("phase after confirm: got %s, want confirmed", c.Phase)
	}
}

func TestContactRepeatedLevelNotAChange(t *testing.T) {
	var c ContactChannel
	c.Seed(true)
	if c.Edge(true) {
		t.Error("same level edge should not report a change")
	}
	if c.Phase != ChannelConfirming {
		t.Error("every edge restarts the confirm window")
	}
}

func TestMotionSeed(t *testing.T) {
	var m MotionChannel
	m.Seed(true)
	if !m.Occupied || !m.PullUp || !m.Powered {
		t.Errorf("seed high: occupied=%v pullUp=%v powered=%v", m.Occupied, m.PullUp, m.Powered)
	}
	if m.Phase != ChannelIdle {
		t.Errorf("seed phase: got %s, want idle", m.Phase)
	}
}

func TestMotionFullCycle(t *testing.T) {
	var m MotionChannel
	m.Seed(false)

	if got := m.Edge(false); got != MotionIgnore {
		t.Errorf("release while idle: got %s, want ignore", got)
	}
	if got := m.Edge(true); got != MotionBegin {
		t.Fatalf("press while idle: got %s, want begin", got)
	}

	m.Begin()
	if !m.Occupied || m.Powered {
		t.Errorf("after begin: occupied=%v powered=%v, want true/false", m.Occupied, m.Powered)
	}

	// Presence refresh while confirming never re-begins.
	if got := m.Edge(true); got != MotionRefresh {
		t.Errorf("press while confirming: got %s, want refresh", got)
	}
	if got := m.Edge(false); got != MotionRefresh {
		t.Errorf("release while confirming: got %s, want refresh", got)
	}
	if m.Refreshes != 2 {
		t.Errorf("Refreshes: got %d, want 2", m.Refreshes)
	}

	m.Expire(2)
	if m.Occupied || !m.Powered {
		t.Errorf("after expire: occupied=%v powered=%v, want false/true", m.Occupied, m.Powered)
	}
	if m.Phase != ChannelSettling {
		t.Fatalf("after expire: phase %s, want settling", m.Phase)
	}

	if got := m.Edge(true); got != MotionIgnore {
		t.Errorf("first settle edge: got %s, want ignore", got)
	}
	if got := m.Edge(false); got != MotionSettled {
		t.Errorf("second settle edge: got %s, want settled", got)
	}
	if got := m.Edge(true); got != MotionIgnore {
		t.Errorf("edge after settle count exhausted: got %s, want ignore", got)
	}

	if !m.Rearm() {
		t.Error("Rearm from settling should change phase")
	}
	if m.Phase != ChannelIdle {
		t.Errorf("phase after rearm: got %s, want idle", m.Phase)
	}
	if m.Rearm() {
		t.Error("second Rearm should be a no-op")
	}

	if got := m.Edge(true); got != MotionBegin {
		t.Errorf("press after rearm: got %s, want begin", got)
	}
}

func TestMotionExpireWithoutSettleEdges(t *testing.T) {
	var m MotionChannel
	m.Seed(false)
	m.Edge(true)
	m.Begin()
	m.Expire(0)
	if m.Phase != ChannelIdle {
		t.Errorf("phase: got %s, want idle", m.Phase)
	}
	if m.Rearm() {
		t.Error("Rearm should be a no-op when not settling")
	}
}

func TestPortAndAction(t *testing.T) {
	tests := []struct {
		port    Port
		pressed bool
	}{
		{PortContact, true},
		{PortContact, false},
		{PortMotion, true},
		{PortMotion, false},
		{PortButton, true},
		{PortButton, false},
	}
	for _, tt := range tests {
		pa := NewPortAndAction(tt.port, tt.pressed)
		port, ok := pa.Port()
		if !ok || port != tt.port {
			t.Errorf("%s/%v: port decoded as %s ok=%v", tt.port, tt.pressed, port, ok)
		}
		if pa.Pressed() != tt.pressed {
			t.Errorf("%s/%v: pressed decoded as %v", tt.port, tt.pressed, pa.Pressed())
		}
	}

	if _, ok := KeyPress.Port(); ok {
		t.Error("press bit alone should not decode to a port")
	}
}

func TestAttributeByName(t *testing.T) {
	for _, id := range []AttributeID{AttrTemperature, AttrOccupancyDelay, AttrBusIlluminanceMode} {
		got, ok := AttributeByName(id.Name())
		if !ok || got != id {
			t.Errorf("AttributeByName(%q) = (%v, %v), want %v", id.Name(), got, ok, id)
		}
	}
	if _, ok := AttributeByName("nope"); ok {
		t.Error("unknown name must not resolve")
	}
	if (AttributeID{Endpoint: 9}).Name() != "unknown" {
		t.Error("unmapped attribute should be named unknown")
	}
}
