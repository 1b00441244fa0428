package logic

import "testing"

func TestEventSet(t *testing.T) {
	s := Set(EventMeasure, EventSaveSettings)
	if !s.Has(EventMeasure) || !s.Has(EventSaveSettings) {
		t.Errorf("set %s missing members", s)
	}
	if s.Has(EventReport) {
		t.Error("unexpected member REPORT")
	}

	s = s.Without(EventMeasure)
	if s.Has(EventMeasure) {
		t.Error("Without did not clear MEASURE")
	}
	if s != Set(EventSaveSettings) {
		t.Errorf("got %s, want {SAVE_SETTINGS}", s)
	}
}

func TestEventSetUnknown(t *testing.T) {
	foreign := EventSet(1 << 14)
	s := Set(EventReport) | foreign
	if s.Unknown() != foreign {
		t.Errorf("Unknown: got %#x, want %#x", s.Unknown(), foreign)
	}
	if Set(ScanOrder...).Unknown() != 0 {
		t.Error("recognised kinds reported as unknown")
	}
}

func TestScanOrderCoversAllKinds(t *testing.T) {
	if len(ScanOrder) != int(numEventKinds) {
		t.Fatalf("ScanOrder has %d kinds, want %d", len(ScanOrder), numEventKinds)
	}
	for i, k := range ScanOrder {
		if int(k) != i {
			t.Errorf("ScanOrder[%d] = %s, out of declaration order", i, k)
		}
		if !k.Known() {
			t.Errorf("%s not known", k)
		}
	}
	if EventKind(numEventKinds).Known() {
		t.Error("kind past the end must not be known")
	}
}

func TestEventSetString(t *testing.T) {
	if got := EventSet(0).String(); got != "{}" {
		t.Errorf("empty: got %q", got)
	}
	if got := Set(EventInbound, EventSaveSettings).String(); got != "{INBOUND,SAVE_SETTINGS}" {
		t.Errorf("got %q", got)
	}
}

func TestAttributeNames(t *testing.T) {
	if AttrOccupancy.Name() != "occupancy" {
		t.Errorf("got %q", AttrOccupancy.Name())
	}
	if (AttributeID{Endpoint: 9}).Name() != "unknown" {
		t.Error("unregistered attribute should be unknown")
	}
}
