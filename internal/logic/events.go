package logic

import "strings"

// EventKind is one kind of event the dispatcher recognises.
type EventKind uint8

// Kinds are declared in dispatcher scan order.
const (
	EventInbound EventKind = iota
	EventMeasure
	EventReport
	EventReadSensors
	EventMotionBegin
	EventMotionEnd
	EventMotionDelay
	EventContactDelay
	EventBusLightRead
	EventSaveSettings

	numEventKinds
)

var eventNames = [numEventKinds]string{
	EventInbound:      "INBOUND",
	EventMeasure:      "MEASURE",
	EventReport:       "REPORT",
	EventReadSensors:  "READ_SENSORS",
	EventMotionBegin:  "MOTION_BEGIN",
	EventMotionEnd:    "MOTION_END",
	EventMotionDelay:  "MOTION_DELAY",
	EventContactDelay: "CONTACT_DELAY",
	EventBusLightRead: "BUS_LIGHT_READ",
	EventSaveSettings: "SAVE_SETTINGS",
}

func (k EventKind) String() string {
	if k < numEventKinds {
		return eventNames[k]
	}
	return "UNKNOWN"
}

// Known reports whether the dispatcher recognises k.
func (k EventKind) Known() bool {
	return k < numEventKinds
}

// ScanOrder lists the recognised kinds in the order the dispatcher checks them.
var ScanOrder = []EventKind{
	EventInbound,
	EventMeasure,
	EventReport,
	EventReadSensors,
	EventMotionBegin,
	EventMotionEnd,
	EventMotionDelay,
	EventContactDelay,
	EventBusLightRead,
	EventSaveSettings,
}

// EventSet is a set of pending event kinds. Bits above the recognised kinds
// may be set by foreign sources; the dispatcher leaves them alone.
type EventSet uint16

// Set returns a set holding the given kinds.
func Set(kinds ...EventKind) EventSet {
	var s EventSet
	for _, k := range kinds {
		s = s.With(k)
	}
	return s
}

func (s EventSet) Has(k EventKind) bool {
	return s&(1<<k) != 0
}

func (s EventSet) With(k EventKind) EventSet {
	return s | 1<<k
}

func (s EventSet) Without(k EventKind) EventSet {
	return s &^ (1 << k)
}

// Unknown returns the bits that do not map to a recognised kind.
func (s EventSet) Unknown() EventSet {
	return s &^ (1<<numEventKinds - 1)
}

func (s EventSet) String() string {
	if s == 0 {
		return "{}"
	}
	var parts []string
	for _, k := range ScanOrder {
		if s.Has(k) {
			parts = append(parts, k.String())
		}
	}
	if s.Unknown() != 0 {
		parts = append(parts, "UNKNOWN")
	}
	return "{" + strings.Join(parts, ",") + "}"
}
