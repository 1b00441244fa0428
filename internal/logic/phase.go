package logic

// Phase is one slice of a sampling pass.
type Phase uint8

const (
	PhaseLight Phase = iota
	PhaseBattery
	PhaseEnvironment
	PhaseBusLightStart
	// PhaseDone is terminal: the tick that reaches it stops the pass.
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhaseLight:
		return "light"
	case PhaseBattery:
		return "battery"
	case PhaseEnvironment:
		return "environment"
	case PhaseBusLightStart:
		return "bus_light_start"
	case PhaseDone:
		return "done"
	}
	return "invalid"
}

// Phases lists the working phases in the order a pass runs them.
var Phases = []Phase{PhaseLight, PhaseBattery, PhaseEnvironment, PhaseBusLightStart}

// Advance returns the phase whose work runs on this tick and the cursor to
// keep for the next one. When run is PhaseDone the pass is over and next is
// back at PhaseLight. Out-of-range cursors are treated as terminal.
func Advance(cursor Phase) (run, next Phase) {
	if cursor >= PhaseDone {
		return PhaseDone, PhaseLight
	}
	return cursor, cursor + 1
}
