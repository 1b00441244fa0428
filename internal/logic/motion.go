package logic

// MotionAction is what the caller must do after a raw motion edge.
type MotionAction uint8

const (
	// MotionIgnore: nothing to do.
	MotionIgnore MotionAction = iota
	// MotionBegin: raise the motion-begin event.
	MotionBegin
	// MotionRefresh: presence seen while the unoccupied delay is pending.
	MotionRefresh
	// MotionSettled: the power-up settle count reached zero; raise the
	// motion-end event.
	MotionSettled
)

func (a MotionAction) String() string {
	switch a {
	case MotionIgnore:
		return "ignore"
	case MotionBegin:
		return "begin"
	case MotionRefresh:
		return "refresh"
	case MotionSettled:
		return "settled"
	}
	return "invalid"
}

// MotionChannel tracks a PIR input with asymmetric timing: occupied is
// reported at once, unoccupied only after a configurable delay during which
// the PIR is powered down.
//
//	idle --press--> confirming --delay--> settling --N edges or timeout--> idle
type MotionChannel struct {
	Occupied bool
	PullUp   bool
	Phase    ChannelPhase
	// Powered mirrors the PIR power enable output.
	Powered bool
	// Refreshes counts presence refreshes seen while confirming.
	Refreshes int

	settle int
}

// Seed sets occupancy and bias from the electrical level at boot. The
// channel starts idle with the PIR powered; no delay is armed.
func (m *MotionChannel) Seed(level bool) {
	m.Occupied = level
	m.PullUp = level
	m.Phase = ChannelIdle
	m.Powered = true
	m.settle = 0
}

// Edge applies a raw transition and returns the action it requires.
func (m *MotionChannel) Edge(level bool) MotionAction {
	m.PullUp = level
	switch m.Phase {
	case ChannelIdle:
		if !level {
			return MotionIgnore
		}
		m.Phase = ChannelConfirming
		return MotionBegin
	case ChannelConfirming:
		m.Refreshes++
		return MotionRefresh
	case ChannelSettling:
		if m.settle <= 0 {
			return MotionIgnore
		}
		m.settle--
		if m.settle == 0 {
			return MotionSettled
		}
	}
	return MotionIgnore
}

// Begin marks the channel occupied. The caller powers the PIR down,
// reports and arms the unoccupied delay.
func (m *MotionChannel) Begin() {
	m.Phase = ChannelConfirming
	m.Occupied = true
	m.Powered = false
}

// Expire ends the unoccupied delay: the channel becomes unoccupied, the PIR
// is powered again and the next settleEdges edges are swallowed.
func (m *MotionChannel) Expire(settleEdges int) {
	m.Occupied = false
	m.Powered = true
	m.Phase = ChannelSettling
	m.settle = settleEdges
	if settleEdges <= 0 {
		m.Phase = ChannelIdle
	}
}

// Rearm returns a settling channel to idle. It reports whether the phase
// changed.
func (m *MotionChannel) Rearm() bool {
	if m.Phase != ChannelSettling {
		return false
	}
	m.Phase = ChannelIdle
	m.settle = 0
	return true
}

// SettleRemaining returns how many edges are still swallowed.
func (m *MotionChannel) SettleRemaining() int {
	return m.settle
}
