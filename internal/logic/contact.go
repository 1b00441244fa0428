package logic

// ChannelPhase is the debounce phase of a digital input channel.
type ChannelPhase uint8

const (
	ChannelIdle ChannelPhase = iota
	ChannelConfirming
	ChannelSettling
	ChannelConfirmed
)

func (p ChannelPhase) String() string {
	switch p {
	case ChannelIdle:
		return "idle"
	case ChannelConfirming:
		return "confirming"
	case ChannelSettling:
		return "settling"
	case ChannelConfirmed:
		return "confirmed"
	}
	return "invalid"
}

// ContactChannel tracks a reed-switch style input. Its state follows the
// electrical level immediately; the formal report is delayed by a confirm
// window.
type ContactChannel struct {
	// Closed is the logical state (true = contact made / "on").
	Closed bool
	// PullUp is the bias the input must be configured with so that the
	// next, opposite, transition is sensed.
	PullUp bool
	Phase  ChannelPhase
	// Edges counts edges seen since boot.
	Edges int
}

// Seed sets the state from the electrical level at boot without reporting.
func (c *ContactChannel) Seed(level bool) {
	c.Closed = level
	c.PullUp = level
	c.Phase = ChannelIdle
}

// Edge applies a raw transition. It returns true when the logical state
// changed. The caller must re-apply the bias and (re)arm the confirm timer
// on every edge, changed or not.
func (c *ContactChannel) Edge(level bool) bool {
	changed := c.Closed != level
	c.Closed = level
	c.PullUp = level
	c.Phase = ChannelConfirming
	c.Edges++
	return changed
}

// Confirm ends the confirm window and returns the state to report.
func (c *ContactChannel) Confirm() bool {
	c.Phase = ChannelConfirmed
	return c.Closed
}
