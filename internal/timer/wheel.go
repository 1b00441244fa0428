// Package timer provides the node's timer facility: one-shot and repeating
// timers keyed by event kind. Time is always injected, so the wheel is
// driven by whatever clock the caller polls it with.
package timer

import (
	"time"

	"github.com/sweeney/sensor-node/internal/logic"
)

type entry struct {
	deadline time.Time
	period   time.Duration // zero for one-shot timers
}

// Wheel holds at most one armed timer per event kind. Arming a kind that is
// already armed replaces it. Not safe for concurrent use.
type Wheel struct {
	now     func() time.Time
	entries map[logic.EventKind]entry
}

// NewWheel creates a wheel that reads the current time from now when arming.
func NewWheel(now func() time.Time) *Wheel {
	return &Wheel{
		now:     now,
		entries: map[logic.EventKind]entry{},
	}
}

// ArmRepeating fires kind every period, first after one period.
func (w *Wheel) ArmRepeating(kind logic.EventKind, period time.Duration) {
	if period <= 0 {
		return
	}
	w.entries[kind] = entry{deadline: w.now().Add(period), period: period}
}

// ArmOnce fires kind once after delay. When kind is already repeating, only
// its next deadline moves; the period is kept.
func (w *Wheel) ArmOnce(kind logic.EventKind, delay time.Duration) {
	if delay < 0 {
		delay = 0
	}
	e := w.entries[kind]
	e.deadline = w.now().Add(delay)
	w.entries[kind] = e
}

// Disarm cancels kind. Disarming an idle kind is a no-op.
func (w *Wheel) Disarm(kind logic.EventKind) {
	delete(w.entries, kind)
}

// Armed reports whether kind is armed.
func (w *Wheel) Armed(kind logic.EventKind) bool {
	_, ok := w.entries[kind]
	return ok
}

// Due returns the kinds whose deadline is not after now. One-shot timers are
// removed; repeating timers move to their next deadline, skipping periods
// that were missed entirely.
func (w *Wheel) Due(now time.Time) logic.EventSet {
	var fired logic.EventSet
	for kind, e := range w.entries {
		if e.deadline.After(now) {
			continue
		}
		fired = fired.With(kind)
		if e.period == 0 {
			delete(w.entries, kind)
			continue
		}
		e.deadline = e.deadline.Add(e.period)
		if !e.deadline.After(now) {
			missed := now.Sub(e.deadline)/e.period + 1
			e.deadline = e.deadline.Add(missed * e.period)
		}
		w.entries[kind] = e
	}
	return fired
}

// Next returns the earliest deadline and whether any timer is armed.
func (w *Wheel) Next() (time.Time, bool) {
	if len(w.entries) == 0 {
		return time.Time{}, false
	}
	var next time.Time
	for _, e := range w.entries {
		if next.IsZero() || e.deadline.Before(next) {
			next = e.deadline
		}
	}
	return next, true
}
