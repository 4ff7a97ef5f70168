package gosched

import "github.com/muwerk/gosched/clock"

// Periodic is a small stateful helper for tasks that want to rate-limit
// work to slower than the scheduler's own Step cadence without registering
// a second Task. It samples a clock.Source
// directly rather than going through a Scheduler, so it works the same
// inside a task callback or in the host's own code.
type Periodic struct {
	source   clock.Source
	periodUs uint32
	lastUs   uint32
	primed   bool
}

// NewPeriodic creates a Periodic that fires every periodUs, sampling now
// from source (clock.Real() if nil).
func NewPeriodic(periodUs uint32, source clock.Source) *Periodic {
	if source == nil {
		source = clock.Real()
	}
	return &Periodic{source: source, periodUs: periodUs}
}

// Due reports whether periodUs has elapsed since the last Due call that
// returned true, and advances its internal reference point when it does.
// The first call always returns true, matching a Task's own first
// dispatch semantics (Add back-dates LastCallUs by a full period, so a
// new Task is due on the first Step).
func (p *Periodic) Due() bool {
	now := p.source()
	if !p.primed {
		p.primed = true
		p.lastUs = now
		return true
	}
	if clock.Delta(p.lastUs, now) < p.periodUs {
		return false
	}
	p.lastUs = now
	return true
}

// Timeout is a one-shot countdown built on the same wrapping counter
// arithmetic as Periodic, for tasks that need "has this deadline passed"
// rather than "fire every N".
type Timeout struct {
	source  clock.Source
	startUs uint32
	spanUs  uint32
}

// NewTimeout creates a Timeout that expires spanUs after construction.
func NewTimeout(spanUs uint32, source clock.Source) *Timeout {
	if source == nil {
		source = clock.Real()
	}
	return &Timeout{source: source, startUs: source(), spanUs: spanUs}
}

// Expired reports whether spanUs has elapsed since construction or the
// last Reset.
func (t *Timeout) Expired() bool {
	return clock.Delta(t.startUs, t.source()) >= t.spanUs
}

// Reset rearms the timeout against the current time.
func (t *Timeout) Reset() {
	t.startUs = t.source()
}
