// Package clock provides the wrapping monotonic microsecond counter the
// scheduler uses for all elapsed-time accounting (period checks, lateness,
// uptime). Deriving "has enough time passed" from a free-running counter
// instead of wall-clock time sidesteps DST/NTP jumps entirely.
package clock

import "time"

// Source returns the current value of a free-running, wrapping microsecond
// counter. Implementations are not required to share an epoch with
// time.Now(); only the rate (microseconds) and the wrap width (the
// underlying integer type) matter to Delta.
type Source func() uint32

// Real returns a Source backed by the platform's wall clock, truncated to
// the low 32 bits of a microsecond counter. Resolution is well under a
// millisecond.
func Real() Source {
	return func() uint32 {
		return uint32(time.Now().UnixMicro())
	}
}

// Delta returns second-first under modular arithmetic of the counter's
// width. The caller guarantees the true elapsed interval is less than half
// the counter range, so wraparound never needs to be detected explicitly:
// unsigned subtraction already produces the correct result.
//
// Delta(t, t) == 0 and Delta(math.MaxUint32, 0) == 1 hold for any t by
// construction.
func Delta(first, second uint32) uint32 {
	return second - first
}

// Clock bundles a Source with the counter value observed at construction,
// so callers can derive an uptime without re-deriving an epoch of their
// own.
type Clock struct {
	source Source
	start  uint32
}

// New wraps the given Source.
func New(source Source) *Clock {
	if source == nil {
		source = Real()
	}
	return &Clock{source: source, start: source()}
}

// NewReal is a convenience for New(Real()).
func NewReal() *Clock {
	return New(Real())
}

// Now samples the underlying Source.
func (c *Clock) Now() uint32 {
	return c.source()
}

// UptimeSeconds returns the elapsed time since the Clock was constructed,
// in seconds, as a float64 for display/diagnostics purposes.
func (c *Clock) UptimeSeconds() float64 {
	return float64(Delta(c.start, c.Now())) / 1e6
}
