// Package delta turns pairs of cumulative OS counters into rates.
//
// Every value type in this package holds exactly one previous sample. The
// first sample never produces a rate: it only establishes the baseline, and
// the reported value is the zero-state (0). Counter regressions (the OS reset
// its counters) are floored at zero, and a sample with no elapsed time keeps
// the previously reported value instead of dividing by zero.
package delta

import (
	"math"
	"time"
)

// Uint64 returns current-previous for a monotonic counter.
// If the counter went backwards it returns 0 and reports the reset.
func Uint64(previous, current uint64) (delta uint64, reset bool) {
	if current < previous {
		return 0, true
	}
	return current - previous, false
}

// Percent returns 100*busy/total clamped to [0,100].
// A zero total yields 0.
func Percent(busy, total uint64) float32 {
	if total == 0 {
		return 0
	}
	return clamp(float32(100 * float64(busy) / float64(total)))
}

// Share returns the percentage of whole consumed by part.
// A zero whole keeps the previous value.
func Share(part, whole uint64, previous float32) float32 {
	if whole == 0 {
		return clamp(previous)
	}
	return Percent(part, whole)
}

// PerSecond converts a delta observed over elapsed into a per-second rate.
// A non-positive elapsed keeps the previous rate.
func PerSecond(delta uint64, elapsed time.Duration, previous float64) float64 {
	if elapsed <= 0 {
		return previous
	}
	return float64(delta) / elapsed.Seconds()
}

func clamp(v float32) float32 {
	switch {
	case math.IsNaN(float64(v)):
		return 0
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}

// Sample is one reading of a busy/total counter pair.
type Sample struct {
	Busy  uint64
	Total uint64
}

// Ratio tracks a busy/total counter pair across refreshes.
// The zero value is ready to use.
type Ratio struct {
	prev  Sample
	has   bool
	value float32
}

// Update records current and returns the usage percentage since the
// previous sample.
func (r *Ratio) Update(current Sample) float32 {
	if !r.has {
		r.prev, r.has, r.value = current, true, 0
		return 0
	}

	totalDelta, totalReset := Uint64(r.prev.Total, current.Total)
	busyDelta, busyReset := Uint64(r.prev.Busy, current.Busy)
	r.prev = current

	switch {
	case totalReset || busyReset:
		r.value = 0
	case totalDelta == 0:
		// no time elapsed; keep the last reported value
	default:
		r.value = Percent(busyDelta, totalDelta)
	}
	return r.value
}

// Counter tracks one cumulative counter and its since-last-refresh delta.
type Counter struct {
	total uint64
	delta uint64
	has   bool
}

// Update records current and returns the delta since the previous value.
func (c *Counter) Update(current uint64) uint64 {
	if !c.has {
		c.total, c.delta, c.has = current, 0, true
		return 0
	}
	c.delta, _ = Uint64(c.total, current)
	c.total = current
	return c.delta
}

// Total returns the latest cumulative value.
func (c *Counter) Total() uint64 { return c.total }

// Delta returns the delta computed by the last Update.
func (c *Counter) Delta() uint64 { return c.delta }
