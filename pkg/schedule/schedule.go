package schedule

import "math"

// Epsilon is the tolerance used for all amount comparisons. Allocation moves
// float64 amounts through many proportional splits, so exact equality is
// never meaningful.
const Epsilon = 0.00001

// Unbounded is passed as a limit argument to mean "no cap".
var Unbounded = math.Inf(1)

// Schedule maps a normalized time in [0, 1] to a signed amount. Inflows are
// positive and outflows negative. A nil Schedule behaves like an empty one
// for all read operations.
type Schedule map[float64]float64

// Timing maps a normalized time in [0, 1] to a relative weight. Timings say
// when money should move; the weights are proportions, not amounts.
type Timing map[float64]float64

// Distribute spreads total across the times of timing in proportion to
// their weights. An empty or zero-weight timing places the whole total at
// time zero.
func Distribute(total float64, timing Timing) Schedule {
	var sum float64
	for _, w := range timing {
		sum += w
	}
	if len(timing) == 0 || Zeroish(sum) {
		return Schedule{0: total}
	}
	s := make(Schedule, len(timing))
	for when, w := range timing {
		s[when] = total * w / sum
	}
	return s
}

// Total returns the sum of all amounts in s.
func Total(s Schedule) float64 {
	var total float64
	for _, amount := range s {
		total += amount
	}
	return total
}

// Add merges src into dst, summing amounts at shared times. dst must be
// non-nil. It returns dst for chaining.
func Add(dst, src Schedule) Schedule {
	for when, amount := range src {
		dst[when] += amount
	}
	return dst
}

// Merge returns a new schedule holding the union of a and b, with amounts at
// shared times summed. Neither input is modified.
func Merge(a, b Schedule) Schedule {
	merged := make(Schedule, len(a)+len(b))
	Add(merged, a)
	Add(merged, b)
	return merged
}

// Scale returns a new schedule with every amount multiplied by f. Times are
// preserved, so scaling by zero yields explicit zero amounts rather than an
// empty schedule.
func Scale(s Schedule, f float64) Schedule {
	scaled := make(Schedule, len(s))
	for when, amount := range s {
		scaled[when] = amount * f
	}
	return scaled
}

// Clone returns a copy of s that shares no storage with it.
func Clone(s Schedule) Schedule {
	cloned := make(Schedule, len(s))
	for when, amount := range s {
		cloned[when] = amount
	}
	return cloned
}

// Weights returns the times of s paired with the absolute value of their
// amounts, for use as proportional weights when re-timing a total.
func Weights(s Schedule) map[float64]float64 {
	weights := make(map[float64]float64, len(s))
	for when, amount := range s {
		weights[when] = math.Abs(amount)
	}
	return weights
}

// EqualApprox reports whether a and b differ by less than [Epsilon].
func EqualApprox(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Zeroish reports whether v is within [Epsilon] of zero.
func Zeroish(v float64) bool {
	return math.Abs(v) < Epsilon
}
