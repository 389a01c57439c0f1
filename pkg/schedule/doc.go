// Package schedule provides timed transaction schedules: mappings from
// normalized times in [0, 1] to signed money amounts.
//
// # Conventions
//
// Inflows are positive, outflows are negative. Times are fractions of the
// period being planned (0 = start, 1 = end); a value of 0.5 means "halfway
// through the year" for an annual plan.
//
// # Tolerance
//
// Amounts are float64 and accumulate rounding error through graph solves and
// proportional splits, so all comparisons go through [EqualApprox] and
// [Zeroish] with the package-level [Epsilon].
//
//	s := schedule.Schedule{0: 500, 0.5: 500}
//	schedule.Total(s) // 1000
package schedule
