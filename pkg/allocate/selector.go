package allocate

import (
	"math"

	"github.com/quantfold/fundflow/pkg/priority"
	"github.com/quantfold/fundflow/pkg/schedule"
)

// Selector identifies one of the four account bounds.
type Selector int

const (
	// SelectMinInflow selects the minimum required contribution.
	SelectMinInflow Selector = iota
	// SelectMaxInflow selects the maximum acceptable contribution.
	SelectMaxInflow
	// SelectMinOutflow selects the minimum required withdrawal.
	SelectMinOutflow
	// SelectMaxOutflow selects the maximum available withdrawal.
	SelectMaxOutflow
)

func (s Selector) String() string {
	switch s {
	case SelectMinInflow:
		return "min-inflow"
	case SelectMaxInflow:
		return "max-inflow"
	case SelectMinOutflow:
		return "min-outflow"
	case SelectMaxOutflow:
		return "max-outflow"
	default:
		return "unknown"
	}
}

// Phase returns "min" or "max" depending on the bound's sense.
func (s Selector) Phase() string {
	if s == SelectMinInflow || s == SelectMinOutflow {
		return "min"
	}
	return "max"
}

// Limit invokes the account method matching the selector.
func (s Selector) Limit(a priority.Account, timing schedule.Timing, limit float64) schedule.Schedule {
	switch s {
	case SelectMinInflow:
		return a.MinInflows(timing, limit)
	case SelectMaxInflow:
		return a.MaxInflows(timing, limit)
	case SelectMinOutflow:
		return a.MinOutflows(timing, limit)
	default:
		return a.MaxOutflows(timing, limit)
	}
}

// Capacity returns the magnitude of the account's bound for this selector:
// the absolute total of the schedule the account reports with no cap.
func (s Selector) Capacity(a priority.Account, timing schedule.Timing) float64 {
	return math.Abs(schedule.Total(s.Limit(a, timing, schedule.Unbounded)))
}

// NodeBound returns the matching bound from a node's own limits, or nil
// when the node imposes none.
func (s Selector) NodeBound(l priority.Limits) *float64 {
	switch s {
	case SelectMinInflow:
		return l.MinInflow
	case SelectMaxInflow:
		return l.MaxInflow
	case SelectMinOutflow:
		return l.MinOutflow
	default:
		return l.MaxOutflow
	}
}

// selectors returns the (min, max) selector pair for the sign of total.
func selectors(total float64) (Selector, Selector) {
	if total < 0 {
		return SelectMinOutflow, SelectMaxOutflow
	}
	return SelectMinInflow, SelectMaxInflow
}
