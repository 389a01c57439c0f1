package plan

import (
	"math"

	"github.com/quantfold/fundflow/pkg/schedule"
)

// Account is a concrete account with fixed per-allocation transaction
// limits. It satisfies priority.Account.
//
// All limit fields are magnitudes. A zero MaxInflow or MaxOutflow means the
// bound was not declared: inflows are then unbounded and outflows are
// bounded by the balance alone.
type Account struct {
	Name    string
	Kind    string
	Balance float64

	MinInflow  float64
	MaxInflow  float64
	MinOutflow float64
	MaxOutflow float64

	// GroupName is the shared-limit group this account draws from, empty
	// for none.
	GroupName string
}

// MinInflows returns the contributions the account requires, spread over
// timing and capped at limit.
func (a *Account) MinInflows(timing schedule.Timing, limit float64) schedule.Schedule {
	return schedule.Distribute(math.Min(a.MinInflow, limit), timing)
}

// MaxInflows returns the contributions the account can absorb, spread over
// timing and capped at limit.
func (a *Account) MaxInflows(timing schedule.Timing, limit float64) schedule.Schedule {
	bound := a.MaxInflow
	if bound == 0 {
		bound = math.Inf(1)
	}
	return schedule.Distribute(math.Min(bound, limit), timing)
}

// MinOutflows returns the withdrawals the account requires, as negative
// amounts spread over timing and capped at limit.
func (a *Account) MinOutflows(timing schedule.Timing, limit float64) schedule.Schedule {
	return schedule.Distribute(-math.Min(a.MinOutflow, limit), timing)
}

// MaxOutflows returns the withdrawals the account can supply, as negative
// amounts. The balance always bounds outflows: an account cannot give what
// it does not hold.
func (a *Account) MaxOutflows(timing schedule.Timing, limit float64) schedule.Schedule {
	bound := a.Balance
	if a.MaxOutflow > 0 {
		bound = math.Min(bound, a.MaxOutflow)
	}
	return schedule.Distribute(-math.Min(bound, limit), timing)
}
