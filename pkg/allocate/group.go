package allocate

import "github.com/quantfold/fundflow/pkg/priority"

// Group describes a transaction limit shared by several accounts, such as
// contribution room that every account of one kind draws from.
type Group struct {
	// Key identifies the group; accounts reporting the same key share one
	// gate node in the flow network.
	Key string
	// Limit is the group's total shared room, as a magnitude.
	Limit float64
}

// GroupFunc reports whether an account belongs to a shared-limit group for
// the given bound. Returning ok=false means the account's bound is its own.
type GroupFunc func(a priority.Account, sel Selector) (Group, bool)
