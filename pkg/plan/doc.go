// Package plan loads allocation plans from TOML files.
//
// A plan bundles everything one allocation needs: the accounts with their
// transaction limits, any shared-limit groups, the priority tree, the total
// to place, and the timing to spread it over.
//
// # Plan format
//
//	total = 1000
//
//	[[timing]]
//	when = 0.0
//	weight = 1.0
//
//	[[account]]
//	name = "emergency"
//	kind = "savings"
//	balance = 5000
//	max_inflow = 250
//
//	[group.registered]
//	kind = "savings"
//	max_inflow = 6000
//
//	[tree]
//	kind = "ordered"
//
//	[[tree.children]]
//	kind = "account"
//	account = "emergency"
//
// Tree nodes nest arbitrarily: "ordered" and "weighted" nodes carry
// children (weighted children each declare a weight), "account" nodes name
// an account. Accounts opt into a shared-limit group with group = "name".
package plan
