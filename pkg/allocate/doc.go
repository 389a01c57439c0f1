// Package allocate turns a priority tree and a total amount of money into
// per-account transaction schedules by solving a min-cost max-flow problem.
//
// # Overview
//
// The tree is compiled into a capacitated flow network: a source node feeds
// the root, leaves drain into a sink, and edge capacities encode account
// limits while edge costs encode priority. Ordered children receive strictly
// increasing costs so that cheaper (earlier) children saturate before any
// flow spills to later ones; weighted children receive zero-cost edges with
// capacities proportional to their weights.
//
// # Allocation loop
//
// Weighted capacities are proportional shares, so a single solve can fall
// short of the requested total even when capacity remains elsewhere in the
// tree (a child may be unable to absorb its share while a sibling has room).
// When that happens the graph is rebuilt: amounts already assigned are
// subtracted from every capacity, children with no remaining capacity are
// dropped from the weight normalization, and the shortfall is re-solved.
// Each round either delivers additional flow or stops the loop, so
// termination is guaranteed. Falling short of the requested total is not an
// error; the result simply carries less.
//
// # Phases
//
// [Allocator.Allocate] runs two phases. The first allocates against minimum
// limits (amounts accounts require); the second allocates the remainder
// against maximum limits, with every capacity reduced by the first phase's
// assignments. The sign of the requested total selects the inflow or
// outflow limit pair. Assignments are tracked per leaf node by identity and
// merged per account only when expanding to schedules.
//
// # Linked limits
//
// Accounts may share a transaction limit (contribution room that several
// accounts draw from). A [GroupFunc] reports group membership; members
// route through a shared gate node sized to the group's remaining room, so
// the joint allocation never exceeds the shared limit.
package allocate
