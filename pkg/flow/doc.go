// Package flow implements min-cost max-flow over a capacitated, costed
// directed graph.
//
// # Overview
//
// Nodes are dense integer IDs handed out by [Graph.AddNode]. Edges carry a
// float64 capacity and cost; adding an edge that already exists accumulates
// capacity onto the existing edge. Every edge is paired with a residual
// reverse edge (capacity 0, cost negated) so that augmentation can undo
// earlier routing decisions.
//
// [Graph.MinCostMaxFlow] runs successive shortest augmenting paths: each
// round finds the cheapest source-to-sink path over residual edges with
// Bellman-Ford (reverse edges carry negative costs, so Dijkstra does not
// apply) and pushes the bottleneck capacity along it. The result is the
// maximum feasible flow at minimum total cost.
//
// # Determinism
//
// Adjacency lists preserve insertion order and all iteration is over slices,
// so repeated solves of the same graph produce identical flows.
//
// # Tolerance
//
// Capacities and flows are float64. All saturation checks compare against
// [Options.Epsilon]; a residual below epsilon counts as empty.
package flow
