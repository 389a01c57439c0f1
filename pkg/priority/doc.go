// Package priority models user-defined priority trees over financial
// accounts.
//
// # Overview
//
// A tree's leaves wrap accounts; its interior nodes say how money splits
// between children. Ordered nodes fill children strictly in sequence: money
// spills to child i+1 only once child i can absorb no more. Weighted nodes
// split money across children in proportion to per-child weights.
//
// Trees are built from [NewLeaf], [NewOrdered] and [NewWeighted], or from
// plain Go values via [Wrap]: a slice becomes an ordered node, a map of
// children to weights becomes a weighted node, and an [Account] becomes a
// leaf. Unrecognized shapes fail immediately with [ErrUnknownShape] so that
// malformed trees never reach the solver.
//
// # Identity
//
// Nodes have identity semantics. The same *Node may appear at several
// positions in a tree (or in several trees); allocations against it
// accumulate jointly rather than being tracked per position.
package priority
