package allocate

import (
	"math"

	"github.com/quantfold/fundflow/pkg/flow"
	"github.com/quantfold/fundflow/pkg/priority"
	"github.com/quantfold/fundflow/pkg/schedule"
)

// builder compiles one priority tree into a flow network for a single solve
// round. A fresh builder is created per round so that capacities always
// reflect the amounts assigned so far.
type builder struct {
	al     *Allocator
	sel    Selector
	timing schedule.Timing

	// Prior assignments, as magnitudes keyed by leaf node identity. memo
	// holds the previous phase; assigned holds earlier rounds of this one.
	memo     map[*priority.Node]float64
	assigned map[*priority.Node]float64

	root   *priority.Node
	leaves []*priority.Node

	g        *flow.Graph
	source   int
	sink     int
	in       map[*priority.Node]int // entry point (gate node when limited)
	out      map[*priority.Node]int
	leafOut  map[*priority.Node]int
	accounts map[priority.Account]int
	groups   map[string]int
	subCost  map[*priority.Node]float64
	capMemo  map[priority.Account]float64
}

func newBuilder(al *Allocator, root *priority.Node, sel Selector, timing schedule.Timing,
	memo, assigned map[*priority.Node]float64) *builder {
	return &builder{
		al:       al,
		sel:      sel,
		timing:   timing,
		memo:     memo,
		assigned: assigned,
		root:     root,
		leaves:   priority.Leaves(root),
		in:       make(map[*priority.Node]int),
		out:      make(map[*priority.Node]int),
		leafOut:  make(map[*priority.Node]int),
		accounts: make(map[priority.Account]int),
		groups:   make(map[string]int),
		subCost:  make(map[*priority.Node]float64),
		capMemo:  make(map[priority.Account]float64),
	}
}

// build compiles the network for the given remaining target magnitude.
//
// Nodes are expanded parents-first: a node's outbound edges are added only
// once every inbound edge exists, so a node shared by several parents sizes
// its children from the combined inbound capacity rather than from whichever
// parent happened to reach it first.
func (b *builder) build(target float64) *flow.Graph {
	b.g = flow.NewGraph(flow.Options{Epsilon: b.al.eps})
	b.source = b.g.AddNode()
	b.sink = b.g.AddNode()

	rootIn := b.addNode(b.root)
	b.edge(b.source, rootIn, target, 0)

	indegree := make(map[*priority.Node]int)
	seen := make(map[*priority.Node]bool)
	var walk func(n *priority.Node)
	walk = func(n *priority.Node) {
		if seen[n] {
			return
		}
		seen[n] = true
		for _, child := range n.Children() {
			indegree[child]++
			walk(child)
		}
	}
	walk(b.root)

	queue := []*priority.Node{b.root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		b.addNode(n)
		switch n.Kind() {
		case priority.KindLeaf:
			b.addLeaf(n)
		case priority.KindOrdered:
			b.addOrdered(n, target)
		case priority.KindWeighted:
			b.addWeighted(n)
		}

		// A child occurring several times under one parent counts one
		// inbound edge per occurrence.
		for _, child := range n.Children() {
			indegree[child]--
			if indegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}
	return b.g
}

// edge adds a graph edge. Endpoints and capacities are builder-generated,
// so the underlying AddEdge cannot fail.
func (b *builder) edge(u, v int, capacity, cost float64) {
	_ = b.g.AddEdge(u, v, capacity, cost)
}

// addNode registers a tree node in the graph, inserting a gate ahead of it
// when the node carries its own bound for the active selector. Repeated
// calls for the same node return the existing entry point.
func (b *builder) addNode(n *priority.Node) int {
	if id, ok := b.in[n]; ok {
		return id
	}
	id := b.g.AddNode()
	b.out[n] = id
	entry := id
	if bound := b.sel.NodeBound(n.Limits()); bound != nil {
		gate := b.g.AddNode()
		remaining := math.Max(0, *bound-b.subtreeAssigned(n))
		b.edge(gate, id, remaining, 0)
		entry = gate
	}
	b.in[n] = entry
	return entry
}

// addLeaf routes a leaf through its account's shared capacity node. Every
// leaf wrapping the same account funnels into one node, so the account's
// intrinsic bound is applied once no matter how many positions hold it.
func (b *builder) addLeaf(n *priority.Node) {
	capacity := math.Max(0, b.accountCapacity(n.Account())-b.accountAssigned(n.Account()))
	b.edge(b.out[n], b.accountNode(n.Account()), capacity, 0)
	b.leafOut[n] = b.out[n]
}

// accountNode returns the graph node shared by all leaves wrapping the
// account, creating it on first use with a single edge carrying the
// account's remaining capacity to the sink (or to its group's gate).
func (b *builder) accountNode(a priority.Account) int {
	if id, ok := b.accounts[a]; ok {
		return id
	}
	id := b.g.AddNode()
	remaining := math.Max(0, b.accountCapacity(a)-b.accountAssigned(a))
	dest := b.sink
	if b.al.groups != nil {
		if group, ok := b.al.groups(a, b.sel); ok {
			dest = b.groupNode(group)
		}
	}
	b.edge(id, dest, remaining, 0)
	b.accounts[a] = id
	return id
}

// addOrdered gives each child an unconstraining edge whose cost strictly
// exceeds the cost of any path through every earlier sibling's subtree.
func (b *builder) addOrdered(n *priority.Node, target float64) {
	var cost float64
	for _, child := range n.Children() {
		cid := b.addNode(child)
		b.edge(b.out[n], cid, target, cost)
		cost = math.Max(cost, b.subtreeCost(child)) + 1
	}
}

// addWeighted splits the node's inbound capacity across children in
// proportion to weight. Children with no remaining room are dropped from
// the normalization so their share flows to live siblings; children whose
// prior assignments already exceed their share are pinned at zero and the
// split recomputed over the rest.
func (b *builder) addWeighted(n *priority.Node) {
	capacity := b.g.InboundCapacity(b.out[n])

	live := make([]int, 0, len(n.Children()))
	for i, child := range n.Children() {
		if b.remaining(child) > b.al.eps {
			live = append(live, i)
		}
	}

	shares := make(map[int]float64, len(live))
	for len(live) > 0 {
		var norm, prior float64
		for _, i := range live {
			norm += n.Weight(i)
			prior += b.subtreeAssigned(n.Children()[i])
		}
		// Shares are computed over capacity plus prior flows so that
		// totals after this round stay true to the weights.
		adjusted := capacity + prior

		overshoot := 0.0
		next := live[:0]
		for _, i := range live {
			share := adjusted*n.Weight(i)/norm - b.subtreeAssigned(n.Children()[i])
			shares[i] = share
			if share < 0 {
				overshoot += share
				shares[i] = 0
			} else {
				next = append(next, i)
			}
		}
		if overshoot >= -b.al.eps {
			break
		}
		// Over-assigned children keep their zero share; re-split the
		// reduced capacity over the rest.
		capacity += overshoot
		live = next
	}

	for i, child := range n.Children() {
		cid := b.addNode(child)
		b.edge(b.out[n], cid, math.Max(0, shares[i]), 0)
	}
}

// subtreeCost returns the total cost of all edges in the node's subtree.
// Edge costs depend only on tree shape, never on capacities, so the value
// is memoized across the whole build.
func (b *builder) subtreeCost(n *priority.Node) float64 {
	if cost, ok := b.subCost[n]; ok {
		return cost
	}
	var total float64
	switch n.Kind() {
	case priority.KindOrdered:
		var cost float64
		for _, child := range n.Children() {
			childCost := b.subtreeCost(child)
			total += cost + childCost
			cost = math.Max(cost, childCost) + 1
		}
	case priority.KindWeighted:
		for _, child := range n.Children() {
			total += b.subtreeCost(child)
		}
	}
	b.subCost[n] = total
	return total
}

// groupNode returns the gate node shared by a group's members, creating it
// with the group's remaining room on first use.
func (b *builder) groupNode(group Group) int {
	if id, ok := b.groups[group.Key]; ok {
		return id
	}
	id := b.g.AddNode()
	remaining := math.Max(0, group.Limit-b.groupAssigned(group.Key))
	b.edge(id, b.sink, remaining, 0)
	b.groups[group.Key] = id
	return id
}

// groupAssigned sums prior assignments to leaves whose account belongs to
// the keyed group, so shared room is never double counted across rounds or
// phases.
func (b *builder) groupAssigned(key string) float64 {
	var total float64
	for _, leaf := range b.leaves {
		group, ok := b.al.groups(leaf.Account(), b.sel)
		if ok && group.Key == key {
			total += b.memo[leaf] + b.assigned[leaf]
		}
	}
	return total
}

// accountCapacity returns the magnitude of the account's bound for the
// active selector, memoized per account.
func (b *builder) accountCapacity(a priority.Account) float64 {
	if capacity, ok := b.capMemo[a]; ok {
		return capacity
	}
	capacity := b.sel.Capacity(a, b.timing)
	b.capMemo[a] = capacity
	return capacity
}

// accountAssigned sums prior assignments across every leaf in the tree
// wrapping the account, whichever position the money arrived through.
func (b *builder) accountAssigned(a priority.Account) float64 {
	var total float64
	for _, leaf := range b.leaves {
		if leaf.Account() == a {
			total += b.memo[leaf] + b.assigned[leaf]
		}
	}
	return total
}

// remaining returns how much more flow the node's subtree can still absorb,
// net of prior assignments and the node's own bound. A result within
// epsilon of zero means the node is exhausted.
func (b *builder) remaining(n *priority.Node) float64 {
	var rem float64
	if n.Kind() == priority.KindLeaf {
		rem = b.accountCapacity(n.Account()) - b.accountAssigned(n.Account())
	} else {
		for _, child := range n.Children() {
			rem += b.remaining(child)
		}
	}
	if bound := b.sel.NodeBound(n.Limits()); bound != nil {
		rem = math.Min(rem, *bound-b.subtreeAssigned(n))
	}
	return math.Max(rem, 0)
}

// exhaustedLeaves counts leaves with no remaining capacity.
func (b *builder) exhaustedLeaves() int {
	var count int
	for _, leaf := range b.leaves {
		if b.remaining(leaf) < b.al.eps {
			count++
		}
	}
	return count
}

// subtreeAssigned sums prior assignments to the distinct leaves below n.
func (b *builder) subtreeAssigned(n *priority.Node) float64 {
	var total float64
	for _, leaf := range priority.Leaves(n) {
		total += b.memo[leaf] + b.assigned[leaf]
	}
	return total
}
