package flow

import (
	"errors"
	"fmt"
)

var (
	// ErrNodeOutOfRange is returned when an edge endpoint or query refers to
	// a node ID that was never returned by [Graph.AddNode].
	ErrNodeOutOfRange = errors.New("node ID out of range")

	// ErrNegativeCapacity is returned by [Graph.AddEdge] when the capacity is
	// negative. Zero-capacity edges are permitted; they simply carry no flow.
	ErrNegativeCapacity = errors.New("edge capacity must be non-negative")

	// ErrSameEndpoints is returned by [Graph.AddEdge] for self-loops and by
	// [Graph.MinCostMaxFlow] when source equals sink.
	ErrSameEndpoints = errors.New("edge endpoints must differ")
)

// DefaultEpsilon is the saturation tolerance used when [Options.Epsilon] is
// zero or negative.
const DefaultEpsilon = 1e-9

// Options configures a [Graph]. The zero value is usable; normalize fills in
// defaults.
type Options struct {
	// Epsilon is the tolerance below which a residual capacity counts as
	// empty. Defaults to [DefaultEpsilon].
	Epsilon float64
}

func (o Options) normalize() Options {
	if o.Epsilon <= 0 {
		o.Epsilon = DefaultEpsilon
	}
	return o
}

// Edge is one directed arc in the residual network. Forward edges carry the
// caller's capacity and cost; their paired reverse edges start at capacity 0
// with the cost negated.
type Edge struct {
	From     int
	To       int
	Capacity float64 // original capacity (0 for reverse edges)
	Cost     float64
	Flow     float64
	Reverse  bool

	rev int // index of the paired edge in adj[To]
}

// Residual returns the remaining capacity of the edge.
func (e *Edge) Residual() float64 {
	return e.Capacity - e.Flow
}

// Graph is a capacitated, costed digraph over dense integer node IDs.
// It is not safe for concurrent mutation.
type Graph struct {
	opts Options
	adj  [][]*Edge
}

// NewGraph returns an empty graph configured by opts.
func NewGraph(opts Options) *Graph {
	return &Graph{opts: opts.normalize()}
}

// Epsilon returns the saturation tolerance the graph was configured with.
func (g *Graph) Epsilon() float64 {
	return g.opts.Epsilon
}

// AddNode allocates a new node and returns its ID. IDs are dense and start
// at zero.
func (g *Graph) AddNode() int {
	g.adj = append(g.adj, nil)
	return len(g.adj) - 1
}

// NumNodes returns the number of nodes allocated so far.
func (g *Graph) NumNodes() int {
	return len(g.adj)
}

// AddEdge adds a forward edge from u to v with the given capacity and cost,
// together with its residual reverse edge. If a forward edge u->v with the
// same cost already exists, the capacity is accumulated onto it instead.
func (g *Graph) AddEdge(u, v int, capacity, cost float64) error {
	if err := g.checkNode(u); err != nil {
		return err
	}
	if err := g.checkNode(v); err != nil {
		return err
	}
	if u == v {
		return fmt.Errorf("flow: %w", ErrSameEndpoints)
	}
	if capacity < 0 {
		return fmt.Errorf("flow: %w (%f)", ErrNegativeCapacity, capacity)
	}
	for _, e := range g.adj[u] {
		if !e.Reverse && e.To == v && e.Cost == cost {
			e.Capacity += capacity
			return nil
		}
	}
	fwd := &Edge{From: u, To: v, Capacity: capacity, Cost: cost}
	rev := &Edge{From: v, To: u, Capacity: 0, Cost: -cost, Reverse: true}
	fwd.rev = len(g.adj[v])
	rev.rev = len(g.adj[u])
	g.adj[u] = append(g.adj[u], fwd)
	g.adj[v] = append(g.adj[v], rev)
	return nil
}

// Edges returns the forward edges leaving u in insertion order.
func (g *Graph) Edges(u int) []*Edge {
	if u < 0 || u >= len(g.adj) {
		return nil
	}
	var out []*Edge
	for _, e := range g.adj[u] {
		if !e.Reverse {
			out = append(out, e)
		}
	}
	return out
}

// FlowBetween returns the net flow carried by forward edges from u to v.
func (g *Graph) FlowBetween(u, v int) float64 {
	var total float64
	for _, e := range g.Edges(u) {
		if e.To == v {
			total += e.Flow
		}
	}
	return total
}

// FlowOut returns the total flow leaving u on forward edges.
func (g *Graph) FlowOut(u int) float64 {
	var total float64
	for _, e := range g.Edges(u) {
		total += e.Flow
	}
	return total
}

// InboundCapacity returns the summed original capacity of forward edges
// entering v. Graph construction uses this to size a node's outbound edges.
func (g *Graph) InboundCapacity(v int) float64 {
	var total float64
	for _, edges := range g.adj {
		for _, e := range edges {
			if !e.Reverse && e.To == v {
				total += e.Capacity
			}
		}
	}
	return total
}

func (g *Graph) checkNode(u int) error {
	if u < 0 || u >= len(g.adj) {
		return fmt.Errorf("flow: %w (%d)", ErrNodeOutOfRange, u)
	}
	return nil
}

// allEdges iterates every residual arc (forward and reverse) in a stable
// order, calling fn with the owning node and edge.
func (g *Graph) allEdges(fn func(u int, e *Edge)) {
	for u, edges := range g.adj {
		for _, e := range edges {
			fn(u, e)
		}
	}
}

// saturated reports whether e has no usable residual capacity.
func (g *Graph) saturated(e *Edge) bool {
	return e.Residual() < g.opts.Epsilon
}
