package flow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddEdgeValidation(t *testing.T) {
	g := NewGraph(Options{})
	a := g.AddNode()
	b := g.AddNode()

	require.NoError(t, g.AddEdge(a, b, 10, 0))

	err := g.AddEdge(a, a, 10, 0)
	assert.ErrorIs(t, err, ErrSameEndpoints)

	err = g.AddEdge(a, b, -1, 0)
	assert.ErrorIs(t, err, ErrNegativeCapacity)

	err = g.AddEdge(a, 99, 1, 0)
	assert.ErrorIs(t, err, ErrNodeOutOfRange)
}

func TestAddEdgeAccumulatesCapacity(t *testing.T) {
	g := NewGraph(Options{})
	a := g.AddNode()
	b := g.AddNode()

	require.NoError(t, g.AddEdge(a, b, 10, 2))
	require.NoError(t, g.AddEdge(a, b, 5, 2))

	edges := g.Edges(a)
	require.Len(t, edges, 1)
	assert.InDelta(t, 15, edges[0].Capacity, 1e-9)
	assert.InDelta(t, 15, g.InboundCapacity(b), 1e-9)
}

func TestMinCostMaxFlowSimplePath(t *testing.T) {
	// source -> a -> sink, bottleneck 7 at the second edge.
	g := NewGraph(Options{})
	source := g.AddNode()
	a := g.AddNode()
	sink := g.AddNode()
	require.NoError(t, g.AddEdge(source, a, 10, 0))
	require.NoError(t, g.AddEdge(a, sink, 7, 0))

	res, err := g.MinCostMaxFlow(context.Background(), source, sink)
	require.NoError(t, err)
	assert.InDelta(t, 7, res.Flow, 1e-9)
	assert.InDelta(t, 7, g.FlowBetween(source, a), 1e-9)
}

func TestMinCostMaxFlowPrefersCheapPath(t *testing.T) {
	// Two parallel routes; the cheap one fills before the expensive one.
	g := NewGraph(Options{})
	source := g.AddNode()
	cheap := g.AddNode()
	costly := g.AddNode()
	sink := g.AddNode()
	require.NoError(t, g.AddEdge(source, cheap, 100, 0))
	require.NoError(t, g.AddEdge(source, costly, 100, 5))
	require.NoError(t, g.AddEdge(cheap, sink, 60, 0))
	require.NoError(t, g.AddEdge(costly, sink, 100, 0))

	res, err := g.MinCostMaxFlow(context.Background(), source, sink)
	require.NoError(t, err)
	assert.InDelta(t, 160, res.Flow, 1e-9)
	assert.InDelta(t, 60, g.FlowBetween(source, cheap), 1e-9)
	assert.InDelta(t, 100, g.FlowBetween(source, costly), 1e-9)
	assert.InDelta(t, 500, res.Cost, 1e-9)
}

func TestMinCostMaxFlowReroutesThroughResiduals(t *testing.T) {
	// Classic diamond where the optimal max flow requires undoing part of
	// the first greedy path via a reverse edge.
	g := NewGraph(Options{})
	s := g.AddNode()
	a := g.AddNode()
	b := g.AddNode()
	t2 := g.AddNode()
	require.NoError(t, g.AddEdge(s, a, 1, 0))
	require.NoError(t, g.AddEdge(s, b, 1, 2))
	require.NoError(t, g.AddEdge(a, b, 1, 0))
	require.NoError(t, g.AddEdge(a, t2, 1, 3))
	require.NoError(t, g.AddEdge(b, t2, 1, 0))

	res, err := g.MinCostMaxFlow(context.Background(), s, t2)
	require.NoError(t, err)
	assert.InDelta(t, 2, res.Flow, 1e-9)

	// Conservation at interior nodes.
	for _, n := range []int{a, b} {
		in := g.FlowBetween(s, n) + g.FlowBetween(a, n)
		out := g.FlowOut(n)
		assert.InDelta(t, in, out, 1e-9, "conservation at node %d", n)
	}
}

func TestMinCostMaxFlowDisconnected(t *testing.T) {
	g := NewGraph(Options{})
	s := g.AddNode()
	sink := g.AddNode()

	res, err := g.MinCostMaxFlow(context.Background(), s, sink)
	require.NoError(t, err)
	assert.Zero(t, res.Flow)
	assert.Zero(t, res.Paths)
}

func TestMinCostMaxFlowCancelled(t *testing.T) {
	g := NewGraph(Options{})
	s := g.AddNode()
	sink := g.AddNode()
	require.NoError(t, g.AddEdge(s, sink, 1, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.MinCostMaxFlow(ctx, s, sink)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDeterministicRepeatedSolves(t *testing.T) {
	build := func() (*Graph, int, int) {
		g := NewGraph(Options{})
		s := g.AddNode()
		a := g.AddNode()
		b := g.AddNode()
		sink := g.AddNode()
		require.NoError(t, g.AddEdge(s, a, 50, 0))
		require.NoError(t, g.AddEdge(s, b, 50, 1))
		require.NoError(t, g.AddEdge(a, sink, 30, 0))
		require.NoError(t, g.AddEdge(b, sink, 30, 0))
		return g, s, sink
	}

	g1, s1, t1 := build()
	g2, s2, t2 := build()
	r1, err := g1.MinCostMaxFlow(context.Background(), s1, t1)
	require.NoError(t, err)
	r2, err := g2.MinCostMaxFlow(context.Background(), s2, t2)
	require.NoError(t, err)

	assert.Equal(t, r1.Flow, r2.Flow)
	assert.Equal(t, r1.Cost, r2.Cost)
	for n := range g1.NumNodes() {
		assert.Equal(t, g1.FlowOut(n), g2.FlowOut(n), "node %d", n)
	}
}
