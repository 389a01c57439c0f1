package flow

import (
	"context"
	"fmt"
	"math"
)

// Result reports the outcome of a [Graph.MinCostMaxFlow] run.
type Result struct {
	// Flow is the total amount delivered from source to sink.
	Flow float64
	// Cost is the sum of cost*flow over all forward edges.
	Cost float64
	// Paths is the number of augmenting paths used.
	Paths int
}

// MinCostMaxFlow pushes as much flow as possible from source to sink at
// minimum total cost, mutating edge flows in place. It repeatedly finds the
// cheapest residual path with Bellman-Ford and augments along it by the
// bottleneck capacity.
//
// The context is checked between augmentations; cancellation returns the
// context error with the flows pushed so far left in place.
func (g *Graph) MinCostMaxFlow(ctx context.Context, source, sink int) (Result, error) {
	var res Result
	if err := g.checkNode(source); err != nil {
		return res, err
	}
	if err := g.checkNode(sink); err != nil {
		return res, err
	}
	if source == sink {
		return res, fmt.Errorf("flow: %w", ErrSameEndpoints)
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		parent := g.cheapestPath(source, sink)
		if parent == nil {
			break
		}

		// Bottleneck along the path.
		bottleneck := math.Inf(1)
		for e := parent[sink]; e != nil; e = parent[e.From] {
			bottleneck = math.Min(bottleneck, e.Residual())
		}

		// Push flow, updating paired residual edges.
		for e := parent[sink]; e != nil; e = parent[e.From] {
			e.Flow += bottleneck
			g.adj[e.To][e.rev].Flow -= bottleneck
		}
		res.Paths++
	}

	res.Flow = g.FlowOut(source)
	g.allEdges(func(_ int, e *Edge) {
		if !e.Reverse && e.Flow > 0 {
			res.Cost += e.Flow * e.Cost
		}
	})
	return res, nil
}

// cheapestPath runs Bellman-Ford over residual edges and returns, for each
// reachable node, the edge used to enter it on the cheapest path from
// source. It returns nil when the sink is unreachable.
func (g *Graph) cheapestPath(source, sink int) map[int]*Edge {
	n := len(g.adj)
	dist := make([]float64, n)
	for i := range dist {
		dist[i] = math.Inf(1)
	}
	dist[source] = 0
	parent := make(map[int]*Edge, n)

	// Reverse residual edges carry negative costs, so relax up to n-1
	// rounds rather than using Dijkstra. The graph is a DAG plus its
	// reverse arcs; no negative cycles exist.
	for range n {
		improved := false
		for u, edges := range g.adj {
			if math.IsInf(dist[u], 1) {
				continue
			}
			for _, e := range edges {
				if g.saturated(e) {
					continue
				}
				if d := dist[u] + e.Cost; d < dist[e.To] {
					dist[e.To] = d
					parent[e.To] = e
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}

	if math.IsInf(dist[sink], 1) {
		return nil
	}
	return parent
}
