package layered

import (
	"context"
	"slices"
)

// orderLayers runs alternating barycentric sweeps over the layered graph
// and returns the ordering with the fewest crossings seen. The initial
// ordering follows local index order, which mirrors the input order of the
// diagram, so results are deterministic.
func (e *Engine) orderLayers(ctx context.Context, g *scopeGraph, layers []int) ([][]int, error) {
	orders := initialOrders(layers)
	if len(orders) < 2 {
		return orders, nil
	}

	best := cloneOrders(orders)
	bestCrossings := countCrossings(g, orders)
	pos := make([]int, g.count)

	for pass := 0; pass < e.passes() && bestCrossings > 0; pass++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if pass%2 == 0 {
			for k := 1; k < len(orders); k++ {
				reorderByBarycenter(orders[k], orders[k-1], g.pred, pos)
			}
		} else {
			for k := len(orders) - 2; k >= 0; k-- {
				reorderByBarycenter(orders[k], orders[k+1], g.adj, pos)
			}
		}
		if c := countCrossings(g, orders); c < bestCrossings {
			bestCrossings = c
			best = cloneOrders(orders)
		}
	}
	return best, nil
}

func initialOrders(layers []int) [][]int {
	depth := 0
	for _, l := range layers {
		if l+1 > depth {
			depth = l + 1
		}
	}
	orders := make([][]int, depth)
	for v, l := range layers {
		orders[l] = append(orders[l], v)
	}
	return orders
}

func cloneOrders(orders [][]int) [][]int {
	out := make([][]int, len(orders))
	for k, layer := range orders {
		out[k] = slices.Clone(layer)
	}
	return out
}

// reorderByBarycenter sorts layer by the average position of each node's
// neighbors in the fixed adjacent layer. Nodes without neighbors there keep
// their current position, and the sort is stable, so ties never reshuffle.
func reorderByBarycenter(layer, fixed []int, neighbors [][]int, pos []int) {
	for i := range pos {
		pos[i] = -1
	}
	for i, v := range fixed {
		pos[v] = i
	}

	weights := make([]float64, len(layer))
	for i, v := range layer {
		sum, n := 0, 0
		for _, u := range neighbors[v] {
			if p := pos[u]; p >= 0 {
				sum += p
				n++
			}
		}
		if n == 0 {
			weights[i] = float64(i)
		} else {
			weights[i] = float64(sum) / float64(n)
		}
	}

	idx := make([]int, len(layer))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		switch {
		case weights[a] < weights[b]:
			return -1
		case weights[a] > weights[b]:
			return 1
		default:
			return 0
		}
	})

	sorted := make([]int, len(layer))
	for i, j := range idx {
		sorted[i] = layer[j]
	}
	copy(layer, sorted)
}

// countCrossings sums the edge crossings between each pair of consecutive
// layers for the given ordering.
func countCrossings(g *scopeGraph, orders [][]int) int {
	pos := make([]int, g.count)
	for i := range pos {
		pos[i] = -1
	}
	total := 0
	for k := 0; k+1 < len(orders); k++ {
		total += countLayerCrossings(g, orders[k], orders[k+1], pos)
	}
	return total
}

// countLayerCrossings counts crossings between two adjacent layers with a
// Fenwick tree in O(E log V). Two edges (u1,v1) and (u2,v2) cross exactly
// when pos(u1) < pos(u2) and pos(v1) > pos(v2), so sorting edges by source
// position reduces the problem to counting inversions among the target
// positions. The pos buffer must be sized to the graph and filled with -1;
// it is restored before returning.
func countLayerCrossings(g *scopeGraph, upper, lower []int, pos []int) int {
	if len(upper) == 0 || len(lower) == 0 {
		return 0
	}
	for i, v := range lower {
		pos[v] = i
	}
	defer func() {
		for _, v := range lower {
			pos[v] = -1
		}
	}()

	type layerEdge struct{ upper, lower int }
	edges := make([]layerEdge, 0, len(upper)*2)
	for i, v := range upper {
		for _, child := range g.adj[v] {
			if p := pos[child]; p >= 0 {
				edges = append(edges, layerEdge{i, p})
			}
		}
	}
	if len(edges) < 2 {
		return 0
	}

	slices.SortFunc(edges, func(a, b layerEdge) int {
		if a.upper != b.upper {
			return a.upper - b.upper
		}
		return a.lower - b.lower
	})

	fenwick := make([]int, len(lower)+1)
	crossings, seen := 0, 0
	for _, e := range edges {
		lessOrEqual := 0
		for q := e.lower + 1; q > 0; q -= q & (-q) {
			lessOrEqual += fenwick[q]
		}
		crossings += seen - lessOrEqual

		seen++
		for idx := e.lower + 1; idx < len(fenwick); idx += idx & (-idx) {
			fenwick[idx]++
		}
	}
	return crossings
}
