package layered

// scopeGraph is the induced graph of one nesting scope. Members are
// addressed by local index; adj and pred hold deduplicated forward and
// reverse adjacency after edge lifting.
type scopeGraph struct {
	count int
	adj   [][]int
	pred  [][]int
}

func newScopeGraph(count int) *scopeGraph {
	return &scopeGraph{
		count: count,
		adj:   make([][]int, count),
		pred:  make([][]int, count),
	}
}

// addNode appends an empty node and returns its index.
func (g *scopeGraph) addNode() int {
	g.adj = append(g.adj, nil)
	g.pred = append(g.pred, nil)
	g.count++
	return g.count - 1
}

// addEdge records u→v, ignoring self edges and duplicates.
func (g *scopeGraph) addEdge(u, v int) {
	if u == v {
		return
	}
	for _, w := range g.adj[u] {
		if w == v {
			return
		}
	}
	g.adj[u] = append(g.adj[u], v)
	g.pred[v] = append(g.pred[v], u)
}

// breakCycles removes back edges found by DFS so the graph is acyclic.
// Roots (in-degree zero) are visited first so the forward structure of the
// graph decides which edges survive; remaining unvisited nodes seed further
// traversals for fully cyclic components. Returns the number of edges
// removed.
func (g *scopeGraph) breakCycles() int {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, g.count)
	var backEdges [][2]int

	var dfs func(node int)
	dfs = func(node int) {
		color[node] = gray
		for _, child := range g.adj[node] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				backEdges = append(backEdges, [2]int{node, child})
			}
		}
		color[node] = black
	}

	for v := 0; v < g.count; v++ {
		if len(g.pred[v]) == 0 && color[v] == white {
			dfs(v)
		}
	}
	for v := 0; v < g.count; v++ {
		if color[v] == white {
			dfs(v)
		}
	}

	for _, e := range backEdges {
		g.removeEdge(e[0], e[1])
	}
	return len(backEdges)
}

func (g *scopeGraph) removeEdge(u, v int) {
	g.adj[u] = deleteFirst(g.adj[u], v)
	g.pred[v] = deleteFirst(g.pred[v], u)
}

func deleteFirst(s []int, v int) []int {
	for i, w := range s {
		if w == v {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// assignLayers computes a longest-path layering via topological traversal
// (Kahn's algorithm). Each node lands one layer past its deepest
// predecessor, so sources sit at layer 0 and every edge points to a
// strictly later layer. The graph must be acyclic; run breakCycles first.
func (g *scopeGraph) assignLayers() []int {
	inDegree := make([]int, g.count)
	layers := make([]int, g.count)
	queue := make([]int, 0, g.count)

	for v := 0; v < g.count; v++ {
		inDegree[v] = len(g.pred[v])
		if inDegree[v] == 0 {
			queue = append(queue, v)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, child := range g.adj[curr] {
			if layer := layers[curr] + 1; layer > layers[child] {
				layers[child] = layer
			}
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	return layers
}
