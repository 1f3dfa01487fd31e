package layered

import "slices"

// subdivideLongEdges replaces every edge spanning more than one layer with
// a chain of single-layer hops through virtual nodes, so crossing counting
// only ever looks at consecutive layers. Virtual nodes carry indices past
// the original count and occupy no space during coordinate assignment.
// Returns the input unchanged when no edge spans layers.
func subdivideLongEdges(g *scopeGraph, layers []int) (*scopeGraph, []int) {
	type longEdge struct{ u, v int }
	var long []longEdge
	for u := 0; u < g.count; u++ {
		for _, v := range g.adj[u] {
			if layers[v]-layers[u] > 1 {
				long = append(long, longEdge{u, v})
			}
		}
	}
	if len(long) == 0 {
		return g, layers
	}

	out := newScopeGraph(g.count)
	outLayers := slices.Clone(layers)
	for u := 0; u < g.count; u++ {
		for _, v := range g.adj[u] {
			if layers[v]-layers[u] <= 1 {
				out.addEdge(u, v)
			}
		}
	}
	for _, e := range long {
		prev := e.u
		for l := layers[e.u] + 1; l < layers[e.v]; l++ {
			virt := out.addNode()
			outLayers = append(outLayers, l)
			out.addEdge(prev, virt)
			prev = virt
		}
		out.addEdge(prev, e.v)
	}
	return out, outLayers
}
