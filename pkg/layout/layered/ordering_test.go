package layered

import "testing"

func filled(n int) []int {
	pos := make([]int, n)
	for i := range pos {
		pos[i] = -1
	}
	return pos
}

func TestCountLayerCrossings(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]int
		upper []int
		lower []int
		want  int
	}{
		{
			name:  "parallel edges",
			edges: [][2]int{{0, 2}, {1, 3}},
			upper: []int{0, 1},
			lower: []int{2, 3},
			want:  0,
		},
		{
			name:  "crossing pair",
			edges: [][2]int{{0, 3}, {1, 2}},
			upper: []int{0, 1},
			lower: []int{2, 3},
			want:  1,
		},
		{
			name:  "shared source fans out",
			edges: [][2]int{{0, 2}, {0, 3}, {1, 3}},
			upper: []int{0, 1},
			lower: []int{2, 3},
			want:  0,
		},
		{
			name:  "double crossing",
			edges: [][2]int{{0, 4}, {1, 3}, {2, 3}},
			upper: []int{0, 1, 2},
			lower: []int{3, 4},
			want:  2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newScopeGraph(5)
			for _, e := range tt.edges {
				g.addEdge(e[0], e[1])
			}
			if got := countLayerCrossings(g, tt.upper, tt.lower, filled(g.count)); got != tt.want {
				t.Errorf("countLayerCrossings() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCountLayerCrossings_RestoresBuffer(t *testing.T) {
	g := newScopeGraph(4)
	g.addEdge(0, 3)
	g.addEdge(1, 2)
	pos := filled(g.count)

	countLayerCrossings(g, []int{0, 1}, []int{2, 3}, pos)

	for i, p := range pos {
		if p != -1 {
			t.Errorf("pos[%d] = %d, want -1", i, p)
		}
	}
}

func TestAssignLayers_Diamond(t *testing.T) {
	g := newScopeGraph(4)
	g.addEdge(0, 1)
	g.addEdge(0, 2)
	g.addEdge(1, 3)
	g.addEdge(2, 3)

	got := g.assignLayers()

	want := []int{0, 1, 1, 2}
	for v, l := range want {
		if got[v] != l {
			t.Errorf("layer[%d] = %d, want %d", v, got[v], l)
		}
	}
}

func TestBreakCycles_Triangle(t *testing.T) {
	g := newScopeGraph(3)
	g.addEdge(0, 1)
	g.addEdge(1, 2)
	g.addEdge(2, 0)

	if removed := g.breakCycles(); removed != 1 {
		t.Errorf("breakCycles() = %d, want 1", removed)
	}

	layers := g.assignLayers()
	want := []int{0, 1, 2}
	for v, l := range want {
		if layers[v] != l {
			t.Errorf("layer[%d] = %d, want %d", v, layers[v], l)
		}
	}
}

func TestSubdivideLongEdges(t *testing.T) {
	g := newScopeGraph(3)
	g.addEdge(0, 1)
	g.addEdge(1, 2)
	g.addEdge(0, 2)
	layers := []int{0, 1, 2}

	expanded, expandedLayers := subdivideLongEdges(g, layers)

	if expanded.count != 4 {
		t.Fatalf("count = %d, want 4 (one virtual node)", expanded.count)
	}
	if expandedLayers[3] != 1 {
		t.Errorf("virtual layer = %d, want 1", expandedLayers[3])
	}
	hasEdge := func(u, v int) bool {
		for _, w := range expanded.adj[u] {
			if w == v {
				return true
			}
		}
		return false
	}
	if !hasEdge(0, 3) || !hasEdge(3, 2) {
		t.Error("long edge 0→2 not rerouted through the virtual node")
	}
	if hasEdge(0, 2) {
		t.Error("long edge 0→2 still present after subdivision")
	}
}

func TestSubdivideLongEdges_NoChange(t *testing.T) {
	g := newScopeGraph(2)
	g.addEdge(0, 1)

	expanded, _ := subdivideLongEdges(g, []int{0, 1})

	if expanded != g {
		t.Error("graph without long edges should be returned unchanged")
	}
}
