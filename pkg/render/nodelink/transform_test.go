package nodelink

import (
	"strings"
	"testing"

	"github.com/flowscope/flowscope/pkg/fonts"
	"github.com/flowscope/flowscope/pkg/render"
	"github.com/flowscope/flowscope/pkg/workflow"
)

func parse(t *testing.T, payload string) *workflow.Graph {
	t.Helper()
	g, err := workflow.Parse([]byte(payload))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return g
}

const nestedPayload = `{
	"v": 1,
	"nodes": [
		{"id": "start", "label": "Start", "type": "t"},
		{"id": "par", "label": "Parallel", "type": "t", "isSubgraph": true, "children": ["w1", "w2"]},
		{"id": "w1", "label": "Worker 1", "type": "t"},
		{"id": "w2", "label": "Worker 2", "type": "t"},
		{"id": "sub", "label": "Enrich", "type": "t", "isSubflow": true, "subflowSourceId": "s1", "subflowSinkId": "s2"},
		{"id": "s1", "label": "Lookup", "type": "t"},
		{"id": "s2", "label": "Merge", "type": "t"},
		{"id": "done", "label": "Done", "type": "t"}
	],
	"edges": [
		{"id": "e1", "source": "start", "target": "par", "condition": null},
		{"id": "e2", "source": "par", "target": "sub", "condition": null},
		{"id": "e3", "source": "s1", "target": "s2", "condition": null, "type": "subflow", "subflowId": "sub"},
		{"id": "e4", "source": "sub", "target": "done", "condition": "ok"}
	]
}`

func TestHierarchical(t *testing.T) {
	g := parse(t, nestedPayload)
	d := Hierarchical(g, Options{Measurer: fonts.Heuristic{}})

	if d.Direction != "LR" {
		t.Errorf("Direction = %q, want LR", d.Direction)
	}

	// Subflow internals are hidden; everything else survives.
	wantIDs := []string{"start", "par", "sub", "done", "w1", "w2"}
	if len(d.Nodes) != len(wantIDs) {
		t.Fatalf("len(Nodes) = %d, want %d", len(d.Nodes), len(wantIDs))
	}
	for _, id := range []string{"s1", "s2"} {
		if d.Node(id) != nil {
			t.Errorf("subflow-internal node %s present", id)
		}
	}

	// Children carry a parent reference, and the parent appears earlier in
	// the array.
	idx := make(map[string]int, len(d.Nodes))
	for i, n := range d.Nodes {
		idx[n.ID] = i
	}
	for _, child := range []string{"w1", "w2"} {
		n := d.Node(child)
		if n == nil {
			t.Fatalf("child %s missing", child)
		}
		if n.ParentID != "par" {
			t.Errorf("ParentID(%s) = %q, want par", child, n.ParentID)
		}
		if idx[child] < idx["par"] {
			t.Errorf("child %s at index %d precedes container at %d", child, idx[child], idx["par"])
		}
	}
	if got := d.Node("start").ParentID; got != "" {
		t.Errorf("ParentID(start) = %q, want empty", got)
	}

	// No positions before layout.
	for _, n := range d.Nodes {
		if n.Position.X != 0 || n.Position.Y != 0 {
			t.Errorf("node %s has position %+v before layout", n.ID, n.Position)
		}
	}

	// Subflow edges and internal-endpoint edges are omitted; conditions
	// become edge labels.
	if len(d.Edges) != 3 {
		t.Fatalf("len(Edges) = %d, want 3", len(d.Edges))
	}
	for _, e := range d.Edges {
		if e.ID == "e3" {
			t.Error("subflow edge e3 present")
		}
	}
	var e4 *Edge
	for i := range d.Edges {
		if d.Edges[i].ID == "e4" {
			e4 = &d.Edges[i]
		}
	}
	if e4 == nil || e4.Label != "ok" {
		t.Errorf("edge e4 label = %v, want ok", e4)
	}
}

func TestHierarchicalSizing(t *testing.T) {
	g := parse(t, `{
		"v": 1,
		"nodes": [
			{"id": "a", "label": "Go", "type": "t"},
			{"id": "b", "label": "A considerably longer step label", "type": "t"}
		],
		"edges": []
	}`)

	t.Run("measured", func(t *testing.T) {
		d := Hierarchical(g, Options{Measurer: fonts.Heuristic{}})

		short := d.Node("a").Style
		long := d.Node("b").Style
		if short == nil || long == nil {
			t.Fatal("missing styles")
		}

		// Short labels clamp to the minimum; long labels grow past it.
		if short.Width != MinWidth {
			t.Errorf("short width = %v, want clamped to %v", short.Width, MinWidth)
		}
		if long.Width <= MinWidth {
			t.Errorf("long width = %v, want > %v", long.Width, MinWidth)
		}
		if short.Height < MinHeight || long.Height < MinHeight {
			t.Errorf("heights = %v/%v, want >= %v", short.Height, long.Height, MinHeight)
		}
	})

	t.Run("no measurer falls back to minimums", func(t *testing.T) {
		d := Hierarchical(g, Options{})

		for _, n := range d.Nodes {
			if n.Style == nil || n.Style.Width != MinWidth || n.Style.Height != MinHeight {
				t.Errorf("node %s style = %+v, want fixed minimums", n.ID, n.Style)
			}
		}
	})
}

func TestFlat(t *testing.T) {
	g := parse(t, nestedPayload)
	d := Flat(g, Options{Direction: render.DirectionTB})

	if d.Direction != "TB" {
		t.Errorf("Direction = %q, want TB", d.Direction)
	}

	// No nesting: children appear as ordinary nodes, nothing carries a
	// parent reference or a size.
	for _, n := range d.Nodes {
		if n.ParentID != "" {
			t.Errorf("node %s has ParentID %q in flat mapping", n.ID, n.ParentID)
		}
		if n.Style != nil {
			t.Errorf("node %s has style in flat mapping", n.ID)
		}
	}
	if d.Node("w1") == nil || d.Node("w2") == nil {
		t.Error("children missing from flat mapping")
	}
	if d.Node("s1") != nil {
		t.Error("subflow-internal node present in flat mapping")
	}
}

func TestMarshalFieldNames(t *testing.T) {
	g := parse(t, nestedPayload)
	d := Hierarchical(g, Options{Measurer: fonts.Heuristic{}})

	data, err := d.Marshal()
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	for _, want := range []string{`"direction"`, `"parentId"`, `"label"`, `"position"`, `"x"`, `"y"`, `"width"`, `"height"`, `"source"`, `"target"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("marshaled JSON missing %s", want)
		}
	}

	back, err := UnmarshalDiagram(data)
	if err != nil {
		t.Fatalf("UnmarshalDiagram() error = %v", err)
	}
	if len(back.Nodes) != len(d.Nodes) || len(back.Edges) != len(d.Edges) {
		t.Error("round trip changed node/edge counts")
	}
}

func TestClone(t *testing.T) {
	g := parse(t, nestedPayload)
	d := Hierarchical(g, Options{Measurer: fonts.Heuristic{}})

	c := d.Clone()
	c.Nodes[0].Position = Position{X: 100, Y: 200}
	c.Node("par").Style.Width = 999

	if d.Nodes[0].Position.X != 0 {
		t.Error("clone position mutation leaked into original")
	}
	if d.Node("par").Style.Width == 999 {
		t.Error("clone style mutation leaked into original")
	}
}
