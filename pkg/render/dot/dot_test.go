package dot

import (
	"context"
	"strings"
	"testing"

	"github.com/flowscope/flowscope/pkg/workflow"
)

const payload = `{
  "v": 1,
  "nodes": [
    {"id": "start", "label": "Start", "type": "node"},
    {"id": "par", "label": "Parallel", "type": "group", "isSubgraph": true, "children": ["w1", "w2"]},
    {"id": "w1", "label": "Worker 1", "type": "node"},
    {"id": "w2", "label": "Worker 2", "type": "node"},
    {"id": "sub", "label": "Enrich", "type": "subflow", "isSubflow": true, "subflowSourceId": "s1", "subflowSinkId": "s2"},
    {"id": "s1", "label": "Inner Start", "type": "node"},
    {"id": "s2", "label": "Inner End", "type": "node"},
    {"id": "done", "label": "Done", "type": "node"}
  ],
  "edges": [
    {"id": "e1", "source": "start", "target": "par", "condition": null},
    {"id": "e2", "source": "par", "target": "sub", "condition": null},
    {"id": "e3", "source": "s1", "target": "s2", "condition": null, "type": "subflow", "subflowId": "sub"},
    {"id": "e4", "source": "sub", "target": "done", "condition": "ok"}
  ]
}`

func mustParse(t *testing.T, data string) *workflow.Graph {
	t.Helper()
	g, err := workflow.Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return g
}

func TestToDOT_Basic(t *testing.T) {
	g := mustParse(t, `{"v":1,"nodes":[{"id":"a","label":"A","type":"node"},{"id":"b","label":"B","type":"node"}],"edges":[{"id":"e1","source":"a","target":"b","condition":null}]}`)

	dot := ToDOT(g, Options{})

	if !strings.Contains(dot, "digraph workflow") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	if !strings.Contains(dot, "rankdir=LR") {
		t.Error("ToDOT() output missing default rankdir")
	}
	if !strings.Contains(dot, `"a" [label="A"]`) {
		t.Error("ToDOT() output missing node a declaration")
	}
	if !strings.Contains(dot, `"a" -> "b";`) {
		t.Error("ToDOT() output missing edge")
	}
}

func TestToDOT_Cluster(t *testing.T) {
	g := mustParse(t, payload)

	dot := ToDOT(g, DefaultOptions())

	if !strings.Contains(dot, `subgraph "cluster_par"`) {
		t.Error("ToDOT() missing container cluster")
	}
	if !strings.Contains(dot, `label="Parallel"`) {
		t.Error("ToDOT() cluster missing label")
	}
	if !strings.Contains(dot, `"w1" [label="Worker 1"]`) {
		t.Error("ToDOT() cluster missing child declaration")
	}
}

func TestToDOT_ClusterEdges(t *testing.T) {
	g := mustParse(t, payload)

	dot := ToDOT(g, DefaultOptions())

	if !strings.Contains(dot, "compound=true") {
		t.Error("ToDOT() missing compound attribute")
	}
	if !strings.Contains(dot, `"start" -> "w1" [lhead="cluster_par"];`) {
		t.Error("ToDOT() edge into container not clipped at cluster border")
	}
	if !strings.Contains(dot, `"w1" -> "sub" [ltail="cluster_par"];`) {
		t.Error("ToDOT() edge out of container not clipped at cluster border")
	}
	if strings.Contains(dot, `"par" ->`) || strings.Contains(dot, `-> "par"`) {
		t.Error("ToDOT() emitted an edge attached to the cluster name")
	}
}

func TestToDOT_SubflowShape(t *testing.T) {
	g := mustParse(t, payload)

	dot := ToDOT(g, DefaultOptions())

	if !strings.Contains(dot, `"sub" [label="Enrich", shape=box3d]`) {
		t.Error("ToDOT() subflow node missing box3d shape")
	}
}

func TestToDOT_HidesSubflowInternals(t *testing.T) {
	g := mustParse(t, payload)

	dot := ToDOT(g, DefaultOptions())

	if strings.Contains(dot, `"s1"`) || strings.Contains(dot, `"s2"`) {
		t.Error("ToDOT() declared subflow-internal nodes")
	}
	if strings.Contains(dot, `"s1" -> "s2"`) {
		t.Error("ToDOT() emitted subflow-internal edge")
	}
}

func TestToDOT_ConditionalEdge(t *testing.T) {
	g := mustParse(t, payload)

	withLabels := ToDOT(g, DefaultOptions())
	if !strings.Contains(withLabels, `"sub" -> "done" [style=dashed, label="ok"]`) {
		t.Error("ToDOT() conditional edge missing dashed style with label")
	}

	withoutLabels := ToDOT(g, Options{})
	if !strings.Contains(withoutLabels, `"sub" -> "done" [style=dashed];`) {
		t.Error("ToDOT() conditional edge should stay dashed without label")
	}
}

func TestToDOT_Direction(t *testing.T) {
	g := mustParse(t, payload)

	dot := ToDOT(g, Options{Direction: "TB"})

	if !strings.Contains(dot, "rankdir=TB") {
		t.Error("ToDOT() did not honor direction")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), `digraph G { a -> b; }`)
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	_, err := RenderSVG(context.Background(), `not valid DOT {{{`)
	if err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}
