package layout

import (
	"context"
	"testing"

	"github.com/flowscope/flowscope/pkg/render/nodelink"
)

func TestNoop_Apply(t *testing.T) {
	in := &nodelink.Diagram{
		Direction: "LR",
		Nodes:     []nodelink.Node{{ID: "a", Data: nodelink.NodeData{Label: "A"}}},
		Edges:     []nodelink.Edge{},
	}

	got, err := Noop{}.Apply(context.Background(), in)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if got == in {
		t.Error("Apply() returned the input, want a copy")
	}
	if len(got.Nodes) != 1 || got.Nodes[0].ID != "a" {
		t.Errorf("Apply() nodes = %+v, want original content", got.Nodes)
	}

	got.Nodes[0].Position.X = 99
	if in.Nodes[0].Position.X != 0 {
		t.Error("mutating the copy changed the input")
	}
}
