package nodelink

import (
	"math"

	"github.com/flowscope/flowscope/pkg/fonts"
	"github.com/flowscope/flowscope/pkg/render"
	"github.com/flowscope/flowscope/pkg/workflow"
)

// Node sizing. A measured label width plus padding, clamped to minimums so
// short labels stay legible and long labels are not clipped.
const (
	WidthPadding  = 40.0
	HeightPadding = 24.0
	MinWidth      = 150.0
	MinHeight     = 40.0
)

// Options control the transform.
type Options struct {
	Direction render.Direction // recorded on the diagram (empty = LR)
	Measurer  fonts.Measurer   // nil means fixed minimum dimensions
}

func (o Options) direction() string {
	if o.Direction == "" {
		return string(render.DirectionLR)
	}
	return string(o.Direction)
}

// Flat maps the graph with nesting ignored: children appear as ordinary
// top-level nodes with no parent reference and no explicit size. Kept for
// canvases without grouping support.
func Flat(g *workflow.Graph, opts Options) *Diagram {
	d := &Diagram{Direction: opts.direction()}

	for _, n := range g.Nodes() {
		if g.SubflowInternal(n.ID) {
			continue
		}
		d.Nodes = append(d.Nodes, Node{
			ID:   n.ID,
			Data: NodeData{Label: n.DisplayLabel()},
		})
	}

	d.Edges = edges(g)
	return d
}

// Hierarchical maps the graph with containment intact: container children
// carry a parentId and every node carries measured dimensions. Containers
// precede their children in the node array because canvas libraries resolve
// parents in array order.
func Hierarchical(g *workflow.Graph, opts Options) *Diagram {
	d := &Diagram{Direction: opts.direction()}

	parent := make(map[string]string)
	for _, n := range g.Nodes() {
		if g.Role(n.ID) != workflow.RoleContainer {
			continue
		}
		for _, c := range g.Children(n.ID) {
			if _, ok := parent[c]; !ok {
				parent[c] = n.ID
			}
		}
	}

	for _, n := range g.Nodes() {
		if g.SubflowInternal(n.ID) || g.Role(n.ID) == workflow.RoleChild {
			continue
		}
		d.Nodes = append(d.Nodes, Node{
			ID:    n.ID,
			Data:  NodeData{Label: n.DisplayLabel()},
			Style: nodeStyle(opts.Measurer, n.DisplayLabel()),
		})
	}

	for _, n := range g.Nodes() {
		if g.SubflowInternal(n.ID) || g.Role(n.ID) != workflow.RoleChild {
			continue
		}
		d.Nodes = append(d.Nodes, Node{
			ID:       n.ID,
			Data:     NodeData{Label: n.DisplayLabel()},
			ParentID: parent[n.ID],
			Style:    nodeStyle(opts.Measurer, n.DisplayLabel()),
		})
	}

	d.Edges = edges(g)
	return d
}

// edges maps the surviving edges: subflow-typed edges, edges dropped for
// dangling endpoints, and edges touching subflow-internal nodes are omitted.
func edges(g *workflow.Graph) []Edge {
	var out []Edge
	for _, e := range g.Edges() {
		if e.Type == workflow.EdgeSubflow || g.SkipEdge(e.ID) {
			continue
		}
		if g.SubflowInternal(e.Source) || g.SubflowInternal(e.Target) {
			continue
		}
		out = append(out, Edge{
			ID:     e.ID,
			Source: e.Source,
			Target: e.Target,
			Label:  e.ConditionLabel(),
		})
	}
	return out
}

// nodeStyle sizes one node from its label. A nil measurer means the
// environment cannot query text metrics, so fixed minimums are used.
func nodeStyle(m fonts.Measurer, label string) *Style {
	if m == nil {
		return &Style{Width: MinWidth, Height: MinHeight}
	}

	w := m.Width(label, fonts.SizePx) + WidthPadding
	if w < MinWidth {
		w = MinWidth
	}
	h := fonts.SizePx + HeightPadding
	if h < MinHeight {
		h = MinHeight
	}
	return &Style{Width: math.Round(w), Height: math.Round(h)}
}
