// Package mermaid emits deterministic Mermaid flowchart text for workflow
// graphs.
//
// Statement order is fixed: header, top-level node declarations in payload
// order, one subgraph block per container in payload order, then edges in
// payload order. Subflow-typed edges, edges touching subflow-internal nodes,
// and edges dropped for dangling endpoints never emit a connector.
package mermaid

import (
	"strings"

	"github.com/flowscope/flowscope/pkg/render"
	"github.com/flowscope/flowscope/pkg/workflow"
)

// Options control flowchart emission.
type Options struct {
	Direction         render.Direction // overall flow direction (empty = LR)
	SubgraphDirection render.Direction // direction inside container blocks (empty = TB)
	ShowConditions    bool             // emit condition text on dashed connectors
}

// DefaultOptions returns the options the dashboard renders with:
// left-to-right flow, top-to-bottom containers, condition labels on.
func DefaultOptions() Options {
	return Options{
		Direction:         render.DirectionLR,
		SubgraphDirection: render.DirectionTB,
		ShowConditions:    true,
	}
}

func (o Options) withDefaults() Options {
	if o.Direction == "" {
		o.Direction = render.DirectionLR
	}
	if o.SubgraphDirection == "" {
		o.SubgraphDirection = render.DirectionTB
	}
	return o
}

// Flowchart renders the graph as Mermaid flowchart text.
//
// Every node that is neither a container, a container child, nor hidden
// inside a subflow gets one declaration line; subflow nodes use the
// subroutine shape. Containers become nested subgraph blocks declaring
// their surviving children. Conditional edges render dashed, with the
// escaped condition text when ShowConditions is set.
func Flowchart(g *workflow.Graph, opts Options) string {
	opts = opts.withDefaults()

	var b strings.Builder
	b.WriteString("flowchart ")
	b.WriteString(string(opts.Direction))
	b.WriteString("\n")

	for _, n := range g.Nodes() {
		switch g.Role(n.ID) {
		case workflow.RoleNode, workflow.RoleSubflow:
		default:
			continue
		}
		if g.SubflowInternal(n.ID) {
			continue
		}
		b.WriteString("    ")
		b.WriteString(declare(n))
		b.WriteString("\n")
	}

	for _, n := range g.Nodes() {
		if g.Role(n.ID) != workflow.RoleContainer || g.SubflowInternal(n.ID) {
			continue
		}
		writeSubgraph(&b, g, n, opts)
	}

	for _, e := range g.Edges() {
		if e.Type == workflow.EdgeSubflow || g.SkipEdge(e.ID) {
			continue
		}
		if g.SubflowInternal(e.Source) || g.SubflowInternal(e.Target) {
			continue
		}
		b.WriteString("    ")
		b.WriteString(connector(e, opts.ShowConditions))
		b.WriteString("\n")
	}

	return b.String()
}

// writeSubgraph emits one container block. Children hidden inside a subflow
// render within that subflow instead, and children that are themselves
// containers get their own block, so both are skipped here.
func writeSubgraph(b *strings.Builder, g *workflow.Graph, n workflow.Node, opts Options) {
	b.WriteString("    subgraph ")
	b.WriteString(n.ID)
	b.WriteString(`["`)
	b.WriteString(EscapeLabel(n.DisplayLabel()))
	b.WriteString("\"]\n")

	b.WriteString("        direction ")
	b.WriteString(string(opts.SubgraphDirection))
	b.WriteString("\n")

	for _, cid := range g.Children(n.ID) {
		if g.SubflowInternal(cid) || g.Role(cid) != workflow.RoleChild {
			continue
		}
		child, _ := g.Node(cid)
		b.WriteString("        ")
		b.WriteString(declare(child))
		b.WriteString("\n")
	}

	b.WriteString("    end\n")
}

// declare renders a node declaration. Shape follows the subflow flag rather
// than the role so a subflow listed as a container child keeps its shape.
func declare(n workflow.Node) string {
	label := EscapeLabel(n.DisplayLabel())
	if n.IsSubflow {
		return n.ID + `[["` + label + `"]]`
	}
	return n.ID + `["` + label + `"]`
}

// connector renders one edge statement.
func connector(e workflow.Edge, showConditions bool) string {
	switch {
	case e.HasCondition() && showConditions:
		return e.Source + ` -. "` + EscapeLabel(e.ConditionLabel()) + `" .-> ` + e.Target
	case e.HasCondition():
		return e.Source + " -.-> " + e.Target
	default:
		return e.Source + " --> " + e.Target
	}
}
