// Package dot emits Graphviz DOT source for workflow graphs and renders it
// to SVG in-process.
//
// DOT is the export and preview surface; the browser canvas consumes the
// node/link JSON instead. Containers become clusters, subflow nodes use the
// box3d shape, and the edge policy matches the Mermaid renderer: subflow
// bindings, skipped dangling edges, and edges touching subflow-internal
// nodes never emit.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/flowscope/flowscope/pkg/errors"
	"github.com/flowscope/flowscope/pkg/render"
	"github.com/flowscope/flowscope/pkg/workflow"
)

// Options control DOT emission.
type Options struct {
	Direction      render.Direction // rankdir (empty = LR)
	ShowConditions bool             // label condition text on dashed edges
}

// DefaultOptions returns left-to-right flow with condition labels on.
func DefaultOptions() Options {
	return Options{Direction: render.DirectionLR, ShowConditions: true}
}

func (o Options) withDefaults() Options {
	if o.Direction == "" {
		o.Direction = render.DirectionLR
	}
	return o
}

// ToDOT converts a workflow graph to Graphviz DOT source. The result can be
// rendered with [RenderSVG] or saved for external Graphviz tooling.
func ToDOT(g *workflow.Graph, opts Options) string {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	buf.WriteString("digraph workflow {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", opts.Direction)
	buf.WriteString("  compound=true;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		switch g.Role(n.ID) {
		case workflow.RoleNode, workflow.RoleSubflow:
		default:
			continue
		}
		if g.SubflowInternal(n.ID) {
			continue
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n), ", "))
	}

	for _, n := range g.Nodes() {
		if g.Role(n.ID) != workflow.RoleContainer || g.SubflowInternal(n.ID) {
			continue
		}
		writeCluster(&buf, g, n)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if e.Type == workflow.EdgeSubflow || g.SkipEdge(e.ID) {
			continue
		}
		if g.SubflowInternal(e.Source) || g.SubflowInternal(e.Target) {
			continue
		}
		attrs := edgeAttrs(e, opts.ShowConditions)
		src, tail := clusterAnchor(g, e.Source)
		dst, head := clusterAnchor(g, e.Target)
		if tail != "" {
			attrs = append(attrs, fmt.Sprintf("ltail=%q", tail))
		}
		if head != "" {
			attrs = append(attrs, fmt.Sprintf("lhead=%q", head))
		}
		if len(attrs) > 0 {
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", src, dst, strings.Join(attrs, ", "))
		} else {
			fmt.Fprintf(&buf, "  %q -> %q;\n", src, dst)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// clusterAnchor resolves an edge endpoint. DOT edges cannot attach to
// clusters, so an edge touching a container anchors at its first declared
// child and is clipped at the cluster border via lhead/ltail. Containers
// with no surviving children degrade to an implicit plain node.
func clusterAnchor(g *workflow.Graph, id string) (anchor, cluster string) {
	if g.Role(id) != workflow.RoleContainer || g.SubflowInternal(id) {
		return id, ""
	}
	for _, childID := range g.Children(id) {
		if g.SubflowInternal(childID) || g.Role(childID) != workflow.RoleChild {
			continue
		}
		return childID, "cluster_" + id
	}
	return id, ""
}

func nodeAttrs(n workflow.Node) []string {
	attrs := []string{fmt.Sprintf("label=%q", n.DisplayLabel())}
	if n.IsSubflow {
		attrs = append(attrs, "shape=box3d")
	}
	return attrs
}

func writeCluster(buf *bytes.Buffer, g *workflow.Graph, n workflow.Node) {
	fmt.Fprintf(buf, "\n  subgraph %q {\n", "cluster_"+n.ID)
	fmt.Fprintf(buf, "    label=%q;\n", n.DisplayLabel())
	buf.WriteString("    style=rounded;\n")
	for _, childID := range g.Children(n.ID) {
		if g.SubflowInternal(childID) || g.Role(childID) != workflow.RoleChild {
			continue
		}
		child, ok := g.Node(childID)
		if !ok {
			continue
		}
		fmt.Fprintf(buf, "    %q [%s];\n", child.ID, strings.Join(nodeAttrs(child), ", "))
	}
	buf.WriteString("  }\n")
}

func edgeAttrs(e workflow.Edge, showConditions bool) []string {
	if !e.HasCondition() {
		return nil
	}
	attrs := []string{"style=dashed"}
	if showConditions {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.ConditionLabel()))
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz. The result is ready
// for embedding or for conversion with [render.ToPDF] and [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "render SVG")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderPDF renders DOT source as PDF via SVG conversion. Requires librsvg
// (rsvg-convert) on the PATH.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT source as PNG via SVG conversion at the given
// scale. A scale of 2.0 suits high-DPI displays. Requires librsvg.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root svg element so the image scales to its
// container: origin pinned to 0 0 and explicit width/height matching the
// viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
