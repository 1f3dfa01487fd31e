// Package render provides rendering targets for workflow graphs.
//
// # Overview
//
// This package contains the transforms that turn an immutable
// [workflow.Graph] into something a front end can draw. It provides:
//
//   - Shared rendering vocabulary (flow [Direction])
//   - Generic format conversion (SVG to PDF/PNG)
//   - Mermaid flowchart text (in [mermaid] subpackage)
//   - Layout-ready node/link JSON (in [nodelink] subpackage)
//   - DOT text and server-side SVG previews (in [dot] subpackage)
//
// # Mermaid Flowcharts
//
// The [mermaid] subpackage emits deterministic flowchart text for a
// client-side diagram renderer. Subgraph containers become nested blocks,
// subflow nodes get a distinct shape, and conditional edges render dashed.
//
//	text := mermaid.Flowchart(g, mermaid.DefaultOptions())
//
// # Node-Link JSON
//
// The [nodelink] subpackage emits the generic {direction, nodes, edges}
// structure consumed by browser node-graph canvases. The hierarchical
// variant assigns parent references and measured container sizes so an
// auto-layout engine can box nested children correctly (see pkg/layout).
//
//	d := nodelink.Hierarchical(g, nodelink.Options{Measurer: fonts.Default()})
//
// # DOT Previews
//
// The [dot] subpackage emits Graphviz DOT text and renders it to SVG
// in-process for server-side previews.
//
//	src := dot.ToDOT(g, dot.DefaultOptions())
//	svg, err := dot.RenderSVG(ctx, src)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
// [mermaid]: github.com/flowscope/flowscope/pkg/render/mermaid
// [nodelink]: github.com/flowscope/flowscope/pkg/render/nodelink
// [dot]: github.com/flowscope/flowscope/pkg/render/dot
// [workflow.Graph]: github.com/flowscope/flowscope/pkg/workflow.Graph
package render
