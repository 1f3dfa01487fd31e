// Package nodelink converts workflow graphs into the generic node/link
// structure consumed by browser node-graph canvases.
//
// # Overview
//
// A [Diagram] mirrors what canvas libraries expect: a flow direction, a
// node array with data/position/size, and an edge array with optional
// labels. The output carries no positions by default; position assignment
// is the job of a layout engine (see
// [github.com/flowscope/flowscope/pkg/layout]), and consumers fall back to
// the unpositioned structure when layout fails.
//
// # Mappings
//
// Two mappings exist:
//
//   - [Hierarchical] is the authoritative mapping. Containers become parent
//     nodes, children carry a parentId reference and positions relative to
//     the parent, and every node gets a measured size so a hierarchical
//     engine can box containers around their children.
//   - [Flat] ignores nesting entirely, for canvases without grouping
//     support.
//
// Both mappings apply the same edge policy as the Mermaid renderer:
// subflow-binding edges, skipped dangling edges, and edges touching
// subflow-internal nodes are omitted.
//
// # Sizing
//
// Node sizes come from a [fonts.Measurer]: measured label width plus
// padding, clamped to minimums. Without a measurer every node gets the
// fixed minimum box, which keeps the output usable in environments with no
// font access.
//
// # Usage
//
//	d := nodelink.Hierarchical(g, nodelink.Options{
//	    Direction: render.DirectionLR,
//	    Measurer:  fonts.Default(),
//	})
//	data, err := d.Marshal()
//
// [fonts.Measurer]: github.com/flowscope/flowscope/pkg/fonts
package nodelink
