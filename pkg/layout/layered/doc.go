// Package layered implements a Sugiyama-style layered layout for workflow
// diagrams.
//
// # Overview
//
// The engine positions the nodes of a [nodelink.Diagram] in four phases:
//
//  1. Cycle breaking: back edges found by depth-first search are ignored
//     for layering, so loop and retry edges lay out as forward chains.
//  2. Layer assignment: a longest-path topological traversal (Kahn's
//     algorithm) places each node one layer past its deepest predecessor.
//  3. Crossing reduction: alternating barycentric sweeps reorder each
//     layer toward the average position of its neighbors; the engine counts
//     crossings with a Fenwick tree after every sweep and keeps the best
//     ordering seen.
//  4. Coordinate assignment: layers are spread along the flow axis of the
//     diagram's direction (LR, RL, TB or BT) and each layer is centered on
//     the cross axis.
//
// # Hierarchy
//
// Nested diagrams are laid out bottom-up. Children of a container form
// their own scope and are positioned relative to the container's origin;
// the container is then sized to the bounding box of its children plus
// padding and a title band, and participates in its parent scope as a
// single node of that size. Edges whose endpoints live in different scopes
// are lifted to the nearest members of the common scope for ordering
// purposes.
//
// # Failure
//
// Apply fails only on nil input or context cancellation. Callers treat any
// error by keeping the unpositioned diagram, so a slow or cancelled layout
// degrades to browser-side positioning instead of a failed render.
//
// [nodelink.Diagram]: github.com/flowscope/flowscope/pkg/render/nodelink
package layered
