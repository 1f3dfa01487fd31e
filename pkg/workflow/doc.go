// Package workflow defines the workflow-graph model captured from workflow
// executions and the validation that turns an untrusted JSON payload into an
// immutable Graph.
//
// # Overview
//
// A workflow graph describes the static structure of one workflow run: its
// nodes (steps, fan-out containers, embedded sub-workflows) and the directed
// edges between them, including branch conditions. Graphs arrive as JSON
// documents emitted by execution telemetry and exist only to be transformed
// into rendering targets (see pkg/render/mermaid and pkg/render/nodelink).
//
// # JSON Format
//
// The payload is a versioned object with two required arrays:
//
//	{
//	  "v": 1,
//	  "nodes": [
//	    {"id": "fetch", "label": "Fetch", "type": "step"},
//	    {"id": "save", "label": "Save", "type": "step"}
//	  ],
//	  "edges": [
//	    {"id": "e1", "source": "fetch", "target": "save", "condition": null}
//	  ]
//	}
//
// # Node Fields
//
// Required:
//   - id: unique string identifier
//   - label: display label (falls back to id when empty)
//   - type: freeform type tag from the producing runtime
//
// Optional nesting metadata:
//   - isSubgraph + children: marks a visual container whose listed children
//     render nested inside it (for example a concurrent fan-out)
//   - isSubflow + subflowSourceId/subflowSinkId: marks a node standing in for
//     an embedded sub-workflow with a designated entry and exit
//
// # Edge Fields
//
// Required: id, source, target. Optional:
//   - condition: nullable branch/guard label
//   - type: "explicit" (default) or "subflow"; subflow edges belong to the
//     inside of an embedded sub-workflow and are hidden from the parent diagram
//   - subflowId: back-reference to the subflow node a subflow edge belongs to
//
// # Validation
//
// [Parse] validates the whole payload before constructing anything. Schema
// violations (missing fields, wrong types, duplicate ids) are collected into a
// single [errors.ValidationError] listing every violation; a payload is never
// partially accepted and values are never coerced.
//
// Referential problems are handled differently: a child id that names no node,
// an edge endpoint that names no node, or a subflow edge naming no known
// subflow are recorded as warnings on the Graph and the offending element is
// dropped from every derived index, so one bad record never blocks rendering
// of the rest. See [Graph.Warnings].
//
// # Immutability
//
// A Graph never changes after construction. Node roles and subflow membership
// are classified once during [Parse]; accessors return copies. All transforms
// downstream are pure reads, so a Graph is safe for concurrent use.
package workflow
