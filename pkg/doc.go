// Package pkg provides the core libraries for flowscope workflow observability.
//
// # Overview
//
// Flowscope turns captured AI workflow executions into diagrams a browser
// dashboard can draw. The pkg directory is organized into four main areas:
//
//  1. [workflow] - Versioned graph data model (parse, validate, index)
//  2. [render] - Diagram transforms (Mermaid, node/link JSON, DOT/SVG)
//  3. [layout] - Hierarchical auto-layout behind a pluggable engine
//  4. [pipeline] - Orchestration (parse → transform → layout → cache)
//
// Persistence and delivery live alongside: [store] keeps captured graphs
// (memory, MongoDB, Postgres), [cache] keeps rendered artifacts (file,
// Redis), and [observability] carries the hook registry the pipeline,
// cache, store, and HTTP server report through.
//
// # Architecture
//
// The typical data flow through flowscope:
//
//	Captured payload (JSON or base64)
//	         ↓
//	    [workflow] package (validate + index)
//	         ↓
//	    [render] package (mermaid / nodelink / dot)
//	         ↓
//	    [layout] package (optional auto-positions)
//	         ↓
//	    Mermaid / flow JSON / DOT / SVG / PNG / PDF artifacts
//
// # Quick Start
//
// Parse a captured payload and render artifacts:
//
//	import (
//	    "context"
//	    "github.com/flowscope/flowscope/pkg/cache"
//	    "github.com/flowscope/flowscope/pkg/layout/layered"
//	    "github.com/flowscope/flowscope/pkg/pipeline"
//	    "github.com/flowscope/flowscope/pkg/workflow"
//	)
//
//	// 1. Validate the capture
//	g, err := workflow.Parse(payload)
//
//	// 2. Build a runner (cache and layout engine are pluggable)
//	runner := pipeline.NewRunner(cache.NewNullCache(), &layered.Engine{}, logger)
//	defer runner.Close()
//
//	// 3. Render the formats the dashboard needs
//	res, err := runner.Execute(context.Background(), pipeline.Options{
//	    Graph:   g,
//	    Formats: []pipeline.Format{pipeline.FormatMermaid, pipeline.FormatFlow},
//	})
//
// # Main Packages
//
// ## Domain Logic
//
// [workflow] - The wire-format graph model: strict validation that reports
// every violation at once, role classification for containers and subflows,
// and tolerated referential problems surfaced as warnings.
//
// [render] - Transforms from the graph model to drawable formats. Mermaid
// flowchart text, layout-ready node/link JSON, and DOT with server-side SVG
// previews each live in their own subpackage.
//
// [layout] - Layered auto-layout (layer assignment, crossing reduction,
// coordinate assignment) behind the [layout.Engine] interface, so rendering
// degrades to unpositioned diagrams when layout fails or times out.
//
// ## Infrastructure
//
// [cache] - Rendered-artifact cache with file, Redis, and null backends.
//
// [store] - Captured-graph persistence with memory, MongoDB, and Postgres
// backends behind one interface.
//
// [observability] - Hook registry that decouples the libraries from any
// telemetry backend; internal/telemetry installs OpenTelemetry hooks.
//
// ## Orchestration
//
// [pipeline] - Ties the stages together: cache probe, per-format transforms,
// optional layout with fallback, cache fill, stats.
package pkg
