// Package pipeline provides the core rendering pipeline for Flowscope.
//
// This package implements the complete transform → layout → render pipeline
// shared by the CLI and the HTTP API. By centralizing this logic, we ensure
// consistent behavior across all entry points and avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Transform: Map a parsed workflow graph into the requested formats
//     (Mermaid flowchart text, layout-ready flow JSON, DOT)
//  2. Layout: Optionally position the flow diagram with the layout engine
//  3. Render: Rasterize DOT into SVG, with PNG and PDF conversions
//
// Rendered artifacts are cached under content-addressed keys, so repeated
// requests for the same graph and options never recompute.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, engine, logger)
//	opts := pipeline.Options{
//	    Name:    "checkout",
//	    Graph:   g,
//	    Formats: []pipeline.Format{pipeline.FormatMermaid, pipeline.FormatSVG},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowscope/flowscope/pkg/cache"
	"github.com/flowscope/flowscope/pkg/errors"
	"github.com/flowscope/flowscope/pkg/fonts"
	"github.com/flowscope/flowscope/pkg/render"
	"github.com/flowscope/flowscope/pkg/render/dot"
	"github.com/flowscope/flowscope/pkg/render/mermaid"
	"github.com/flowscope/flowscope/pkg/render/nodelink"
	"github.com/flowscope/flowscope/pkg/workflow"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultName is used when a graph arrives without a name.
	DefaultName = "workflow"

	// DefaultDirection is the overall flow direction.
	DefaultDirection = string(render.DirectionLR)

	// DefaultSubgraphDirection is the flow direction inside container blocks.
	DefaultSubgraphDirection = string(render.DirectionTB)

	// DefaultLayoutTimeout bounds a single auto-layout run. Layout cost grows
	// with crossing-reduction passes, so runaway graphs are cut off rather
	// than blocking the render.
	DefaultLayoutTimeout = 5 * time.Second

	// DefaultCacheTTL is how long rendered artifacts stay cached.
	DefaultCacheTTL = 24 * time.Hour

	// DefaultPNGScale is the raster scale for PNG export (2x resolution).
	DefaultPNGScale = 2.0
)

// Format identifies a pipeline output format.
type Format string

// Output formats.
const (
	FormatMermaid Format = "mermaid"
	FormatFlow    Format = "flow"
	FormatDOT     Format = "dot"
	FormatSVG     Format = "svg"
	FormatPNG     Format = "png"
	FormatPDF     Format = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[Format]bool{
	FormatMermaid: true,
	FormatFlow:    true,
	FormatDOT:     true,
	FormatSVG:     true,
	FormatPNG:     true,
	FormatPDF:     true,
}

// WarnLayoutFallback marks a render that returned an unpositioned flow
// diagram after the layout engine failed.
const WarnLayoutFallback = workflow.WarningKind("layout-fallback")

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one pipeline execution.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Graph options
	Name  string          `json:"name,omitempty"`
	Graph *workflow.Graph `json:"-"`

	// Transform options
	Direction         string `json:"direction,omitempty"`
	SubgraphDirection string `json:"subgraph_direction,omitempty"`
	ShowConditions    *bool  `json:"show_conditions,omitempty"` // nil means true

	// Layout options
	AutoLayout    bool          `json:"auto_layout,omitempty"`
	LayoutTimeout time.Duration `json:"layout_timeout,omitempty"`

	// Cache options
	UseCache bool          `json:"use_cache,omitempty"`
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`

	// Render options
	Formats []Format `json:"formats,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Name identifies the rendered workflow.
	Name string

	// Artifacts contains the rendered outputs keyed by format.
	Artifacts map[Format][]byte

	// Warnings lists referential problems tolerated during construction,
	// plus a layout-fallback warning when auto-layout failed.
	Warnings []workflow.Warning

	// Stats contains graph and timing information.
	Stats Stats

	// Cache reports whether the artifacts came from cache.
	Cache CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nodes      int
	Edges      int
	Containers int
	Subflows   int
	Skipped    int // elements omitted for referential problems
	Duration   time.Duration
}

// CacheInfo tracks cache use for a pipeline run.
type CacheInfo struct {
	Hit bool   // all requested formats were served from cache
	Key string // content hash of the graph
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format Format) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: mermaid, flow, dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []Format) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect
// as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Graph == nil {
		return errors.New(errors.ErrCodeInvalidGraph, "graph is required")
	}
	if o.Name == "" {
		o.Name = DefaultName
	}

	if o.Direction == "" {
		o.Direction = DefaultDirection
	} else {
		d, err := render.ParseDirection(o.Direction)
		if err != nil {
			return err
		}
		o.Direction = string(d)
	}
	if o.SubgraphDirection == "" {
		o.SubgraphDirection = DefaultSubgraphDirection
	} else {
		d, err := render.ParseDirection(o.SubgraphDirection)
		if err != nil {
			return err
		}
		o.SubgraphDirection = string(d)
	}

	if len(o.Formats) == 0 {
		o.Formats = []Format{FormatMermaid}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}

	if o.LayoutTimeout == 0 {
		o.LayoutTimeout = DefaultLayoutTimeout
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = DefaultCacheTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// ConditionsShown reports whether condition labels are emitted.
// Unset means yes, matching the dashboard default.
func (o *Options) ConditionsShown() bool {
	return o.ShowConditions == nil || *o.ShowConditions
}

// MermaidOptions returns the Mermaid emission options.
func (o *Options) MermaidOptions() mermaid.Options {
	return mermaid.Options{
		Direction:         render.Direction(o.Direction),
		SubgraphDirection: render.Direction(o.SubgraphDirection),
		ShowConditions:    o.ConditionsShown(),
	}
}

// DOTOptions returns the DOT emission options.
func (o *Options) DOTOptions() dot.Options {
	return dot.Options{
		Direction:      render.Direction(o.Direction),
		ShowConditions: o.ConditionsShown(),
	}
}

// FlowOptions returns the flow-diagram transform options.
func (o *Options) FlowOptions(measurer fonts.Measurer) nodelink.Options {
	return nodelink.Options{
		Direction: render.Direction(o.Direction),
		Measurer:  measurer,
	}
}

// ArtifactKeyOpts returns cache key options for one artifact format.
// Every option that changes the rendered bytes participates in the key.
func (o *Options) ArtifactKeyOpts(format Format) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:            string(format),
		Direction:         o.Direction,
		SubgraphDirection: o.SubgraphDirection,
		ShowConditions:    o.ConditionsShown(),
		AutoLayout:        o.AutoLayout,
	}
}
