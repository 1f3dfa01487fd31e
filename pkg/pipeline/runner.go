package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/flowscope/flowscope/pkg/cache"
	"github.com/flowscope/flowscope/pkg/errors"
	"github.com/flowscope/flowscope/pkg/fonts"
	"github.com/flowscope/flowscope/pkg/layout"
	"github.com/flowscope/flowscope/pkg/observability"
	"github.com/flowscope/flowscope/pkg/render/dot"
	"github.com/flowscope/flowscope/pkg/render/mermaid"
	"github.com/flowscope/flowscope/pkg/workflow"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for its collaborators - it doesn't store
// pipeline results. Multiple goroutines can safely use the same Runner
// with different options.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Engine   layout.Engine
	Measurer fonts.Measurer
	Logger   *log.Logger
}

// NewRunner creates a runner with the given cache and layout engine.
// If cache is nil, a NullCache is used (caching disabled).
// If engine is nil, flow diagrams are returned unpositioned.
// The Keyer and Measurer fields get working defaults and can be replaced
// before the first Execute call.
func NewRunner(c cache.Cache, engine layout.Engine, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if engine == nil {
		engine = layout.Noop{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    cache.NewDefaultKeyer(),
		Engine:   engine,
		Measurer: fonts.Default(),
		Logger:   logger,
	}
}

// Execute runs the complete transform → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	g := opts.Graph
	start := time.Now()

	result := &Result{
		Name:      opts.Name,
		Artifacts: make(map[Format][]byte, len(opts.Formats)),
		Warnings:  g.Warnings(),
	}
	result.Stats = Stats{
		Nodes:      len(g.Nodes()),
		Edges:      len(g.Edges()),
		Containers: g.CountRole(workflow.RoleContainer),
		Subflows:   g.CountRole(workflow.RoleSubflow),
		Skipped:    len(result.Warnings),
	}

	graphHash := graphHash(g)
	result.Cache.Key = graphHash

	// A cache hit requires every requested format; a partial set falls
	// through to a full render so hit semantics stay all-or-nothing.
	if opts.UseCache && r.probeCache(ctx, graphHash, &opts, result) {
		result.Cache.Hit = true
		result.Stats.Duration = time.Since(start)
		r.Logger.Debug("artifacts served from cache",
			"name", opts.Name,
			"formats", opts.Formats)
		return result, nil
	}

	formats := formatStrings(opts.Formats)
	renderStart := time.Now()
	observability.Pipeline().OnRenderStart(ctx, formats)

	for _, format := range opts.Formats {
		data, err := r.renderFormat(ctx, g, format, &opts, result)
		if err != nil {
			observability.Pipeline().OnRenderComplete(ctx, formats, time.Since(renderStart), err)
			return nil, err
		}
		result.Artifacts[format] = data
	}
	observability.Pipeline().OnRenderComplete(ctx, formats, time.Since(renderStart), nil)

	if opts.UseCache {
		r.fillCache(ctx, graphHash, &opts, result)
	}

	result.Stats.Duration = time.Since(start)
	r.Logger.Info("rendered workflow",
		"name", opts.Name,
		"nodes", result.Stats.Nodes,
		"edges", result.Stats.Edges,
		"formats", opts.Formats,
		"duration", result.Stats.Duration)

	return result, nil
}

// renderFormat produces the artifact bytes for one format.
func (r *Runner) renderFormat(ctx context.Context, g *workflow.Graph, format Format, opts *Options, result *Result) ([]byte, error) {
	switch format {
	case FormatMermaid:
		return []byte(mermaid.Flowchart(g, opts.MermaidOptions())), nil

	case FormatFlow:
		d, warn := r.FlowDiagram(ctx, g, opts)
		if warn != nil {
			result.Warnings = append(result.Warnings, *warn)
		}
		data, err := d.Marshal()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRender, err, "serialize flow diagram")
		}
		return data, nil

	case FormatDOT:
		return []byte(dot.ToDOT(g, opts.DOTOptions())), nil

	case FormatSVG:
		return dot.RenderSVG(ctx, dot.ToDOT(g, opts.DOTOptions()))

	case FormatPNG:
		return dot.RenderPNG(ctx, dot.ToDOT(g, opts.DOTOptions()), DefaultPNGScale)

	case FormatPDF:
		return dot.RenderPDF(ctx, dot.ToDOT(g, opts.DOTOptions()))

	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
	}
}

// probeCache tries to serve every requested format from cache.
func (r *Runner) probeCache(ctx context.Context, graphHash string, opts *Options, result *Result) bool {
	artifacts := make(map[Format][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, "artifact")
			return false
		}
		observability.Cache().OnCacheHit(ctx, "artifact")
		artifacts[format] = data
	}
	result.Artifacts = artifacts
	return true
}

// fillCache stores the rendered artifacts. Write failures are logged and
// skipped; the render already succeeded.
func (r *Runner) fillCache(ctx context.Context, graphHash string, opts *Options, result *Result) {
	for format, data := range result.Artifacts {
		key := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, opts.CacheTTL); err != nil {
			r.Logger.Debug("cache write failed", "format", format, "error", err)
			continue
		}
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// graphHash derives a stable content key from the graph. Nodes and edges
// keep payload order, so equal payloads key equally no matter where the
// graph was parsed.
func graphHash(g *workflow.Graph) string {
	doc := struct {
		V     int             `json:"v"`
		Nodes []workflow.Node `json:"nodes"`
		Edges []workflow.Edge `json:"edges"`
	}{g.Version(), g.Nodes(), g.Edges()}

	data, err := json.Marshal(doc)
	if err != nil {
		return ""
	}
	return cache.Hash(data)
}

func formatStrings(formats []Format) []string {
	out := make([]string, len(formats))
	for i, f := range formats {
		out[i] = string(f)
	}
	return out
}
