package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/flowscope/flowscope/pkg/layout"
	"github.com/flowscope/flowscope/pkg/observability"
	"github.com/flowscope/flowscope/pkg/render/nodelink"
	"github.com/flowscope/flowscope/pkg/workflow"
)

// =============================================================================
// Flow Diagram Generation
// =============================================================================

// FlowDiagram builds the layout-ready flow diagram for the graph.
//
// When auto-layout is requested, the engine positions a clone of the diagram
// under the configured timeout. An engine failure never fails the render:
// the unpositioned diagram is returned together with a layout-fallback
// warning, and the canvas lays the nodes out client-side instead.
func (r *Runner) FlowDiagram(ctx context.Context, g *workflow.Graph, opts *Options) (*nodelink.Diagram, *workflow.Warning) {
	d := nodelink.Hierarchical(g, opts.FlowOptions(r.Measurer))
	if !opts.AutoLayout || r.Engine == nil {
		return d, nil
	}

	layoutCtx := ctx
	if opts.LayoutTimeout > 0 {
		var cancel context.CancelFunc
		layoutCtx, cancel = context.WithTimeout(ctx, opts.LayoutTimeout)
		defer cancel()
	}

	engine := engineName(r.Engine)
	observability.Pipeline().OnLayoutStart(ctx, engine, len(d.Nodes))

	layoutStart := time.Now()
	positioned, err := r.Engine.Apply(layoutCtx, d)
	observability.Pipeline().OnLayoutComplete(ctx, engine, time.Since(layoutStart), err)

	if err != nil {
		r.Logger.Warn("auto-layout failed, returning unpositioned diagram",
			"name", opts.Name,
			"error", err)
		return d, &workflow.Warning{
			Kind:    WarnLayoutFallback,
			Message: fmt.Sprintf("auto-layout failed: %v; node positions left unset", err),
		}
	}
	return positioned, nil
}

// engineName labels the engine for hooks and logs, e.g. "layered.Engine".
func engineName(e layout.Engine) string {
	return strings.TrimPrefix(fmt.Sprintf("%T", e), "*")
}
