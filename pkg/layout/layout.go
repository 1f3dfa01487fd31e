// Package layout assigns positions to node/link diagrams.
//
// A diagram produced by [github.com/flowscope/flowscope/pkg/render/nodelink]
// carries sizes but no positions. Implementations of [Engine] fill in the
// positions. Engines are fallible collaborators: callers that receive an
// error keep the unpositioned diagram and let the browser canvas run its
// own layout instead.
package layout

import (
	"context"

	"github.com/flowscope/flowscope/pkg/render/nodelink"
)

// Engine computes positions for every node of a diagram. Apply must not
// mutate its input; it returns a positioned copy. Implementations honor
// context cancellation and deadlines.
type Engine interface {
	Apply(ctx context.Context, d *nodelink.Diagram) (*nodelink.Diagram, error)
}

// Noop is an Engine that returns diagrams unchanged. It stands in when
// positioning happens elsewhere, typically in the browser canvas.
type Noop struct{}

// Apply returns a copy of d with positions untouched.
func (Noop) Apply(_ context.Context, d *nodelink.Diagram) (*nodelink.Diagram, error) {
	return d.Clone(), nil
}
