package layered

import (
	"context"
	"slices"

	"github.com/flowscope/flowscope/pkg/errors"
	"github.com/flowscope/flowscope/pkg/layout"
	"github.com/flowscope/flowscope/pkg/render"
	"github.com/flowscope/flowscope/pkg/render/nodelink"
)

// Defaults used when the corresponding Engine field is zero.
const (
	DefaultPasses           = 8
	DefaultNodeSpacing      = 50.0
	DefaultLayerSpacing     = 90.0
	DefaultContainerPadding = 24.0
	DefaultTitleBand        = 36.0
)

// Engine is a layered layout engine. The zero value is ready to use with
// the default spacing; fields override individual parameters.
type Engine struct {
	// Passes is the number of barycentric sweeps per scope.
	Passes int
	// NodeSpacing is the gap between neighboring nodes within a layer.
	NodeSpacing float64
	// LayerSpacing is the gap between consecutive layers along the flow
	// axis.
	LayerSpacing float64
	// ContainerPadding is the inset between a container border and its
	// children.
	ContainerPadding float64
	// TitleBand is the extra inset at the top of a container reserved for
	// its label.
	TitleBand float64
}

var _ layout.Engine = (*Engine)(nil)

func (e *Engine) passes() int {
	if e.Passes > 0 {
		return e.Passes
	}
	return DefaultPasses
}

func (e *Engine) nodeSpacing() float64 {
	if e.NodeSpacing > 0 {
		return e.NodeSpacing
	}
	return DefaultNodeSpacing
}

func (e *Engine) layerSpacing() float64 {
	if e.LayerSpacing > 0 {
		return e.LayerSpacing
	}
	return DefaultLayerSpacing
}

func (e *Engine) containerPadding() float64 {
	if e.ContainerPadding > 0 {
		return e.ContainerPadding
	}
	return DefaultContainerPadding
}

func (e *Engine) titleBand() float64 {
	if e.TitleBand > 0 {
		return e.TitleBand
	}
	return DefaultTitleBand
}

// Apply returns a positioned copy of d. Scopes are laid out bottom-up:
// children first, relative to their container, then the container itself
// as a single sized node in its parent scope. The input is never mutated.
func (e *Engine) Apply(ctx context.Context, d *nodelink.Diagram) (*nodelink.Diagram, error) {
	if d == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout requires a diagram")
	}
	out := d.Clone()
	if len(out.Nodes) == 0 {
		return out, nil
	}

	index := make(map[string]int, len(out.Nodes))
	for i, n := range out.Nodes {
		index[n.ID] = i
	}

	// Normalized parent per node. A reference to an unknown container
	// degrades to the root scope instead of losing the node.
	parentOf := make([]string, len(out.Nodes))
	for i, n := range out.Nodes {
		if n.ParentID != "" {
			if _, ok := index[n.ParentID]; ok {
				parentOf[i] = n.ParentID
			}
		}
	}

	widths := make([]float64, len(out.Nodes))
	heights := make([]float64, len(out.Nodes))
	for i := range out.Nodes {
		widths[i], heights[i] = nodeExtent(&out.Nodes[i])
	}

	horizontal, reversed := flowAxes(out.Direction)

	for _, sc := range scopesDeepFirst(out, index, parentOf) {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(errors.ErrCodeLayout, err, "layout interrupted")
		}
		if err := e.layoutScope(ctx, out, sc, index, parentOf, widths, heights, horizontal, reversed); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// scope is one nesting level: the members directly inside a container, or
// the top-level nodes when parent is empty.
type scope struct {
	parent  string
	members []int
}

// scopesDeepFirst groups nodes by parent and orders the groups deepest
// first, so containers are sized before the scope that contains them.
func scopesDeepFirst(d *nodelink.Diagram, index map[string]int, parentOf []string) []scope {
	grouped := make(map[string][]int)
	var keys []string
	for i := range d.Nodes {
		p := parentOf[i]
		if _, seen := grouped[p]; !seen {
			keys = append(keys, p)
		}
		grouped[p] = append(grouped[p], i)
	}

	depth := func(key string) int {
		n, cur := 0, key
		for cur != "" && n <= len(d.Nodes) {
			n++
			i, ok := index[cur]
			if !ok {
				break
			}
			cur = parentOf[i]
		}
		return n
	}
	slices.SortStableFunc(keys, func(a, b string) int {
		return depth(b) - depth(a)
	})

	scopes := make([]scope, 0, len(keys))
	for _, key := range keys {
		scopes = append(scopes, scope{parent: key, members: grouped[key]})
	}
	return scopes
}

func (e *Engine) layoutScope(ctx context.Context, d *nodelink.Diagram, sc scope, index map[string]int, parentOf []string, widths, heights []float64, horizontal, reversed bool) error {
	local := make(map[int]int, len(sc.members))
	for li, di := range sc.members {
		local[di] = li
	}

	g := newScopeGraph(len(sc.members))
	for _, edge := range d.Edges {
		u, ok := liftEndpoint(d, index, parentOf, edge.Source, sc.parent)
		if !ok {
			continue
		}
		v, ok := liftEndpoint(d, index, parentOf, edge.Target, sc.parent)
		if !ok {
			continue
		}
		g.addEdge(local[u], local[v])
	}

	g.breakCycles()
	layers := g.assignLayers()
	expanded, expandedLayers := subdivideLongEdges(g, layers)

	orders, err := e.orderLayers(ctx, expanded, expandedLayers)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLayout, err, "layout interrupted")
	}

	e.place(d, sc, orders, index, widths, heights, horizontal, reversed)
	return nil
}

// liftEndpoint resolves a node id to its ancestor that is a direct member
// of the given scope. Returns false when the id is unknown or the node
// lives outside the scope entirely.
func liftEndpoint(d *nodelink.Diagram, index map[string]int, parentOf []string, id, parent string) (int, bool) {
	cur, ok := index[id]
	if !ok {
		return 0, false
	}
	for hops := 0; hops <= len(d.Nodes); hops++ {
		if parentOf[cur] == parent {
			return cur, true
		}
		next, ok := index[parentOf[cur]]
		if !ok {
			return 0, false
		}
		cur = next
	}
	return 0, false
}

// place assigns coordinates for one scope. Layers spread along the flow
// axis, each layer centered on the cross axis against the widest layer.
// When the scope belongs to a container, positions are shifted by the
// padding insets and the container is resized to the resulting bounding
// box; child positions stay relative to the container origin.
func (e *Engine) place(d *nodelink.Diagram, sc scope, orders [][]int, index map[string]int, widths, heights []float64, horizontal, reversed bool) {
	memberCount := len(sc.members)
	mainOf := func(di int) float64 {
		if horizontal {
			return widths[di]
		}
		return heights[di]
	}
	crossOf := func(di int) float64 {
		if horizontal {
			return heights[di]
		}
		return widths[di]
	}

	// Band extent and stacked cross extent per layer. Virtual indices from
	// subdivision take no space.
	band := make([]float64, len(orders))
	crossTotal := make([]float64, len(orders))
	maxCross := 0.0
	for k, layer := range orders {
		placed := 0
		for _, li := range layer {
			if li >= memberCount {
				continue
			}
			di := sc.members[li]
			if m := mainOf(di); m > band[k] {
				band[k] = m
			}
			crossTotal[k] += crossOf(di)
			placed++
		}
		if placed > 1 {
			crossTotal[k] += float64(placed-1) * e.nodeSpacing()
		}
		if crossTotal[k] > maxCross {
			maxCross = crossTotal[k]
		}
	}

	// Flow-axis offsets in visual order; RL and BT walk the layers
	// backwards.
	offsets := make([]float64, len(orders))
	cursor := 0.0
	for i := range orders {
		k := i
		if reversed {
			k = len(orders) - 1 - i
		}
		offsets[k] = cursor
		cursor += band[k] + e.layerSpacing()
	}
	mainExtent := 0.0
	if len(orders) > 0 {
		mainExtent = cursor - e.layerSpacing()
	}

	for k, layer := range orders {
		c := (maxCross - crossTotal[k]) / 2
		for _, li := range layer {
			if li >= memberCount {
				continue
			}
			di := sc.members[li]
			main := offsets[k] + (band[k]-mainOf(di))/2
			if horizontal {
				d.Nodes[di].Position = nodelink.Position{X: main, Y: c}
			} else {
				d.Nodes[di].Position = nodelink.Position{X: c, Y: main}
			}
			c += crossOf(di) + e.nodeSpacing()
		}
	}

	if sc.parent == "" {
		return
	}

	var boxW, boxH float64
	if horizontal {
		boxW, boxH = mainExtent, maxCross
	} else {
		boxW, boxH = maxCross, mainExtent
	}

	pad, top := e.containerPadding(), e.titleBand()
	for _, di := range sc.members {
		d.Nodes[di].Position.X += pad
		d.Nodes[di].Position.Y += top
	}

	ci, ok := index[sc.parent]
	if !ok {
		return
	}
	w, h := boxW+2*pad, boxH+top+pad
	d.Nodes[ci].Style = &nodelink.Style{Width: w, Height: h}
	widths[ci], heights[ci] = w, h
}

func nodeExtent(n *nodelink.Node) (w, h float64) {
	w, h = nodelink.MinWidth, nodelink.MinHeight
	if n.Style != nil {
		if n.Style.Width > 0 {
			w = n.Style.Width
		}
		if n.Style.Height > 0 {
			h = n.Style.Height
		}
	}
	return w, h
}

func flowAxes(direction string) (horizontal, reversed bool) {
	dir, err := render.ParseDirection(direction)
	if err != nil {
		dir = render.DirectionLR
	}
	return dir.Horizontal(), dir == render.DirectionRL || dir == render.DirectionBT
}
