package nodelink

import "encoding/json"

// Diagram is the layout-ready structure handed to a node-graph canvas.
type Diagram struct {
	Direction string `json:"direction"`
	Nodes     []Node `json:"nodes"`
	Edges     []Edge `json:"edges"`
}

// NodeData carries the displayed label.
type NodeData struct {
	Label string `json:"label"`
}

// Position is a node position in canvas pixels.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Style carries explicit node dimensions for the layout engine.
type Style struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Node is one canvas node. ParentID nests the node inside a container;
// containers appear before their children in Diagram.Nodes because canvas
// libraries resolve parents in array order.
type Node struct {
	ID       string   `json:"id"`
	Data     NodeData `json:"data"`
	Position Position `json:"position"`
	ParentID string   `json:"parentId,omitempty"`
	Style    *Style   `json:"style,omitempty"`
}

// Edge is one canvas connector. Label carries the branch condition, if any.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

// Marshal encodes the diagram as indented JSON.
func (d *Diagram) Marshal() ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// UnmarshalDiagram decodes a diagram from JSON bytes.
func UnmarshalDiagram(data []byte) (*Diagram, error) {
	var d Diagram
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Clone returns a deep copy. Layout engines position a clone so the
// unpositioned original stays valid as a fallback.
func (d *Diagram) Clone() *Diagram {
	out := &Diagram{
		Direction: d.Direction,
		Nodes:     make([]Node, len(d.Nodes)),
		Edges:     make([]Edge, len(d.Edges)),
	}
	copy(out.Nodes, d.Nodes)
	copy(out.Edges, d.Edges)
	for i, n := range d.Nodes {
		if n.Style != nil {
			s := *n.Style
			out.Nodes[i].Style = &s
		}
	}
	return out
}

// Node returns a pointer to the node with the given id, or nil.
func (d *Diagram) Node(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}
