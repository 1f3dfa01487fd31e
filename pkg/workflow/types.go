package workflow

// =============================================================================
// Constants - Single Source of Truth
// =============================================================================

// EdgeType distinguishes top-level edges from edges internal to a subflow.
type EdgeType string

// Edge types.
const (
	EdgeExplicit EdgeType = "explicit"
	EdgeSubflow  EdgeType = "subflow"
)

// Role is the display role of a node, classified once at construction.
type Role int

// Node roles. Exactly one role is assigned per node; when flags overlap the
// earlier role in this list wins.
const (
	RoleContainer       Role = iota // subgraph container grouping children
	RoleSubflowInternal             // hidden inside an embedded sub-workflow
	RoleChild                       // rendered inside a container block
	RoleSubflow                     // stands in for an embedded sub-workflow
	RoleNode                        // ordinary top-level node
)

// String returns the role name for logs and stats.
func (r Role) String() string {
	switch r {
	case RoleContainer:
		return "container"
	case RoleSubflowInternal:
		return "subflow-internal"
	case RoleChild:
		return "child"
	case RoleSubflow:
		return "subflow"
	default:
		return "node"
	}
}

// =============================================================================
// Node and Edge - Wire Types
// =============================================================================

// Node is a single workflow step as captured on the wire.
type Node struct {
	ID              string   `json:"id" bson:"id"`
	Label           string   `json:"label" bson:"label"` // Display label (defaults to ID)
	Type            string   `json:"type" bson:"type"`   // Runtime type tag ("node", "subflow", ...)
	IsSubgraph      bool     `json:"isSubgraph,omitempty" bson:"isSubgraph,omitempty"`
	Children        []string `json:"children,omitempty" bson:"children,omitempty"`
	IsSubflow       bool     `json:"isSubflow,omitempty" bson:"isSubflow,omitempty"`
	SubflowSourceID string   `json:"subflowSourceId,omitempty" bson:"subflowSourceId,omitempty"`
	SubflowSinkID   string   `json:"subflowSinkId,omitempty" bson:"subflowSinkId,omitempty"`
}

// DisplayLabel returns the label if set, otherwise the ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Edge is a directed connection between two nodes.
type Edge struct {
	ID        string   `json:"id" bson:"id"`
	Source    string   `json:"source" bson:"source"`
	Target    string   `json:"target" bson:"target"`
	Condition *string  `json:"condition" bson:"condition"` // nil means unconditional
	Type      EdgeType `json:"type,omitempty" bson:"type,omitempty"`
	SubflowID string   `json:"subflowId,omitempty" bson:"subflowId,omitempty"`
}

// HasCondition reports whether the edge carries a branch condition.
func (e *Edge) HasCondition() bool {
	return e.Condition != nil && *e.Condition != ""
}

// ConditionLabel returns the condition text, or empty for unconditional edges.
func (e *Edge) ConditionLabel() string {
	if e.Condition == nil {
		return ""
	}
	return *e.Condition
}

// =============================================================================
// Warnings - Referential Problems
// =============================================================================

// WarningKind identifies the class of referential problem found during
// construction.
type WarningKind string

// Warning kinds.
const (
	WarnDanglingChild  WarningKind = "dangling-child"
	WarnDanglingEdge   WarningKind = "dangling-edge"
	WarnUnknownSubflow WarningKind = "unknown-subflow"
)

// Warning records a tolerated referential problem: the offending element is
// omitted from every transform output, but the rest of the graph renders.
type Warning struct {
	Kind      WarningKind `json:"kind"`
	ElementID string      `json:"elementId"`     // node or edge the problem was found on
	Ref       string      `json:"ref,omitempty"` // the reference that did not resolve
	Message   string      `json:"message"`
}

func (w Warning) String() string { return w.Message }

// =============================================================================
// Graph - Immutable Workflow Graph
// =============================================================================

// Graph is an immutable workflow graph. Construct one with [Parse],
// [ParseBase64], or [Decode]; the zero value is not usable.
//
// Roles, container children, subflow membership, and referential warnings are
// classified once at construction so transforms never rescan the edge list.
type Graph struct {
	version int
	nodes   []Node
	edges   []Edge

	nodeIdx  map[string]int      // node id → index into nodes
	roles    map[string]Role     // node id → display role
	children map[string][]string // container id → surviving child ids
	members  map[string][]string // subflow id → member node ids
	internal map[string]bool     // union of all subflow member sets
	skip     map[string]bool     // edge ids omitted for dangling endpoints
	warnings []Warning
}

// Version returns the payload schema version.
func (g *Graph) Version() int { return g.version }

// Nodes returns the nodes in payload order. The returned slice is a copy.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns the edges in payload order. The returned slice is a copy.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Node returns the node with the given id.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.nodeIdx[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Role returns the display role classified for the node, or RoleNode for
// unknown ids.
func (g *Graph) Role(id string) Role {
	r, ok := g.roles[id]
	if !ok {
		return RoleNode
	}
	return r
}

// Children returns the surviving child ids of a container, in declaration
// order. Dangling child references have already been dropped (and warned).
func (g *Graph) Children(id string) []string {
	kids := g.children[id]
	out := make([]string, len(kids))
	copy(out, kids)
	return out
}

// SubflowMembers returns the ids of nodes internal to the given subflow, in
// first-seen edge order.
func (g *Graph) SubflowMembers(id string) []string {
	m := g.members[id]
	out := make([]string, len(m))
	copy(out, m)
	return out
}

// SubflowInternal reports whether the node belongs to the inside of any
// subflow. This is independent of [Graph.Role]: a container can be
// subflow-internal and still classify as RoleContainer.
func (g *Graph) SubflowInternal(id string) bool {
	return g.internal[id]
}

// SkipEdge reports whether the edge was dropped for a dangling endpoint.
func (g *Graph) SkipEdge(id string) bool {
	return g.skip[id]
}

// Warnings returns the referential problems recorded at construction, in the
// order they were found. The returned slice is a copy.
func (g *Graph) Warnings() []Warning {
	out := make([]Warning, len(g.warnings))
	copy(out, g.warnings)
	return out
}

// CountRole returns how many nodes classified into the given role.
func (g *Graph) CountRole(r Role) int {
	n := 0
	for _, role := range g.roles {
		if role == r {
			n++
		}
	}
	return n
}
