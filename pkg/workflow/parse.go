package workflow

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/flowscope/flowscope/pkg/errors"
)

// =============================================================================
// Payload Shapes
// =============================================================================

// rawPayload splits the top-level object without committing to field types,
// so every field can be validated and reported independently.
type rawPayload struct {
	V     json.RawMessage `json:"v"`
	Nodes json.RawMessage `json:"nodes"`
	Edges json.RawMessage `json:"edges"`
}

// nodePayload uses pointers for required fields to tell "missing" apart from
// a zero value.
type nodePayload struct {
	ID              *string  `json:"id"`
	Label           *string  `json:"label"`
	Type            *string  `json:"type"`
	IsSubgraph      bool     `json:"isSubgraph"`
	Children        []string `json:"children"`
	IsSubflow       bool     `json:"isSubflow"`
	SubflowSourceID string   `json:"subflowSourceId"`
	SubflowSinkID   string   `json:"subflowSinkId"`
}

type edgePayload struct {
	ID        *string `json:"id"`
	Source    *string `json:"source"`
	Target    *string `json:"target"`
	Condition *string `json:"condition"`
	Type      *string `json:"type"`
	SubflowID string  `json:"subflowId"`
}

// =============================================================================
// Construction
// =============================================================================

// Parse validates a JSON payload and constructs an immutable Graph.
//
// Schema violations are collected across the whole payload and returned as a
// single *errors.ValidationError; the graph is never partially accepted.
// Referential problems (dangling children, dangling edge endpoints, unknown
// subflow references) do not fail the parse: they are recorded as warnings
// and the offending element is dropped from the derived indexes.
func Parse(data []byte) (*Graph, error) {
	var raw rawPayload
	if err := json.Unmarshal(data, &raw); err != nil {
		verr := &errors.ValidationError{}
		verr.Add("payload", "invalid JSON: %v", err)
		return nil, verr
	}

	verr := &errors.ValidationError{}
	version := parseVersion(raw.V, verr)
	nodes := parseNodes(raw.Nodes, verr)
	edges := parseEdges(raw.Edges, verr)
	if err := verr.Err(); err != nil {
		return nil, err
	}

	return build(version, nodes, edges), nil
}

// ParseBase64 decodes a base64-encoded JSON payload and parses it.
// Standard, raw, and URL-safe encodings are accepted.
func ParseBase64(s string) (*Graph, error) {
	encodings := []*base64.Encoding{
		base64.StdEncoding,
		base64.RawStdEncoding,
		base64.URLEncoding,
		base64.RawURLEncoding,
	}

	var lastErr error
	for _, enc := range encodings {
		data, err := enc.DecodeString(s)
		if err == nil {
			return Parse(data)
		}
		lastErr = err
	}
	return nil, errors.Wrap(errors.ErrCodeInvalidInput, lastErr, "payload is not valid base64")
}

// Decode reads a JSON payload from r and parses it.
func Decode(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "failed to read payload")
	}
	return Parse(data)
}

// =============================================================================
// Schema Validation
// =============================================================================

// isMissing reports whether a top-level field is absent or JSON null.
func isMissing(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func parseVersion(raw json.RawMessage, verr *errors.ValidationError) int {
	if isMissing(raw) {
		verr.Add("v", "version is required")
		return 0
	}

	var v int
	if err := json.Unmarshal(raw, &v); err != nil {
		verr.Add("v", "version must be an integer")
		return 0
	}
	if v < 0 {
		verr.Add("v", "version must not be negative")
	}
	return v
}

func parseNodes(raw json.RawMessage, verr *errors.ValidationError) []Node {
	if isMissing(raw) {
		verr.Add("nodes", "nodes is required")
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		verr.Add("nodes", "nodes must be an array")
		return nil
	}

	nodes := make([]Node, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		field := fmt.Sprintf("nodes[%d]", i)

		var np nodePayload
		if err := json.Unmarshal(item, &np); err != nil {
			verr.Add(field, "invalid node: %v", err)
			continue
		}

		if np.ID == nil || *np.ID == "" {
			verr.Add(field+".id", "id is required")
			continue
		}
		if seen[*np.ID] {
			verr.Add(field+".id", "duplicate node id %q", *np.ID)
			continue
		}
		seen[*np.ID] = true

		if np.Label == nil {
			verr.Add(field+".label", "label is required")
		}
		if np.Type == nil {
			verr.Add(field+".type", "type is required")
		}

		n := Node{
			ID:              *np.ID,
			IsSubgraph:      np.IsSubgraph,
			Children:        np.Children,
			IsSubflow:       np.IsSubflow,
			SubflowSourceID: np.SubflowSourceID,
			SubflowSinkID:   np.SubflowSinkID,
		}
		if np.Label != nil {
			n.Label = *np.Label
		}
		if np.Type != nil {
			n.Type = *np.Type
		}
		nodes = append(nodes, n)
	}
	return nodes
}

func parseEdges(raw json.RawMessage, verr *errors.ValidationError) []Edge {
	if isMissing(raw) {
		verr.Add("edges", "edges is required")
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		verr.Add("edges", "edges must be an array")
		return nil
	}

	edges := make([]Edge, 0, len(items))
	seen := make(map[string]bool, len(items))
	for i, item := range items {
		field := fmt.Sprintf("edges[%d]", i)

		var ep edgePayload
		if err := json.Unmarshal(item, &ep); err != nil {
			verr.Add(field, "invalid edge: %v", err)
			continue
		}

		if ep.ID == nil || *ep.ID == "" {
			verr.Add(field+".id", "id is required")
			continue
		}
		if seen[*ep.ID] {
			verr.Add(field+".id", "duplicate edge id %q", *ep.ID)
			continue
		}
		seen[*ep.ID] = true

		if ep.Source == nil || *ep.Source == "" {
			verr.Add(field+".source", "source is required")
		}
		if ep.Target == nil || *ep.Target == "" {
			verr.Add(field+".target", "target is required")
		}

		e := Edge{
			ID:        *ep.ID,
			Condition: ep.Condition,
			Type:      EdgeExplicit,
			SubflowID: ep.SubflowID,
		}
		if ep.Source != nil {
			e.Source = *ep.Source
		}
		if ep.Target != nil {
			e.Target = *ep.Target
		}
		if ep.Type != nil && *ep.Type != "" {
			switch EdgeType(*ep.Type) {
			case EdgeExplicit, EdgeSubflow:
				e.Type = EdgeType(*ep.Type)
			default:
				verr.Add(field+".type", "unknown edge type %q", *ep.Type)
			}
		}
		edges = append(edges, e)
	}
	return edges
}

// =============================================================================
// Index Construction
// =============================================================================

// build assembles the graph indexes from schema-valid nodes and edges:
// container children, subflow membership, per-node roles, and the warnings
// for every reference that did not resolve.
func build(version int, nodes []Node, edges []Edge) *Graph {
	g := &Graph{
		version:  version,
		nodes:    nodes,
		edges:    edges,
		nodeIdx:  make(map[string]int, len(nodes)),
		roles:    make(map[string]Role, len(nodes)),
		children: make(map[string][]string),
		members:  make(map[string][]string),
		internal: make(map[string]bool),
		skip:     make(map[string]bool),
	}
	for i, n := range nodes {
		g.nodeIdx[n.ID] = i
	}

	// Container children. Dangling refs are dropped so blocks only ever
	// declare nodes that exist.
	childOf := make(map[string]bool)
	for _, n := range nodes {
		if !n.IsSubgraph {
			continue
		}
		for _, c := range n.Children {
			if _, ok := g.nodeIdx[c]; !ok {
				g.warn(WarnDanglingChild, n.ID, c,
					fmt.Sprintf("subgraph %q references unknown child %q", n.ID, c))
				continue
			}
			g.children[n.ID] = append(g.children[n.ID], c)
			childOf[c] = true
		}
	}

	// One pass over the edges covers both referential checks: dangling
	// endpoints drop the edge, and subflow-typed edges feed the membership
	// index of the subflow they name. A dangling subflow edge still counts
	// its surviving endpoint as a member.
	memberSeen := make(map[string]map[string]bool)
	for _, e := range edges {
		_, srcOK := g.nodeIdx[e.Source]
		_, dstOK := g.nodeIdx[e.Target]
		if !srcOK || !dstOK {
			ref := e.Source
			if srcOK {
				ref = e.Target
			}
			g.skip[e.ID] = true
			g.warn(WarnDanglingEdge, e.ID, ref,
				fmt.Sprintf("edge %q references unknown node %q", e.ID, ref))
		}

		if e.Type != EdgeSubflow {
			continue
		}

		owner, ok := g.nodeIdx[e.SubflowID]
		if !ok || !nodes[owner].IsSubflow {
			g.warn(WarnUnknownSubflow, e.ID, e.SubflowID,
				fmt.Sprintf("edge %q references unknown subflow %q", e.ID, e.SubflowID))
			continue
		}

		set := memberSeen[e.SubflowID]
		if set == nil {
			set = make(map[string]bool)
			memberSeen[e.SubflowID] = set
		}
		for _, id := range [2]string{e.Source, e.Target} {
			if id == e.SubflowID || set[id] {
				continue
			}
			if _, ok := g.nodeIdx[id]; !ok {
				continue // already warned as dangling
			}
			set[id] = true
			g.members[e.SubflowID] = append(g.members[e.SubflowID], id)
			g.internal[id] = true
		}
	}

	// Exactly one display role per node. When flags overlap, the first
	// matching case wins; renderers consult SubflowInternal separately
	// because a container can also sit inside a subflow.
	for _, n := range nodes {
		switch {
		case n.IsSubgraph:
			g.roles[n.ID] = RoleContainer
		case g.internal[n.ID]:
			g.roles[n.ID] = RoleSubflowInternal
		case childOf[n.ID]:
			g.roles[n.ID] = RoleChild
		case n.IsSubflow:
			g.roles[n.ID] = RoleSubflow
		default:
			g.roles[n.ID] = RoleNode
		}
	}

	return g
}

func (g *Graph) warn(kind WarningKind, elem, ref, msg string) {
	g.warnings = append(g.warnings, Warning{Kind: kind, ElementID: elem, Ref: ref, Message: msg})
}
