// Package store persists captured workflow graphs.
//
// A capture is the raw JSON payload a workflow emitted, stored verbatim
// alongside a small amount of metadata. Rendering always re-parses the
// payload, so the store never holds derived structures that could go stale.
//
// Three backends implement [Store]:
//   - memory: in-process map for development and tests
//   - mongo: MongoDB for document-oriented deployments
//   - postgres: PostgreSQL via pgx for relational deployments
//
// # Usage
//
//	doc := store.NewDocument("checkout-flow", g, payload)
//	if err := st.Put(ctx, doc); err != nil {
//	    return err
//	}
//
//	doc, err := st.Get(ctx, id)
//	if errors.Is(err, store.ErrNotFound) {
//	    // unknown id
//	}
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/flowscope/flowscope/pkg/workflow"
)

// ErrNotFound is returned when a requested graph does not exist.
var ErrNotFound = errors.New("graph not found")

// DefaultListLimit bounds List when the caller passes no limit.
const DefaultListLimit = 50

// Document is one captured workflow graph.
type Document struct {
	ID         string          `json:"id" bson:"_id"`
	Name       string          `json:"name" bson:"name"`
	Payload    json.RawMessage `json:"payload,omitempty" bson:"payload,omitempty"`
	NodeCount  int             `json:"nodeCount" bson:"nodeCount"`
	EdgeCount  int             `json:"edgeCount" bson:"edgeCount"`
	CapturedAt time.Time       `json:"capturedAt" bson:"capturedAt"`
}

// NewDocument assembles a document for a validated graph and its raw
// payload. The ID is a fresh UUID and CapturedAt is the current time.
func NewDocument(name string, g *workflow.Graph, payload []byte) Document {
	return Document{
		ID:         uuid.NewString(),
		Name:       name,
		Payload:    json.RawMessage(payload),
		NodeCount:  len(g.Nodes()),
		EdgeCount:  len(g.Edges()),
		CapturedAt: time.Now().UTC(),
	}
}

// Store is the interface for graph persistence backends.
type Store interface {
	// Put stores a document, replacing any existing document with the
	// same ID.
	Put(ctx context.Context, doc Document) error

	// Get retrieves a full document by ID. Returns ErrNotFound for
	// unknown IDs.
	Get(ctx context.Context, id string) (Document, error)

	// List returns document summaries (every field except Payload),
	// newest first. A limit of zero or less applies DefaultListLimit.
	List(ctx context.Context, limit int) ([]Document, error)

	// Delete removes a document. Returns ErrNotFound for unknown IDs.
	Delete(ctx context.Context, id string) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases backend resources.
	Close(ctx context.Context) error
}
