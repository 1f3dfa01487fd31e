// Package postgres provides a PostgreSQL-backed graph store using pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flowscope/flowscope/pkg/store"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS flowscope_graphs (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	payload     JSONB NOT NULL,
	node_count  INT NOT NULL DEFAULT 0,
	edge_count  INT NOT NULL DEFAULT 0,
	captured_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_flowscope_graphs_captured_at
	ON flowscope_graphs (captured_at DESC);
`

// Store persists documents in a PostgreSQL table, payloads as JSONB.
type Store struct {
	db *pgxpool.Pool
}

// NewStore connects to PostgreSQL and bootstraps the schema.
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return s, nil
}

func (s *Store) createSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// Put stores a document, replacing any existing row with the same ID.
func (s *Store) Put(ctx context.Context, doc store.Document) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO flowscope_graphs (id, name, payload, node_count, edge_count, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name        = EXCLUDED.name,
			payload     = EXCLUDED.payload,
			node_count  = EXCLUDED.node_count,
			edge_count  = EXCLUDED.edge_count,
			captured_at = EXCLUDED.captured_at
	`, doc.ID, doc.Name, []byte(doc.Payload), doc.NodeCount, doc.EdgeCount, doc.CapturedAt)
	if err != nil {
		return fmt.Errorf("put graph: %w", err)
	}
	return nil
}

// Get retrieves a full document by ID.
func (s *Store) Get(ctx context.Context, id string) (store.Document, error) {
	var doc store.Document
	var payload []byte
	err := s.db.QueryRow(ctx, `
		SELECT id, name, payload, node_count, edge_count, captured_at
		FROM flowscope_graphs
		WHERE id = $1
	`, id).Scan(&doc.ID, &doc.Name, &payload, &doc.NodeCount, &doc.EdgeCount, &doc.CapturedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return store.Document{}, store.ErrNotFound
	}
	if err != nil {
		return store.Document{}, fmt.Errorf("get graph: %w", err)
	}
	doc.Payload = payload
	return doc, nil
}

// List returns document summaries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]store.Document, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, name, node_count, edge_count, captured_at
		FROM flowscope_graphs
		ORDER BY captured_at DESC, id ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	defer rows.Close()

	docs := []store.Document{}
	for rows.Next() {
		var doc store.Document
		if err := rows.Scan(&doc.ID, &doc.Name, &doc.NodeCount, &doc.EdgeCount, &doc.CapturedAt); err != nil {
			return nil, fmt.Errorf("scan graph: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	return docs, nil
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM flowscope_graphs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete graph: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close(ctx context.Context) error {
	s.db.Close()
	return nil
}

var _ store.Store = (*Store)(nil)
