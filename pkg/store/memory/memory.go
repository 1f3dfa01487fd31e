// Package memory provides an in-process graph store for development and
// tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/flowscope/flowscope/pkg/store"
)

// Store keeps documents in a map guarded by a RWMutex. Contents vanish on
// restart.
type Store struct {
	mu   sync.RWMutex
	docs map[string]store.Document
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{docs: make(map[string]store.Document)}
}

// Put stores a document, replacing any existing one with the same ID.
func (s *Store) Put(_ context.Context, doc store.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc.Payload = slices.Clone(doc.Payload)
	s.docs[doc.ID] = doc
	return nil
}

// Get retrieves a full document by ID.
func (s *Store) Get(_ context.Context, id string) (store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return store.Document{}, store.ErrNotFound
	}
	doc.Payload = slices.Clone(doc.Payload)
	return doc, nil
}

// List returns document summaries, newest first. Ties on capture time
// break by ID so the order is stable.
func (s *Store) List(_ context.Context, limit int) ([]store.Document, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	s.mu.RLock()
	docs := make([]store.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		doc.Payload = nil
		docs = append(docs, doc)
	}
	s.mu.RUnlock()

	slices.SortFunc(docs, func(a, b store.Document) int {
		if !a.CapturedAt.Equal(b.CapturedAt) {
			if a.CapturedAt.After(b.CapturedAt) {
				return -1
			}
			return 1
		}
		return strings.Compare(a.ID, b.ID)
	})
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs, nil
}

// Delete removes a document.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(_ context.Context) error {
	return nil
}

// Close does nothing.
func (s *Store) Close(_ context.Context) error {
	return nil
}

var _ store.Store = (*Store)(nil)
