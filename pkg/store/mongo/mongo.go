// Package mongo provides a MongoDB-backed graph store.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/flowscope/flowscope/pkg/store"
)

const collectionName = "graphs"

// Store persists documents in a MongoDB collection, one document per
// captured graph keyed by _id.
type Store struct {
	client *mongodriver.Client
	coll   *mongodriver.Collection
}

// NewStore connects to MongoDB and prepares the graphs collection,
// creating the capture-time index used by List.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}

	s := &Store{
		client: client,
		coll:   client.Database(database).Collection(collectionName),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongodriver.IndexModel{
		Keys: bson.D{{Key: "capturedAt", Value: -1}},
	})
	return err
}

// Put stores a document, replacing any existing one with the same ID.
func (s *Store) Put(ctx context.Context, doc store.Document) error {
	_, err := s.coll.ReplaceOne(ctx,
		bson.M{"_id": doc.ID}, doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("put graph: %w", err)
	}
	return nil
}

// Get retrieves a full document by ID.
func (s *Store) Get(ctx context.Context, id string) (store.Document, error) {
	var doc store.Document
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongodriver.ErrNoDocuments) {
		return store.Document{}, store.ErrNotFound
	}
	if err != nil {
		return store.Document{}, fmt.Errorf("get graph: %w", err)
	}
	return doc, nil
}

// List returns document summaries, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]store.Document, error) {
	if limit <= 0 {
		limit = store.DefaultListLimit
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "capturedAt", Value: -1}, {Key: "_id", Value: 1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"payload": 0})

	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	defer cur.Close(ctx)

	docs := []store.Document{}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode graphs: %w", err)
	}
	return docs, nil
}

// Delete removes a document.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete graph: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Ping verifies the MongoDB connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ store.Store = (*Store)(nil)
