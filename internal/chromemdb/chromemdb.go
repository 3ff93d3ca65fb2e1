package chromemdb

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"

	"product-rag/internal/models"
)

// Entry is one chunk staged for upsert into the collection.
type Entry struct {
	ID        string
	Content   string
	Metadata  map[string]string
	Embedding []float32
}

// Store encapsulates the chromem-go database operations for one named
// collection. The query path is read-only; Replace is the only writer and is
// meant to run as a one-shot batch without concurrent queries.
type Store struct {
	db         *chromem.DB
	collection *chromem.Collection
	name       string
}

// NewStore opens (or creates) the persistent database at dbPath and binds the
// named collection. With inMemory set, nothing is persisted; tests use this.
func NewStore(dbPath, collectionName string, inMemory bool) (*Store, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, false)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %v", err)
		}
	}

	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %v", err)
	}

	return &Store{
		db:         db,
		collection: collection,
		name:       collectionName,
	}, nil
}

// Replace rebuilds the collection wholesale from the given entries. Prior
// contents are dropped first; readers racing a rebuild may observe a partially
// rebuilt collection.
func (s *Store) Replace(ctx context.Context, entries []Entry) error {
	if err := s.db.DeleteCollection(s.name); err != nil {
		return fmt.Errorf("failed to drop collection: %v", err)
	}
	collection, err := s.db.GetOrCreateCollection(s.name, nil, nil)
	if err != nil {
		return fmt.Errorf("failed to recreate collection: %v", err)
	}
	s.collection = collection

	if len(entries) == 0 {
		return nil
	}

	docs := make([]chromem.Document, len(entries))
	for i, entry := range entries {
		docs[i] = chromem.Document{
			ID:        entry.ID,
			Content:   entry.Content,
			Metadata:  entry.Metadata,
			Embedding: entry.Embedding,
		}
	}
	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %v", err)
	}
	return nil
}

// Query returns up to k entries nearest the given embedding, best match
// first. An empty collection yields an empty result, not an error.
func (s *Store) Query(ctx context.Context, embedding []float32, k int) ([]models.SearchResult, error) {
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := s.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: embedding,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	out := make([]models.SearchResult, len(results))
	for i, res := range results {
		out[i] = models.SearchResult{
			Content:    res.Content,
			Metadata:   res.Metadata,
			Similarity: res.Similarity,
		}
	}
	return out, nil
}

// Count reports how many entries the collection currently holds.
func (s *Store) Count() int {
	return s.collection.Count()
}
