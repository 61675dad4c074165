// Package store is the persistence layer: an HNSW vector index for
// semantic search, a Bleve index for keyword search, and SQLite for
// chunk metadata and evaluation results.
package store

import (
	"context"
	"fmt"
	"time"
)

// State keys for the chunk store's key-value table. Used to detect
// embedder changes that would invalidate the vector index.
const (
	StateKeyIndexDimension = "index_embedding_dimension"
	StateKeyIndexModel     = "index_embedding_model"
)

// Document represents a source document in the corpus.
type Document struct {
	ID        string // SHA256 of source path or explicit ID
	Title     string
	Source    string // File path or origin identifier
	Content   string
	CreatedAt time.Time
}

// Chunk is a retrievable unit of corpus text.
type Chunk struct {
	ID        string // SHA256(doc ID + content)
	DocID     string
	Title     string // Inherited from the parent document
	Content   string
	Position  int // Chunk ordinal within the document
	CreatedAt time.Time
}

// VectorResult is a single vector search hit.
type VectorResult struct {
	ID       string  // Chunk ID
	Distance float32 // Lower is more similar (0-2 for cosine)
	Score    float32 // Normalized similarity (0-1)
}

// VectorStoreConfig configures the vector index.
type VectorStoreConfig struct {
	// Dimensions is the embedding dimension.
	Dimensions int

	// Metric is the distance metric: "cos" or "l2" (default "cos").
	Metric string

	// M is the HNSW max connections per layer.
	M int

	// EfSearch is the HNSW query-time search width.
	EfSearch int
}

// DefaultVectorStoreConfig returns sensible defaults for the given
// embedding dimension.
func DefaultVectorStoreConfig(dimensions int) VectorStoreConfig {
	return VectorStoreConfig{
		Dimensions: dimensions,
		Metric:     "cos",
		M:          16,
		EfSearch:   64,
	}
}

// VectorStore provides semantic nearest-neighbor search.
type VectorStore interface {
	// Add inserts vectors with their IDs. An existing ID is replaced.
	Add(ctx context.Context, ids []string, vectors [][]float32) error

	// Search finds the k nearest neighbors to the query vector.
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)

	// Delete removes vectors by ID.
	Delete(ctx context.Context, ids []string) error

	// Contains checks whether an ID exists.
	Contains(id string) bool

	// Count returns the number of vectors.
	Count() int

	// Persistence.
	Save(path string) error
	Load(path string) error
	Close() error
}

// KeywordResult is a single keyword search hit.
type KeywordResult struct {
	ID    string
	Score float64
}

// KeywordIndex provides full-text keyword search over chunk content.
type KeywordIndex interface {
	// Index adds chunks to the index. An existing ID is replaced.
	Index(ctx context.Context, chunks []*Chunk) error

	// Search returns chunk IDs matching the query, best first.
	Search(ctx context.Context, query string, limit int) ([]*KeywordResult, error)

	// Delete removes chunks by ID.
	Delete(ctx context.Context, ids []string) error

	// Count returns the number of indexed chunks.
	Count() (uint64, error)

	Close() error
}

// ErrDimensionMismatch indicates a vector dimension mismatch against
// the index configuration.
type ErrDimensionMismatch struct {
	Expected int
	Got      int
}

func (e ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d (reindex the corpus)", e.Expected, e.Got)
}
