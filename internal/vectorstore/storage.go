// Package vectorstore persists policy chunk embeddings and searches them by
// cosine similarity, filtered to a single source document.
package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrSchemaMismatch is returned when an existing collection has a
	// different vector size than requested. The collection is left untouched.
	ErrSchemaMismatch = errors.New("vector collection schema mismatch")
	// ErrNotInitialized is returned when the collection has not been ensured.
	ErrNotInitialized = errors.New("vector collection not initialized")
	// ErrDimensionMismatch is returned when a vector has the wrong length.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Payload keys stored with every point.
const (
	PayloadText   = "text"
	PayloadSource = "source"
	PayloadIndex  = "index"
)

// Point is one chunk of a source document with its embedding.
type Point struct {
	ID     string
	Vector []float32
	Text   string
	Source string
	Index  int
}

// Result is a chunk returned by a similarity search.
type Result struct {
	Text   string
	Source string
	Score  float32
}

// Storage persists vectors and supports filtered similarity search.
type Storage interface {
	// EnsureCollection creates the collection with dim when absent and is a
	// no-op when it exists with the same dim. It never drops data.
	EnsureCollection(ctx context.Context, dim int) error
	// Recreate drops and recreates the collection. Only used by explicit migration.
	Recreate(ctx context.Context, dim int) error
	// Dimension returns the ensured vector size, or 0 before EnsureCollection.
	Dimension() int
	// Upsert writes points and returns once the write is acknowledged.
	Upsert(ctx context.Context, points []Point) error
	// Search returns up to limit chunks whose source equals source exactly,
	// ordered by descending similarity.
	Search(ctx context.Context, vector []float32, source string, limit int) ([]Result, error)
	// CountSource returns how many points are stored for source.
	CountSource(ctx context.Context, source string) (int, error)
	Close() error
}

var pointNamespace = uuid.MustParse("6f1c1f7e-3f5d-4b8e-9a3c-2b1d7c6e5a40")

// PointID derives a stable id for chunk index of source so re-ingesting the
// same document overwrites its points.
func PointID(source string, index int) string {
	return uuid.NewSHA1(pointNamespace, []byte(fmt.Sprintf("%s#%d", source, index))).String()
}
