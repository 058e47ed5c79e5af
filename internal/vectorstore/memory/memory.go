// Package memory is an in-process vector store for development and tests.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/airbnblite/airbot/internal/vectorstore"
)

// Storage keeps points in a map keyed by point id and scores by brute force.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	points    map[string]vectorstore.Point
}

// NewStorage returns an empty store.
func NewStorage() *Storage {
	return &Storage{points: map[string]vectorstore.Point{}}
}

// EnsureCollection fixes the vector size on first call.
func (s *Storage) EnsureCollection(_ context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("invalid dimension %d", dim)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		s.dimension = dim
		return nil
	}
	if s.dimension != dim {
		return fmt.Errorf("%w: collection has %d, requested %d", vectorstore.ErrSchemaMismatch, s.dimension, dim)
	}
	return nil
}

// Recreate drops every point and sets a new size.
func (s *Storage) Recreate(_ context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("invalid dimension %d", dim)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dim
	s.points = map[string]vectorstore.Point{}
	return nil
}

// Dimension returns the vector size.
func (s *Storage) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// Upsert stores points, replacing any with the same id.
func (s *Storage) Upsert(_ context.Context, points []vectorstore.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimension == 0 {
		return vectorstore.ErrNotInitialized
	}
	for _, p := range points {
		if len(p.Vector) != s.dimension {
			return fmt.Errorf("%w: got %d, want %d", vectorstore.ErrDimensionMismatch, len(p.Vector), s.dimension)
		}
	}
	for _, p := range points {
		s.points[p.ID] = p
	}
	return nil
}

// Search scores every point of source against vector.
func (s *Storage) Search(_ context.Context, vector []float32, source string, limit int) ([]vectorstore.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dimension == 0 {
		return nil, vectorstore.ErrNotInitialized
	}
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", vectorstore.ErrDimensionMismatch, len(vector), s.dimension)
	}

	results := make([]vectorstore.Result, 0)
	for _, p := range s.points {
		if p.Source != source {
			continue
		}
		results = append(results, vectorstore.Result{
			Text:   p.Text,
			Source: p.Source,
			Score:  cosineSimilarity(vector, p.Vector),
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// Count returns the number of stored points for source.
func (s *Storage) Count(source string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, p := range s.points {
		if p.Source == source {
			n++
		}
	}
	return n
}

// CountSource implements vectorstore.Storage.
func (s *Storage) CountSource(_ context.Context, source string) (int, error) {
	return s.Count(source), nil
}

// Close is a no-op.
func (s *Storage) Close() error { return nil }

func cosineSimilarity(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}
