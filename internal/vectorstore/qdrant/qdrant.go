// Package qdrant stores policy chunks in a Qdrant collection over gRPC.
package qdrant

import (
	"context"
	"fmt"
	"sync"

	"github.com/qdrant/go-client/qdrant"

	"github.com/airbnblite/airbot/internal/vectorstore"
)

// api is the subset of *qdrant.Client used by Storage.
type api interface {
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	GetCollectionInfo(ctx context.Context, collectionName string) (*qdrant.CollectionInfo, error)
	CreateFieldIndex(ctx context.Context, request *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error)
	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	Count(ctx context.Context, request *qdrant.CountPoints) (uint64, error)
	DeleteCollection(ctx context.Context, collectionName string) error
	Close() error
}

// Config holds connection settings.
type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
}

// Storage is a cosine-distance Qdrant collection with a keyword index on source.
type Storage struct {
	client     api
	collection string

	mu        sync.RWMutex
	dimension int
}

// NewStorage connects to Qdrant.
func NewStorage(cfg Config) (*Storage, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}
	return &Storage{client: client, collection: cfg.Collection}, nil
}

// Collection returns the collection name.
func (s *Storage) Collection() string {
	return s.collection
}

// EnsureCollection creates the collection when missing and verifies its
// vector size otherwise.
func (s *Storage) EnsureCollection(ctx context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("invalid dimension %d", dim)
	}

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", s.collection, err)
	}

	if !exists {
		if err := s.create(ctx, dim); err != nil {
			return err
		}
	} else {
		info, err := s.client.GetCollectionInfo(ctx, s.collection)
		if err != nil {
			return fmt.Errorf("failed to read collection %s: %w", s.collection, err)
		}
		size := int(info.GetConfig().GetParams().GetVectorsConfig().GetParams().GetSize())
		if size != dim {
			return fmt.Errorf("%w: collection %s has %d, requested %d", vectorstore.ErrSchemaMismatch, s.collection, size, dim)
		}
		if err := s.ensureSourceIndex(ctx); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.dimension = dim
	s.mu.Unlock()
	return nil
}

// Recreate drops the collection if present and creates it with dim.
func (s *Storage) Recreate(ctx context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("invalid dimension %d", dim)
	}
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", s.collection, err)
	}
	if exists {
		if err := s.client.DeleteCollection(ctx, s.collection); err != nil {
			return fmt.Errorf("failed to delete collection %s: %w", s.collection, err)
		}
	}
	if err := s.create(ctx, dim); err != nil {
		return err
	}
	s.mu.Lock()
	s.dimension = dim
	s.mu.Unlock()
	return nil
}

func (s *Storage) create(ctx context.Context, dim int) error {
	err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim),
			Distance: qdrant.Distance_Cosine,
		}),
		OnDiskPayload: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
	}
	return s.ensureSourceIndex(ctx)
}

func (s *Storage) ensureSourceIndex(ctx context.Context) error {
	_, err := s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: s.collection,
		FieldName:      vectorstore.PayloadSource,
		FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("failed to index %s.%s: %w", s.collection, vectorstore.PayloadSource, err)
	}
	return nil
}

// Dimension returns the ensured vector size.
func (s *Storage) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// Upsert writes points and waits for the acknowledgement.
func (s *Storage) Upsert(ctx context.Context, points []vectorstore.Point) error {
	dim := s.Dimension()
	if dim == 0 {
		return vectorstore.ErrNotInitialized
	}

	structs := make([]*qdrant.PointStruct, 0, len(points))
	for _, p := range points {
		if len(p.Vector) != dim {
			return fmt.Errorf("%w: got %d, want %d", vectorstore.ErrDimensionMismatch, len(p.Vector), dim)
		}
		structs = append(structs, &qdrant.PointStruct{
			Id:      qdrant.NewIDUUID(p.ID),
			Vectors: qdrant.NewVectors(p.Vector...),
			Payload: map[string]*qdrant.Value{
				vectorstore.PayloadText:   qdrant.NewValueString(p.Text),
				vectorstore.PayloadSource: qdrant.NewValueString(p.Source),
				vectorstore.PayloadIndex:  qdrant.NewValueInt(int64(p.Index)),
			},
		})
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points:         structs,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert %d points: %w", len(structs), err)
	}
	return nil
}

// Search queries the collection filtered to source.
func (s *Storage) Search(ctx context.Context, vector []float32, source string, limit int) ([]vectorstore.Result, error) {
	if s.Dimension() == 0 {
		return nil, vectorstore.ErrNotInitialized
	}

	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch(vectorstore.PayloadSource, source),
			},
		},
		Limit:       qdrant.PtrOf(uint64(limit)),
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.collection, err)
	}

	results := make([]vectorstore.Result, 0, len(points))
	for _, p := range points {
		payload := p.GetPayload()
		results = append(results, vectorstore.Result{
			Text:   payload[vectorstore.PayloadText].GetStringValue(),
			Source: payload[vectorstore.PayloadSource].GetStringValue(),
			Score:  p.GetScore(),
		})
	}
	return results, nil
}

// CountSource returns the exact number of points whose source equals source.
func (s *Storage) CountSource(ctx context.Context, source string) (int, error) {
	if s.Dimension() == 0 {
		return 0, vectorstore.ErrNotInitialized
	}
	n, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch(vectorstore.PayloadSource, source),
			},
		},
		Exact: qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count %s in %s: %w", source, s.collection, err)
	}
	return int(n), nil
}

// Close closes the gRPC connection.
func (s *Storage) Close() error {
	return s.client.Close()
}
