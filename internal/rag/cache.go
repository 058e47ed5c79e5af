// Package rag ingests policy documents into the vector store and retrieves
// the chunks most relevant to a guest's question.
package rag

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/airbnblite/airbot/internal/document"
	"github.com/airbnblite/airbot/internal/embedding"
	"github.com/airbnblite/airbot/internal/model"
	"github.com/airbnblite/airbot/internal/store"
	"github.com/airbnblite/airbot/internal/vectorstore"
	"github.com/airbnblite/airbot/pkg/logger"
	"github.com/airbnblite/airbot/pkg/metrics"
	"github.com/airbnblite/airbot/pkg/tracing"
)

var (
	// ErrDimensionMismatch is returned when the embedder produces vectors of a
	// size different from the collection. Nothing is written.
	ErrDimensionMismatch = errors.New("embedding dimension does not match collection")
	// ErrIngestInProgress is returned when another replica holds the claim.
	ErrIngestInProgress = errors.New("document ingestion in progress elsewhere")
)

const defaultIngestTimeout = 2 * time.Minute

// Manifest records which documents were fully ingested.
type Manifest interface {
	GetIngestion(ctx context.Context, source string, schemaVersion int) (*model.Ingestion, error)
	RecordIngestion(ctx context.Context, ing *model.Ingestion) error
}

// Cache makes sure a policy document is chunked, embedded and stored once.
type Cache struct {
	fetcher       document.Fetcher
	embedder      embedding.Embedder
	vectors       vectorstore.Storage
	manifest      Manifest
	claimer       Claimer
	schemaVersion int
	ingestTimeout time.Duration
	logger        *logger.Logger

	group singleflight.Group
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithIngestTimeout bounds one shared ingestion.
func WithIngestTimeout(d time.Duration) CacheOption {
	return func(cache *Cache) {
		if d > 0 {
			cache.ingestTimeout = d
		}
	}
}

// WithClaimer guards ingestion across processes.
func WithClaimer(c Claimer) CacheOption {
	return func(cache *Cache) { cache.claimer = c }
}

// NewCache creates a document cache for the given schema version.
func NewCache(
	fetcher document.Fetcher,
	embedder embedding.Embedder,
	vectors vectorstore.Storage,
	manifest Manifest,
	schemaVersion int,
	log *logger.Logger,
	opts ...CacheOption,
) *Cache {
	c := &Cache{
		fetcher:       fetcher,
		embedder:      embedder,
		vectors:       vectors,
		manifest:      manifest,
		claimer:       NoopClaimer{},
		schemaVersion: schemaVersion,
		ingestTimeout: defaultIngestTimeout,
		logger:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EnsureEmbedded ingests url unless the manifest shows a completed ingestion
// whose chunks are still in the vector store. Concurrent callers for the same
// url share one ingestion, which outlives any single caller's cancellation.
func (c *Cache) EnsureEmbedded(ctx context.Context, url string) error {
	ctx, span := tracing.Tracer("rag").Start(ctx, "rag.EnsureEmbedded")
	defer span.End()
	span.SetAttributes(attribute.String("document.url", url))

	if c.ingested(ctx, url) {
		metrics.RecordIngestion("cached")
		return nil
	}

	ch := c.group.DoChan(url, func() (interface{}, error) {
		ictx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.ingestTimeout)
		defer cancel()
		if c.ingested(ictx, url) {
			return nil, nil
		}
		return nil, c.ingestClaimed(ictx, url)
	})

	var err error
	select {
	case res := <-ch:
		err = res.Err
	case <-ctx.Done():
		err = ctx.Err()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// ingested reports whether url has a manifest entry backed by at least as
// many stored chunks as the entry recorded.
func (c *Cache) ingested(ctx context.Context, url string) bool {
	log := c.logger.With(zap.String("url", url))

	ing, err := c.manifest.GetIngestion(ctx, url, c.schemaVersion)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Warn("ingestion manifest lookup failed", zap.Error(err))
		}
		return false
	}

	n, err := c.vectors.CountSource(ctx, url)
	switch {
	case errors.Is(err, vectorstore.ErrNotInitialized):
		return false
	case err != nil:
		log.Warn("vector count failed, trusting manifest", zap.Error(err))
		return true
	case n == 0 || n < ing.Chunks:
		log.Warn("manifest entry has missing chunks, re-ingesting",
			zap.Int("recorded", ing.Chunks),
			zap.Int("stored", n),
		)
		metrics.RecordIngestion("stale_manifest")
		return false
	}
	return true
}

func (c *Cache) ingestClaimed(ctx context.Context, url string) error {
	release, err := c.claimer.Claim(ctx, url)
	if errors.Is(err, ErrClaimed) {
		metrics.RecordIngestion("claimed_elsewhere")
		return ErrIngestInProgress
	}
	if err != nil {
		// A broken claim backend must not block ingestion; point ids are deterministic.
		c.logger.Warn("ingestion claim failed, continuing unguarded", zap.String("url", url), zap.Error(err))
		release = func() {}
	}
	defer release()

	return c.ingest(ctx, url)
}

func (c *Cache) ingest(ctx context.Context, url string) error {
	log := c.logger.With(zap.String("url", url))

	text, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		metrics.RecordIngestion("fetch_failed")
		return fmt.Errorf("fetch %s: %w", url, err)
	}

	chunks := document.Split(text)
	if len(chunks) == 0 {
		log.Warn("document produced no chunks, skipping ingestion")
		metrics.RecordIngestion("empty")
		return nil
	}

	vectors, err := c.embedder.Embed(ctx, chunks)
	if err != nil {
		metrics.RecordIngestion("embed_failed")
		return fmt.Errorf("embed %s: %w", url, err)
	}
	if len(vectors) != len(chunks) || len(vectors[0]) == 0 {
		metrics.RecordIngestion("embed_failed")
		return fmt.Errorf("embed %s: %w", url, embedding.ErrEmptyResponse)
	}

	dim := len(vectors[0])
	if c.vectors.Dimension() == 0 {
		if err := c.vectors.EnsureCollection(ctx, dim); err != nil {
			metrics.RecordIngestion("schema_failed")
			if errors.Is(err, vectorstore.ErrSchemaMismatch) {
				return fmt.Errorf("%w: %v", ErrDimensionMismatch, err)
			}
			return fmt.Errorf("ensure collection: %w", err)
		}
	}
	if want := c.vectors.Dimension(); want != dim {
		metrics.RecordIngestion("dimension_mismatch")
		return fmt.Errorf("%w: embedder returned %d, collection has %d", ErrDimensionMismatch, dim, want)
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, chunk := range chunks {
		points[i] = vectorstore.Point{
			ID:     vectorstore.PointID(url, i),
			Vector: vectors[i],
			Text:   chunk,
			Source: url,
			Index:  i,
		}
	}
	if err := c.vectors.Upsert(ctx, points); err != nil {
		metrics.RecordIngestion("upsert_failed")
		return fmt.Errorf("upsert %s: %w", url, err)
	}

	if err := c.manifest.RecordIngestion(ctx, &model.Ingestion{
		Source:        url,
		SchemaVersion: c.schemaVersion,
		Chunks:        len(points),
		Dimension:     dim,
	}); err != nil {
		metrics.RecordIngestion("manifest_failed")
		return fmt.Errorf("record ingestion %s: %w", url, err)
	}

	metrics.RecordIngestion("ingested")
	log.Info("policy document ingested", zap.Int("chunks", len(points)), zap.Int("dimension", dim))
	return nil
}
