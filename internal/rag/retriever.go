package rag

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/airbnblite/airbot/internal/embedding"
	"github.com/airbnblite/airbot/internal/vectorstore"
	"github.com/airbnblite/airbot/pkg/logger"
	"github.com/airbnblite/airbot/pkg/metrics"
	"github.com/airbnblite/airbot/pkg/tracing"
)

// Retriever finds the policy chunks closest to a query.
type Retriever struct {
	embedder     embedding.Embedder
	vectors      vectorstore.Storage
	defaultLimit int
	logger       *logger.Logger
}

// NewRetriever creates a retriever returning defaultLimit results when the
// caller passes a non-positive limit.
func NewRetriever(embedder embedding.Embedder, vectors vectorstore.Storage, defaultLimit int, log *logger.Logger) *Retriever {
	if defaultLimit <= 0 {
		defaultLimit = 3
	}
	return &Retriever{
		embedder:     embedder,
		vectors:      vectors,
		defaultLimit: defaultLimit,
		logger:       log,
	}
}

// Search returns up to limit chunks of url ranked by similarity to query.
// Any failure yields an empty result.
func (r *Retriever) Search(ctx context.Context, query, url string, limit int) []vectorstore.Result {
	ctx, span := tracing.Tracer("rag").Start(ctx, "rag.Search")
	defer span.End()

	if limit <= 0 {
		limit = r.defaultLimit
	}
	log := r.logger.With(zap.String("url", url))

	vecs, err := r.embedder.Embed(ctx, []string{query})
	if err != nil || len(vecs) == 0 {
		log.Warn("query embedding failed", zap.Error(err))
		return []vectorstore.Result{}
	}

	results, err := r.vectors.Search(ctx, vecs[0], url, limit)
	if err != nil {
		log.Warn("vector search failed", zap.Error(err))
		return []vectorstore.Result{}
	}

	span.SetAttributes(attribute.Int("results", len(results)))
	metrics.VectorSearchResults.Observe(float64(len(results)))
	return results
}
