package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini embeds text with a Google embedding model.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini embedder.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key is required")
	}
	if model == "" || model == "text-embedding-3-small" {
		model = "text-embedding-004"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// Name returns the provider name.
func (g *Gemini) Name() string { return "gemini" }

// Close releases the underlying client.
func (g *Gemini) Close() error { return g.client.Close() }

// Embed sends every text in one batch request.
func (g *Gemini) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	em := g.client.EmbeddingModel(g.model)
	batch := em.NewBatch()
	for _, t := range texts {
		batch.AddContent(genai.Text(t))
	}

	res, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini embedding request failed: %w", err)
	}
	if res == nil || len(res.Embeddings) != len(texts) {
		return nil, ErrEmptyResponse
	}

	out := make([][]float32, len(texts))
	for i, e := range res.Embeddings {
		if e == nil || len(e.Values) == 0 {
			return nil, ErrEmptyResponse
		}
		out[i] = e.Values
	}
	return out, nil
}
