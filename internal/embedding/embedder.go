// Package embedding turns text into vectors through an external service.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// Embedder converts a batch of texts into vectors, one per input, in order.
type Embedder interface {
	Name() string
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ErrEmptyResponse is returned when the service yields fewer vectors than inputs.
var ErrEmptyResponse = errors.New("embedding service returned no vectors")

// New returns the embedder for provider.
func New(ctx context.Context, provider, apiKey, model string) (Embedder, error) {
	switch provider {
	case "openai":
		return NewOpenAI(apiKey, model)
	case "gemini":
		return NewGemini(ctx, apiKey, model)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", provider)
	}
}

// Dimension embeds a probe string and returns the vector length.
func Dimension(ctx context.Context, e Embedder) (int, error) {
	vecs, err := e.Embed(ctx, []string{"dimension probe"})
	if err != nil {
		return 0, err
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return 0, ErrEmptyResponse
	}
	return len(vecs[0]), nil
}
