package embedding

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

// OpenAI embeds text with the OpenAI embeddings endpoint.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI embedder.
func NewOpenAI(apiKey, model string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &OpenAI{client: openai.NewClient(apiKey), model: model}, nil
}

// Name returns the provider name.
func (o *OpenAI) Name() string { return "openai" }

// Embed sends every text in one request.
func (o *OpenAI) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(o.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings failed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, ErrEmptyResponse
	}

	out := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(out) {
			return nil, fmt.Errorf("openai embeddings returned index %d out of range", d.Index)
		}
		out[d.Index] = d.Embedding
	}
	return out, nil
}
