package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient is the Google Gemini LLM client.
type GeminiClient struct {
	client *genai.Client
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client}, nil
}

// Close releases the underlying client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// Name returns the provider name.
func (c *GeminiClient) Name() string {
	return "gemini"
}

// Models returns available models.
func (c *GeminiClient) Models() []string {
	return []string{
		"gemini-1.5-flash-latest",
		"gemini-1.5-pro-latest",
	}
}

// Complete sends a completion request.
func (c *GeminiClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	modelName := req.Model
	if modelName == "" {
		modelName = "gemini-1.5-flash-latest"
	}

	maxTokens := int32(req.MaxTokens)
	if maxTokens == 0 {
		maxTokens = 1024
	}
	temp := float32(req.Temperature)

	model := c.client.GenerativeModel(modelName)
	model.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: &maxTokens,
		Temperature:     &temp,
	}
	if req.JSONMode {
		model.ResponseMIMEType = "application/json"
	}
	if req.System != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}

	turns := mergeTurns(req.Messages)
	if len(turns) == 0 || turns[len(turns)-1].Role != RoleUser {
		return nil, errors.New("last message in history is not from the user")
	}

	session := model.StartChat()
	for _, m := range turns[:len(turns)-1] {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		session.History = append(session.History, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(turns[len(turns)-1].Content))
	if err != nil {
		return nil, fmt.Errorf("gemini SendMessage failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, errors.New("gemini returned no candidates")
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}

	out := &CompletionResponse{
		Content:    text.String(),
		Model:      modelName,
		StopReason: fmt.Sprint(resp.Candidates[0].FinishReason),
		LatencyMs:  time.Since(start).Milliseconds(),
	}
	if resp.UsageMetadata != nil {
		out.TokensIn = int(resp.UsageMetadata.PromptTokenCount)
		out.TokensOut = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}
