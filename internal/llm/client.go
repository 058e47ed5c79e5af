// Package llm provides LLM client interfaces and implementations.
package llm

import (
	"context"
	"fmt"
)

// Message roles understood by every provider.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// CompletionRequest represents a completion request.
type CompletionRequest struct {
	Model       string
	System      string
	Messages    []ChatMessage
	MaxTokens   int
	Temperature float64
	// JSONMode asks the provider to return a single JSON object.
	JSONMode bool
}

// ChatMessage represents a chat message for LLM.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionResponse represents a completion response.
type CompletionResponse struct {
	Content    string
	Model      string
	TokensIn   int
	TokensOut  int
	StopReason string
	LatencyMs  int64
}

// Client is the interface for LLM providers.
type Client interface {
	// Complete sends a completion request and returns the response.
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// Name returns the provider name.
	Name() string

	// Models returns available models.
	Models() []string
}

// Provider is the type of LLM provider.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGemini    Provider = "gemini"
)

// NewClient creates a new LLM client based on provider.
func NewClient(ctx context.Context, provider Provider, apiKey string) (Client, error) {
	switch provider {
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey)
	case ProviderOpenAI:
		return NewOpenAIClient(apiKey)
	case ProviderGemini:
		return NewGeminiClient(ctx, apiKey)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}
}

// mergeTurns collapses consecutive messages with the same role so providers
// that require strict user/assistant alternation accept the history.
func mergeTurns(messages []ChatMessage) []ChatMessage {
	out := make([]ChatMessage, 0, len(messages))
	for _, m := range messages {
		if n := len(out); n > 0 && out[n-1].Role == m.Role {
			out[n-1].Content += "\n\n" + m.Content
			continue
		}
		out = append(out, m)
	}
	return out
}
