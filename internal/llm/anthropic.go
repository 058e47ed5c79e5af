package llm

import (
	"context"
	"errors"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient is the Anthropic LLM client.
type AnthropicClient struct {
	client *anthropic.Client
}

// NewAnthropicClient creates a new Anthropic client.
func NewAnthropicClient(apiKey string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, errors.New("Anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &AnthropicClient{
		client: client,
	}, nil
}

// Name returns the provider name.
func (c *AnthropicClient) Name() string {
	return "anthropic"
}

// Models returns available models.
func (c *AnthropicClient) Models() []string {
	return []string{
		"claude-3-5-sonnet-20241022",
		"claude-3-5-haiku-20241022",
		"claude-3-haiku-20240307",
	}
}

// Complete sends a completion request.
func (c *AnthropicClient) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	model := req.Model
	if model == "" {
		model = "claude-3-5-haiku-20241022"
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1024
	}

	turns := anthropicTurns(req)
	messages := make([]anthropic.MessageParam, len(turns))
	for i, msg := range turns {
		messages[i] = anthropic.MessageParam{
			Role: anthropic.F(anthropic.MessageParamRole(msg.Role)),
			Content: anthropic.F([]anthropic.ContentBlockParamUnion{
				anthropic.TextBlockParam{
					Type: anthropic.F(anthropic.TextBlockParamTypeText),
					Text: anthropic.F(msg.Content),
				},
			}),
		}
	}

	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.F(model),
		MaxTokens:   anthropic.F(int64(maxTokens)),
		Messages:    anthropic.F(messages),
		Temperature: anthropic.F(req.Temperature),
	})
	if err != nil {
		return nil, err
	}

	var content string
	for _, block := range resp.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			content += block.Text
		}
	}

	return &CompletionResponse{
		Content:    content,
		Model:      resp.Model,
		TokensIn:   int(resp.Usage.InputTokens),
		TokensOut:  int(resp.Usage.OutputTokens),
		StopReason: string(resp.StopReason),
		LatencyMs:  time.Since(start).Milliseconds(),
	}, nil
}

// anthropicTurns folds the system prompt and JSON instruction into the first
// user turn. The conversation must open with a user message and alternate.
func anthropicTurns(req *CompletionRequest) []ChatMessage {
	preamble := req.System
	if req.JSONMode {
		if preamble != "" {
			preamble += "\n\n"
		}
		preamble += "Respond with a single JSON object and nothing else."
	}

	turns := mergeTurns(req.Messages)
	if len(turns) == 0 || turns[0].Role != RoleUser {
		turns = append([]ChatMessage{{Role: RoleUser, Content: ""}}, turns...)
	}
	if preamble != "" {
		if turns[0].Content == "" {
			turns[0].Content = preamble
		} else {
			turns[0].Content = preamble + "\n\n" + turns[0].Content
		}
	}
	if turns[0].Content == "" {
		turns[0].Content = "Hello."
	}
	return turns
}
