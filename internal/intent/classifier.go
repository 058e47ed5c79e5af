// Package intent classifies guest chat messages into context categories.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/airbnblite/airbot/internal/llm"
	"github.com/airbnblite/airbot/internal/model"
	"github.com/airbnblite/airbot/pkg/logger"
	"github.com/airbnblite/airbot/pkg/metrics"
	"github.com/airbnblite/airbot/pkg/tracing"
)

const systemPrompt = `You route questions from guests of a vacation rental platform.
Classify the guest's latest question into exactly one category:
- BOOKING: dates, number of guests, prices, costs or payment of their booking.
- PROPERTY: the listing itself, amenities, location, house rules, wifi, check-in instructions or the host.
- INSURANCE: travel insurance, coverage, benefits, claims or the policy document.
- CANCELLATION: cancelling the booking, refunds after cancelling, or whether cancelling is still possible.
- GENERAL: anything else, including greetings.
Use the conversation so far only to resolve what the latest question refers to.
Respond with a JSON object of the form {"category": "<CATEGORY>"} and nothing else.`

// Classifier labels a question with a model.Intent using an LLM.
type Classifier struct {
	client llm.Client
	model  string
	logger *logger.Logger
}

// NewClassifier creates a Classifier. An empty model uses the provider default.
func NewClassifier(client llm.Client, model string, log *logger.Logger) *Classifier {
	return &Classifier{client: client, model: model, logger: log}
}

// Classify returns the category of query given the earlier messages of the
// conversation. Any failure yields model.IntentGeneral.
func (c *Classifier) Classify(ctx context.Context, query string, history []model.ChatMessage) (result model.Intent) {
	ctx, span := tracing.Tracer("intent").Start(ctx, "intent.Classify")
	defer func() {
		span.SetAttributes(attribute.String("intent", string(result)))
		span.End()
	}()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("intent classification panicked", zap.Any("panic", r))
			metrics.RecordIntent(string(model.IntentGeneral), "panic")
			result = model.IntentGeneral
		}
	}()

	resp, err := c.client.Complete(ctx, &llm.CompletionRequest{
		Model:       c.model,
		System:      systemPrompt,
		Messages:    []llm.ChatMessage{{Role: llm.RoleUser, Content: userPrompt(query, history)}},
		MaxTokens:   32,
		Temperature: 0,
		JSONMode:    true,
	})
	if err != nil {
		c.logger.Warn("intent classification failed", zap.Error(err))
		metrics.RecordIntent(string(model.IntentGeneral), "error")
		return model.IntentGeneral
	}

	intent, err := parseCategory(resp.Content)
	if err != nil {
		c.logger.Warn("intent classification returned an invalid response",
			zap.String("content", resp.Content), zap.Error(err))
		metrics.RecordIntent(string(model.IntentGeneral), "invalid")
		return model.IntentGeneral
	}

	metrics.RecordIntent(string(intent), "ok")
	return intent
}

// userPrompt renders every message except the last as a transcript followed
// by the latest question.
func userPrompt(query string, history []model.ChatMessage) string {
	var sb strings.Builder
	if len(history) > 1 {
		sb.WriteString("Conversation so far:\n")
		for _, m := range history[:len(history)-1] {
			if m.Sender == model.SenderBot || m.Sender == model.SenderAssistant {
				sb.WriteString("Assistant: ")
			} else {
				sb.WriteString("User: ")
			}
			sb.WriteString(m.Text)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Latest question: ")
	sb.WriteString(query)
	return sb.String()
}

func parseCategory(content string) (model.Intent, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")

	var out struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &out); err != nil {
		return model.IntentGeneral, fmt.Errorf("decode category: %w", err)
	}
	intent, ok := model.ParseIntent(out.Category)
	if !ok {
		return model.IntentGeneral, fmt.Errorf("unknown category %q", out.Category)
	}
	return intent, nil
}
