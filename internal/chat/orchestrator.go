// Package chat answers guest questions from assembled context blocks.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/airbnblite/airbot/internal/llm"
	"github.com/airbnblite/airbot/internal/model"
	"github.com/airbnblite/airbot/pkg/logger"
	"github.com/airbnblite/airbot/pkg/tracing"
)

// ErrAIResponse is returned when the language model call fails.
var ErrAIResponse = errors.New("failed to get AI response")

const systemTemplate = `You are the AirbnbLite assistant helping a guest with their stay.
Answer using only the information between CONTEXT START and CONTEXT END.
Reply in plain conversational text. Do not use markdown, headings, bullet symbols, bold or tables.
If the context does not contain the answer, say so briefly and suggest contacting %s at %s.
Keep answers short and friendly.

CONTEXT START
%s
CONTEXT END`

// OrchestratorConfig bounds what is sent to the model.
type OrchestratorConfig struct {
	Model        string
	SupportName  string
	SupportEmail string
	MaxHistory   int
	MaxContext   int
}

// Orchestrator sends a conversation and its context to the language model.
type Orchestrator struct {
	client llm.Client
	cfg    OrchestratorConfig
	logger *logger.Logger
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(client llm.Client, cfg OrchestratorConfig, log *logger.Logger) *Orchestrator {
	return &Orchestrator{client: client, cfg: cfg, logger: log}
}

// Respond returns the assistant's reply to history grounded on contextText.
func (o *Orchestrator) Respond(ctx context.Context, history []model.ChatMessage, contextText string) (string, error) {
	ctx, span := tracing.Tracer("chat").Start(ctx, "chat.Respond")
	defer span.End()

	resp, err := o.client.Complete(ctx, &llm.CompletionRequest{
		Model:    o.cfg.Model,
		System:   o.SystemPrompt(contextText),
		Messages: o.mapHistory(history),
	})
	if err != nil {
		o.logger.Error("chat completion failed", zap.String("provider", o.client.Name()), zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrAIResponse, err)
	}
	return resp.Content, nil
}

// SystemPrompt wraps contextText in the assistant instructions.
func (o *Orchestrator) SystemPrompt(contextText string) string {
	return fmt.Sprintf(systemTemplate, o.cfg.SupportName, o.cfg.SupportEmail, clip(contextText, o.cfg.MaxContext))
}

// mapHistory keeps the most recent turns in order. Bot and assistant senders
// become assistant turns; every other sender is the user.
func (o *Orchestrator) mapHistory(history []model.ChatMessage) []llm.ChatMessage {
	if n := o.cfg.MaxHistory; n > 0 && len(history) > n {
		history = history[len(history)-n:]
	}

	out := make([]llm.ChatMessage, 0, len(history))
	for _, m := range history {
		if strings.TrimSpace(m.Text) == "" {
			continue
		}
		role := llm.RoleUser
		if m.Sender == model.SenderBot || m.Sender == model.SenderAssistant {
			role = llm.RoleAssistant
		}
		out = append(out, llm.ChatMessage{Role: role, Content: m.Text})
	}
	return out
}

// clip cuts s to at most n bytes on a rune boundary.
func clip(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
