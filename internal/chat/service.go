package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/airbnblite/airbot/internal/contextbuilder"
	"github.com/airbnblite/airbot/internal/llm"
	"github.com/airbnblite/airbot/internal/model"
	"github.com/airbnblite/airbot/internal/settings"
	"github.com/airbnblite/airbot/pkg/logger"
	"github.com/airbnblite/airbot/pkg/tracing"
)

const suggestPrompt = `You are a helpful travel assistant. A guest is booking a trip to %s with a total cost of $%.2f.
The available plan is %s.
Write a short, friendly and encouraging message (2-3 sentences) highlighting the high-level benefits of purchasing travel insurance for this trip.
Mention peace of mind and protection against unexpected events like cancellations or delays. Frame it as a helpful suggestion, not a hard sell.
Respond with a JSON object of the form {"message": "<text>"}.`

const faqPrompt = `You are an experienced host assistant, helping hosts create helpful FAQs for their guests.
Based on the property description and amenities, generate a list of FAQs that guests might have.

Property Description: %s
Amenities: %s

Make sure to include questions about wifi, check-in, check-out, and directions to the property.
Generate around 5-7 FAQs.
Respond with a JSON object of the form {"faqs": [{"question": "...", "answer": "..."}]}.`

// Classifier labels a question with an intent.
type Classifier interface {
	Classify(ctx context.Context, query string, history []model.ChatMessage) model.Intent
}

// EventPublisher records chat activity. Publishing is best effort.
type EventPublisher interface {
	PublishChatEvent(ctx context.Context, event *model.ChatEvent) error
}

// Service implements the chat endpoints.
type Service struct {
	classifier   Classifier
	router       *contextbuilder.Router
	orchestrator *Orchestrator
	client       llm.Client
	model        string
	events       EventPublisher
	logger       *logger.Logger
}

// NewService creates a chat service. events may be nil.
func NewService(
	classifier Classifier,
	router *contextbuilder.Router,
	orchestrator *Orchestrator,
	client llm.Client,
	chatModel string,
	events EventPublisher,
	log *logger.Logger,
) *Service {
	return &Service{
		classifier:   classifier,
		router:       router,
		orchestrator: orchestrator,
		client:       client,
		model:        chatModel,
		events:       events,
		logger:       log,
	}
}

func chatInput(req *model.ChatRequest, method settings.Method) contextbuilder.Input {
	return contextbuilder.Input{
		Query:     model.LatestUserText(req.Messages),
		Booking:   req.Booking,
		Property:  req.Property,
		Host:      req.HostInfo,
		Purchased: req.InsurancePlan,
		Eligible:  req.EligibleInsurancePlan,
		Method:    method,
	}
}

// Chat answers with every context block.
func (s *Service) Chat(ctx context.Context, req *model.ChatRequest, method settings.Method) (string, error) {
	start := time.Now()
	ctx, span := tracing.Tracer("chat").Start(ctx, "chat.Full")
	defer span.End()

	contextText := s.buildContext(ctx, func(ctx context.Context) string {
		return s.router.Full(ctx, chatInput(req, method))
	})
	reply, err := s.orchestrator.Respond(ctx, req.Messages, contextText)

	s.publish(ctx, &model.ChatEvent{
		Endpoint:   model.EndpointChat,
		Method:     string(method),
		Messages:   len(req.Messages),
		PropertyID: req.Property.ID,
	}, start, err)
	return reply, err
}

// ChatOptimized classifies the latest question and answers with the single
// matching context block.
func (s *Service) ChatOptimized(ctx context.Context, req *model.ChatRequest, method settings.Method) (string, error) {
	start := time.Now()
	ctx, span := tracing.Tracer("chat").Start(ctx, "chat.Optimized")
	defer span.End()

	in := chatInput(req, method)
	intent := s.classifier.Classify(ctx, in.Query, req.Messages)
	span.SetAttributes(attribute.String("intent", string(intent)))

	contextText := s.buildContext(ctx, func(ctx context.Context) string {
		return s.router.Route(ctx, intent, in)
	})
	reply, err := s.orchestrator.Respond(ctx, req.Messages, contextText)

	s.logger.Debug("optimized chat answered", zap.String("intent", string(intent)), zap.Int("context_chars", len(contextText)))
	s.publish(ctx, &model.ChatEvent{
		Endpoint:   model.EndpointChatOptimized,
		Intent:     intent,
		Method:     string(method),
		Messages:   len(req.Messages),
		PropertyID: req.Property.ID,
	}, start, err)
	return reply, err
}

// ChatCheckout answers pre-purchase questions about the listing and the plan
// the guest is eligible for.
func (s *Service) ChatCheckout(ctx context.Context, req *model.CheckoutChatRequest, method settings.Method) (string, error) {
	start := time.Now()
	ctx, span := tracing.Tracer("chat").Start(ctx, "chat.Checkout")
	defer span.End()

	in := contextbuilder.Input{
		Query:    model.LatestUserText(req.Messages),
		Booking:  req.Booking,
		Property: req.Property,
		Eligible: req.EligibleInsurancePlan,
		Method:   method,
	}
	contextText := s.buildContext(ctx, func(ctx context.Context) string {
		return s.router.Checkout(ctx, in)
	})
	reply, err := s.orchestrator.Respond(ctx, req.Messages, contextText)

	s.publish(ctx, &model.ChatEvent{
		Endpoint:   model.EndpointChatCheckout,
		Method:     string(method),
		Messages:   len(req.Messages),
		PropertyID: req.Property.ID,
	}, start, err)
	return reply, err
}

// SuggestInsurance writes a short message encouraging the guest to insure
// the trip.
func (s *Service) SuggestInsurance(ctx context.Context, req *model.SuggestInsuranceRequest) (string, error) {
	start := time.Now()
	resp, err := s.client.Complete(ctx, &llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.ChatMessage{{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf(suggestPrompt, req.Location, req.TripCost, req.InsurancePlan.Name),
		}},
		Temperature: 0.7,
		JSONMode:    true,
	})

	var message string
	if err == nil {
		message = parseSuggestion(resp.Content)
		if message == "" {
			err = errors.New("empty suggestion")
		}
	}
	if err != nil {
		s.logger.Error("insurance suggestion failed", zap.Error(err))
		err = fmt.Errorf("%w: %v", ErrAIResponse, err)
	}

	s.publish(ctx, &model.ChatEvent{Endpoint: model.EndpointSuggestInsurance}, start, err)
	return message, err
}

// GenerateFAQ drafts frequently asked questions for a listing.
func (s *Service) GenerateFAQ(ctx context.Context, req *model.GenerateFAQRequest) ([]model.FAQ, error) {
	start := time.Now()
	amenities := strings.Join(req.Amenities, ", ")
	if amenities == "" {
		amenities = "none listed"
	}

	resp, err := s.client.Complete(ctx, &llm.CompletionRequest{
		Model: s.model,
		Messages: []llm.ChatMessage{{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf(faqPrompt, req.PropertyDescription, amenities),
		}},
		MaxTokens:   2048,
		Temperature: 0.4,
		JSONMode:    true,
	})

	var faqs []model.FAQ
	if err == nil {
		faqs, err = parseFAQs(resp.Content)
	}
	if err != nil {
		s.logger.Error("faq generation failed", zap.Error(err))
		err = fmt.Errorf("%w: %v", ErrAIResponse, err)
	}

	s.publish(ctx, &model.ChatEvent{Endpoint: model.EndpointGenerateFAQ}, start, err)
	return faqs, err
}

func (s *Service) buildContext(ctx context.Context, build func(context.Context) string) string {
	ctx, span := tracing.Tracer("chat").Start(ctx, "chat.BuildContext")
	defer span.End()
	out := build(ctx)
	span.SetAttributes(attribute.Int("context.chars", len(out)))
	return out
}

func (s *Service) publish(ctx context.Context, event *model.ChatEvent, start time.Time, err error) {
	if s.events == nil {
		return
	}
	event.ID = uuid.NewString()
	event.LatencyMs = time.Since(start).Milliseconds()
	event.CreatedAt = time.Now().UTC()
	event.Status = "ok"
	if err != nil {
		event.Status = "error"
	}
	if perr := s.events.PublishChatEvent(ctx, event); perr != nil {
		s.logger.Warn("failed to publish chat event", zap.String("endpoint", string(event.Endpoint)), zap.Error(perr))
	}
}

func parseSuggestion(content string) string {
	content = stripFence(content)
	var out struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(content), &out); err == nil {
		return strings.TrimSpace(out.Message)
	}
	if strings.HasPrefix(content, "{") {
		return ""
	}
	return content
}

func parseFAQs(content string) ([]model.FAQ, error) {
	content = stripFence(content)

	var wrapped model.GenerateFAQResponse
	if err := json.Unmarshal([]byte(content), &wrapped); err == nil && len(wrapped.FAQs) > 0 {
		return cleanFAQs(wrapped.FAQs)
	}
	var list []model.FAQ
	if err := json.Unmarshal([]byte(content), &list); err != nil {
		return nil, fmt.Errorf("decode faqs: %w", err)
	}
	return cleanFAQs(list)
}

func cleanFAQs(in []model.FAQ) ([]model.FAQ, error) {
	out := make([]model.FAQ, 0, len(in))
	for _, f := range in {
		f.Question = strings.TrimSpace(f.Question)
		f.Answer = strings.TrimSpace(f.Answer)
		if f.Question != "" && f.Answer != "" {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no faqs in response")
	}
	return out, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
