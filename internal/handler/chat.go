package handler

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/airbnblite/airbot/internal/middleware"
	"github.com/airbnblite/airbot/internal/model"
	"github.com/airbnblite/airbot/internal/settings"
	"github.com/airbnblite/airbot/pkg/logger"
)

// ChatService answers guest and host assistant requests.
type ChatService interface {
	Chat(ctx context.Context, req *model.ChatRequest, method settings.Method) (string, error)
	ChatOptimized(ctx context.Context, req *model.ChatRequest, method settings.Method) (string, error)
	ChatCheckout(ctx context.Context, req *model.CheckoutChatRequest, method settings.Method) (string, error)
	SuggestInsurance(ctx context.Context, req *model.SuggestInsuranceRequest) (string, error)
	GenerateFAQ(ctx context.Context, req *model.GenerateFAQRequest) ([]model.FAQ, error)
}

const aiFailure = "failed to get AI response"

// ChatHandler handles the assistant endpoints.
type ChatHandler struct {
	service  ChatService
	settings *settings.Runtime
	logger   *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc ChatService, rt *settings.Runtime, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service:  svc,
		settings: rt,
		logger:   log,
	}
}

// Chat handles POST /chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if !decode(w, r, &req) {
		return
	}
	reply, err := h.service.Chat(r.Context(), &req, h.settings.Snapshot().InsuranceMethod)
	h.respond(w, r, "chat", reply, err)
}

// ChatOptimized handles POST /chatOptimized
func (h *ChatHandler) ChatOptimized(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if !decode(w, r, &req) {
		return
	}
	reply, err := h.service.ChatOptimized(r.Context(), &req, h.settings.Snapshot().InsuranceMethod)
	h.respond(w, r, "chatOptimized", reply, err)
}

// ChatCheckout handles POST /chatCheckout
func (h *ChatHandler) ChatCheckout(w http.ResponseWriter, r *http.Request) {
	var req model.CheckoutChatRequest
	if !decode(w, r, &req) {
		return
	}
	reply, err := h.service.ChatCheckout(r.Context(), &req, h.settings.Snapshot().InsuranceMethod)
	h.respond(w, r, "chatCheckout", reply, err)
}

// SuggestInsurance handles POST /suggest-insurance-message
func (h *ChatHandler) SuggestInsurance(w http.ResponseWriter, r *http.Request) {
	var req model.SuggestInsuranceRequest
	if !decode(w, r, &req) {
		return
	}
	msg, err := h.service.SuggestInsurance(r.Context(), &req)
	if err != nil {
		h.logFailure(r, "suggest-insurance-message", err)
		writeError(w, http.StatusInternalServerError, aiFailure)
		return
	}
	writeJSON(w, http.StatusOK, model.SuggestInsuranceResponse{Message: msg})
}

// GenerateFAQ handles POST /generate-faq
func (h *ChatHandler) GenerateFAQ(w http.ResponseWriter, r *http.Request) {
	var req model.GenerateFAQRequest
	if !decode(w, r, &req) {
		return
	}
	faqs, err := h.service.GenerateFAQ(r.Context(), &req)
	if err != nil {
		h.logFailure(r, "generate-faq", err)
		writeError(w, http.StatusInternalServerError, aiFailure)
		return
	}
	writeJSON(w, http.StatusOK, model.GenerateFAQResponse{FAQs: faqs})
}

func (h *ChatHandler) respond(w http.ResponseWriter, r *http.Request, endpoint, reply string, err error) {
	if err != nil {
		h.logFailure(r, endpoint, err)
		writeError(w, http.StatusInternalServerError, aiFailure)
		return
	}
	writeJSON(w, http.StatusOK, model.ChatResponse{Response: reply})
}

func (h *ChatHandler) logFailure(r *http.Request, endpoint string, err error) {
	ctx := r.Context()
	h.logger.WithContext(middleware.GetCorrelationID(ctx), middleware.GetUserID(ctx)).Error("assistant request failed",
		zap.String("endpoint", endpoint),
		zap.Error(err),
	)
}
