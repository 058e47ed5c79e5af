package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/airbnblite/airbot/internal/model"
	"github.com/airbnblite/airbot/internal/store"
	"github.com/airbnblite/airbot/pkg/logger"
)

// InsurancePlanStore persists insurance reference data.
type InsurancePlanStore interface {
	ListInsurancePlans(ctx context.Context) ([]model.InsurancePlan, error)
	GetInsurancePlan(ctx context.Context, id string) (*model.InsurancePlan, error)
	CreateInsurancePlan(ctx context.Context, req *model.InsurancePlanRequest) (*model.InsurancePlan, error)
}

// InsurancePlanHandler handles insurance plan endpoints.
type InsurancePlanHandler struct {
	store  InsurancePlanStore
	logger *logger.Logger
}

// NewInsurancePlanHandler creates a new insurance plan handler.
func NewInsurancePlanHandler(s InsurancePlanStore, log *logger.Logger) *InsurancePlanHandler {
	return &InsurancePlanHandler{store: s, logger: log}
}

// List handles GET /insurance-plans
func (h *InsurancePlanHandler) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.store.ListInsurancePlans(r.Context())
	if err != nil {
		h.logger.Error("failed to list insurance plans", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list insurance plans")
		return
	}
	writeJSON(w, http.StatusOK, plans)
}

// Get handles GET /insurance-plans/{id}
func (h *InsurancePlanHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	plan, err := h.store.GetInsurancePlan(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "insurance plan not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get insurance plan", zap.String("plan_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get insurance plan")
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// Create handles POST /insurance-plans
func (h *InsurancePlanHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.InsurancePlanRequest
	if !decode(w, r, &req) {
		return
	}

	plan, err := h.store.CreateInsurancePlan(r.Context(), &req)
	if errors.Is(err, store.ErrConflict) {
		writeError(w, http.StatusConflict, "insurance plan already exists")
		return
	}
	if err != nil {
		h.logger.Error("failed to create insurance plan", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create insurance plan")
		return
	}
	writeJSON(w, http.StatusCreated, plan)
}
