package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/airbnblite/airbot/internal/middleware"
	"github.com/airbnblite/airbot/internal/settings"
	"github.com/airbnblite/airbot/pkg/logger"
)

// InsuranceMethodRequest is the body of POST /config/insurance-method.
type InsuranceMethodRequest struct {
	Method string `json:"method" validate:"required"`
}

// InsuranceMethodResponse reports the active insurance context method.
type InsuranceMethodResponse struct {
	Method    settings.Method `json:"method"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Message   string          `json:"message,omitempty"`
}

// ConfigHandler exposes runtime settings.
type ConfigHandler struct {
	settings *settings.Runtime
	logger   *logger.Logger
}

// NewConfigHandler creates a new config handler.
func NewConfigHandler(rt *settings.Runtime, log *logger.Logger) *ConfigHandler {
	return &ConfigHandler{settings: rt, logger: log}
}

// GetInsuranceMethod handles GET /config/insurance-method
func (h *ConfigHandler) GetInsuranceMethod(w http.ResponseWriter, r *http.Request) {
	snap := h.settings.Snapshot()
	writeJSON(w, http.StatusOK, InsuranceMethodResponse{
		Method:    snap.InsuranceMethod,
		UpdatedAt: snap.UpdatedAt,
	})
}

// SetInsuranceMethod handles POST /config/insurance-method
func (h *ConfigHandler) SetInsuranceMethod(w http.ResponseWriter, r *http.Request) {
	var req InsuranceMethodRequest
	if !decode(w, r, &req) {
		return
	}

	previous := h.settings.Snapshot().InsuranceMethod
	snap, err := h.settings.SetInsuranceMethod(req.Method)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.Info("insurance context method changed",
		zap.String("from", string(previous)),
		zap.String("to", string(snap.InsuranceMethod)),
		zap.String("user_id", middleware.GetUserID(r.Context())),
	)
	writeJSON(w, http.StatusOK, InsuranceMethodResponse{
		Method:    snap.InsuranceMethod,
		UpdatedAt: snap.UpdatedAt,
		Message:   "insurance context method set to " + string(snap.InsuranceMethod),
	})
}
