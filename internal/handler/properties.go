package handler

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/airbnblite/airbot/internal/model"
	"github.com/airbnblite/airbot/internal/store"
	"github.com/airbnblite/airbot/pkg/logger"
)

// PropertyStore persists listings.
type PropertyStore interface {
	ListProperties(ctx context.Context) ([]model.Property, error)
	GetProperty(ctx context.Context, id int64) (*model.Property, error)
	CreateProperty(ctx context.Context, req *model.PropertyRequest) (int64, error)
	UpdateProperty(ctx context.Context, id int64, req *model.UpdatePropertyRequest) error
	DeleteProperty(ctx context.Context, id int64) error
}

// PropertyHandler handles listing endpoints.
type PropertyHandler struct {
	store  PropertyStore
	logger *logger.Logger
}

// NewPropertyHandler creates a new property handler.
func NewPropertyHandler(s PropertyStore, log *logger.Logger) *PropertyHandler {
	return &PropertyHandler{store: s, logger: log}
}

// List handles GET /properties
func (h *PropertyHandler) List(w http.ResponseWriter, r *http.Request) {
	props, err := h.store.ListProperties(r.Context())
	if err != nil {
		h.logger.Error("failed to list properties", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list properties")
		return
	}
	writeJSON(w, http.StatusOK, props)
}

// Get handles GET /properties/{id}
func (h *PropertyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.writeProperty(w, r, id, http.StatusOK)
}

// Create handles POST /properties
func (h *PropertyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.PropertyRequest
	if !decode(w, r, &req) {
		return
	}

	id, err := h.store.CreateProperty(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create property", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create property")
		return
	}
	h.writeProperty(w, r, id, http.StatusCreated)
}

// Update handles PUT /properties/{id}
func (h *PropertyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req model.UpdatePropertyRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.store.UpdateProperty(r.Context(), id, &req)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to update property", zap.Int64("property_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update property")
		return
	}
	h.writeProperty(w, r, id, http.StatusOK)
}

// Delete handles DELETE /properties/{id}
func (h *PropertyHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := h.store.DeleteProperty(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to delete property", zap.Int64("property_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to delete property")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "property deleted"})
}

func (h *PropertyHandler) writeProperty(w http.ResponseWriter, r *http.Request, id int64, status int) {
	p, err := h.store.GetProperty(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "property not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get property", zap.Int64("property_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get property")
		return
	}
	writeJSON(w, status, p)
}
