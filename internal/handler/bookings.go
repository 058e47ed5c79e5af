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

// BookingStore persists reservations.
type BookingStore interface {
	ListBookings(ctx context.Context) ([]model.Booking, error)
	GetBooking(ctx context.Context, id int64) (*model.Booking, error)
	CreateBooking(ctx context.Context, req *model.CreateBookingRequest) (int64, error)
	UpdateBookingStatus(ctx context.Context, id int64, req *model.UpdateBookingRequest) error
}

// BookingHandler handles reservation endpoints.
type BookingHandler struct {
	store  BookingStore
	logger *logger.Logger
}

// NewBookingHandler creates a new booking handler.
func NewBookingHandler(s BookingStore, log *logger.Logger) *BookingHandler {
	return &BookingHandler{store: s, logger: log}
}

// List handles GET /bookings
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.store.ListBookings(r.Context())
	if err != nil {
		h.logger.Error("failed to list bookings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}
	writeJSON(w, http.StatusOK, bookings)
}

// Get handles GET /bookings/{id}
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	h.writeBooking(w, r, id, http.StatusOK)
}

// Create handles POST /bookings
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateBookingRequest
	if !decode(w, r, &req) {
		return
	}
	if req.CheckOut <= req.CheckIn {
		writeError(w, http.StatusBadRequest, "checkOut must be after checkIn")
		return
	}

	id, err := h.store.CreateBooking(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create booking", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to create booking")
		return
	}
	h.writeBooking(w, r, id, http.StatusCreated)
}

// Update handles PUT /bookings/{id}
func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req model.UpdateBookingRequest
	if !decode(w, r, &req) {
		return
	}

	err := h.store.UpdateBookingStatus(r.Context(), id, &req)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to update booking", zap.Int64("booking_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to update booking")
		return
	}
	h.writeBooking(w, r, id, http.StatusOK)
}

func (h *BookingHandler) writeBooking(w http.ResponseWriter, r *http.Request, id int64, status int) {
	b, err := h.store.GetBooking(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "booking not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get booking", zap.Int64("booking_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to get booking")
		return
	}
	writeJSON(w, status, b)
}
