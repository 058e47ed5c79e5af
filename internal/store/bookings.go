package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/airbnblite/airbot/internal/model"
)

const bookingColumns = `id, user_id, property_id, check_in, check_out, total_cost, reservation_cost,
	service_fee, insurance_cost, guests, status, insurance_plan_id, cancellation_reason`

// ListBookings returns all bookings.
func (s *SQLiteStore) ListBookings(ctx context.Context) ([]model.Booking, error) {
	bookings := []model.Booking{}
	if err := s.db.SelectContext(ctx, &bookings, `SELECT `+bookingColumns+` FROM bookings ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// GetBooking returns the booking with id.
func (s *SQLiteStore) GetBooking(ctx context.Context, id int64) (*model.Booking, error) {
	var b model.Booking
	err := s.db.GetContext(ctx, &b, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &b, nil
}

// CreateBooking inserts a confirmed booking and returns its id.
func (s *SQLiteStore) CreateBooking(ctx context.Context, req *model.CreateBookingRequest) (int64, error) {
	b := model.Booking{
		UserID:          req.UserID,
		PropertyID:      req.PropertyID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		TotalCost:       req.TotalCost,
		ReservationCost: req.ReservationCost,
		ServiceFee:      req.ServiceFee,
		InsuranceCost:   req.InsuranceCost,
		Guests:          req.Guests,
		Status:          model.BookingConfirmed,
		InsurancePlanID: req.InsurancePlanID,
	}
	res, err := s.db.NamedExecContext(ctx, `INSERT INTO bookings
		(user_id, property_id, check_in, check_out, total_cost, reservation_cost, service_fee, insurance_cost, guests, status, insurance_plan_id)
		VALUES (:user_id, :property_id, :check_in, :check_out, :total_cost, :reservation_cost, :service_fee, :insurance_cost, :guests, :status, :insurance_plan_id)`, b)
	if err != nil {
		return 0, fmt.Errorf("failed to insert booking: %w", err)
	}
	return res.LastInsertId()
}

// UpdateBookingStatus sets the status and cancellation reason of the booking with id.
func (s *SQLiteStore) UpdateBookingStatus(ctx context.Context, id int64, req *model.UpdateBookingRequest) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, cancellation_reason = ? WHERE id = ?`,
		req.Status, req.CancellationReason, id)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return requireAffected(res)
}
