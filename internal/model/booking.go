package model

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingConfirmed        BookingStatus = "confirmed"
	BookingCancelledByGuest BookingStatus = "cancelled-by-guest"
	BookingCancelledByHost  BookingStatus = "cancelled-by-host"
)

// DateLayout is the calendar date format used for check-in and check-out.
const DateLayout = "2006-01-02"

// Booking is a reservation of a property by a user.
type Booking struct {
	ID                 int64         `db:"id" json:"id"`
	UserID             int64         `db:"user_id" json:"userId"`
	PropertyID         int64         `db:"property_id" json:"propertyId"`
	CheckIn            string        `db:"check_in" json:"checkIn"`
	CheckOut           string        `db:"check_out" json:"checkOut"`
	TotalCost          float64       `db:"total_cost" json:"totalCost"`
	ReservationCost    float64       `db:"reservation_cost" json:"reservationCost"`
	ServiceFee         float64       `db:"service_fee" json:"serviceFee"`
	InsuranceCost      float64       `db:"insurance_cost" json:"insuranceCost"`
	Guests             int           `db:"guests" json:"guests"`
	Status             BookingStatus `db:"status" json:"status"`
	InsurancePlanID    *string       `db:"insurance_plan_id" json:"insurancePlanId,omitempty"`
	CancellationReason *string       `db:"cancellation_reason" json:"cancellationReason,omitempty"`
}

// CreateBookingRequest is the request to create a booking.
type CreateBookingRequest struct {
	UserID          int64   `json:"userId" validate:"required,gt=0"`
	PropertyID      int64   `json:"propertyId" validate:"required,gt=0"`
	CheckIn         string  `json:"checkIn" validate:"required,datetime=2006-01-02"`
	CheckOut        string  `json:"checkOut" validate:"required,datetime=2006-01-02"`
	TotalCost       float64 `json:"totalCost" validate:"gte=0"`
	ReservationCost float64 `json:"reservationCost" validate:"gte=0"`
	ServiceFee      float64 `json:"serviceFee" validate:"gte=0"`
	InsuranceCost   float64 `json:"insuranceCost" validate:"gte=0"`
	Guests          int     `json:"guests" validate:"required,gt=0"`
	InsurancePlanID *string `json:"insurancePlanId" validate:"omitempty,min=1"`
}

// UpdateBookingRequest changes the status of a booking.
type UpdateBookingRequest struct {
	Status             BookingStatus `json:"status" validate:"required,oneof=confirmed cancelled-by-guest cancelled-by-host"`
	CancellationReason *string       `json:"cancellationReason" validate:"omitempty,max=1024"`
}
