package contextbuilder

import (
	"context"
	"strings"
	"time"

	"github.com/airbnblite/airbot/internal/model"
	"github.com/airbnblite/airbot/internal/settings"
)

// Input carries the records a chat request supplies.
type Input struct {
	Query     string
	Booking   *model.Booking
	Property  *model.Property
	Host      *model.HostInfo
	Purchased *model.InsurancePlan
	Eligible  *model.InsurancePlan
	Method    settings.Method
}

func (in Input) insurance() InsuranceInput {
	return InsuranceInput{
		Query:     in.Query,
		Purchased: in.Purchased,
		Eligible:  in.Eligible,
		Booking:   in.Booking,
		Method:    in.Method,
	}
}

// Router picks the context block for a classified intent.
type Router struct {
	insurance *InsuranceBuilder
	now       func() time.Time
}

// NewRouter creates a Router. A nil clock uses time.Now.
func NewRouter(insurance *InsuranceBuilder, now func() time.Time) *Router {
	if now == nil {
		now = time.Now
	}
	return &Router{insurance: insurance, now: now}
}

// Route builds the single block matching intent.
func (r *Router) Route(ctx context.Context, intent model.Intent, in Input) string {
	switch intent {
	case model.IntentBooking:
		return Booking(in.Booking)
	case model.IntentProperty:
		return Property(in.Property, in.Host)
	case model.IntentCancellation:
		return Cancellation(in.Booking, r.now())
	case model.IntentInsurance:
		return r.insurance.Build(ctx, in.insurance())
	default:
		return General(in.Property)
	}
}

// Full concatenates every block.
func (r *Router) Full(ctx context.Context, in Input) string {
	return strings.Join([]string{
		Booking(in.Booking),
		Property(in.Property, in.Host),
		Cancellation(in.Booking, r.now()),
		r.insurance.Build(ctx, in.insurance()),
	}, "\n\n")
}

// Checkout builds the pre-purchase context: the listing plus the plan the
// guest may buy. The guest has no purchased plan yet.
func (r *Router) Checkout(ctx context.Context, in Input) string {
	in.Purchased = nil
	return strings.Join([]string{
		Property(in.Property, in.Host),
		r.insurance.Build(ctx, in.insurance()),
	}, "\n\n")
}

// General is the minimal context for questions outside every category.
func General(p *model.Property) string {
	if p == nil || p.Title == "" {
		return "The guest is asking a general question about their stay."
	}
	return "The guest is asking a general question about their stay at " + p.Title + "."
}
