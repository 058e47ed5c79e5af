package contextbuilder

import (
	"strings"
	"time"

	"github.com/airbnblite/airbot/internal/model"
)

const (
	cancellableText = `Cancellation Policy:
- This booking can still be cancelled because the check-in date has not been reached yet.
- The guest can cancel from the My Trips page by selecting the booking and choosing Cancel Booking.
- On cancellation the reservation cost is refunded to the original payment method. The service fee is not refunded.
- Any travel insurance purchased with this booking is cancelled automatically and its cost is refunded.`

	tooLateText = `Cancellation Policy:
- This booking can no longer be cancelled because the check-in date has already been reached.
- No refund is available through the app. For exceptional circumstances the guest should contact the host directly.`

	alreadyCancelledText = `Cancellation Policy:
- This booking has already been cancelled. No further action is needed.`
)

// Cancellation renders the cancellation policy that applies to b on the
// calendar date of now. A booking is cancellable only while now is strictly
// before check-in. The comparison dates are never rendered.
func Cancellation(b *model.Booking, now time.Time) string {
	if b == nil {
		return "Cancellation Policy:\n- No booking details are available."
	}
	if b.Status == model.BookingCancelledByGuest || b.Status == model.BookingCancelledByHost {
		return alreadyCancelledText
	}
	if Cancellable(b.CheckIn, now) {
		return cancellableText
	}
	return tooLateText
}

// Cancellable reports whether the UTC calendar date of now is before checkIn.
// An unparsable check-in is treated as not cancellable.
func Cancellable(checkIn string, now time.Time) bool {
	in, ok := parseDate(checkIn)
	if !ok {
		return false
	}
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return today.Before(in)
}

// parseDate accepts a calendar date optionally followed by a time part.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) > len(model.DateLayout) {
		s = s[:len(model.DateLayout)]
	}
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
