// Package contextbuilder renders domain records into the text blocks that
// ground the assistant's answers.
package contextbuilder

import (
	"fmt"
	"strings"

	"github.com/airbnblite/airbot/internal/model"
)

const bookingPolicyLine = "All prices are in US dollars. The service fee is non-refundable and payment was taken when the booking was made."

// Booking renders the dates, guest count and costs of a booking.
func Booking(b *model.Booking) string {
	if b == nil {
		return "Booking Details:\nNo booking details are available."
	}

	var sb strings.Builder
	sb.WriteString("Booking Details:\n")
	fmt.Fprintf(&sb, "- Check-in Date: %s\n", b.CheckIn)
	fmt.Fprintf(&sb, "- Check-out Date: %s\n", b.CheckOut)
	fmt.Fprintf(&sb, "- Number of Guests: %d\n", b.Guests)
	fmt.Fprintf(&sb, "- Reservation Cost: $%.2f\n", b.ReservationCost)
	fmt.Fprintf(&sb, "- Service Fee: $%.2f\n", b.ServiceFee)
	fmt.Fprintf(&sb, "- Insurance Cost: $%.2f\n", b.InsuranceCost)
	fmt.Fprintf(&sb, "- Total Cost: $%.2f\n", b.TotalCost)
	if b.Status != "" {
		fmt.Fprintf(&sb, "- Status: %s\n", b.Status)
	}
	sb.WriteString(bookingPolicyLine)
	return sb.String()
}
