package model

import "strings"

// Intent is the classified purpose of a guest's chat message.
type Intent string

const (
	IntentBooking      Intent = "BOOKING"
	IntentProperty     Intent = "PROPERTY"
	IntentInsurance    Intent = "INSURANCE"
	IntentCancellation Intent = "CANCELLATION"
	IntentGeneral      Intent = "GENERAL"
)

// Intents lists every category in classifier prompt order.
var Intents = []Intent{IntentBooking, IntentProperty, IntentInsurance, IntentCancellation, IntentGeneral}

// ParseIntent maps a label to an Intent, ignoring case and surrounding space.
func ParseIntent(s string) (Intent, bool) {
	label := Intent(strings.ToUpper(strings.TrimSpace(s)))
	for _, i := range Intents {
		if i == label {
			return i, true
		}
	}
	return IntentGeneral, false
}
