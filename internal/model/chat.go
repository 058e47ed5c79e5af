package model

// Sender values supplied by chat clients.
const (
	SenderUser      = "user"
	SenderBot       = "bot"
	SenderAssistant = "assistant"
)

// ChatMessage is one turn of a client-held conversation.
type ChatMessage struct {
	Sender string `json:"sender" validate:"required"`
	Text   string `json:"text" validate:"max=100000"`
}

// ChatRequest is the body of /chat and /chatOptimized.
type ChatRequest struct {
	Messages              []ChatMessage  `json:"messages" validate:"required,min=1,dive"`
	Booking               *Booking       `json:"booking" validate:"required"`
	Property              *Property      `json:"property" validate:"required"`
	HostInfo              *HostInfo      `json:"hostInfo"`
	InsurancePlan         *InsurancePlan `json:"insurancePlan"`
	EligibleInsurancePlan *InsurancePlan `json:"eligibleInsurancePlan"`
}

// CheckoutChatRequest is the body of /chatCheckout.
type CheckoutChatRequest struct {
	Messages              []ChatMessage  `json:"messages" validate:"required,min=1,dive"`
	Property              *Property      `json:"property" validate:"required"`
	Booking               *Booking       `json:"booking"`
	EligibleInsurancePlan *InsurancePlan `json:"eligibleInsurancePlan"`
}

// ChatResponse is returned by every chat endpoint.
type ChatResponse struct {
	Response string `json:"response"`
}

// SuggestInsuranceRequest is the body of /suggest-insurance-message.
type SuggestInsuranceRequest struct {
	Location      string         `json:"location" validate:"required"`
	TripCost      float64        `json:"tripCost" validate:"gte=0"`
	InsurancePlan *InsurancePlan `json:"insurancePlan" validate:"required"`
}

// SuggestInsuranceResponse carries the generated suggestion.
type SuggestInsuranceResponse struct {
	Message string `json:"message"`
}

// GenerateFAQRequest is the body of /generate-faq.
type GenerateFAQRequest struct {
	PropertyDescription string   `json:"propertyDescription" validate:"required"`
	Amenities           []string `json:"amenities"`
}

// FAQ is a single question and answer pair.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// GenerateFAQResponse carries the generated FAQs.
type GenerateFAQResponse struct {
	FAQs []FAQ `json:"faqs"`
}

// LatestUserText returns the text of the last message.
func LatestUserText(messages []ChatMessage) string {
	if len(messages) == 0 {
		return ""
	}
	return messages[len(messages)-1].Text
}
