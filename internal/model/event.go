package model

import (
	"time"
)

// ChatEndpoint names the chat operation that produced an event.
type ChatEndpoint string

const (
	EndpointChat             ChatEndpoint = "chat"
	EndpointChatOptimized    ChatEndpoint = "chat_optimized"
	EndpointChatCheckout     ChatEndpoint = "chat_checkout"
	EndpointSuggestInsurance ChatEndpoint = "suggest_insurance"
	EndpointGenerateFAQ      ChatEndpoint = "generate_faq"
)

// ChatEvent describes one completed chat call. It never carries message text.
type ChatEvent struct {
	ID         string       `json:"id"`
	Endpoint   ChatEndpoint `json:"endpoint"`
	Intent     Intent       `json:"intent,omitempty"`
	Method     string       `json:"method,omitempty"`
	Status     string       `json:"status"`
	Messages   int          `json:"messages"`
	LatencyMs  int64        `json:"latency_ms"`
	PropertyID int64        `json:"property_id,omitempty"`
	CreatedAt  time.Time    `json:"created_at"`
}
