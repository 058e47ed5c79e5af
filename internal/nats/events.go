package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/airbnblite/airbot/internal/model"
)

const (
	// StreamName is the name of the chat events stream.
	StreamName = "CHAT_EVENTS"

	// SubjectPrefix is the prefix for all chat event subjects.
	SubjectPrefix = "airbot.chat"
)

// StreamManager handles JetStream stream operations.
type StreamManager struct {
	client *Client
}

// NewStreamManager creates a new stream manager.
func NewStreamManager(client *Client) *StreamManager {
	return &StreamManager{client: client}
}

// EnsureStream ensures the chat events stream exists.
func (m *StreamManager) EnsureStream(ctx context.Context) error {
	js := m.client.JetStream()

	_, err := js.Stream(ctx, StreamName)
	if err == nil {
		return nil
	}
	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("failed to look up stream: %w", err)
	}

	_, err = js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		MaxBytes:    1024 * 1024 * 1024,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Duplicates:  2 * time.Minute,
		Description: "Assistant call outcomes, without message text",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// EventSubject returns the subject for a chat event.
func EventSubject(endpoint model.ChatEndpoint) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, endpoint)
}

type publisher interface {
	Publish(ctx context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error)
}

// EventPublisher writes chat events to JetStream.
type EventPublisher struct {
	js publisher
}

// NewEventPublisher creates a publisher on the client's JetStream context.
func NewEventPublisher(client *Client) *EventPublisher {
	return &EventPublisher{js: client.JetStream()}
}

// PublishChatEvent publishes the event, deduplicated on its ID.
func (p *EventPublisher) PublishChatEvent(ctx context.Context, event *model.ChatEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	var opts []jetstream.PublishOpt
	if event.ID != "" {
		opts = append(opts, jetstream.WithMsgID(event.ID))
	}
	if _, err := p.js.Publish(ctx, EventSubject(event.Endpoint), data, opts...); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
