package nats

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airbnblite/airbot/internal/model"
	"github.com/airbnblite/airbot/internal/rag"
	"github.com/airbnblite/airbot/pkg/logger"
)

type fakePublisher struct {
	subject string
	data    []byte
	opts    int
	err     error
}

func (f *fakePublisher) Publish(_ context.Context, subject string, data []byte, opts ...jetstream.PublishOpt) (*jetstream.PubAck, error) {
	f.subject = subject
	f.data = data
	f.opts = len(opts)
	if f.err != nil {
		return nil, f.err
	}
	return &jetstream.PubAck{Stream: StreamName, Sequence: 1}, nil
}

func TestPublishChatEvent(t *testing.T) {
	pub := &fakePublisher{}
	p := &EventPublisher{js: pub}

	event := &model.ChatEvent{
		ID:        "evt-1",
		Endpoint:  model.EndpointChatOptimized,
		Intent:    model.IntentInsurance,
		Status:    "ok",
		Messages:  3,
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, p.PublishChatEvent(context.Background(), event))

	assert.Equal(t, "airbot.chat.chat_optimized", pub.subject)
	assert.Equal(t, 1, pub.opts)

	var decoded model.ChatEvent
	require.NoError(t, json.Unmarshal(pub.data, &decoded))
	assert.Equal(t, *event, decoded)
}

func TestPublishChatEventError(t *testing.T) {
	p := &EventPublisher{js: &fakePublisher{err: errors.New("no responders")}}
	err := p.PublishChatEvent(context.Background(), &model.ChatEvent{Endpoint: model.EndpointChat})
	assert.ErrorContains(t, err, "no responders")
}

type fakeKV struct {
	mu      sync.Mutex
	keys    map[string][]byte
	deleted []string
	err     error
}

func (f *fakeKV) Create(_ context.Context, key string, value []byte) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	if _, ok := f.keys[key]; ok {
		return 0, jetstream.ErrKeyExists
	}
	f.keys[key] = value
	return uint64(len(f.keys)), nil
}

func (f *fakeKV) Delete(_ context.Context, key string, _ ...jetstream.KVDeleteOpt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keys, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func TestClaimer(t *testing.T) {
	kv := &fakeKV{keys: map[string][]byte{}}
	c := newClaimer(kv, logger.NewNop())
	ctx := context.Background()
	url := "https://example.com/policies/basic.pdf"

	release, err := c.Claim(ctx, url)
	require.NoError(t, err)

	_, err = c.Claim(ctx, url)
	assert.ErrorIs(t, err, rag.ErrClaimed)

	other, err := c.Claim(ctx, "https://example.com/policies/premium.pdf")
	require.NoError(t, err)
	other()

	release()
	assert.Contains(t, kv.deleted, ClaimKey(url))

	again, err := c.Claim(ctx, url)
	require.NoError(t, err)
	again()
}

func TestClaimerBackendError(t *testing.T) {
	c := newClaimer(&fakeKV{keys: map[string][]byte{}, err: errors.New("timeout")}, logger.NewNop())
	_, err := c.Claim(context.Background(), "https://example.com/a.pdf")
	require.Error(t, err)
	assert.NotErrorIs(t, err, rag.ErrClaimed)
}

func TestClaimKey(t *testing.T) {
	valid := regexp.MustCompile(`^[-/_=.a-zA-Z0-9]+$`)
	a := ClaimKey("https://example.com/terms.pdf?v=2&lang=en")
	b := ClaimKey("https://example.com/terms.pdf?v=2&lang=en")
	c := ClaimKey("https://example.com/terms.pdf?v=3")

	assert.Regexp(t, valid, a)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
