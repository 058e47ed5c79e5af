package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeTurns(t *testing.T) {
	got := mergeTurns([]ChatMessage{
		{Role: RoleUser, Content: "a"},
		{Role: RoleUser, Content: "b"},
		{Role: RoleAssistant, Content: "c"},
		{Role: RoleUser, Content: "d"},
	})
	assert.Equal(t, []ChatMessage{
		{Role: RoleUser, Content: "a\n\nb"},
		{Role: RoleAssistant, Content: "c"},
		{Role: RoleUser, Content: "d"},
	}, got)
}

func TestAnthropicTurnsFoldsSystemPrompt(t *testing.T) {
	turns := anthropicTurns(&CompletionRequest{
		System:   "be brief",
		JSONMode: true,
		Messages: []ChatMessage{{Role: RoleUser, Content: "hi"}},
	})
	require.Len(t, turns, 1)
	assert.Contains(t, turns[0].Content, "be brief")
	assert.Contains(t, turns[0].Content, "JSON")
	assert.Contains(t, turns[0].Content, "hi")
}

func TestAnthropicTurnsOpensWithUser(t *testing.T) {
	turns := anthropicTurns(&CompletionRequest{
		System:   "ctx",
		Messages: []ChatMessage{{Role: RoleAssistant, Content: "Welcome!"}, {Role: RoleUser, Content: "q"}},
	})
	require.Len(t, turns, 3)
	assert.Equal(t, RoleUser, turns[0].Role)
	assert.Equal(t, "ctx", turns[0].Content)
	assert.Equal(t, RoleAssistant, turns[1].Role)
}

func TestNewClientUnknownProvider(t *testing.T) {
	_, err := NewClient(context.Background(), Provider("bogus"), "key")
	assert.Error(t, err)
}

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("")
	assert.Error(t, err)
	_, err = NewAnthropicClient("")
	assert.Error(t, err)
	_, err = NewGeminiClient(context.Background(), "")
	assert.Error(t, err)
}

type stubClient struct {
	resp *CompletionResponse
	err  error
}

func (s *stubClient) Complete(context.Context, *CompletionRequest) (*CompletionResponse, error) {
	return s.resp, s.err
}
func (s *stubClient) Name() string     { return "stub" }
func (s *stubClient) Models() []string { return nil }

func TestWithMetricsPassesThrough(t *testing.T) {
	c := WithMetrics(&stubClient{resp: &CompletionResponse{Content: "ok", Model: "m", TokensIn: 3, TokensOut: 2}})
	resp, err := c.Complete(context.Background(), &CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Content)
	assert.Equal(t, "stub", c.Name())

	boom := errors.New("boom")
	_, err = WithMetrics(&stubClient{err: boom}).Complete(context.Background(), &CompletionRequest{})
	assert.ErrorIs(t, err, boom)
}
