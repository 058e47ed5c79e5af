package llm

import (
	"context"
	"time"

	"github.com/airbnblite/airbot/pkg/metrics"
)

// Instrumented wraps a Client and records request metrics.
type Instrumented struct {
	Client
}

// WithMetrics returns c wrapped with Prometheus instrumentation.
func WithMetrics(c Client) Client {
	return &Instrumented{Client: c}
}

// Complete records duration, status and token usage of the wrapped call.
func (i *Instrumented) Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()
	resp, err := i.Client.Complete(ctx, req)
	elapsed := time.Since(start).Seconds()

	model := req.Model
	if err != nil {
		metrics.RecordLLMRequest(i.Name(), model, "error", elapsed, 0, 0)
		return nil, err
	}
	if resp.Model != "" {
		model = resp.Model
	}
	metrics.RecordLLMRequest(i.Name(), model, "ok", elapsed, resp.TokensIn, resp.TokensOut)
	return resp, nil
}
