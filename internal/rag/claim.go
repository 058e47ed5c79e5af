package rag

import (
	"context"
	"errors"
)

// ErrClaimed is returned by a Claimer when another holder owns the key.
var ErrClaimed = errors.New("already claimed")

// Claimer grants exclusive ingestion rights for a document across processes.
type Claimer interface {
	// Claim returns a release func, or ErrClaimed if someone else holds url.
	Claim(ctx context.Context, url string) (release func(), err error)
}

// NoopClaimer always grants the claim.
type NoopClaimer struct{}

// Claim always succeeds.
func (NoopClaimer) Claim(context.Context, string) (func(), error) {
	return func() {}, nil
}
