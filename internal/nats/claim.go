package nats

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/airbnblite/airbot/internal/rag"
	"github.com/airbnblite/airbot/pkg/logger"
)

// ClaimBucket is the KV bucket holding in-flight ingestion claims.
const ClaimBucket = "AIRBOT_INGEST_CLAIMS"

type keyValue interface {
	Create(ctx context.Context, key string, value []byte) (uint64, error)
	Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error
}

// Claimer hands out per-document ingestion claims through a JetStream KV
// bucket. Claims expire after the bucket TTL if the holder dies.
type Claimer struct {
	kv     keyValue
	holder string
	logger *logger.Logger
}

// NewClaimer opens or creates the claim bucket.
func NewClaimer(ctx context.Context, client *Client, ttl time.Duration, log *logger.Logger) (*Claimer, error) {
	js := client.JetStream()
	kv, err := js.KeyValue(ctx, ClaimBucket)
	if errors.Is(err, jetstream.ErrBucketNotFound) {
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:      ClaimBucket,
			Description: "Policy document ingestion claims",
			TTL:         ttl,
			Storage:     jetstream.MemoryStorage,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open claim bucket: %w", err)
	}
	return newClaimer(kv, log), nil
}

func newClaimer(kv keyValue, log *logger.Logger) *Claimer {
	holder, _ := os.Hostname()
	return &Claimer{kv: kv, holder: holder, logger: log}
}

// Claim implements rag.Claimer.
func (c *Claimer) Claim(ctx context.Context, url string) (func(), error) {
	key := ClaimKey(url)
	if _, err := c.kv.Create(ctx, key, []byte(c.holder)); err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			return nil, rag.ErrClaimed
		}
		return nil, fmt.Errorf("failed to claim %s: %w", url, err)
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.kv.Delete(ctx, key); err != nil {
			c.logger.Warn("failed to release ingestion claim", zap.String("url", url), zap.Error(err))
		}
	}
	return release, nil
}

// ClaimKey maps a document URL onto a valid KV key.
func ClaimKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "doc." + hex.EncodeToString(sum[:])
}
