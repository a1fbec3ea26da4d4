package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/windoze95/saltybytes-finder/internal/logger"
	"github.com/windoze95/saltybytes-finder/internal/metrics"
	"go.uber.org/zap"
)

const embeddingCachePrefix = "embedding:"

// CachedEmbedder memoizes embeddings in Redis, keyed by model and text.
// Cache failures are logged and never fail the request.
type CachedEmbedder struct {
	next  EmbeddingProvider
	rdb   redis.UniversalClient
	ttl   time.Duration
	model string
}

// NewCachedEmbedder wraps next with a Redis-backed cache.
func NewCachedEmbedder(next EmbeddingProvider, rdb redis.UniversalClient, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{
		next:  next,
		rdb:   rdb,
		ttl:   ttl,
		model: modelIDOf(next),
	}
}

// ModelID forwards to the wrapped provider.
func (c *CachedEmbedder) ModelID() string {
	return c.model
}

// GenerateEmbedding returns the cached vector for text or computes and
// stores it.
func (c *CachedEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	key := c.key(text)
	log := logger.FromContext(ctx)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var vec []float32
		if jsonErr := json.Unmarshal(raw, &vec); jsonErr == nil && len(vec) > 0 {
			metrics.EmbeddingCacheRequests.WithLabelValues("hit").Inc()
			return vec, nil
		}
		metrics.EmbeddingCacheRequests.WithLabelValues("error").Inc()
		log.Warn("discarding corrupt cached embedding", zap.String("key", key))
	case errors.Is(err, redis.Nil):
		metrics.EmbeddingCacheRequests.WithLabelValues("miss").Inc()
	default:
		metrics.EmbeddingCacheRequests.WithLabelValues("error").Inc()
		log.Warn("embedding cache lookup failed", zap.Error(err))
	}

	vec, err := c.next.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(vec); err == nil {
		if err := c.rdb.Set(ctx, key, encoded, c.ttl).Err(); err != nil {
			log.Warn("embedding cache store failed", zap.Error(err))
		}
	}
	return vec, nil
}

func (c *CachedEmbedder) key(text string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return embeddingCachePrefix + hex.EncodeToString(sum[:])
}
