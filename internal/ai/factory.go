package ai

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/windoze95/saltybytes-finder/internal/config"
	"github.com/windoze95/saltybytes-finder/internal/metrics"
	"github.com/windoze95/saltybytes-finder/internal/models"
	"github.com/windoze95/saltybytes-finder/internal/resilience"
)

// NewEmbeddingProvider builds the configured provider wrapped in retry and
// circuit breaking, plus a Redis cache when rdb is non-nil.
func NewEmbeddingProvider(ctx context.Context, cfg *config.Config, rdb redis.UniversalClient) (EmbeddingProvider, error) {
	var base EmbeddingProvider
	switch cfg.EnvVars.EmbeddingProvider {
	case config.EmbeddingProviderSageMaker:
		sm, err := NewSageMakerEmbedder(ctx, cfg)
		if err != nil {
			return nil, err
		}
		base = sm
	case config.EmbeddingProviderOpenAI:
		base = NewOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("%w: unknown embedding provider %q", models.ErrConfiguration, cfg.EnvVars.EmbeddingProvider)
	}

	policy := resilience.DefaultConfig()
	policy.MaxAttempts = cfg.EnvVars.RetryMaxAttempts
	policy.OnStateChange = metrics.RecordBreakerState

	var provider EmbeddingProvider = NewResilientEmbedder(base, policy)
	if rdb != nil {
		provider = NewCachedEmbedder(provider, rdb, cfg.EnvVars.EmbeddingCacheTTL)
	}
	return provider, nil
}
