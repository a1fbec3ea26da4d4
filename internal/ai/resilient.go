package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/windoze95/saltybytes-finder/internal/models"
	"github.com/windoze95/saltybytes-finder/internal/resilience"
)

// ResilientEmbedder retries transient provider failures and sheds load while
// the provider is down.
type ResilientEmbedder struct {
	next   EmbeddingProvider
	policy *resilience.Policy
}

// NewResilientEmbedder wraps next with a retry and circuit breaker policy.
// Only ErrUpstreamUnavailable is treated as transient.
func NewResilientEmbedder(next EmbeddingProvider, cfg resilience.Config) *ResilientEmbedder {
	cfg.Retryable = func(err error) bool {
		return errors.Is(err, models.ErrUpstreamUnavailable)
	}
	return &ResilientEmbedder{
		next:   next,
		policy: resilience.NewPolicy("embedding", cfg),
	}
}

// ModelID forwards to the wrapped provider.
func (r *ResilientEmbedder) ModelID() string {
	return modelIDOf(r.next)
}

// GenerateEmbedding calls the wrapped provider under the policy.
func (r *ResilientEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	vec, err := resilience.Do(ctx, r.policy, func(ctx context.Context) ([]float32, error) {
		return r.next.GenerateEmbedding(ctx, text)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return nil, fmt.Errorf("%w: %w", models.ErrUpstreamUnavailable, err)
	}
	return vec, err
}
