package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/windoze95/saltybytes-finder/internal/models"
	"github.com/windoze95/saltybytes-finder/internal/resilience"
)

// ResilientIndex retries transient index failures behind a circuit breaker.
type ResilientIndex struct {
	next   VectorIndex
	policy *resilience.Policy
}

// NewResilientIndex wraps next. Only ErrIndexUnavailable is retried.
func NewResilientIndex(next VectorIndex, cfg resilience.Config) *ResilientIndex {
	cfg.Retryable = func(err error) bool {
		return errors.Is(err, models.ErrIndexUnavailable)
	}
	return &ResilientIndex{
		next:   next,
		policy: resilience.NewPolicy("vector_index", cfg),
	}
}

// Query calls the wrapped index under the policy.
func (r *ResilientIndex) Query(ctx context.Context, vector []float32, topK int) ([]models.RecipeMatch, error) {
	matches, err := resilience.Do(ctx, r.policy, func(ctx context.Context) ([]models.RecipeMatch, error) {
		return r.next.Query(ctx, vector, topK)
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return nil, fmt.Errorf("%w: %w", models.ErrIndexUnavailable, err)
	}
	return matches, err
}
