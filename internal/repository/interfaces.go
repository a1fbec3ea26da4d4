package repository

import (
	"context"
	"fmt"

	"github.com/windoze95/saltybytes-finder/internal/config"
	"github.com/windoze95/saltybytes-finder/internal/models"
)

// VectorIndex is the interface for nearest-neighbour recipe lookups.
// Implementations return matches in the index's own ranking order.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, topK int) ([]models.RecipeMatch, error)
}

// ValidateTopK rejects neighbour counts outside 1..config.MaxTopK.
func ValidateTopK(topK int) error {
	if topK < 1 || topK > config.MaxTopK {
		return fmt.Errorf("%w: top_k must be between 1 and %d, got %d", models.ErrConfiguration, config.MaxTopK, topK)
	}
	return nil
}
