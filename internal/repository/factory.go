package repository

import (
	"context"
	"fmt"

	"github.com/windoze95/saltybytes-finder/internal/config"
	"github.com/windoze95/saltybytes-finder/internal/metrics"
	"github.com/windoze95/saltybytes-finder/internal/models"
	"github.com/windoze95/saltybytes-finder/internal/resilience"
	"gorm.io/gorm"
)

// NewVectorIndex builds the configured index backend wrapped in retry and
// circuit breaking. database is only used by the pgvector backend.
func NewVectorIndex(ctx context.Context, cfg *config.Config, database *gorm.DB) (VectorIndex, error) {
	var base VectorIndex
	switch cfg.EnvVars.IndexBackend {
	case config.IndexBackendPinecone:
		idx, err := NewPineconeIndex(ctx, cfg)
		if err != nil {
			return nil, err
		}
		base = idx
	case config.IndexBackendPgvector:
		if database == nil {
			return nil, fmt.Errorf("%w: pgvector backend needs a database connection", models.ErrConfiguration)
		}
		base = NewVectorRepository(database)
	case config.IndexBackendMemory:
		idx, err := LoadMemoryIndex(cfg.EnvVars.MemoryIndexFile, cfg.EnvVars.EmbeddingDimension)
		if err != nil {
			return nil, err
		}
		base = idx
	default:
		return nil, fmt.Errorf("%w: unknown index backend %q", models.ErrConfiguration, cfg.EnvVars.IndexBackend)
	}

	policy := resilience.DefaultConfig()
	policy.MaxAttempts = cfg.EnvVars.RetryMaxAttempts
	policy.OnStateChange = metrics.RecordBreakerState

	return NewResilientIndex(base, policy), nil
}
