package app

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/windoze95/saltybytes-finder/internal/ai"
	"github.com/windoze95/saltybytes-finder/internal/config"
	"github.com/windoze95/saltybytes-finder/internal/db"
	"github.com/windoze95/saltybytes-finder/internal/logger"
	"github.com/windoze95/saltybytes-finder/internal/repository"
	"github.com/windoze95/saltybytes-finder/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// LoadConfig reads, checks and validates the environment configuration.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.CheckConfigEnvFields(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// App holds the search service and the connections it owns.
type App struct {
	Search  *service.SearchService
	closers []func() error
}

// New connects the configured backends and builds the search service.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{}

	var database *gorm.DB
	if cfg.EnvVars.IndexBackend == config.IndexBackendPgvector {
		d, err := db.New(cfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := d.DB()
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, sqlDB.Close)
		database = d
	}

	rdb, err := db.NewRedis(ctx, cfg)
	if err != nil {
		a.Close()
		return nil, err
	}

	// A nil *redis.Client must stay a nil interface so the cache is skipped.
	var cache redis.UniversalClient
	if rdb != nil {
		a.closers = append(a.closers, rdb.Close)
		cache = rdb
	}

	embedder, err := ai.NewEmbeddingProvider(ctx, cfg, cache)
	if err != nil {
		a.Close()
		return nil, err
	}

	index, err := repository.NewVectorIndex(ctx, cfg, database)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Search = service.NewSearchService(cfg, embedder, index)
	logger.Get().Info("search service ready",
		zap.String("embedding_provider", cfg.EnvVars.EmbeddingProvider),
		zap.String("index_backend", cfg.EnvVars.IndexBackend))
	return a, nil
}

// Close releases every connection opened by New.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Get().Warn("failed to close connection", zap.Error(err))
		}
	}
	a.closers = nil
}
