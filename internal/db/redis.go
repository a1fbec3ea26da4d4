package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/windoze95/saltybytes-finder/internal/config"
	"github.com/windoze95/saltybytes-finder/internal/logger"
	"github.com/windoze95/saltybytes-finder/internal/models"
	"go.uber.org/zap"
)

// NewRedis connects to the embedding cache. It returns nil, nil when no
// REDIS_URL is configured.
func NewRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if cfg.EnvVars.RedisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.EnvVars.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid $REDIS_URL: %v", models.ErrConfiguration, err)
	}
	opts.DialTimeout = 2 * time.Second
	opts.ReadTimeout = 500 * time.Millisecond
	opts.WriteTimeout = 500 * time.Millisecond

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Get().Info("connected to redis", zap.String("addr", opts.Addr), zap.Int("db", opts.DB))
	return client, nil
}
