package main

import (
	"context"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/windoze95/saltybytes-finder/internal/config"
	"github.com/windoze95/saltybytes-finder/internal/db"
	"github.com/windoze95/saltybytes-finder/internal/logger"
	"github.com/windoze95/saltybytes-finder/internal/repository"
	"go.uber.org/zap"
)

// Loads a YAML recipe seed into the pgvector table, creating the schema first.
func main() {
	path := flag.String("file", "", "YAML seed file (defaults to $MEMORY_INDEX_FILE)")
	flag.Parse()

	_ = godotenv.Load()
	logger.Init(os.Getenv("GIN_MODE") != "release")
	defer logger.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Get().Fatal("failed to load config", zap.Error(err))
	}
	if *path == "" {
		*path = cfg.EnvVars.MemoryIndexFile
	}
	if *path == "" {
		logger.Get().Fatal("no seed file given; pass -file or set $MEMORY_INDEX_FILE")
	}

	seed, err := repository.ReadMemorySeed(*path)
	if err != nil {
		logger.Get().Fatal("failed to read seed", zap.Error(err))
	}

	database, err := db.New(cfg)
	if err != nil {
		logger.Get().Fatal("failed to connect to database", zap.Error(err))
	}
	if err := db.Migrate(database); err != nil {
		logger.Get().Fatal("failed to migrate", zap.Error(err))
	}

	n, err := repository.SeedVectors(context.Background(), repository.NewVectorRepository(database), seed)
	if err != nil {
		logger.Get().Fatal("failed to seed recipe vectors", zap.Int("written", n), zap.Error(err))
	}
	logger.Get().Info("seeded recipe vectors", zap.Int("count", n), zap.String("file", *path))
}
