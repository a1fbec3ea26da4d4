package db

import (
	"fmt"
	"time"

	"github.com/windoze95/saltybytes-finder/internal/config"
	"github.com/windoze95/saltybytes-finder/internal/logger"
	"github.com/windoze95/saltybytes-finder/internal/models"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connection retry budget.
var (
	connectTimeout = 1 * time.Minute
	retryInterval  = 5 * time.Second
)

// New creates a new database connection for the pgvector index.
func New(cfg *config.Config) (*gorm.DB, error) {
	if cfg.EnvVars.DatabaseUrl == "" {
		return nil, fmt.Errorf("%w: $DATABASE_URL must be set", models.ErrConfiguration)
	}
	return connectToDatabaseWithRetry(postgres.Open(cfg.EnvVars.DatabaseUrl))
}

// connectToDatabaseWithRetry connects to the database and retries if necessary.
func connectToDatabaseWithRetry(dialector gorm.Dialector) (*gorm.DB, error) {
	logger.Get().Info("connecting to database")
	var database *gorm.DB
	var err error

	start := time.Now()
	for {
		database, err = gorm.Open(dialector, &gorm.Config{})
		if err == nil {
			break
		}
		if time.Since(start) > connectTimeout {
			return nil, fmt.Errorf("%w: could not connect to database after %s: %w", models.ErrIndexUnavailable, connectTimeout, err)
		}
		logger.Get().Warn("could not connect to database, retrying...", zap.Error(err))
		time.Sleep(retryInterval)
	}
	return database, nil
}

// Migrate prepares the recipe vector table. The recipe ETL owns the data;
// this only guarantees the schema the index queries expect.
func Migrate(database *gorm.DB) error {
	if err := database.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("failed to enable pgvector: %w", err)
	}
	if err := database.AutoMigrate(&models.RecipeVector{}); err != nil {
		return fmt.Errorf("failed to migrate recipe vectors: %w", err)
	}
	return nil
}
