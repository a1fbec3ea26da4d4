package main

import (
	"context"
	"os"
	"runtime"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/windoze95/saltybytes-finder/internal/app"
	"github.com/windoze95/saltybytes-finder/internal/logger"
	"github.com/windoze95/saltybytes-finder/internal/router"
	"go.uber.org/zap"
)

// init is called before the main function.
func init() {
	// Local development reads a .env file; deployed environments set the vars directly
	_ = godotenv.Load()

	// Initialize structured logger (dev mode if GIN_MODE != release)
	isDev := os.Getenv("GIN_MODE") != "release"
	logger.Init(isDev)

	// Configure the runtime
	ConfigureRuntime()
}

// Entry point for the API.
func main() {
	defer logger.Sync()

	// Load and validate the config
	cfg, err := app.LoadConfig()
	if err != nil {
		logger.Get().Fatal("failed to load config", zap.Error(err))
	}

	// Connect the embedding provider and vector index
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		logger.Get().Fatal("failed to initialize search service", zap.Error(err))
	}
	defer a.Close()

	// Create a new gin router
	gin.SetMode(gin.ReleaseMode)
	r := router.SetupRouter(cfg, a.Search)

	// Run the server
	logger.Get().Info("starting server", zap.String("port", cfg.EnvVars.Port))
	if err := r.Run(":" + cfg.EnvVars.Port); err != nil {
		logger.Get().Error("server stopped", zap.Error(err))
	}
}

// ConfigureRuntime sets the number of operating system threads.
func ConfigureRuntime() {
	nuCPU := runtime.NumCPU()
	runtime.GOMAXPROCS(nuCPU)
	logger.Get().Info("runtime configured", zap.Int("cpus", nuCPU))
}
