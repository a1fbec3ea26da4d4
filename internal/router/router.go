package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/windoze95/saltybytes-finder/internal/config"
	"github.com/windoze95/saltybytes-finder/internal/handlers"
	"github.com/windoze95/saltybytes-finder/internal/logger"
	"github.com/windoze95/saltybytes-finder/internal/middleware"
	"github.com/windoze95/saltybytes-finder/internal/service"
)

const (
	rateLimitCleanupInterval = time.Minute
	rateLimitExpiration      = 10 * time.Minute
)

// SetupRouter sets up the Gin router.
func SetupRouter(cfg *config.Config, searchService *service.SearchService) *gin.Engine {
	// Create default Gin router
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	if len(cfg.EnvVars.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.EnvVars.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowHeaders(logger.RequestIDHeader, middleware.APIKeyHeader)
	corsConfig.AddExposeHeaders(logger.RequestIDHeader)
	r.Use(cors.New(corsConfig))

	// Add request ID middleware for request correlation
	r.Use(logger.RequestIDMiddleware())
	r.Use(middleware.Metrics())

	// Ping route for testing
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	searchHandler := handlers.NewSearchHandler(searchService)

	api := r.Group("/v1")
	{
		api.Use(middleware.RateLimitByIP(cfg.EnvVars.RateLimitRPS, rateLimitCleanupInterval, rateLimitExpiration))
		api.Use(middleware.RequireAPIKey(cfg.EnvVars.APIKey))

		// Recommend recipes for a user profile and request
		api.POST("/recipes/recommend", searchHandler.Recommend)
	}

	return r
}
