package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/windoze95/saltybytes-finder/internal/app"
	"github.com/windoze95/saltybytes-finder/internal/handlers"
	"github.com/windoze95/saltybytes-finder/internal/logger"
	"go.uber.org/zap"
)

// Entry point for the Lambda function. Connections are built once per
// container and reused across invocations.
func main() {
	logger.Init(false)
	defer logger.Sync()

	cfg, err := app.LoadConfig()
	if err != nil {
		logger.Get().Fatal("failed to load config", zap.Error(err))
	}

	a, err := app.New(context.Background(), cfg)
	if err != nil {
		logger.Get().Fatal("failed to initialize search service", zap.Error(err))
	}
	defer a.Close()

	lambda.Start(handlers.NewLambdaHandler(a.Search).Handle)
}
