// Command bites-lambda serves the restaurant API behind an API Gateway HTTP API.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jacentio/bites/internal/app"
	"github.com/jacentio/bites/internal/config"
	"github.com/jacentio/bites/internal/lambdahttp"
)

func main() {
	cfg, err := config.ParseEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	// The store connection is reused across invocations of a warm container.
	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	lambda.Start(lambdahttp.New(a.Handler, logger).Handle)
}
