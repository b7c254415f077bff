// Package app wires configuration into a ready-to-serve HTTP handler.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/jacentio/bites/api"
	"github.com/jacentio/bites/catalog"
	"github.com/jacentio/bites/internal/config"
	"github.com/jacentio/bites/store"
	"github.com/jacentio/bites/weather"
)

// App owns the long-lived store handle behind Handler.
type App struct {
	Handler http.Handler
	store   *store.Store
}

// New opens the store, selects the weather cache and builds the API handler.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s, err := store.Open(ctx, cfg.Store())
	if err != nil {
		return nil, err
	}

	cache, err := weatherCache(ctx, cfg, s)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	source := weather.NewOpenWeatherMap(cfg.OpenWeather(), nil)
	svc := catalog.New(s, catalog.Options{
		Weather: weather.NewReader(cache, source, cfg.Weather.TTL, logger),
		Logger:  logger,
	})
	handler := api.New(svc, s.Ping, api.Options{
		MaxPageLimit: cfg.PageMaxLimit,
		Logger:       logger,
	})

	logger.Info("app ready",
		"keyPrefix", cfg.KeyPrefix,
		"weatherCache", cfg.Weather.Cache,
		"weatherTTL", cfg.Weather.TTL,
	)
	return &App{Handler: handler, store: s}, nil
}

// Close releases the store connection.
func (a *App) Close() error {
	return a.store.Close()
}

func weatherCache(ctx context.Context, cfg config.Config, s *store.Store) (weather.Cache, error) {
	switch cfg.Weather.Cache {
	case config.CacheDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return weather.NewDynamoCache(dynamodb.NewFromConfig(awsCfg), cfg.Weather.DynamoDBTable), nil
	default:
		return s.Weather(), nil
	}
}
