// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/jacentio/bites/store"
	"github.com/jacentio/bites/weather"
)

// Weather cache backends.
const (
	CacheRedis    = "redis"
	CacheDynamoDB = "dynamodb"
)

// Config is the full process configuration.
type Config struct {
	HTTPAddr        string        `env:"BITES_HTTP_ADDR" envDefault:":3000"`
	RedisURL        string        `env:"BITES_REDIS_URL" envDefault:"redis://localhost:6379/0"`
	KeyPrefix       string        `env:"BITES_KEY_PREFIX" envDefault:"bites"`
	PageMaxLimit    int           `env:"BITES_PAGE_MAX_LIMIT" envDefault:"100"`
	LogLevel        string        `env:"BITES_LOG_LEVEL" envDefault:"info"`
	ShutdownTimeout time.Duration `env:"BITES_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	Weather Weather
}

// Weather configures the weather source and its cache.
type Weather struct {
	APIKey        string        `env:"WEATHER_API_KEY"`
	BaseURL       string        `env:"WEATHER_BASE_URL" envDefault:"https://api.openweathermap.org/data/2.5/weather"`
	Timeout       time.Duration `env:"WEATHER_TIMEOUT" envDefault:"10s"`
	TTL           time.Duration `env:"WEATHER_TTL" envDefault:"1h"`
	Cache         string        `env:"WEATHER_CACHE" envDefault:"redis"`
	DynamoDBTable string        `env:"WEATHER_DYNAMODB_TABLE" envDefault:"bites_weather"`
}

// ParseEnv loads configuration from environment variables.
func ParseEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.check(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) check() error {
	switch c.Weather.Cache {
	case CacheRedis, CacheDynamoDB:
	default:
		return fmt.Errorf("config: WEATHER_CACHE must be %q or %q, got %q", CacheRedis, CacheDynamoDB, c.Weather.Cache)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Store returns the store configuration.
func (c Config) Store() store.Config {
	cfg := store.DefaultConfig()
	cfg.URL = c.RedisURL
	cfg.KeyPrefix = c.KeyPrefix
	return cfg
}

// OpenWeather returns the weather source configuration.
func (c Config) OpenWeather() weather.Config {
	cfg := weather.DefaultConfig()
	cfg.APIKey = c.Weather.APIKey
	cfg.BaseURL = c.Weather.BaseURL
	cfg.Timeout = c.Weather.Timeout
	return cfg
}

// Level returns the slog level named by LogLevel.
func (c Config) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: BITES_LOG_LEVEL: %w", err)
	}
	return level, nil
}
