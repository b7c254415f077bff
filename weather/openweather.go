package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// maxPayload bounds the size of an accepted weather answer.
const maxPayload = 1 << 20

// Config holds configuration for the OpenWeatherMap source.
type Config struct {
	// BaseURL is the current-weather endpoint.
	// Default: "https://api.openweathermap.org/data/2.5/weather"
	BaseURL string

	// APIKey is sent as the appid query parameter.
	APIKey string

	// Units is passed through as the units query parameter.
	// Default: "imperial"
	Units string

	// Timeout bounds a single fetch.
	// Default: 10s
	Timeout time.Duration
}

// DefaultConfig returns the public OpenWeatherMap endpoint without an API key.
func DefaultConfig() Config {
	return Config{
		BaseURL: "https://api.openweathermap.org/data/2.5/weather",
		Units:   "imperial",
		Timeout: 10 * time.Second,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openweathermap.org/data/2.5/weather"
	}
	if c.Units == "" {
		c.Units = "imperial"
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
}

// OpenWeatherMap fetches current weather over HTTP.
type OpenWeatherMap struct {
	config Config
	client *http.Client
}

// NewOpenWeatherMap creates a source. A nil client gets one with config.Timeout.
func NewOpenWeatherMap(config Config, client *http.Client) *OpenWeatherMap {
	config.validate()
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	return &OpenWeatherMap{
		config: config,
		client: client,
	}
}

// Fetch returns the raw JSON body of a 200 answer.
func (o *OpenWeatherMap) Fetch(ctx context.Context, at Coordinates) ([]byte, error) {
	u, err := url.Parse(o.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %w", ErrUpstream, err)
	}
	q := u.Query()
	q.Set("units", o.config.Units)
	q.Set("lat", strconv.FormatFloat(at.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(at.Lng, 'f', -1, 64))
	q.Set("appid", o.config.APIKey)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxPayload))
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUpstream, err)
	}
	if len(body) > maxPayload {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrUpstream, maxPayload)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: body is not JSON", ErrUpstream)
	}
	return body, nil
}
