// Package weather serves restaurant weather through a read-through cache in front of
// an external weather source.
//
// A snapshot is either cached, in which case it is returned byte for byte, or absent,
// in which case it is fetched, stored with a TTL and returned. Snapshots are never
// modified in place; they are replaced wholesale or left to expire.
package weather

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var (
	// ErrUpstream is returned when the weather source did not answer with success.
	// The cache is left untouched.
	ErrUpstream = errors.New("bites: weather source failed")

	// ErrNoLocation is returned when the restaurant has no usable location.
	ErrNoLocation = errors.New("bites: restaurant has no location")
)

// DefaultTTL is how long a snapshot stays cached.
const DefaultTTL = time.Hour

// Cache stores raw snapshots keyed by restaurant id.
// An expired snapshot must be reported as not found.
type Cache interface {
	Get(ctx context.Context, restaurantID string) (payload []byte, found bool, err error)
	Set(ctx context.Context, restaurantID string, payload []byte, ttl time.Duration) error
}

// Source fetches the current weather for a point. It returns an error wrapping
// ErrUpstream for any non-success answer.
type Source interface {
	Fetch(ctx context.Context, at Coordinates) ([]byte, error)
}

// LocationFunc resolves the stored "lng,lat" location of the restaurant being looked up.
type LocationFunc func(ctx context.Context) (location string, found bool, err error)

// Reader is the read-through cache.
type Reader struct {
	cache  Cache
	source Source
	ttl    time.Duration
	logger *slog.Logger
}

// NewReader creates a Reader. ttl <= 0 means DefaultTTL.
func NewReader(cache Cache, source Source, ttl time.Duration, logger *slog.Logger) *Reader {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reader{
		cache:  cache,
		source: source,
		ttl:    ttl,
		logger: logger,
	}
}

// Lookup returns the cached snapshot, or fetches, caches and returns a fresh one.
// A failed fetch is reported as is and nothing is cached; there is no retry.
func (r *Reader) Lookup(ctx context.Context, restaurantID string, locate LocationFunc) ([]byte, error) {
	payload, found, err := r.cache.Get(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if found {
		r.logger.Debug("weather cache hit", "restaurantID", restaurantID)
		return payload, nil
	}

	location, found, err := locate(ctx)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoLocation
	}
	at, err := ParseLocation(location)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoLocation, err)
	}

	payload, err = r.source.Fetch(ctx, at)
	if err != nil {
		r.logger.Warn("weather fetch failed",
			"restaurantID", restaurantID,
			"error", err,
		)
		return nil, err
	}

	if err := r.cache.Set(ctx, restaurantID, payload, r.ttl); err != nil {
		return nil, err
	}
	r.logger.Info("weather cached",
		"restaurantID", restaurantID,
		"ttl", r.ttl,
	)
	return payload, nil
}
