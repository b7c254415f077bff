package store

import "github.com/jacentio/bites/internal/keys"

// Config holds configuration for the Store.
type Config struct {
	// URL is the Redis connection URL used by Open.
	// Default: "redis://localhost:6379/0"
	URL string

	// KeyPrefix is the namespace prepended to every key.
	// Default: "bites"
	KeyPrefix string
}

// DefaultConfig returns sensible defaults for a local Redis.
func DefaultConfig() Config {
	return Config{
		URL:       "redis://localhost:6379/0",
		KeyPrefix: keys.DefaultPrefix,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.URL == "" {
		c.URL = "redis://localhost:6379/0"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = keys.DefaultPrefix
	}
}
