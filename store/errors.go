package store

import (
	"errors"
	"fmt"
)

var (
	// ErrFailure is wrapped around every error returned by the backing store.
	ErrFailure = errors.New("bites: store operation failed")

	// ErrInvalidField is returned when a stored field cannot be decoded.
	ErrInvalidField = errors.New("bites: invalid stored field")
)

// wrap tags a Redis error with the failed command and key.
func wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s %s: %w", ErrFailure, op, key, err)
}
