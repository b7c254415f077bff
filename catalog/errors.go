package catalog

import (
	"errors"

	"github.com/jacentio/bites/store"
	"github.com/jacentio/bites/weather"
)

var (
	// ErrNotFound is returned when a referenced restaurant or review does not exist.
	ErrNotFound = errors.New("bites: not found")

	// ErrUpstream is returned when the external weather source failed.
	ErrUpstream = weather.ErrUpstream

	// ErrStore is returned when a store operation failed. It is never retried.
	ErrStore = store.ErrFailure
)
