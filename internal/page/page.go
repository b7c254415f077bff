// Package page computes offset/limit windows over ordered store structures.
package page

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

const (
	// DefaultPage is used when the caller supplies no page.
	DefaultPage = 1

	// DefaultLimit is used when the caller supplies no limit.
	DefaultLimit = 10

	// DefaultMaxLimit caps the window size when no ceiling is configured.
	DefaultMaxLimit = 100
)

var (
	// ErrInvalidPage is returned when page is not an integer >= 1.
	ErrInvalidPage = errors.New("page must be an integer >= 1")

	// ErrInvalidLimit is returned when limit is not an integer >= 1.
	ErrInvalidLimit = errors.New("limit must be an integer >= 1")
)

// Window is a 1-based page of limit items.
type Window struct {
	Page  int
	Limit int
}

// Default returns the window used when neither page nor limit is given.
func Default() Window {
	return Window{Page: DefaultPage, Limit: DefaultLimit}
}

// New validates page and limit and clamps limit to maxLimit.
// maxLimit < 1 means DefaultMaxLimit.
func New(page, limit, maxLimit int) (Window, error) {
	if page < 1 {
		return Window{}, ErrInvalidPage
	}
	if limit < 1 {
		return Window{}, ErrInvalidLimit
	}
	if maxLimit < 1 {
		maxLimit = DefaultMaxLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return Window{Page: page, Limit: limit}, nil
}

// Parse builds a Window from raw query values. Empty strings take the defaults.
func Parse(pageStr, limitStr string, maxLimit int) (Window, error) {
	p, l := DefaultPage, DefaultLimit

	if pageStr != "" {
		n, err := strconv.Atoi(pageStr)
		if err != nil {
			return Window{}, fmt.Errorf("%w: %q", ErrInvalidPage, pageStr)
		}
		p = n
	}
	if limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil {
			return Window{}, fmt.Errorf("%w: %q", ErrInvalidLimit, limitStr)
		}
		l = n
	}
	return New(p, l, maxLimit)
}

// Bounds returns the inclusive rank range [start, end] of the window.
// A zero Page or Limit takes the default. A window that lies past the largest
// representable rank saturates to (MaxInt64, MaxInt64), which selects nothing.
func (w Window) Bounds() (start, end int64) {
	p, l := int64(w.Page), int64(w.Limit)
	if p < 1 {
		p = DefaultPage
	}
	if l < 1 {
		l = DefaultLimit
	}
	if p-1 > (math.MaxInt64-l)/l {
		return math.MaxInt64, math.MaxInt64
	}
	start = (p - 1) * l
	end = start + l - 1
	return start, end
}
