package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/jacentio/bites/catalog"
	"github.com/jacentio/bites/weather"
)

const (
	minRating = 1
	maxRating = 5

	maxBodyBytes = 1 << 20
)

// FieldIssue describes one invalid input field.
type FieldIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned for malformed request input.
type ValidationError struct {
	Fields []FieldIssue
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "invalid request"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldIssue{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

type restaurantRequest struct {
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Cuisines []string `json:"cuisines"`
}

func (req restaurantRequest) validate() (catalog.NewRestaurant, error) {
	verr := &ValidationError{}
	name := strings.TrimSpace(req.Name)
	location := strings.TrimSpace(req.Location)

	if name == "" {
		verr.add("name", "required")
	}
	if location == "" {
		verr.add("location", "required")
	} else if _, err := weather.ParseLocation(location); err != nil {
		verr.add("location", `must be "lng,lat" with lng in [-180, 180] and lat in [-90, 90]`)
	}
	if len(req.Cuisines) == 0 {
		verr.add("cuisines", "at least one cuisine is required")
	}
	cuisines := make([]string, 0, len(req.Cuisines))
	for i, c := range req.Cuisines {
		c = strings.TrimSpace(c)
		if c == "" {
			verr.add(fmt.Sprintf("cuisines[%d]", i), "must not be empty")
			continue
		}
		cuisines = append(cuisines, c)
	}

	if err := verr.orNil(); err != nil {
		return catalog.NewRestaurant{}, err
	}
	return catalog.NewRestaurant{Name: name, Location: location, Cuisines: cuisines}, nil
}

type reviewRequest struct {
	Rating *float64 `json:"rating"`
	Text   string   `json:"text"`
}

func (req reviewRequest) validate() (catalog.NewReview, error) {
	verr := &ValidationError{}
	switch {
	case req.Rating == nil:
		verr.add("rating", "required")
	case math.IsNaN(*req.Rating) || *req.Rating < minRating || *req.Rating > maxRating:
		verr.add("rating", fmt.Sprintf("must be between %d and %d", minRating, maxRating))
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		verr.add("text", "required")
	}

	if err := verr.orNil(); err != nil {
		return catalog.NewReview{}, err
	}
	return catalog.NewReview{Rating: *req.Rating, Text: text}, nil
}

// decodeBody reads one JSON object from the request body into dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		verr := &ValidationError{}
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			verr.add("body", "required")
		case errors.As(err, &maxErr):
			verr.add("body", fmt.Sprintf("exceeds %d bytes", maxErr.Limit))
		default:
			verr.add("body", "malformed JSON")
		}
		return verr
	}
	return nil
}
