package store

import (
	"errors"
	"testing"
)

// --- decodeRestaurant Tests ---

func TestDecodeRestaurant_Full(t *testing.T) {
	raw := map[string]string{
		FieldID:         "r1",
		FieldName:       "Pasta Place",
		FieldLocation:   "-73.9,40.7",
		FieldViewCount:  "7",
		FieldTotalStars: "9",
		FieldAvgStars:   "4.5",
	}

	r, err := decodeRestaurant(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expected := Restaurant{ID: "r1", Name: "Pasta Place", Location: "-73.9,40.7", ViewCount: 7, TotalStars: 9, AvgStars: 4.5}
	if r != expected {
		t.Errorf("expected %+v, got %+v", expected, r)
	}
}

func TestDecodeRestaurant_MissingCounters(t *testing.T) {
	r, err := decodeRestaurant(map[string]string{FieldID: "r1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.ViewCount != 0 || r.TotalStars != 0 || r.AvgStars != 0 {
		t.Errorf("expected zero counters, got %+v", r)
	}
}

func TestDecodeRestaurant_InvalidCounter(t *testing.T) {
	_, err := decodeRestaurant(map[string]string{FieldID: "r1", FieldViewCount: "many"})
	if !errors.Is(err, ErrInvalidField) {
		t.Errorf("expected ErrInvalidField, got %v", err)
	}
}

// --- decodeReview Tests ---

func TestDecodeReview_RoundTrip(t *testing.T) {
	review := Review{ID: "v1", RestaurantID: "r1", Rating: 4.5, Text: "great", Timestamp: 1700000000000}

	raw := make(map[string]string)
	for k, v := range review.Fields() {
		raw[k] = v.(string)
	}

	decoded, err := decodeReview(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded != review {
		t.Errorf("expected %+v, got %+v", review, decoded)
	}
}

func TestDecodeReview_InvalidRating(t *testing.T) {
	_, err := decodeReview(map[string]string{FieldID: "v1", FieldRating: "five"})
	if !errors.Is(err, ErrInvalidField) {
		t.Errorf("expected ErrInvalidField, got %v", err)
	}
}

// --- Restaurant.Fields Tests ---

func TestRestaurantFields_OnlyCreationFields(t *testing.T) {
	fields := Restaurant{ID: "r1", Name: "n", Location: "1,2", ViewCount: 3, AvgStars: 4}.Fields()
	if len(fields) != 3 {
		t.Errorf("expected 3 fields, got %d: %v", len(fields), fields)
	}
	for _, f := range []string{FieldViewCount, FieldTotalStars, FieldAvgStars} {
		if _, ok := fields[f]; ok {
			t.Errorf("expected %q to be left to its increment operation", f)
		}
	}
}

// --- formatFloat Tests ---

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in       float64
		expected string
	}{
		{0, "0"},
		{4, "4"},
		{4.5, "4.5"},
		{3.3, "3.3"},
		{-1.25, "-1.25"},
	}

	for _, tt := range tests {
		if result := formatFloat(tt.in); result != tt.expected {
			t.Errorf("formatFloat(%v) = %q, want %q", tt.in, result, tt.expected)
		}
	}
}

// --- wrap Tests ---

func TestWrap_Nil(t *testing.T) {
	if err := wrap("get", "k", nil); err != nil {
		t.Errorf("expected nil, got %v", err)
	}
}

func TestWrap_KeepsBothErrors(t *testing.T) {
	cause := errors.New("connection refused")
	err := wrap("hset", "bites:restaurants:r1", cause)

	if !errors.Is(err, ErrFailure) {
		t.Errorf("expected ErrFailure in chain, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause in chain, got %v", err)
	}
	expected := "bites: store operation failed: hset bites:restaurants:r1: connection refused"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

// --- Config Tests ---

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name     string
		in       Config
		expected Config
	}{
		{"empty", Config{}, DefaultConfig()},
		{"kept", Config{URL: "redis://x:1/0", KeyPrefix: "p"}, Config{URL: "redis://x:1/0", KeyPrefix: "p"}},
		{"prefix only", Config{KeyPrefix: "p"}, Config{URL: "redis://localhost:6379/0", KeyPrefix: "p"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.in
			cfg.validate()
			if cfg != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, cfg)
			}
		})
	}
}
