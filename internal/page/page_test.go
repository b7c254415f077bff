package page

import (
	"errors"
	"math"
	"testing"
)

func TestBounds(t *testing.T) {
	tests := []struct {
		page, limit int
		start, end  int64
	}{
		{1, 10, 0, 9},
		{2, 10, 10, 19},
		{3, 10, 20, 29},
		{1, 1, 0, 0},
		{5, 3, 12, 14},
		{0, 0, 0, 9},
		{math.MaxInt64, 10, math.MaxInt64, math.MaxInt64},
		{math.MaxInt64, 100, math.MaxInt64, math.MaxInt64},
		{math.MaxInt64/10 + 1, 10, math.MaxInt64, math.MaxInt64},
		{math.MaxInt64 / 10, 10, math.MaxInt64/10*10 - 10, math.MaxInt64/10*10 - 1},
	}

	for _, tt := range tests {
		w := Window{Page: tt.page, Limit: tt.limit}
		start, end := w.Bounds()
		if start != tt.start || end != tt.end {
			t.Errorf("Window{%d, %d}.Bounds() = (%d, %d), want (%d, %d)",
				tt.page, tt.limit, start, end, tt.start, tt.end)
		}
	}
}

func TestDefault(t *testing.T) {
	w := Default()
	if w.Page != 1 || w.Limit != 10 {
		t.Errorf("expected {1 10}, got %+v", w)
	}
}

func TestNew_ClampsLimit(t *testing.T) {
	w, err := New(1, 5000, 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Limit != 100 {
		t.Errorf("expected limit clamped to 100, got %d", w.Limit)
	}

	w, err = New(1, 5000, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Limit != DefaultMaxLimit {
		t.Errorf("expected limit clamped to %d, got %d", DefaultMaxLimit, w.Limit)
	}
}

func TestNew_Rejects(t *testing.T) {
	if _, err := New(0, 10, 100); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("expected ErrInvalidPage, got %v", err)
	}
	if _, err := New(1, 0, 100); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	if _, err := New(-3, -3, 100); !errors.Is(err, ErrInvalidPage) {
		t.Errorf("expected ErrInvalidPage first, got %v", err)
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		page      string
		limit     string
		expected  Window
		expectErr error
	}{
		{"defaults", "", "", Window{1, 10}, nil},
		{"page only", "3", "", Window{3, 10}, nil},
		{"limit only", "", "25", Window{1, 25}, nil},
		{"both", "2", "5", Window{2, 5}, nil},
		{"clamped", "1", "1000", Window{1, 100}, nil},
		{"bad page", "abc", "", Window{}, ErrInvalidPage},
		{"bad limit", "", "1.5", Window{}, ErrInvalidLimit},
		{"zero page", "0", "", Window{}, ErrInvalidPage},
		{"negative limit", "", "-1", Window{}, ErrInvalidLimit},
		{"huge page", "9223372036854775807", "10", Window{math.MaxInt64, 10}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := Parse(tt.page, tt.limit, 100)
			if tt.expectErr != nil {
				if !errors.Is(err, tt.expectErr) {
					t.Errorf("expected %v, got %v", tt.expectErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if w != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, w)
			}
		})
	}
}
