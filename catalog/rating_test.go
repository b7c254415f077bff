package catalog

import "testing"

func TestAverage(t *testing.T) {
	tests := []struct {
		sum      float64
		count    int64
		expected float64
	}{
		{0, 0, 0},
		{5, 0, 0},
		{9, 2, 4.5},
		{10, 3, 3.3},
		{11, 3, 3.7},
		{5, 1, 5},
		{7, 2, 3.5},
		{1.25, 1, 1.3},
		{14, 4, 3.5},
		{-3, -1, 0},
	}

	for _, tt := range tests {
		if result := Average(tt.sum, tt.count); result != tt.expected {
			t.Errorf("Average(%v, %d) = %v, want %v", tt.sum, tt.count, result, tt.expected)
		}
	}
}
