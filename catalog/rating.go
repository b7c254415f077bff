package catalog

import "math"

// Average returns sum/count rounded to one decimal, or 0 when there are no reviews.
// Halves round away from zero. This is the rounding the store applies when it
// recomputes a restaurant's average.
func Average(sum float64, count int64) float64 {
	if count <= 0 {
		return 0
	}
	return math.Round(sum/float64(count)*10) / 10
}
