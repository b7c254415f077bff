// Package keys builds the Redis key names for every structure the store touches.
package keys

import "strings"

// Structure kinds. Each kind names one family of physical structures.
const (
	KindRestaurant         = "restaurants"
	KindRestaurantCuisines = "restaurant_cuisines"
	KindCuisine            = "cuisine"
	KindCuisines           = "cuisines"
	KindRestaurantsRating  = "restaurants_by_rating"
	KindReviews            = "reviews"
	KindReviewDetails      = "review_details"
	KindWeather            = "weather"
)

// DefaultPrefix is the namespace shared by every key of the system.
const DefaultPrefix = "bites"

const sep = ":"

var escaper = strings.NewReplacer(`\`, `\\`, sep, `\`+sep)

// Space is a key namespace. The zero value uses DefaultPrefix.
type Space string

// Key joins kind and parts under the namespace, colon-delimited.
// Separators inside kind or parts are escaped, so distinct inputs never collide.
func (s Space) Key(kind string, parts ...string) string {
	prefix := string(s)
	if prefix == "" {
		prefix = DefaultPrefix
	}

	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(sep)
	b.WriteString(escaper.Replace(kind))
	for _, p := range parts {
		b.WriteString(sep)
		b.WriteString(escaper.Replace(p))
	}
	return b.String()
}

// Restaurant is the field map of one restaurant.
func (s Space) Restaurant(id string) string { return s.Key(KindRestaurant, id) }

// RestaurantCuisines is the set of cuisine names a restaurant belongs to.
func (s Space) RestaurantCuisines(id string) string { return s.Key(KindRestaurantCuisines, id) }

// Cuisine is the set of restaurant ids serving the named cuisine.
func (s Space) Cuisine(name string) string { return s.Key(KindCuisine, name) }

// Cuisines is the global set of known cuisine names.
func (s Space) Cuisines() string { return s.Key(KindCuisines) }

// RestaurantsByRating is the sorted set ranking restaurants by average stars.
func (s Space) RestaurantsByRating() string { return s.Key(KindRestaurantsRating) }

// Reviews is the list of review ids of one restaurant, most recent first.
func (s Space) Reviews(restaurantID string) string { return s.Key(KindReviews, restaurantID) }

// ReviewDetails is the field map of one review.
func (s Space) ReviewDetails(reviewID string) string { return s.Key(KindReviewDetails, reviewID) }

// Weather is the cached weather payload of one restaurant.
func (s Space) Weather(restaurantID string) string { return s.Key(KindWeather, restaurantID) }
