package catalog

import "github.com/jacentio/bites/store"

// Restaurant is the public view of a restaurant.
type Restaurant struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Location  string   `json:"location"`
	ViewCount int64    `json:"viewCount"`
	AvgStars  float64  `json:"avgStars"`
	Cuisines  []string `json:"cuisines"`
}

// Review is the public view of a review.
type Review struct {
	ID           string  `json:"id"`
	RestaurantID string  `json:"restaurantId"`
	Rating       float64 `json:"rating"`
	Text         string  `json:"text"`

	// Timestamp is the creation instant in Unix milliseconds.
	Timestamp int64 `json:"timestamp"`
}

// NewRestaurant is the input of CreateRestaurant. It is validated by the caller.
type NewRestaurant struct {
	Name     string
	Location string
	Cuisines []string
}

// NewReview is the input of AddReview. It is validated by the caller.
type NewReview struct {
	Rating float64
	Text   string
}

func restaurantView(r store.Restaurant, cuisines []string) Restaurant {
	if cuisines == nil {
		cuisines = []string{}
	}
	return Restaurant{
		ID:        r.ID,
		Name:      r.Name,
		Location:  r.Location,
		ViewCount: r.ViewCount,
		AvgStars:  r.AvgStars,
		Cuisines:  cuisines,
	}
}

func reviewView(r store.Review) Review {
	return Review{
		ID:           r.ID,
		RestaurantID: r.RestaurantID,
		Rating:       r.Rating,
		Text:         r.Text,
		Timestamp:    r.Timestamp,
	}
}
