package store

import (
	"fmt"
	"strconv"
)

// Restaurant field map names.
const (
	FieldID         = "id"
	FieldName       = "name"
	FieldLocation   = "location"
	FieldViewCount  = "viewCount"
	FieldTotalStars = "totalStars"
	FieldAvgStars   = "avgStars"
)

// Review field map names.
const (
	FieldRestaurantID = "restaurantId"
	FieldRating       = "rating"
	FieldText         = "text"
	FieldTimestamp    = "timestamp"
)

// Restaurant is the decoded field map of a restaurant.
type Restaurant struct {
	ID         string
	Name       string
	Location   string
	ViewCount  int64
	TotalStars float64
	AvgStars   float64
}

// Fields returns the fields written when the restaurant is created.
// Counters and aggregates are owned by their increment operations.
func (r Restaurant) Fields() map[string]any {
	return map[string]any{
		FieldID:       r.ID,
		FieldName:     r.Name,
		FieldLocation: r.Location,
	}
}

// Review is the decoded field map of a review.
type Review struct {
	ID           string
	RestaurantID string
	Rating       float64

	// Text is the free-form body of the review.
	Text string

	// Timestamp is the creation instant in Unix milliseconds.
	Timestamp int64
}

// Fields returns the complete field map of the review.
func (r Review) Fields() map[string]any {
	return map[string]any{
		FieldID:           r.ID,
		FieldRestaurantID: r.RestaurantID,
		FieldRating:       formatFloat(r.Rating),
		FieldText:         r.Text,
		FieldTimestamp:    strconv.FormatInt(r.Timestamp, 10),
	}
}

// decodeRestaurant converts a field map into a Restaurant.
// Missing counters decode as zero.
func decodeRestaurant(raw map[string]string) (Restaurant, error) {
	r := Restaurant{
		ID:       raw[FieldID],
		Name:     raw[FieldName],
		Location: raw[FieldLocation],
	}

	var err error
	if r.ViewCount, err = parseInt(raw, FieldViewCount); err != nil {
		return Restaurant{}, err
	}
	if r.TotalStars, err = parseFloat(raw, FieldTotalStars); err != nil {
		return Restaurant{}, err
	}
	if r.AvgStars, err = parseFloat(raw, FieldAvgStars); err != nil {
		return Restaurant{}, err
	}
	return r, nil
}

// decodeReview converts a field map into a Review.
func decodeReview(raw map[string]string) (Review, error) {
	r := Review{
		ID:           raw[FieldID],
		RestaurantID: raw[FieldRestaurantID],
		Text:         raw[FieldText],
	}

	var err error
	if r.Rating, err = parseFloat(raw, FieldRating); err != nil {
		return Review{}, err
	}
	if r.Timestamp, err = parseInt(raw, FieldTimestamp); err != nil {
		return Review{}, err
	}
	return r, nil
}

func parseInt(raw map[string]string, field string) (int64, error) {
	v, ok := raw[field]
	if !ok || v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidField, field, v)
	}
	return n, nil
}

func parseFloat(raw map[string]string, field string) (float64, error) {
	v, ok := raw[field]
	if !ok || v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidField, field, v)
	}
	return f, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
