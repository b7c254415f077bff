package weather

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidLocation is returned when a location is not a "lng,lat" pair.
var ErrInvalidLocation = errors.New("bites: location must be \"lng,lat\"")

// Coordinates is a point in decimal degrees.
type Coordinates struct {
	Lng float64
	Lat float64
}

// String formats the point the way it is stored: "lng,lat".
func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Lng, 'f', -1, 64) + "," + strconv.FormatFloat(c.Lat, 'f', -1, 64)
}

// ParseLocation parses a "lng,lat" string and checks both values are in range.
func ParseLocation(s string) (Coordinates, error) {
	lngStr, latStr, ok := strings.Cut(s, ",")
	if !ok {
		return Coordinates{}, fmt.Errorf("%w: %q", ErrInvalidLocation, s)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: longitude %q", ErrInvalidLocation, lngStr)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: latitude %q", ErrInvalidLocation, latStr)
	}
	if math.IsNaN(lng) || math.IsNaN(lat) {
		return Coordinates{}, fmt.Errorf("%w: %q is not a number", ErrInvalidLocation, s)
	}
	if lng < -180 || lng > 180 {
		return Coordinates{}, fmt.Errorf("%w: longitude %v out of range", ErrInvalidLocation, lng)
	}
	if lat < -90 || lat > 90 {
		return Coordinates{}, fmt.Errorf("%w: latitude %v out of range", ErrInvalidLocation, lat)
	}
	return Coordinates{Lng: lng, Lat: lat}, nil
}
