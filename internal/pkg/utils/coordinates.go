package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/FACorreiaa/roamly/internal/app/models"
)

// ValidateCoordinates checks if latitude and longitude are valid.
// Latitude must be between -90 and 90, longitude between -180 and 180.
func ValidateCoordinates(lat, lng float64) bool {
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ParseLL parses the "longitude,latitude" query form used across the public
// API into a GeoPoint.
func ParseLL(ll string) (models.GeoPoint, error) {
	parts := strings.Split(strings.TrimSpace(ll), ",")
	if len(parts) != 2 {
		return models.GeoPoint{}, fmt.Errorf("ll must be \"longitude,latitude\": %w", models.ErrValidation)
	}

	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("invalid longitude %q: %w", parts[0], models.ErrValidation)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return models.GeoPoint{}, fmt.Errorf("invalid latitude %q: %w", parts[1], models.ErrValidation)
	}

	if !ValidateCoordinates(lat, lon) {
		return models.GeoPoint{}, fmt.Errorf("coordinates out of range: %w", models.ErrValidation)
	}

	return models.NewGeoPoint(lon, lat), nil
}
