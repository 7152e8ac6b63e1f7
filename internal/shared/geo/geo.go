package geo

import (
	"errors"
	"math"
)

const earthRadiusKm = 6371.0

// ErrInvalidCoordinate is returned when a latitude or longitude is outside
// the valid WGS84 range.
var ErrInvalidCoordinate = errors.New("coordinate out of range")

// HaversineKm returns the great-circle distance in kilometers between two
// lat/lng pairs expressed in degrees.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// DistanceMeters validates both coordinates and returns the great-circle
// distance between them in meters.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) (float64, error) {
	if !validLat(lat1) || !validLat(lat2) || !validLng(lng1) || !validLng(lng2) {
		return 0, ErrInvalidCoordinate
	}
	return HaversineKm(lat1, lng1, lat2, lng2) * 1000, nil
}

func validLat(lat float64) bool { return lat >= -90 && lat <= 90 }

func validLng(lng float64) bool { return lng >= -180 && lng <= 180 }

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
