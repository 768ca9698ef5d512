// internal/domain/geo/location.go

package geo

import (
	"fmt"
	"math"
)

// EarthRadiusMeters is the mean WGS-84 earth radius used for great-circle distances
const EarthRadiusMeters = 6371008.8

// Location represents a WGS-84 geographic point
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks that the coordinates are within WGS-84 bounds
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range", l.Latitude)
	}
	if math.IsNaN(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range", l.Longitude)
	}
	return nil
}

// DistanceMeters calculates the great-circle distance between two locations
func DistanceMeters(a, b Location) float64 {
	// Haversine formula
	lat1 := a.Latitude * math.Pi / 180.0
	lon1 := a.Longitude * math.Pi / 180.0
	lat2 := b.Latitude * math.Pi / 180.0
	lon2 := b.Longitude * math.Pi / 180.0

	hSin := math.Sin((lat2 - lat1) / 2)
	hSin *= hSin

	vSin := math.Sin((lon2 - lon1) / 2)
	vSin *= vSin

	h := hSin + math.Cos(lat1)*math.Cos(lat2)*vSin
	if h > 1 {
		h = 1
	}

	return 2 * EarthRadiusMeters * math.Asin(math.Sqrt(h))
}

// Within reports whether point lies within radiusMeters of center (inclusive)
func Within(center, point Location, radiusMeters float64) bool {
	return DistanceMeters(center, point) <= radiusMeters
}

// Offset returns the location reached by moving north and east by the given meters.
// Accurate enough for the sub-kilometre offsets used in fixtures and probes.
func Offset(l Location, northMeters, eastMeters float64) Location {
	dLat := northMeters / EarthRadiusMeters * 180 / math.Pi
	dLon := eastMeters / (EarthRadiusMeters * math.Cos(l.Latitude*math.Pi/180)) * 180 / math.Pi
	return Location{Latitude: l.Latitude + dLat, Longitude: l.Longitude + dLon}
}
