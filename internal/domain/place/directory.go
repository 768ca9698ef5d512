// internal/domain/place/directory.go

package place

import (
	"context"

	"geosnap/internal/domain/geo"
)

// RawPoiRecord is a point of interest as returned by the external directory
type RawPoiRecord struct {
	ExternalID string       `json:"externalId"`
	Name       string       `json:"name"`
	Address    string       `json:"address"`
	Location   geo.Location `json:"location"`
	Tags       []string     `json:"tags"`
}

// Directory looks up points of interest near a location
type Directory interface {
	LookupNearby(ctx context.Context, center geo.Location, radiusMeters float64) ([]RawPoiRecord, error)
}
