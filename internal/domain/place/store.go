// internal/domain/place/store.go

package place

import (
	"context"
	"errors"

	"geosnap/internal/domain/geo"
)

// ErrMissingExternalID is returned when a POI is upserted without an external id
var ErrMissingExternalID = errors.New("external id is required")

// Store defines the geospatial place store contract
type Store interface {
	// FindGlobalPoisWithinRadius returns POIs within radiusMeters of center (inclusive)
	FindGlobalPoisWithinRadius(ctx context.Context, center geo.Location, radiusMeters float64) ([]GlobalPoi, error)

	// FindEphemeralSpotsByIndividualRadius returns spots whose own capture radius covers center
	FindEphemeralSpotsByIndividualRadius(ctx context.Context, center geo.Location) ([]EphemeralSpot, error)

	// CountGlobalPoisWithinRadius counts POIs within radiusMeters of center; used as a density probe
	CountGlobalPoisWithinRadius(ctx context.Context, center geo.Location, radiusMeters float64) (int, error)

	// UpsertGlobalPoi creates or refreshes a POI keyed on its external id
	UpsertGlobalPoi(ctx context.Context, poi GlobalPoi) (GlobalPoi, error)
}
