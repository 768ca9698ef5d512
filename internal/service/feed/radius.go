// internal/service/feed/radius.go

package feed

import (
	"context"

	"geosnap/internal/domain/geo"
	"geosnap/internal/metrics"
)

const (
	// DensityProbeRadius is the radius used to count nearby POIs
	DensityProbeRadius = 50.0

	RadiusDense    = 50.0
	RadiusModerate = 100.0
	RadiusSparse   = 300.0

	denseThreshold    = 10
	moderateThreshold = 2
)

// RadiusForDensity maps a nearby POI count to a search radius
func RadiusForDensity(count int) float64 {
	switch {
	case count > denseThreshold:
		// Dense area - tight radius
		return RadiusDense
	case count > moderateThreshold:
		return RadiusModerate
	default:
		// Sparse area - widen the search
		return RadiusSparse
	}
}

// AdaptiveRadius determines the search radius for a location based on POI density
func (s *Service) AdaptiveRadius(ctx context.Context, location geo.Location) float64 {
	count, err := s.places.CountGlobalPoisWithinRadius(ctx, location, DensityProbeRadius)
	if err != nil {
		// Fall back to the widest radius if we can't probe density
		s.degraded(ctx, "poi_density", err)
		metrics.AdaptiveRadiusMeters.Observe(RadiusSparse)
		return RadiusSparse
	}

	radius := RadiusForDensity(count)
	metrics.AdaptiveRadiusMeters.Observe(radius)
	return radius
}
