// internal/service/feed/discovery.go

package feed

import (
	"context"
	"fmt"
	"time"

	"geosnap/internal/domain/feed"
	"geosnap/internal/domain/geo"
	"geosnap/internal/domain/photo"
	"geosnap/internal/domain/place"
	"geosnap/internal/logging"
)

// Discover builds the feed of live places around a location that currently
// have unexpired public photos, newest first.
func (s *Service) Discover(ctx context.Context, location geo.Location) ([]feed.Item, error) {
	start := time.Now()

	if err := location.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", feed.ErrInvalidLocation, err)
	}

	if s.config.RefreshPoisOnDiscovery && s.refresher != nil {
		if _, err := s.refresher.Refresh(ctx, location, s.config.DiscoveryRadius); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("poi refresh failed")
		}
	}

	now := s.now()

	pois := s.findPois(ctx, location, s.config.DiscoveryRadius)

	var live []place.EphemeralSpot
	for _, spot := range s.findSpots(ctx, location) {
		if spot.LiveAt(now) {
			live = append(live, spot)
		}
	}

	idx := newPlaceIndex(pois, live)
	if len(idx.refs) == 0 {
		observe("discover", start, 0)
		return []feed.Item{}, nil
	}

	photos, err := s.photos.FindLive(ctx, idx.refs, photo.Public, now)
	if err != nil {
		s.degraded(ctx, "live_photos", err)
		photos = nil
	}

	items := Aggregate(idx.matches(photos, now), OrderByNewestPhoto)
	s.signCovers(ctx, items)

	logging.Ctx(ctx).Debug().
		Int("pois", len(pois)).
		Int("spots", len(live)).
		Int("items", len(items)).
		Msg("discovery feed built")

	observe("discover", start, len(items))
	return items, nil
}
