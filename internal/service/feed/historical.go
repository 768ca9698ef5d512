// internal/service/feed/historical.go

package feed

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"geosnap/internal/domain/feed"
	"geosnap/internal/domain/photo"
	"geosnap/internal/domain/place"
	"geosnap/internal/logging"
)

// Historical builds the feed of places visited along a trail that received
// public photos during the look-back window before each visit.
func (s *Service) Historical(ctx context.Context, trail []feed.HistoricalPoint) ([]feed.Item, error) {
	start := time.Now()

	if len(trail) == 0 {
		observe("historical", start, 0)
		return []feed.Item{}, nil
	}
	if err := s.validateTrail(trail); err != nil {
		return nil, err
	}

	radius := s.AdaptiveRadius(ctx, trail[len(trail)-1].Location)

	var (
		mu      sync.Mutex
		matches []feed.Match
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.HistoricalConcurrency)

	for _, point := range trail {
		point := point
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			found := s.matchPoint(gctx, point, radius)
			if len(found) == 0 {
				return nil
			}

			mu.Lock()
			matches = append(matches, found...)
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	items := Aggregate(matches, OrderByEarliestMatch)
	s.signCovers(ctx, items)

	logging.Ctx(ctx).Debug().
		Int("points", len(trail)).
		Float64("radius", radius).
		Int("items", len(items)).
		Msg("historical feed built")

	observe("historical", start, len(items))
	return items, nil
}

func (s *Service) validateTrail(trail []feed.HistoricalPoint) error {
	if len(trail) > s.config.MaxTrailPoints {
		return fmt.Errorf("%w: %d points exceeds limit of %d", feed.ErrInvalidTrail, len(trail), s.config.MaxTrailPoints)
	}

	for i, point := range trail {
		if err := point.Location.Validate(); err != nil {
			return fmt.Errorf("%w: point %d: %v", feed.ErrInvalidTrail, i, err)
		}
		if point.Timestamp.IsZero() {
			return fmt.Errorf("%w: point %d: missing timestamp", feed.ErrInvalidTrail, i)
		}
	}
	return nil
}

// matchPoint finds the photos taken at places near one trail point during
// the look-back window ending at the point's timestamp.
func (s *Service) matchPoint(ctx context.Context, point feed.HistoricalPoint, radius float64) []feed.Match {
	pois := s.findPois(ctx, point.Location, radius)

	var spots []place.EphemeralSpot
	for _, spot := range s.findSpots(ctx, point.Location) {
		// The spot must still have existed at the time of the visit
		if spot.ExpiresAt.After(point.Timestamp) {
			spots = append(spots, spot)
		}
	}

	idx := newPlaceIndex(pois, spots)
	if len(idx.refs) == 0 {
		return nil
	}

	windowStart := point.Timestamp.Add(-s.config.LookBack)
	photos, err := s.photos.FindNearTimeWindow(ctx, idx.refs, windowStart, point.Timestamp, photo.Public)
	if err != nil {
		s.degraded(ctx, "window_photos", err)
		return nil
	}

	return idx.matches(photos, point.Timestamp)
}
