// internal/service/feed/service.go

package feed

import (
	"context"
	"time"

	"geosnap/internal/domain/feed"
	"geosnap/internal/domain/geo"
	"geosnap/internal/domain/photo"
	"geosnap/internal/domain/place"
	"geosnap/internal/logging"
	"geosnap/internal/metrics"
	"geosnap/internal/service/classifier"
)

// Signer produces short-lived URLs for stored objects
type Signer interface {
	Sign(ctx context.Context, objectRef, bucket string, ttl time.Duration) (string, error)
}

// Refresher pulls fresh POIs for an area into the place store
type Refresher interface {
	Refresh(ctx context.Context, center geo.Location, radiusMeters float64) (classifier.IngestResult, error)
}

// Config holds feed engine settings
type Config struct {
	DiscoveryRadius        float64
	LookBack               time.Duration
	HistoricalConcurrency  int
	MaxTrailPoints         int
	FriendsWindow          time.Duration
	RefreshPoisOnDiscovery bool
	SigningBucket          string
	SigningTTL             time.Duration

	// Clock overrides time.Now, mainly for tests
	Clock func() time.Time
}

// DefaultConfig returns the default feed settings
func DefaultConfig() Config {
	return Config{
		DiscoveryRadius:       500,
		LookBack:              5 * time.Hour,
		HistoricalConcurrency: 8,
		MaxTrailPoints:        2000,
		FriendsWindow:         7 * 24 * time.Hour,
		SigningBucket:         "photos",
		SigningTTL:            15 * time.Minute,
	}
}

// Service builds discovery, historical and friends feeds
type Service struct {
	config    Config
	places    place.Store
	photos    photo.Store
	signer    Signer
	refresher Refresher
	now       func() time.Time
}

var _ feed.Service = (*Service)(nil)

// NewService creates a new feed service. signer and refresher may be nil.
func NewService(
	places place.Store,
	photos photo.Store,
	signer Signer,
	refresher Refresher,
	config Config,
) *Service {
	defaults := DefaultConfig()
	if config.DiscoveryRadius <= 0 {
		config.DiscoveryRadius = defaults.DiscoveryRadius
	}
	if config.LookBack <= 0 {
		config.LookBack = defaults.LookBack
	}
	if config.HistoricalConcurrency < 1 {
		config.HistoricalConcurrency = defaults.HistoricalConcurrency
	}
	if config.MaxTrailPoints < 1 {
		config.MaxTrailPoints = defaults.MaxTrailPoints
	}
	if config.FriendsWindow <= 0 {
		config.FriendsWindow = defaults.FriendsWindow
	}
	if config.SigningBucket == "" {
		config.SigningBucket = defaults.SigningBucket
	}
	if config.SigningTTL <= 0 {
		config.SigningTTL = defaults.SigningTTL
	}

	now := config.Clock
	if now == nil {
		now = time.Now
	}

	return &Service{
		config:    config,
		places:    places,
		photos:    photos,
		signer:    signer,
		refresher: refresher,
		now:       now,
	}
}

// findPois degrades store failures to an empty result
func (s *Service) findPois(ctx context.Context, center geo.Location, radius float64) []place.GlobalPoi {
	pois, err := s.places.FindGlobalPoisWithinRadius(ctx, center, radius)
	if err != nil {
		s.degraded(ctx, "global_pois", err)
		return nil
	}
	return pois
}

func (s *Service) findSpots(ctx context.Context, center geo.Location) []place.EphemeralSpot {
	spots, err := s.places.FindEphemeralSpotsByIndividualRadius(ctx, center)
	if err != nil {
		s.degraded(ctx, "ephemeral_spots", err)
		return nil
	}
	return spots
}

func (s *Service) degraded(ctx context.Context, lookup string, err error) {
	metrics.StoreDegradedTotal.WithLabelValues(lookup).Inc()
	logging.Ctx(ctx).Warn().Err(err).Str("lookup", lookup).Msg("store lookup failed, continuing with empty result")
}

// signURL returns nil when the object has no ref or signing fails
func (s *Service) signURL(ctx context.Context, objectRef string) *string {
	if s.signer == nil || objectRef == "" {
		return nil
	}

	url, err := s.signer.Sign(ctx, objectRef, s.config.SigningBucket, s.config.SigningTTL)
	if err != nil {
		metrics.SigningFailuresTotal.Inc()
		logging.Ctx(ctx).Warn().Err(err).Str("object_ref", objectRef).Msg("error signing image url")
		return nil
	}
	return &url
}

func (s *Service) signCovers(ctx context.Context, items []feed.Item) {
	for i := range items {
		items[i].CoverImageURL = s.signURL(ctx, items[i].CoverImageRef)
	}
}

func observe(feedName string, start time.Time, items int) {
	metrics.FeedRequestsTotal.WithLabelValues(feedName).Inc()
	metrics.FeedDurationSeconds.WithLabelValues(feedName).Observe(time.Since(start).Seconds())
	metrics.FeedItems.WithLabelValues(feedName).Observe(float64(items))
}

// placeIndex collects candidate places keyed by reference
type placeIndex struct {
	byRef map[place.Ref]place.Place
	refs  []place.Ref
}

func newPlaceIndex(pois []place.GlobalPoi, spots []place.EphemeralSpot) placeIndex {
	idx := placeIndex{byRef: make(map[place.Ref]place.Place, len(pois)+len(spots))}
	for i := range pois {
		idx.add(place.FromPoi(pois[i]))
	}
	for i := range spots {
		idx.add(place.FromSpot(spots[i]))
	}
	return idx
}

func (idx *placeIndex) add(p place.Place) {
	ref := p.Ref()
	if _, ok := idx.byRef[ref]; ok {
		return
	}
	idx.byRef[ref] = p
	idx.refs = append(idx.refs, ref)
}

// matches pairs each photo with the candidate place it belongs to
func (idx placeIndex) matches(photos []photo.Photo, matchedAt time.Time) []feed.Match {
	out := make([]feed.Match, 0, len(photos))
	for _, p := range photos {
		pl, ok := idx.byRef[p.PlaceRef]
		if !ok {
			continue
		}
		out = append(out, feed.Match{Place: pl, Photo: p, MatchedAt: matchedAt})
	}
	return out
}
