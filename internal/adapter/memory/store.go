// internal/adapter/memory/store.go

// Package memory provides in-process place and photo stores backed by maps.
// Distances use the haversine great-circle formula.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"geosnap/internal/domain/geo"
	"geosnap/internal/domain/photo"
	"geosnap/internal/domain/place"
)

// Store implements place.Store and photo.Store in memory
type Store struct {
	mu       sync.RWMutex
	pois     map[string]place.GlobalPoi
	poiByExt map[string]string
	spots    map[string]place.EphemeralSpot
	photos   map[string]photo.Photo
	now      func() time.Time
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		pois:     make(map[string]place.GlobalPoi),
		poiByExt: make(map[string]string),
		spots:    make(map[string]place.EphemeralSpot),
		photos:   make(map[string]photo.Photo),
		now:      time.Now,
	}
}

// FindGlobalPoisWithinRadius returns POIs within radiusMeters of center
func (s *Store) FindGlobalPoisWithinRadius(ctx context.Context, center geo.Location, radiusMeters float64) ([]place.GlobalPoi, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pois []place.GlobalPoi
	for _, p := range s.pois {
		if geo.Within(center, p.Location, radiusMeters) {
			pois = append(pois, p)
		}
	}

	sort.Slice(pois, func(i, j int) bool { return pois[i].ID < pois[j].ID })
	return pois, nil
}

// FindEphemeralSpotsByIndividualRadius returns spots whose capture radius covers center
func (s *Store) FindEphemeralSpotsByIndividualRadius(ctx context.Context, center geo.Location) ([]place.EphemeralSpot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var spots []place.EphemeralSpot
	for _, sp := range s.spots {
		if geo.Within(center, sp.Location, sp.CaptureRadiusMeters) {
			spots = append(spots, sp)
		}
	}

	sort.Slice(spots, func(i, j int) bool { return spots[i].ID < spots[j].ID })
	return spots, nil
}

// CountGlobalPoisWithinRadius counts POIs within radiusMeters of center
func (s *Store) CountGlobalPoisWithinRadius(ctx context.Context, center geo.Location, radiusMeters float64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, p := range s.pois {
		if geo.Within(center, p.Location, radiusMeters) {
			count++
		}
	}
	return count, nil
}

// UpsertGlobalPoi creates or refreshes a POI keyed on ExternalID.
// Only name, address, capture radius and importance change on refresh.
func (s *Store) UpsertGlobalPoi(ctx context.Context, poi place.GlobalPoi) (place.GlobalPoi, error) {
	if poi.ExternalID == "" {
		return place.GlobalPoi{}, place.ErrMissingExternalID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.poiByExt[poi.ExternalID]; ok {
		existing := s.pois[id]
		existing.Name = poi.Name
		existing.Address = poi.Address
		existing.CaptureRadiusMeters = poi.CaptureRadiusMeters
		existing.ImportanceScore = poi.ImportanceScore
		s.pois[id] = existing
		return existing, nil
	}

	poi.ID = uuid.New().String()
	if poi.CreatedAt.IsZero() {
		poi.CreatedAt = s.now()
	}
	s.pois[poi.ID] = poi
	s.poiByExt[poi.ExternalID] = poi.ID
	return poi, nil
}

// SaveEphemeralSpot stores a spot; spots are created by an external subsystem
func (s *Store) SaveEphemeralSpot(ctx context.Context, sp place.EphemeralSpot) (place.EphemeralSpot, error) {
	if err := sp.Validate(); err != nil {
		return place.EphemeralSpot{}, fmt.Errorf("invalid spot: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sp.ID == "" {
		sp.ID = uuid.New().String()
	}
	if sp.CreatedAt.IsZero() {
		sp.CreatedAt = s.now()
	}
	s.spots[sp.ID] = sp
	return sp, nil
}

// SavePhoto stores a photo, deriving ExpiresAt from visibility when unset
func (s *Store) SavePhoto(ctx context.Context, p photo.Photo) (photo.Photo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.UploadedAt.IsZero() {
		p.UploadedAt = s.now()
	}
	if p.ExpiresAt.IsZero() {
		p.ExpiresAt = photo.ExpiryFor(p.Visibility, p.UploadedAt)
	}
	s.photos[p.ID] = p
	return p, nil
}

// DeletePhoto removes a photo from all future query results
func (s *Store) DeletePhoto(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.photos, id)
}

// FindNearTimeWindow returns photos of places uploaded within [windowStart, windowEnd]
func (s *Store) FindNearTimeWindow(
	ctx context.Context,
	places []place.Ref,
	windowStart, windowEnd time.Time,
	vis photo.Filter,
) ([]photo.Photo, error) {
	wanted := refSet(places)

	return s.collect(func(p photo.Photo) bool {
		return wanted[p.PlaceRef] &&
			vis.Allows(p.Visibility) &&
			!p.UploadedAt.Before(windowStart) &&
			!p.UploadedAt.After(windowEnd)
	}), nil
}

// FindLive returns unexpired photos of places
func (s *Store) FindLive(ctx context.Context, places []place.Ref, vis photo.Filter, now time.Time) ([]photo.Photo, error) {
	wanted := refSet(places)

	return s.collect(func(p photo.Photo) bool {
		return wanted[p.PlaceRef] && vis.Allows(p.Visibility) && p.LiveAt(now)
	}), nil
}

// FindByUploadersSince returns unexpired photos by uploaders since a point in time
func (s *Store) FindByUploadersSince(
	ctx context.Context,
	uploaderIDs []string,
	since time.Time,
	vis photo.Filter,
	now time.Time,
) ([]photo.Photo, error) {
	uploaders := make(map[string]bool, len(uploaderIDs))
	for _, id := range uploaderIDs {
		uploaders[id] = true
	}

	photos := s.collect(func(p photo.Photo) bool {
		return uploaders[p.UploaderID] &&
			vis.Allows(p.Visibility) &&
			!p.UploadedAt.Before(since) &&
			p.LiveAt(now)
	})

	sort.SliceStable(photos, func(i, j int) bool {
		return photos[i].UploadedAt.After(photos[j].UploadedAt)
	})
	return photos, nil
}

func (s *Store) collect(match func(photo.Photo) bool) []photo.Photo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var photos []photo.Photo
	for _, p := range s.photos {
		if match(p) {
			photos = append(photos, p)
		}
	}

	sort.Slice(photos, func(i, j int) bool { return photos[i].ID < photos[j].ID })
	return photos
}

func refSet(refs []place.Ref) map[place.Ref]bool {
	set := make(map[place.Ref]bool, len(refs))
	for _, r := range refs {
		set[r] = true
	}
	return set
}
