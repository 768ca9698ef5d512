// internal/service/feed/aggregator.go

package feed

import (
	"sort"
	"time"

	"geosnap/internal/domain/feed"
	"geosnap/internal/domain/photo"
	"geosnap/internal/domain/place"
)

// Ordering selects how aggregated items are sorted
type Ordering int

const (
	// OrderByNewestPhoto sorts by newest photo timestamp, descending
	OrderByNewestPhoto Ordering = iota

	// OrderByEarliestMatch sorts by each place's earliest match time, descending
	OrderByEarliestMatch
)

type group struct {
	place         place.Place
	photos        map[string]photo.Photo
	cover         photo.Photo
	newest        time.Time
	earliestMatch time.Time
}

func (g *group) add(p photo.Photo, matchedAt time.Time) {
	if g.earliestMatch.IsZero() || matchedAt.Before(g.earliestMatch) {
		g.earliestMatch = matchedAt
	}

	if _, seen := g.photos[p.ID]; seen {
		return
	}
	g.photos[p.ID] = p

	if len(g.photos) == 1 || p.UploadedAt.After(g.newest) {
		g.newest = p.UploadedAt
	}

	// Cover is the chronologically first photo; equal timestamps fall back to the smaller id
	if len(g.photos) == 1 ||
		p.UploadedAt.Before(g.cover.UploadedAt) ||
		(p.UploadedAt.Equal(g.cover.UploadedAt) && p.ID < g.cover.ID) {
		g.cover = p
	}
}

// Aggregate groups matches by place and produces one feed item per place
// with at least one photo. A photo is counted once per place no matter how
// many matches carry it; matches whose photo does not belong to the matched
// place are dropped.
func Aggregate(matches []feed.Match, order Ordering) []feed.Item {
	groups := make(map[string]*group)

	for _, m := range matches {
		ref := m.Place.Ref()
		if ref.IsZero() || m.Photo.PlaceRef != ref {
			continue
		}

		key := ref.Key()
		g, ok := groups[key]
		if !ok {
			g = &group{place: m.Place, photos: make(map[string]photo.Photo)}
			groups[key] = g
		}
		g.add(m.Photo, m.MatchedAt)
	}

	items := make([]feed.Item, 0, len(groups))
	for _, g := range groups {
		if len(g.photos) == 0 {
			continue
		}
		items = append(items, newItem(g))
	}

	sortItems(items, order)
	return items
}

func newItem(g *group) feed.Item {
	item := feed.Item{
		CoverImageRef:        g.cover.StorageRef,
		PhotoCount:           len(g.photos),
		NewestPhotoTimestamp: g.newest,
		EarliestMatch:        g.earliestMatch,
	}

	switch {
	case g.place.Poi != nil:
		poi := g.place.Poi
		item.PlaceKind = place.KindGlobalPoi
		item.Name = poi.Name
		item.Latitude = poi.Location.Latitude
		item.Longitude = poi.Location.Longitude
		item.GlobalPoiID = ptr(poi.ID)
		item.ExternalID = ptr(poi.ExternalID)
		item.Address = ptr(poi.Address)
		item.CaptureRadiusMeters = ptr(poi.CaptureRadiusMeters)

	case g.place.Spot != nil:
		spot := g.place.Spot
		item.PlaceKind = place.KindEphemeralSpot
		item.Name = spot.Name
		item.Latitude = spot.Location.Latitude
		item.Longitude = spot.Location.Longitude
		item.EphemeralSpotID = ptr(spot.ID)
		item.CaptureRadiusMeters = ptr(spot.CaptureRadiusMeters)
		item.AccessPolicy = ptr(spot.AccessPolicy)
		item.IsTrending = ptr(spot.IsTrending)
		item.IsLive = ptr(spot.IsLive)
		item.ExpiresAt = ptr(spot.ExpiresAt)
	}

	return item
}

func sortItems(items []feed.Item, order Ordering) {
	sort.Slice(items, func(i, j int) bool {
		var a, b time.Time
		switch order {
		case OrderByEarliestMatch:
			a, b = items[i].EarliestMatch, items[j].EarliestMatch
		default:
			a, b = items[i].NewestPhotoTimestamp, items[j].NewestPhotoTimestamp
		}

		if !a.Equal(b) {
			return a.After(b)
		}
		return items[i].PlaceKey() < items[j].PlaceKey()
	})
}

func ptr[T any](v T) *T {
	return &v
}
