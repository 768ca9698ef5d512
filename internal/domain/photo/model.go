package photo

import (
	"time"

	"geosnap/internal/domain/geo"
	"geosnap/internal/domain/place"
)

// Visibility defines who may see a photo
type Visibility string

const (
	VisibilitySpotOnly       Visibility = "spot_only"
	VisibilityFriendsOnly    Visibility = "friends_only"
	VisibilitySpotAndFriends Visibility = "spot_and_friends"
)

const (
	// SpotOnlyLifetime is how long a spot-only photo stays live
	SpotOnlyLifetime = 48 * time.Hour

	// SharedLifetime is how long friend-visible photos stay live
	SharedLifetime = 7 * 24 * time.Hour
)

// ExpiryFor derives the expiry time of a photo from its visibility
func ExpiryFor(v Visibility, uploadedAt time.Time) time.Time {
	if v == VisibilitySpotOnly {
		return uploadedAt.Add(SpotOnlyLifetime)
	}
	return uploadedAt.Add(SharedLifetime)
}

// Filter is a set of visibilities accepted by a query
type Filter []Visibility

var (
	// Public matches photos visible to anyone at the place
	Public = Filter{VisibilitySpotOnly, VisibilitySpotAndFriends}

	// Friends matches photos shared with the uploader's friends
	Friends = Filter{VisibilityFriendsOnly, VisibilitySpotAndFriends}
)

// Allows reports whether v is accepted by the filter
func (f Filter) Allows(v Visibility) bool {
	for _, allowed := range f {
		if allowed == v {
			return true
		}
	}
	return false
}

// Strings returns the filter as plain strings for query parameters
func (f Filter) Strings() []string {
	out := make([]string, len(f))
	for i, v := range f {
		out[i] = string(v)
	}
	return out
}

// Photo is a geotagged, time-bounded upload
type Photo struct {
	ID         string
	UploaderID string
	PlaceRef   place.Ref
	Location   geo.Location
	Visibility Visibility
	StorageRef string
	UploadedAt time.Time
	ExpiresAt  time.Time
}

// LiveAt reports whether the photo has not expired at t
func (p Photo) LiveAt(t time.Time) bool {
	return p.ExpiresAt.After(t)
}

// HasPlace reports whether the photo is attached to a place
func (p Photo) HasPlace() bool {
	return !p.PlaceRef.IsZero()
}
