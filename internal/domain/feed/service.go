// internal/domain/feed/service.go

package feed

import (
	"context"
	"errors"
	"time"

	"geosnap/internal/domain/geo"
)

var (
	// ErrInvalidTrail is returned when a trail cannot be decoded or fails validation
	ErrInvalidTrail = errors.New("invalid trail")

	// ErrInvalidLocation is returned for coordinates outside WGS-84 bounds
	ErrInvalidLocation = errors.New("invalid location")
)

// Service defines the feed engine
type Service interface {
	// Discover builds the "near me, right now" feed for a location
	Discover(ctx context.Context, location geo.Location) ([]Item, error)

	// Historical builds the "where you've been" feed for a trail
	Historical(ctx context.Context, trail []HistoricalPoint) ([]Item, error)

	// FriendsPhotos returns unexpired friend-visible photos by the given uploaders
	FriendsPhotos(ctx context.Context, uploaderIDs []string, since time.Time) ([]FriendPhoto, error)
}
