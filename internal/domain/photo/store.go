// internal/domain/photo/store.go

package photo

import (
	"context"
	"time"

	"geosnap/internal/domain/place"
)

// Store defines the photo store contract
type Store interface {
	// FindNearTimeWindow returns photos attached to any of places with
	// UploadedAt in [windowStart, windowEnd]. Expiry is ignored.
	FindNearTimeWindow(ctx context.Context, places []place.Ref, windowStart, windowEnd time.Time, vis Filter) ([]Photo, error)

	// FindLive returns photos attached to any of places with ExpiresAt > now
	FindLive(ctx context.Context, places []place.Ref, vis Filter, now time.Time) ([]Photo, error)

	// FindByUploadersSince returns unexpired photos by the given uploaders uploaded at or after since
	FindByUploadersSince(ctx context.Context, uploaderIDs []string, since time.Time, vis Filter, now time.Time) ([]Photo, error)
}
