// internal/service/feed/friends.go

package feed

import (
	"context"
	"time"

	"geosnap/internal/domain/feed"
	"geosnap/internal/domain/photo"
)

// FriendsPhotos returns unexpired friend-visible photos uploaded by the given
// users since the given time, newest first. A zero since uses the configured window.
func (s *Service) FriendsPhotos(ctx context.Context, uploaderIDs []string, since time.Time) ([]feed.FriendPhoto, error) {
	start := time.Now()

	if len(uploaderIDs) == 0 {
		observe("friends", start, 0)
		return []feed.FriendPhoto{}, nil
	}

	now := s.now()
	if since.IsZero() {
		since = now.Add(-s.config.FriendsWindow)
	}

	photos, err := s.photos.FindByUploadersSince(ctx, uploaderIDs, since, photo.Friends, now)
	if err != nil {
		s.degraded(ctx, "friend_photos", err)
		photos = nil
	}

	out := make([]feed.FriendPhoto, 0, len(photos))
	for _, p := range photos {
		fp := feed.FriendPhoto{
			ID:         p.ID,
			UploaderID: p.UploaderID,
			Visibility: p.Visibility,
			StorageRef: p.StorageRef,
			ImageURL:   s.signURL(ctx, p.StorageRef),
			Latitude:   p.Location.Latitude,
			Longitude:  p.Location.Longitude,
			UploadedAt: p.UploadedAt,
			ExpiresAt:  p.ExpiresAt,
		}
		if p.HasPlace() {
			kind, id := p.PlaceRef.Kind, p.PlaceRef.ID
			fp.PlaceKind = &kind
			fp.PlaceID = &id
		}
		out = append(out, fp)
	}

	observe("friends", start, len(out))
	return out, nil
}
