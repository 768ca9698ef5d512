package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geosnap/internal/adapter/memory"
	"geosnap/internal/domain/feed"
	"geosnap/internal/domain/geo"
	"geosnap/internal/domain/photo"
)

func TestDiscover_CountsOnlyUnexpiredPhotos(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, stubSigner{})

	poi := addPoi(t, store, "ext-1", geo.Offset(origin, 200, 0))

	addPhoto(t, store, "p1", poi.Ref(), photo.VisibilitySpotOnly, t0.Add(-3*time.Hour), t0.Add(time.Hour))
	addPhoto(t, store, "p2", poi.Ref(), photo.VisibilitySpotOnly, t0.Add(-2*time.Hour), t0.Add(time.Hour))
	addPhoto(t, store, "p3", poi.Ref(), photo.VisibilitySpotAndFriends, t0.Add(-1*time.Hour), t0.Add(time.Hour))
	addPhoto(t, store, "old1", poi.Ref(), photo.VisibilitySpotOnly, t0.Add(-50*time.Hour), t0.Add(-2*time.Hour))
	addPhoto(t, store, "old2", poi.Ref(), photo.VisibilitySpotOnly, t0.Add(-49*time.Hour), t0.Add(-time.Hour))

	items, err := svc.Discover(context.Background(), origin)
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, 3, item.PhotoCount)
	assert.Equal(t, "objects/p1.jpg", item.CoverImageRef)
	require.NotNil(t, item.CoverImageURL)
	assert.Equal(t, "https://blobs.test/photos/objects/p1.jpg", *item.CoverImageURL)
	assert.True(t, item.NewestPhotoTimestamp.Equal(t0.Add(-time.Hour)))

	require.NotNil(t, item.GlobalPoiID)
	assert.Equal(t, poi.ID, *item.GlobalPoiID)
	assert.Nil(t, item.EphemeralSpotID)
	assert.Nil(t, item.IsLive)
}

func TestDiscover_ExpiryBoundaryExcluded(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, stubSigner{})

	poi := addPoi(t, store, "ext-1", origin)
	addPhoto(t, store, "edge", poi.Ref(), photo.VisibilitySpotOnly, t0.Add(-48*time.Hour), t0)

	items, err := svc.Discover(context.Background(), origin)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDiscover_SkipsFriendsOnlyPhotos(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, stubSigner{})

	poi := addPoi(t, store, "ext-1", origin)
	addPhoto(t, store, "private", poi.Ref(), photo.VisibilityFriendsOnly, t0.Add(-time.Hour), t0.Add(time.Hour))

	items, err := svc.Discover(context.Background(), origin)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDiscover_SpotLiveness(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, stubSigner{})

	live := addSpot(t, store, "live", geo.Offset(origin, 30, 0), 50, true, t0.Add(time.Hour))
	notLive := addSpot(t, store, "not-live", geo.Offset(origin, 0, 30), 50, false, t0.Add(time.Hour))
	expired := addSpot(t, store, "expired", geo.Offset(origin, -30, 0), 50, true, t0)

	addPhoto(t, store, "a", live.Ref(), photo.VisibilitySpotOnly, t0.Add(-time.Hour), t0.Add(time.Hour))
	addPhoto(t, store, "b", notLive.Ref(), photo.VisibilitySpotOnly, t0.Add(-time.Hour), t0.Add(time.Hour))
	addPhoto(t, store, "c", expired.Ref(), photo.VisibilitySpotOnly, t0.Add(-time.Hour), t0.Add(time.Hour))

	items, err := svc.Discover(context.Background(), origin)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NotNil(t, items[0].EphemeralSpotID)
	assert.Equal(t, "live", *items[0].EphemeralSpotID)
	assert.Nil(t, items[0].GlobalPoiID)
	assert.Nil(t, items[0].Address)
	require.NotNil(t, items[0].IsLive)
	assert.True(t, *items[0].IsLive)
}

func TestDiscover_OutsideRadiusIgnored(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, stubSigner{})

	far := addPoi(t, store, "far", geo.Offset(origin, 800, 0))
	addPhoto(t, store, "p", far.Ref(), photo.VisibilitySpotOnly, t0.Add(-time.Hour), t0.Add(time.Hour))

	spot := addSpot(t, store, "small", geo.Offset(origin, 60, 0), 50, true, t0.Add(time.Hour))
	addPhoto(t, store, "q", spot.Ref(), photo.VisibilitySpotOnly, t0.Add(-time.Hour), t0.Add(time.Hour))

	items, err := svc.Discover(context.Background(), origin)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDiscover_OrderedByNewestPhoto(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, stubSigner{})

	older := addPoi(t, store, "older", geo.Offset(origin, 100, 0))
	newer := addPoi(t, store, "newer", geo.Offset(origin, -100, 0))
	addPhoto(t, store, "o", older.Ref(), photo.VisibilitySpotOnly, t0.Add(-3*time.Hour), t0.Add(time.Hour))
	addPhoto(t, store, "n", newer.Ref(), photo.VisibilitySpotOnly, t0.Add(-time.Hour), t0.Add(time.Hour))

	items, err := svc.Discover(context.Background(), origin)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, newer.ID, *items[0].GlobalPoiID)
	assert.Equal(t, older.ID, *items[1].GlobalPoiID)
}

func TestDiscover_InvalidLocation(t *testing.T) {
	svc := newTestService(t, memory.NewStore(), stubSigner{})

	_, err := svc.Discover(context.Background(), geo.Location{Latitude: 91, Longitude: 0})
	require.Error(t, err)
	assert.True(t, errors.Is(err, feed.ErrInvalidLocation))
}

func TestDiscover_SigningFailureLeavesNilURL(t *testing.T) {
	store := memory.NewStore()
	svc := newTestService(t, store, stubSigner{fail: map[string]bool{"objects/p.jpg": true}})

	poi := addPoi(t, store, "ext-1", origin)
	addPhoto(t, store, "p", poi.Ref(), photo.VisibilitySpotOnly, t0.Add(-time.Hour), t0.Add(time.Hour))

	items, err := svc.Discover(context.Background(), origin)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "objects/p.jpg", items[0].CoverImageRef)
	assert.Nil(t, items[0].CoverImageURL)
}

func TestDiscover_StoreFailuresDegradeToEmpty(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Clock = func() time.Time { return t0 }

	svc := NewService(failingPlaces{}, failingPhotos{}, stubSigner{}, nil, cfg)
	items, err := svc.Discover(context.Background(), origin)
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)

	store := memory.NewStore()
	addPoi(t, store, "ext-1", origin)
	svc = NewService(store, failingPhotos{}, stubSigner{}, nil, cfg)
	items, err = svc.Discover(context.Background(), origin)
	require.NoError(t, err)
	assert.Empty(t, items)
}
