package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geosnap/internal/domain/feed"
	"geosnap/internal/domain/photo"
	"geosnap/internal/domain/place"
)

func testPoi(id string) place.Place {
	return place.FromPoi(place.GlobalPoi{
		ID:                  id,
		ExternalID:          "ext-" + id,
		Name:                "POI " + id,
		Address:             "Somewhere",
		Location:            origin,
		CaptureRadiusMeters: 50,
	})
}

func testPhoto(id string, pl place.Place, uploadedAt time.Time) photo.Photo {
	return photo.Photo{
		ID:         id,
		PlaceRef:   pl.Ref(),
		Visibility: photo.VisibilitySpotOnly,
		StorageRef: "objects/" + id,
		UploadedAt: uploadedAt,
		ExpiresAt:  uploadedAt.Add(photo.SpotOnlyLifetime),
	}
}

func TestAggregate_GroupsAndCounts(t *testing.T) {
	a, b := testPoi("a"), testPoi("b")

	matches := []feed.Match{
		{Place: a, Photo: testPhoto("1", a, t0.Add(-3*time.Hour)), MatchedAt: t0},
		{Place: a, Photo: testPhoto("2", a, t0.Add(-1*time.Hour)), MatchedAt: t0},
		{Place: a, Photo: testPhoto("1", a, t0.Add(-3*time.Hour)), MatchedAt: t0.Add(-time.Hour)},
		{Place: b, Photo: testPhoto("3", b, t0.Add(-2*time.Hour)), MatchedAt: t0},
	}

	items := Aggregate(matches, OrderByNewestPhoto)
	require.Len(t, items, 2)

	assert.Equal(t, "a", *items[0].GlobalPoiID)
	assert.Equal(t, 2, items[0].PhotoCount)
	assert.Equal(t, "objects/1", items[0].CoverImageRef)
	assert.True(t, items[0].NewestPhotoTimestamp.Equal(t0.Add(-time.Hour)))
	assert.True(t, items[0].EarliestMatch.Equal(t0.Add(-time.Hour)))

	assert.Equal(t, "b", *items[1].GlobalPoiID)
	assert.Equal(t, 1, items[1].PhotoCount)
}

func TestAggregate_CoverTieBreaksOnPhotoID(t *testing.T) {
	a := testPoi("a")
	same := t0.Add(-time.Hour)

	items := Aggregate([]feed.Match{
		{Place: a, Photo: testPhoto("zeta", a, same), MatchedAt: t0},
		{Place: a, Photo: testPhoto("alpha", a, same), MatchedAt: t0},
	}, OrderByNewestPhoto)

	require.Len(t, items, 1)
	assert.Equal(t, "objects/alpha", items[0].CoverImageRef)
}

func TestAggregate_DropsMismatchedPhotos(t *testing.T) {
	a, b := testPoi("a"), testPoi("b")

	items := Aggregate([]feed.Match{
		{Place: a, Photo: testPhoto("1", b, t0), MatchedAt: t0},
		{Place: place.Place{}, Photo: testPhoto("2", a, t0), MatchedAt: t0},
	}, OrderByNewestPhoto)

	assert.Empty(t, items)
}

func TestAggregate_OrderingTieBreaksOnPlaceKey(t *testing.T) {
	a, b := testPoi("a"), testPoi("b")
	spot := place.FromSpot(place.EphemeralSpot{
		ID:                  "a",
		Name:                "Spot",
		Location:            origin,
		CaptureRadiusMeters: 20,
		AccessPolicy:        place.AccessOpen,
		IsLive:              true,
		ExpiresAt:           t0.Add(time.Hour),
	})

	matches := []feed.Match{
		{Place: b, Photo: testPhoto("1", b, t0), MatchedAt: t0},
		{Place: spot, Photo: testPhoto("2", spot, t0), MatchedAt: t0},
		{Place: a, Photo: testPhoto("3", a, t0), MatchedAt: t0},
	}

	for _, order := range []Ordering{OrderByNewestPhoto, OrderByEarliestMatch} {
		items := Aggregate(matches, order)
		require.Len(t, items, 3)

		// ephemeral_spot:a < global_poi:a < global_poi:b
		assert.Equal(t, place.KindEphemeralSpot, items[0].PlaceKind)
		assert.Equal(t, "a", *items[1].GlobalPoiID)
		assert.Equal(t, "b", *items[2].GlobalPoiID)
	}
}

func TestAggregate_OrderByEarliestMatch(t *testing.T) {
	a, b := testPoi("a"), testPoi("b")

	matches := []feed.Match{
		{Place: a, Photo: testPhoto("1", a, t0.Add(-time.Minute)), MatchedAt: t0.Add(-2 * time.Hour)},
		{Place: b, Photo: testPhoto("2", b, t0.Add(-4*time.Hour)), MatchedAt: t0},
	}

	items := Aggregate(matches, OrderByEarliestMatch)
	require.Len(t, items, 2)
	assert.Equal(t, "b", *items[0].GlobalPoiID)
	assert.Equal(t, "a", *items[1].GlobalPoiID)

	items = Aggregate(matches, OrderByNewestPhoto)
	assert.Equal(t, "a", *items[0].GlobalPoiID)
}

func TestAggregate_SpotFields(t *testing.T) {
	spot := place.FromSpot(place.EphemeralSpot{
		ID:                  "s1",
		Name:                "Rooftop",
		Location:            origin,
		CaptureRadiusMeters: 25,
		AccessPolicy:        place.AccessPassword,
		IsTrending:          true,
		IsLive:              true,
		ExpiresAt:           t0.Add(time.Hour),
	})

	items := Aggregate([]feed.Match{
		{Place: spot, Photo: testPhoto("1", spot, t0), MatchedAt: t0},
	}, OrderByNewestPhoto)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, place.KindEphemeralSpot, item.PlaceKind)
	assert.Equal(t, "Rooftop", item.Name)
	assert.Equal(t, 25.0, *item.CaptureRadiusMeters)
	assert.Equal(t, place.AccessPassword, *item.AccessPolicy)
	assert.True(t, *item.IsTrending)
	assert.Nil(t, item.GlobalPoiID)
	assert.Nil(t, item.ExternalID)
	assert.Nil(t, item.Address)
}

func TestAggregate_Empty(t *testing.T) {
	items := Aggregate(nil, OrderByNewestPhoto)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
