package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geosnap/internal/domain/feed"
	"geosnap/internal/domain/geo"
	"geosnap/internal/domain/place"
	"geosnap/internal/service/classifier"
)

type stubFeed struct {
	items     []feed.Item
	err       error
	gotLoc    geo.Location
	gotTrail  []feed.HistoricalPoint
	gotIDs    []string
	gotSince  time.Time
	friendErr error
}

func (s *stubFeed) Discover(_ context.Context, loc geo.Location) ([]feed.Item, error) {
	s.gotLoc = loc
	return s.items, s.err
}

func (s *stubFeed) Historical(_ context.Context, trail []feed.HistoricalPoint) ([]feed.Item, error) {
	s.gotTrail = trail
	return s.items, s.err
}

func (s *stubFeed) FriendsPhotos(_ context.Context, ids []string, since time.Time) ([]feed.FriendPhoto, error) {
	s.gotIDs = ids
	s.gotSince = since
	return []feed.FriendPhoto{}, s.friendErr
}

func sampleItem() feed.Item {
	id := "poi-1"
	return feed.Item{
		PlaceKind:            place.KindGlobalPoi,
		Name:                 "Cafe",
		Latitude:             1,
		Longitude:            2,
		CoverImageRef:        "objects/1.jpg",
		PhotoCount:           3,
		NewestPhotoTimestamp: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
		GlobalPoiID:          &id,
	}
}

func TestDiscover(t *testing.T) {
	svc := &stubFeed{items: []feed.Item{sampleItem()}}
	h := NewFeedHandler(svc, 100)

	rec := httptest.NewRecorder()
	h.Discover(rec, httptest.NewRequest(http.MethodGet, "/api/v1/feed/discover?lat=52.5&lng=13.4", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, geo.Location{Latitude: 52.5, Longitude: 13.4}, svc.gotLoc)

	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "global_poi", body[0]["placeKind"])
	assert.Equal(t, "poi-1", body[0]["globalPoiId"])
	assert.Nil(t, body[0]["ephemeralSpotId"])
	assert.Nil(t, body[0]["coverImageUrl"])
	assert.Equal(t, 3.0, body[0]["photoCount"])
	assert.NotContains(t, body[0], "EarliestMatch")
}

func TestDiscover_BadQuery(t *testing.T) {
	h := NewFeedHandler(&stubFeed{}, 100)

	for _, q := range []string{"", "?lat=1", "?lat=abc&lng=1", "?lat=95&lng=1"} {
		rec := httptest.NewRecorder()
		h.Discover(rec, httptest.NewRequest(http.MethodGet, "/api/v1/feed/discover"+q, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, "query %q", q)
	}
}

func TestDiscover_ServiceError(t *testing.T) {
	h := NewFeedHandler(&stubFeed{err: errors.New("boom")}, 100)

	rec := httptest.NewRecorder()
	h.Discover(rec, httptest.NewRequest(http.MethodGet, "/api/v1/feed/discover?lat=1&lng=1", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Failed to build discovery feed")
}

func TestHistorical(t *testing.T) {
	svc := &stubFeed{items: []feed.Item{}}
	h := NewFeedHandler(svc, 100)

	body := `[{"latitude": 1, "longitude": 2, "timestamp": "2026-05-01T10:00:00Z"}]`
	rec := httptest.NewRecorder()
	h.Historical(rec, httptest.NewRequest(http.MethodPost, "/api/v1/feed/historical", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	require.Len(t, svc.gotTrail, 1)
	assert.Equal(t, 2.0, svc.gotTrail[0].Location.Longitude)
}

func TestHistorical_MalformedTrail(t *testing.T) {
	svc := &stubFeed{}
	h := NewFeedHandler(svc, 100)

	rec := httptest.NewRecorder()
	h.Historical(rec, httptest.NewRequest(http.MethodPost, "/api/v1/feed/historical", strings.NewReader(`[{"latitude": "north"}]`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid trail")
	assert.Nil(t, svc.gotTrail)
}

func TestHistorical_ServiceRejectsTrail(t *testing.T) {
	h := NewFeedHandler(&stubFeed{err: feed.ErrInvalidTrail}, 100)

	rec := httptest.NewRecorder()
	h.Historical(rec, httptest.NewRequest(http.MethodPost, "/api/v1/feed/historical", strings.NewReader(`[]`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFriends(t *testing.T) {
	svc := &stubFeed{}
	h := NewFeedHandler(svc, 100)

	rec := httptest.NewRecorder()
	h.Friends(rec, httptest.NewRequest(http.MethodPost, "/api/v1/feed/friends", strings.NewReader(`{"uploaderIds": ["a"]}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a"}, svc.gotIDs)
	assert.True(t, svc.gotSince.IsZero())

	rec = httptest.NewRecorder()
	h.Friends(rec, httptest.NewRequest(http.MethodPost, "/api/v1/feed/friends", strings.NewReader(`nope`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

type stubRefresher struct {
	result classifier.IngestResult
	radius float64
}

func (s *stubRefresher) Refresh(_ context.Context, _ geo.Location, radius float64) (classifier.IngestResult, error) {
	s.radius = radius
	return s.result, nil
}

func TestPlaceRefresh(t *testing.T) {
	refresher := &stubRefresher{result: classifier.IngestResult{
		Stored:   []place.GlobalPoi{{ID: "p1", ExternalID: "e1", Name: "Cafe"}},
		Excluded: 2,
	}}
	h := NewPlaceHandler(refresher, 500)

	rec := httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/v1/places/refresh?lat=1&lng=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 500.0, refresher.radius)

	var resp refreshResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Stored)
	assert.Equal(t, 2, resp.Excluded)
	assert.Equal(t, "e1", resp.Pois[0].ExternalID)

	rec = httptest.NewRecorder()
	h.Refresh(rec, httptest.NewRequest(http.MethodPost, "/api/v1/places/refresh?lat=1&lng=2&radius=9000", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequireIdentity(t *testing.T) {
	var seen string
	handler := RequireIdentity(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(UserIDHeader, "user-42")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-42", seen)
}
