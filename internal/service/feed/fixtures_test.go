package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"geosnap/internal/adapter/memory"
	"geosnap/internal/domain/geo"
	"geosnap/internal/domain/photo"
	"geosnap/internal/domain/place"
)

var (
	t0     = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	origin = geo.Location{Latitude: 52.5200, Longitude: 13.4050}
)

type stubSigner struct {
	fail map[string]bool
}

func (s stubSigner) Sign(_ context.Context, objectRef, bucket string, _ time.Duration) (string, error) {
	if s.fail[objectRef] {
		return "", errors.New("signing backend unavailable")
	}
	return "https://blobs.test/" + bucket + "/" + objectRef, nil
}

type failingPlaces struct{}

func (failingPlaces) FindGlobalPoisWithinRadius(context.Context, geo.Location, float64) ([]place.GlobalPoi, error) {
	return nil, errors.New("connection refused")
}

func (failingPlaces) FindEphemeralSpotsByIndividualRadius(context.Context, geo.Location) ([]place.EphemeralSpot, error) {
	return nil, errors.New("connection refused")
}

func (failingPlaces) CountGlobalPoisWithinRadius(context.Context, geo.Location, float64) (int, error) {
	return 0, errors.New("connection refused")
}

func (failingPlaces) UpsertGlobalPoi(context.Context, place.GlobalPoi) (place.GlobalPoi, error) {
	return place.GlobalPoi{}, errors.New("connection refused")
}

type failingPhotos struct{}

func (failingPhotos) FindNearTimeWindow(context.Context, []place.Ref, time.Time, time.Time, photo.Filter) ([]photo.Photo, error) {
	return nil, errors.New("timeout")
}

func (failingPhotos) FindLive(context.Context, []place.Ref, photo.Filter, time.Time) ([]photo.Photo, error) {
	return nil, errors.New("timeout")
}

func (failingPhotos) FindByUploadersSince(context.Context, []string, time.Time, photo.Filter, time.Time) ([]photo.Photo, error) {
	return nil, errors.New("timeout")
}

func newTestService(t *testing.T, store *memory.Store, signer Signer) *Service {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Clock = func() time.Time { return t0 }
	return NewService(store, store, signer, nil, cfg)
}

func addPoi(t *testing.T, store *memory.Store, externalID string, loc geo.Location) place.GlobalPoi {
	t.Helper()
	poi, err := store.UpsertGlobalPoi(context.Background(), place.GlobalPoi{
		ExternalID:          externalID,
		Name:                "POI " + externalID,
		Address:             "1 Test Street",
		Location:            loc,
		CaptureRadiusMeters: 50,
		ImportanceScore:     9,
	})
	require.NoError(t, err)
	return poi
}

func addSpot(t *testing.T, store *memory.Store, id string, loc geo.Location, radius float64, live bool, expiresAt time.Time) place.EphemeralSpot {
	t.Helper()
	spot, err := store.SaveEphemeralSpot(context.Background(), place.EphemeralSpot{
		ID:                  id,
		CreatorID:           "creator",
		Name:                "Spot " + id,
		Location:            loc,
		CaptureRadiusMeters: radius,
		AccessPolicy:        place.AccessOpen,
		IsLive:              live,
		ExpiresAt:           expiresAt,
	})
	require.NoError(t, err)
	return spot
}

func addPhoto(t *testing.T, store *memory.Store, id string, ref place.Ref, vis photo.Visibility, uploadedAt, expiresAt time.Time) photo.Photo {
	t.Helper()
	p, err := store.SavePhoto(context.Background(), photo.Photo{
		ID:         id,
		UploaderID: "uploader-" + id,
		PlaceRef:   ref,
		Location:   origin,
		Visibility: vis,
		StorageRef: "objects/" + id + ".jpg",
		UploadedAt: uploadedAt,
		ExpiresAt:  expiresAt,
	})
	require.NoError(t, err)
	return p
}
