// internal/adapter/storage/photo_store.go

package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"geosnap/internal/domain/geo"
	"geosnap/internal/domain/photo"
	"geosnap/internal/domain/place"
)

// PhotoStore implements photo.Store on PostgreSQL
type PhotoStore struct {
	db *pgxpool.Pool
}

// NewPhotoStore creates a new photo store
func NewPhotoStore(db *pgxpool.Pool) *PhotoStore {
	return &PhotoStore{
		db: db,
	}
}

const photoColumns = `
	id, uploader_id, global_poi_id, ephemeral_spot_id,
	ST_X(location::geometry) as lng, ST_Y(location::geometry) as lat,
	visibility, storage_ref, uploaded_at, expires_at`

// FindNearTimeWindow returns photos of places uploaded within [windowStart, windowEnd]
func (s *PhotoStore) FindNearTimeWindow(
	ctx context.Context,
	places []place.Ref,
	windowStart, windowEnd time.Time,
	vis photo.Filter,
) ([]photo.Photo, error) {
	poiIDs, spotIDs := splitRefs(places)
	if len(poiIDs) == 0 && len(spotIDs) == 0 {
		return nil, nil
	}

	query := `SELECT` + photoColumns + `
		FROM photos
		WHERE (global_poi_id = ANY($1) OR ephemeral_spot_id = ANY($2))
		AND visibility = ANY($3)
		AND uploaded_at >= $4
		AND uploaded_at <= $5
		ORDER BY id
	`

	return s.query(ctx, query, poiIDs, spotIDs, vis.Strings(), windowStart, windowEnd)
}

// FindLive returns photos of places whose expiry is strictly after now
func (s *PhotoStore) FindLive(
	ctx context.Context,
	places []place.Ref,
	vis photo.Filter,
	now time.Time,
) ([]photo.Photo, error) {
	poiIDs, spotIDs := splitRefs(places)
	if len(poiIDs) == 0 && len(spotIDs) == 0 {
		return nil, nil
	}

	query := `SELECT` + photoColumns + `
		FROM photos
		WHERE (global_poi_id = ANY($1) OR ephemeral_spot_id = ANY($2))
		AND visibility = ANY($3)
		AND expires_at > $4
		ORDER BY id
	`

	return s.query(ctx, query, poiIDs, spotIDs, vis.Strings(), now)
}

// FindByUploadersSince returns unexpired photos by uploaders since a point in time
func (s *PhotoStore) FindByUploadersSince(
	ctx context.Context,
	uploaderIDs []string,
	since time.Time,
	vis photo.Filter,
	now time.Time,
) ([]photo.Photo, error) {
	if len(uploaderIDs) == 0 {
		return nil, nil
	}

	query := `SELECT` + photoColumns + `
		FROM photos
		WHERE uploader_id = ANY($1)
		AND visibility = ANY($2)
		AND uploaded_at >= $3
		AND expires_at > $4
		ORDER BY uploaded_at DESC, id
		LIMIT 200
	`

	return s.query(ctx, query, uploaderIDs, vis.Strings(), since, now)
}

func (s *PhotoStore) query(ctx context.Context, query string, args ...interface{}) ([]photo.Photo, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var photos []photo.Photo
	for rows.Next() {
		var p photo.Photo
		var poiID, spotID *string
		var lng, lat float64
		var visibility string

		err := rows.Scan(
			&p.ID,
			&p.UploaderID,
			&poiID,
			&spotID,
			&lng,
			&lat,
			&visibility,
			&p.StorageRef,
			&p.UploadedAt,
			&p.ExpiresAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning photo: %w", err)
		}

		switch {
		case poiID != nil:
			p.PlaceRef = place.Ref{Kind: place.KindGlobalPoi, ID: *poiID}
		case spotID != nil:
			p.PlaceRef = place.Ref{Kind: place.KindEphemeralSpot, ID: *spotID}
		}
		p.Location = geo.Location{Latitude: lat, Longitude: lng}
		p.Visibility = photo.Visibility(visibility)

		photos = append(photos, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating photos: %w", err)
	}

	return photos, nil
}

func splitRefs(refs []place.Ref) (poiIDs, spotIDs []string) {
	poiIDs = []string{}
	spotIDs = []string{}
	for _, r := range refs {
		switch r.Kind {
		case place.KindGlobalPoi:
			poiIDs = append(poiIDs, r.ID)
		case place.KindEphemeralSpot:
			spotIDs = append(spotIDs, r.ID)
		}
	}
	return poiIDs, spotIDs
}
