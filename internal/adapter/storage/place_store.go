// internal/adapter/storage/place_store.go

package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"geosnap/internal/domain/geo"
	"geosnap/internal/domain/place"
)

// PlaceStore implements place.Store on PostGIS
type PlaceStore struct {
	db *pgxpool.Pool
}

// NewPlaceStore creates a new place store
func NewPlaceStore(db *pgxpool.Pool) *PlaceStore {
	return &PlaceStore{
		db: db,
	}
}

const poiColumns = `
	id, external_id, name, address,
	ST_X(location::geometry) as lng, ST_Y(location::geometry) as lat,
	capture_radius_meters, importance_score, created_at`

const spotColumns = `
	id, creator_id, name,
	ST_X(location::geometry) as lng, ST_Y(location::geometry) as lat,
	capture_radius_meters, access_policy, access_secret,
	is_trending, is_live, scheduled_live_at, expires_at,
	challenges_enabled, created_at`

// FindGlobalPoisWithinRadius returns POIs within radiusMeters of center
func (s *PlaceStore) FindGlobalPoisWithinRadius(
	ctx context.Context,
	center geo.Location,
	radiusMeters float64,
) ([]place.GlobalPoi, error) {
	// geography ST_DWithin measures geodesic distance on the WGS-84 spheroid, inclusive
	query := `SELECT` + poiColumns + `
		FROM global_pois
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
		ORDER BY id
	`

	rows, err := s.db.Query(ctx, query, center.Longitude, center.Latitude, radiusMeters)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var pois []place.GlobalPoi
	for rows.Next() {
		p, err := scanPoi(rows)
		if err != nil {
			return nil, err
		}
		pois = append(pois, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pois: %w", err)
	}

	return pois, nil
}

// FindEphemeralSpotsByIndividualRadius returns spots whose own capture radius covers center
func (s *PlaceStore) FindEphemeralSpotsByIndividualRadius(
	ctx context.Context,
	center geo.Location,
) ([]place.EphemeralSpot, error) {
	query := `SELECT` + spotColumns + `
		FROM ephemeral_spots
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, capture_radius_meters)
		ORDER BY id
	`

	rows, err := s.db.Query(ctx, query, center.Longitude, center.Latitude)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	var spots []place.EphemeralSpot
	for rows.Next() {
		var sp place.EphemeralSpot
		var lng, lat float64
		var accessPolicy string

		err := rows.Scan(
			&sp.ID,
			&sp.CreatorID,
			&sp.Name,
			&lng,
			&lat,
			&sp.CaptureRadiusMeters,
			&accessPolicy,
			&sp.AccessSecret,
			&sp.IsTrending,
			&sp.IsLive,
			&sp.ScheduledLiveAt,
			&sp.ExpiresAt,
			&sp.ChallengesEnabled,
			&sp.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning spot: %w", err)
		}

		sp.Location = geo.Location{Latitude: lat, Longitude: lng}
		sp.AccessPolicy = place.AccessPolicy(accessPolicy)

		spots = append(spots, sp)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating spots: %w", err)
	}

	return spots, nil
}

// CountGlobalPoisWithinRadius counts POIs within radiusMeters of center
func (s *PlaceStore) CountGlobalPoisWithinRadius(
	ctx context.Context,
	center geo.Location,
	radiusMeters float64,
) (int, error) {
	query := `
		SELECT count(*)
		FROM global_pois
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
	`

	var count int
	if err := s.db.QueryRow(ctx, query, center.Longitude, center.Latitude, radiusMeters).Scan(&count); err != nil {
		return 0, fmt.Errorf("error counting pois: %w", err)
	}

	return count, nil
}

// UpsertGlobalPoi creates or refreshes a POI keyed on its external id.
// Location and created_at are immutable once the row exists.
func (s *PlaceStore) UpsertGlobalPoi(ctx context.Context, poi place.GlobalPoi) (place.GlobalPoi, error) {
	if poi.ExternalID == "" {
		return place.GlobalPoi{}, place.ErrMissingExternalID
	}

	query := `
		INSERT INTO global_pois (
			external_id, name, address, location,
			capture_radius_meters, importance_score
		) VALUES (
			$1, $2, $3, ST_SetSRID(ST_MakePoint($4, $5), 4326)::geography,
			$6, $7
		)
		ON CONFLICT (external_id) DO UPDATE
		SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			capture_radius_meters = EXCLUDED.capture_radius_meters,
			importance_score = EXCLUDED.importance_score
		RETURNING` + poiColumns

	row := s.db.QueryRow(
		ctx,
		query,
		poi.ExternalID,
		poi.Name,
		poi.Address,
		poi.Location.Longitude,
		poi.Location.Latitude,
		poi.CaptureRadiusMeters,
		poi.ImportanceScore,
	)

	return scanPoi(row)
}

func scanPoi(row pgx.Row) (place.GlobalPoi, error) {
	var p place.GlobalPoi
	var lng, lat float64

	err := row.Scan(
		&p.ID,
		&p.ExternalID,
		&p.Name,
		&p.Address,
		&lng,
		&lat,
		&p.CaptureRadiusMeters,
		&p.ImportanceScore,
		&p.CreatedAt,
	)
	if err != nil {
		return place.GlobalPoi{}, fmt.Errorf("error scanning poi: %w", err)
	}

	p.Location = geo.Location{Latitude: lat, Longitude: lng}
	return p, nil
}
