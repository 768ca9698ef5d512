// internal/adapter/storage/schema.go

package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
)

var schemaStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`CREATE TABLE IF NOT EXISTS global_pois (
		id                    TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		external_id           TEXT NOT NULL UNIQUE,
		name                  TEXT NOT NULL,
		address               TEXT NOT NULL DEFAULT '',
		location              GEOGRAPHY(POINT, 4326) NOT NULL,
		capture_radius_meters DOUBLE PRECISION NOT NULL,
		importance_score      INTEGER NOT NULL DEFAULT 0,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS global_pois_location_idx ON global_pois USING GIST (location)`,
	`CREATE TABLE IF NOT EXISTS ephemeral_spots (
		id                    TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		creator_id            TEXT NOT NULL,
		name                  TEXT NOT NULL,
		location              GEOGRAPHY(POINT, 4326) NOT NULL,
		capture_radius_meters DOUBLE PRECISION NOT NULL CHECK (capture_radius_meters >= 10),
		access_policy         TEXT NOT NULL CHECK (access_policy IN ('open', 'password', 'qr', 'approval')),
		access_secret         TEXT,
		is_trending           BOOLEAN NOT NULL DEFAULT false,
		is_live               BOOLEAN NOT NULL DEFAULT false,
		scheduled_live_at     TIMESTAMPTZ,
		expires_at            TIMESTAMPTZ NOT NULL,
		challenges_enabled    BOOLEAN NOT NULL DEFAULT false,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS ephemeral_spots_location_idx ON ephemeral_spots USING GIST (location)`,
	`CREATE TABLE IF NOT EXISTS photos (
		id                TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
		uploader_id       TEXT NOT NULL,
		global_poi_id     TEXT REFERENCES global_pois (id) ON DELETE SET NULL,
		ephemeral_spot_id TEXT REFERENCES ephemeral_spots (id) ON DELETE SET NULL,
		location          GEOGRAPHY(POINT, 4326) NOT NULL,
		visibility        TEXT NOT NULL CHECK (visibility IN ('spot_only', 'friends_only', 'spot_and_friends')),
		storage_ref       TEXT NOT NULL,
		uploaded_at       TIMESTAMPTZ NOT NULL,
		expires_at        TIMESTAMPTZ NOT NULL,
		CHECK (global_poi_id IS NULL OR ephemeral_spot_id IS NULL)
	)`,
	`CREATE INDEX IF NOT EXISTS photos_global_poi_idx ON photos (global_poi_id, uploaded_at)`,
	`CREATE INDEX IF NOT EXISTS photos_ephemeral_spot_idx ON photos (ephemeral_spot_id, uploaded_at)`,
	`CREATE INDEX IF NOT EXISTS photos_uploader_idx ON photos (uploader_id, uploaded_at)`,
}

// EnsureSchema creates the tables and indexes used by the stores if they do not exist
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("error applying schema: %w", err)
		}
	}
	return nil
}
