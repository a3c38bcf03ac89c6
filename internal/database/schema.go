package database

import (
	"context"
	"fmt"
)

// sourceSchema creates the tables the reconciliation reads from. They are
// loaded from the agency exports by the import job; the definitions here
// let a fresh database and the integration tests start empty.
var sourceSchema = []string{
	`CREATE EXTENSION IF NOT EXISTS postgis`,
	`CREATE TABLE IF NOT EXISTS parcel_master (
		apn                    TEXT PRIMARY KEY,
		jurisdiction           TEXT,
		plan_id                TEXT,
		plan_name              TEXT,
		zoning_id              TEXT,
		zoning_description     TEXT,
		town_center            TEXT,
		location_to_towncenter TEXT,
		taz                    INTEGER,
		within_bonusunit_bndy  BOOLEAN,
		within_trpa_bndy       BOOLEAN,
		parcel_acres           DOUBLE PRECISION,
		parcel_sqft            DOUBLE PRECISION,
		geom                   geometry(MultiPolygon, 4326)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_parcel_master_geom ON parcel_master USING GIST (geom)`,
	`CREATE TABLE IF NOT EXISTS parcel_history (
		id           BIGSERIAL PRIMARY KEY,
		apn          TEXT NOT NULL,
		apn_current  TEXT,
		apns_current TEXT,
		last_updated TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_parcel_history_apn ON parcel_history (apn)`,
	`CREATE TABLE IF NOT EXISTS development_right_transactions (
		id                         BIGSERIAL PRIMARY KEY,
		apn                        TEXT,
		record_type                TEXT NOT NULL,
		development_right          TEXT,
		land_capability            TEXT,
		ipes_score                 DOUBLE PRECISION,
		cumulative_banked_quantity DOUBLE PRECISION,
		remaining_banked_quantity  DOUBLE PRECISION,
		last_updated               TEXT,
		transaction_number         TEXT,
		transaction_approval_date  TEXT,
		sending_parcel             TEXT,
		receiving_parcel           TEXT,
		accela_id                  TEXT,
		jurisdiction_permit_number TEXT
	)`,
}

// Migrate creates the source tables if they do not exist.
func (db *Database) Migrate(ctx context.Context) error {
	for _, stmt := range sourceSchema {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
