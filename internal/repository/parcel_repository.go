package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/stwalsh4118/devrights/internal/database"
	"github.com/stwalsh4118/devrights/internal/models"
)

// ParcelRepository defines the interface for parcel master access.
type ParcelRepository interface {
	// ListAll returns every parcel in the master, ordered by APN.
	// Returns an empty slice if the table is empty.
	ListAll(ctx context.Context) ([]models.Parcel, error)

	// FindByAPN returns the parcel with the given APN.
	// Returns nil, nil if no parcel is found (not an error).
	FindByAPN(ctx context.Context, apn string) (*models.Parcel, error)
}

// parcelRepository is the concrete implementation of ParcelRepository.
type parcelRepository struct {
	db *database.Database
}

// NewParcelRepository creates a new instance of ParcelRepository.
func NewParcelRepository(db *database.Database) ParcelRepository {
	return &parcelRepository{
		db: db,
	}
}

const parcelColumns = `
	apn,
	jurisdiction,
	plan_id,
	plan_name,
	zoning_id,
	zoning_description,
	town_center,
	location_to_towncenter,
	taz,
	within_bonusunit_bndy,
	within_trpa_bndy,
	parcel_acres,
	parcel_sqft,
	ST_AsGeoJSON(geom) AS geometry`

// ListAll loads the parcel master. Geometry is selected as GeoJSON.
func (r *parcelRepository) ListAll(ctx context.Context) ([]models.Parcel, error) {
	query := `SELECT` + parcelColumns + ` FROM parcel_master ORDER BY apn`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query parcel master: %w", err)
	}
	defer rows.Close()

	parcels := []models.Parcel{}
	for rows.Next() {
		parcel, err := scanParcel(rows)
		if err != nil {
			return nil, err
		}
		parcels = append(parcels, *parcel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating parcel rows: %w", err)
	}

	return parcels, nil
}

// FindByAPN queries one parcel by its APN.
func (r *parcelRepository) FindByAPN(ctx context.Context, apn string) (*models.Parcel, error) {
	query := `SELECT` + parcelColumns + ` FROM parcel_master WHERE apn = $1`

	parcel, err := scanParcel(r.db.Pool.QueryRow(ctx, query, apn))
	if err != nil {
		// Handle no rows found - this is not an error at the repository level
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query parcel %s: %w", apn, err)
	}

	return parcel, nil
}

// scanParcel reads one row selected with parcelColumns.
func scanParcel(row pgx.Row) (*models.Parcel, error) {
	var parcel models.Parcel
	var location *string
	var geomJSON []byte

	err := row.Scan(
		&parcel.APN,
		&parcel.Jurisdiction,
		&parcel.PlanID,
		&parcel.PlanName,
		&parcel.ZoningID,
		&parcel.ZoningDescription,
		&parcel.TownCenterName,
		&location,
		&parcel.TAZ,
		&parcel.WithinBonusUnitBoundary,
		&parcel.WithinTRPABoundary,
		&parcel.ParcelAcres,
		&parcel.ParcelSqFt,
		&geomJSON,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan parcel row: %w", err)
	}

	parcel.LocationToTownCenter = models.ParseTownCenter(models.StringValue(location))

	// Parse GeoJSON geometry; parcels without a shape keep a nil Geom
	if geomJSON != nil {
		parcel.Geom = &models.MultiPolygon{}
		if err := parcel.Geom.Scan(geomJSON); err != nil {
			return nil, fmt.Errorf("failed to parse geometry for parcel %s: %w", parcel.APN, err)
		}
	}

	return &parcel, nil
}
