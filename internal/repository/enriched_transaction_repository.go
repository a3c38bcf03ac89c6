package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/stwalsh4118/devrights/internal/database"
	"github.com/stwalsh4118/devrights/internal/export"
	"github.com/stwalsh4118/devrights/internal/models"
)

// Extra columns of the enriched table besides export.Columns.
const (
	runIDColumn   = "run_id"
	geoJSONColumn = "geojson"
	geomColumn    = "geom"
)

// EnrichedTransactionRepository stores the enriched transfer table.
type EnrichedTransactionRepository interface {
	// EnsureTable creates the table if it does not exist.
	EnsureTable(ctx context.Context) error

	// ReplaceAll swaps the table contents for rows in one transaction and
	// returns the number of rows written.
	ReplaceAll(ctx context.Context, runID string, rows []models.EnrichedTransaction) (int64, error)

	// Count returns the number of stored rows.
	Count(ctx context.Context) (int64, error)
}

type enrichedTransactionRepository struct {
	db    *database.Database
	table pgx.Identifier
}

// NewEnrichedTransactionRepository creates a repository writing to table.
func NewEnrichedTransactionRepository(db *database.Database, table string) EnrichedTransactionRepository {
	return &enrichedTransactionRepository{
		db:    db,
		table: pgx.Identifier{table},
	}
}

func (r *enrichedTransactionRepository) EnsureTable(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, createEnrichedTableSQL(r.table)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", r.table.Sanitize(), err)
	}
	return nil
}

// ReplaceAll truncates the table and bulk loads rows with COPY. The geometry
// column is generated from the GeoJSON text by PostGIS.
func (r *enrichedTransactionRepository) ReplaceAll(ctx context.Context, runID string, rows []models.EnrichedTransaction) (int64, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "TRUNCATE TABLE "+r.table.Sanitize()); err != nil {
		return 0, fmt.Errorf("failed to truncate %s: %w", r.table.Sanitize(), err)
	}

	n, err := tx.CopyFrom(ctx, r.table, copyColumns(), &enrichedSource{rows: rows, runID: runID, idx: -1})
	if err != nil {
		return 0, fmt.Errorf("failed to copy enriched rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit enriched rows: %w", err)
	}
	return n, nil
}

func (r *enrichedTransactionRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.Pool.QueryRow(ctx, "SELECT COUNT(*) FROM "+r.table.Sanitize()).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", r.table.Sanitize(), err)
	}
	return n, nil
}

// enrichedSource streams rows to COPY without building them all up front.
type enrichedSource struct {
	rows  []models.EnrichedTransaction
	runID string
	idx   int
}

func (s *enrichedSource) Next() bool {
	s.idx++
	return s.idx < len(s.rows)
}

func (s *enrichedSource) Values() ([]any, error) {
	row := &s.rows[s.idx]
	rec := export.Record(row)

	values := make([]any, 0, len(export.Columns)+2)
	values = append(values, s.runID)
	for _, c := range export.Columns {
		values = append(values, rec[c.Name])
	}

	var geoJSON any
	if row.Parcel != nil {
		if g := row.Parcel.Geom.GeoJSON(); g != "" {
			geoJSON = g
		}
	}
	values = append(values, geoJSON)
	return values, nil
}

func (s *enrichedSource) Err() error {
	return nil
}

func copyColumns() []string {
	cols := make([]string, 0, len(export.Columns)+2)
	cols = append(cols, runIDColumn)
	cols = append(cols, export.ColumnNames()...)
	cols = append(cols, geoJSONColumn)
	return cols
}

func postgresType(k export.Kind) string {
	switch k {
	case export.KindReal:
		return "DOUBLE PRECISION"
	case export.KindInteger:
		return "BIGINT"
	case export.KindBool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

func createEnrichedTableSQL(table pgx.Identifier) string {
	defs := []string{
		"id BIGSERIAL PRIMARY KEY",
		pgx.Identifier{runIDColumn}.Sanitize() + " TEXT NOT NULL",
	}
	for _, c := range export.Columns {
		defs = append(defs, pgx.Identifier{c.Name}.Sanitize()+" "+postgresType(c.Kind))
	}
	defs = append(defs,
		pgx.Identifier{geoJSONColumn}.Sanitize()+" TEXT",
		fmt.Sprintf("%s geometry(MultiPolygon, %d) GENERATED ALWAYS AS (ST_SetSRID(ST_GeomFromGeoJSON(%s), %d)) STORED",
			pgx.Identifier{geomColumn}.Sanitize(), models.DefaultSRID,
			pgx.Identifier{geoJSONColumn}.Sanitize(), models.DefaultSRID),
	)
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", table.Sanitize(), strings.Join(defs, ",\n\t"))
}
