package export

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/stwalsh4118/devrights/internal/models"
)

// GeometryColumn holds the parcel boundary as GeoJSON text in SQLite.
const GeometryColumn = "GEOMETRY"

// SQLiteWriter writes the enriched table into a scratch SQLite database.
type SQLiteWriter struct {
	db    *sqlx.DB
	table string
}

// OpenSQLite opens (creating if needed) the database at path.
// table must be a plain identifier; config validation enforces this.
func OpenSQLite(path, table string) (*SQLiteWriter, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open sqlite database %s: %w", path, err)
	}
	return &SQLiteWriter{db: db, table: table}, nil
}

// DB exposes the underlying handle for inspection.
func (w *SQLiteWriter) DB() *sqlx.DB {
	return w.db
}

// Close closes the database.
func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}

// Write replaces the table with rows in one transaction, so readers see
// either the previous run or this one.
func (w *SQLiteWriter) Write(rows []models.EnrichedTransaction) error {
	tx, err := w.db.Beginx()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %q`, w.table)); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", w.table, err)
	}
	if _, err := tx.Exec(createTableSQL(w.table)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", w.table, err)
	}

	stmt, err := tx.PrepareNamed(insertSQL(w.table))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := range rows {
		rec := Record(&rows[i])
		rec[GeometryColumn] = geometryText(&rows[i])
		if _, err := stmt.Exec(rec); err != nil {
			return fmt.Errorf("failed to insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func geometryText(e *models.EnrichedTransaction) any {
	if e.Parcel == nil {
		return nil
	}
	if g := e.Parcel.Geom.GeoJSON(); g != "" {
		return g
	}
	return nil
}

func sqliteType(k Kind) string {
	switch k {
	case KindReal:
		return "REAL"
	case KindInteger, KindBool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func createTableSQL(table string) string {
	defs := make([]string, 0, len(Columns)+2)
	defs = append(defs, "OBJECTID INTEGER PRIMARY KEY AUTOINCREMENT")
	for _, c := range Columns {
		defs = append(defs, fmt.Sprintf("%q %s", c.Name, sqliteType(c.Kind)))
	}
	defs = append(defs, fmt.Sprintf("%q TEXT", GeometryColumn))
	return fmt.Sprintf("CREATE TABLE %q (\n  %s\n)", table, strings.Join(defs, ",\n  "))
}

func insertSQL(table string) string {
	names := make([]string, 0, len(Columns)+1)
	params := make([]string, 0, len(Columns)+1)
	for _, c := range Columns {
		names = append(names, fmt.Sprintf("%q", c.Name))
		params = append(params, ":"+c.Name)
	}
	names = append(names, fmt.Sprintf("%q", GeometryColumn))
	params = append(params, ":"+GeometryColumn)
	return fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)", table, strings.Join(names, ", "), strings.Join(params, ", "))
}
