package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/stwalsh4118/devrights/internal/database"
	"github.com/stwalsh4118/devrights/internal/models"
)

// HistoryRepository defines the interface for parcel genealogy access.
type HistoryRepository interface {
	// ListAll returns every history row in table order.
	ListAll(ctx context.Context) ([]models.ParcelHistory, error)

	// FindByAPN returns the history rows recorded for an old APN.
	// Returns an empty slice if the APN has no history.
	FindByAPN(ctx context.Context, apn string) ([]models.ParcelHistory, error)
}

type historyRepository struct {
	db *database.Database
}

// NewHistoryRepository creates a new instance of HistoryRepository.
func NewHistoryRepository(db *database.Database) HistoryRepository {
	return &historyRepository{db: db}
}

// Rows come back in id order so duplicate APNs keep their load order.
func (r *historyRepository) ListAll(ctx context.Context) ([]models.ParcelHistory, error) {
	query := `
		SELECT apn, apn_current, apns_current, last_updated
		FROM parcel_history
		ORDER BY id
	`
	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query parcel history: %w", err)
	}
	return collectHistory(rows)
}

func (r *historyRepository) FindByAPN(ctx context.Context, apn string) ([]models.ParcelHistory, error) {
	query := `
		SELECT apn, apn_current, apns_current, last_updated
		FROM parcel_history
		WHERE apn = $1
		ORDER BY id
	`
	rows, err := r.db.Pool.Query(ctx, query, apn)
	if err != nil {
		return nil, fmt.Errorf("failed to query parcel history for %s: %w", apn, err)
	}
	return collectHistory(rows)
}

func collectHistory(rows pgx.Rows) ([]models.ParcelHistory, error) {
	defer rows.Close()

	history := []models.ParcelHistory{}
	for rows.Next() {
		var h models.ParcelHistory
		if err := rows.Scan(&h.APN, &h.CurrentAPN, &h.CurrentAPNs, &h.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}
		history = append(history, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history rows: %w", err)
	}
	return history, nil
}
