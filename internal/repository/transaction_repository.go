package repository

import (
	"context"
	"fmt"

	"github.com/stwalsh4118/devrights/internal/database"
	"github.com/stwalsh4118/devrights/internal/models"
)

// TransactionRepository defines the interface for the transacted and banked
// development rights table.
type TransactionRepository interface {
	// ListAll returns every transaction in load order, unfiltered.
	ListAll(ctx context.Context) ([]models.Transaction, error)
}

type transactionRepository struct {
	db *database.Database
}

// NewTransactionRepository creates a new instance of TransactionRepository.
func NewTransactionRepository(db *database.Database) TransactionRepository {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) ListAll(ctx context.Context) ([]models.Transaction, error) {
	query := `
		SELECT
			COALESCE(apn, ''),
			record_type,
			development_right,
			land_capability,
			ipes_score,
			cumulative_banked_quantity,
			remaining_banked_quantity,
			last_updated,
			transaction_number,
			COALESCE(transaction_approval_date, ''),
			sending_parcel,
			receiving_parcel,
			accela_id,
			jurisdiction_permit_number
		FROM development_right_transactions
		ORDER BY id
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.Transaction{}
	for rows.Next() {
		var tx models.Transaction
		var recordType string
		err := rows.Scan(
			&tx.APN,
			&recordType,
			&tx.DevelopmentRight,
			&tx.LandCapability,
			&tx.IPESScore,
			&tx.CumulativeBankedQuantity,
			&tx.RemainingBankedQuantity,
			&tx.LastUpdated,
			&tx.TransactionNumber,
			&tx.TransactionApprovalDate,
			&tx.SendingParcel,
			&tx.ReceivingParcel,
			&tx.AccelaID,
			&tx.JurisdictionPermitNumber,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}
		tx.RecordType = models.RecordType(recordType)
		transactions = append(transactions, tx)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows: %w", err)
	}
	return transactions, nil
}
