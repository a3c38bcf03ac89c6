package services

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/devrights/internal/filter"
	"github.com/stwalsh4118/devrights/internal/metrics"
	"github.com/stwalsh4118/devrights/internal/models"
)

type transferFixture struct {
	service      TransferService
	parcels      *MockParcelRepository
	history      *MockHistoryRepository
	transactions *MockTransactionRepository
	enriched     *MockEnrichedRepository
	logs         *bytes.Buffer
}

func newTransferFixture(t *testing.T) *transferFixture {
	t.Helper()

	evaluator, err := filter.NewEvaluator()
	require.NoError(t, err)

	f := &transferFixture{
		parcels:      new(MockParcelRepository),
		history:      new(MockHistoryRepository),
		transactions: new(MockTransactionRepository),
		enriched:     new(MockEnrichedRepository),
		logs:         new(bytes.Buffer),
	}
	f.service = NewTransferService(Store{
		Parcels:      f.parcels,
		History:      f.history,
		Transactions: f.transactions,
		Enriched:     f.enriched,
	}, evaluator, metrics.NewCollector(""), testLogger(f.logs))
	return f
}

func sampleTables() Tables {
	return Tables{
		Parcels: []models.Parcel{
			{APN: "S", Jurisdiction: models.StringPtr("WA"), LocationToTownCenter: models.TownCenterOutside},
			{APN: "R", Jurisdiction: models.StringPtr("PL"), LocationToTownCenter: models.TownCenterWithin},
		},
		Transactions: []models.Transaction{
			{APN: "S", RecordType: models.RecordTypeSendingTransfer, TransactionApprovalDate: "2020-01-01",
				LandCapability: models.StringPtr("Bailey 1b"), ReceivingParcel: models.StringPtr("R")},
			{APN: "R", RecordType: models.RecordTypeReceivingTransfer, TransactionApprovalDate: "2020-01-01",
				LandCapability: models.StringPtr("Bailey 5"), SendingParcel: models.StringPtr("S")},
			{APN: "Q", RecordType: models.RecordTypeReceivingTransfer, TransactionApprovalDate: "2020-01-01"},
			{APN: "S", RecordType: "Allocation", TransactionApprovalDate: "2020-01-01"},
		},
	}
}

func TestReconcile_Success(t *testing.T) {
	f := newTransferFixture(t)

	result, err := f.service.Reconcile(context.Background(), sampleTables(), "")
	require.NoError(t, err)

	_, err = uuid.Parse(result.RunID)
	assert.NoError(t, err)
	assert.Len(t, result.Transactions, 3)
	assert.Equal(t, 4, result.Summary.InputTransactions)
	assert.Equal(t, 1, result.Summary.ExcludedRecordType)
	assert.Equal(t, 2, result.Summary.Joined)
	assert.Equal(t, []string{"Q"}, result.Summary.UnjoinedAPNs)

	assert.Equal(t, "From SEZ to NonSensitive", result.Transactions[0].SensitivityTransition)

	logs := f.logs.String()
	assert.Contains(t, logs, "Reconciliation complete")
	assert.Contains(t, logs, result.RunID)
	assert.Contains(t, logs, "Transactions without a parcel")
}

func TestReconcile_WithFilter(t *testing.T) {
	f := newTransferFixture(t)

	result, err := f.service.Reconcile(context.Background(), sampleTables(), `row.JURISDICTION == "PL"`)
	require.NoError(t, err)

	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "R", result.Transactions[0].APN)
	// Filtering happens after enrichment: the counterpart is still known.
	assert.Equal(t, models.SensitivitySEZ, result.Transactions[0].CounterpartSensitivity)
	assert.Equal(t, 3, result.Summary.Retained)
}

func TestReconcile_InvalidFilter(t *testing.T) {
	f := newTransferFixture(t)

	_, err := f.service.Reconcile(context.Background(), sampleTables(), `row.APN ==`)
	assert.ErrorIs(t, err, ErrInvalidFilter)

	_, err = f.service.Reconcile(context.Background(), sampleTables(), `row.APN`)
	assert.ErrorIs(t, err, ErrInvalidFilter)
}

func TestReconcile_NoTransactions(t *testing.T) {
	f := newTransferFixture(t)

	_, err := f.service.Reconcile(context.Background(), Tables{Parcels: sampleTables().Parcels}, "")
	assert.ErrorIs(t, err, ErrNoTransactions)
}

func TestReconcile_CancelledContext(t *testing.T) {
	f := newTransferFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.service.Reconcile(ctx, sampleTables(), "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRefresh_Success(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()
	tables := sampleTables()

	f.parcels.On("ListAll", ctx).Return(tables.Parcels, nil)
	f.history.On("ListAll", ctx).Return([]models.ParcelHistory{}, nil)
	f.transactions.On("ListAll", ctx).Return(tables.Transactions, nil)
	f.enriched.On("ReplaceAll", ctx, mock.AnythingOfType("string"), mock.MatchedBy(func(rows []models.EnrichedTransaction) bool {
		return len(rows) == 3
	})).Return(int64(3), nil)

	result, err := f.service.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), result.Stored)
	assert.Equal(t, 3, result.Summary.Retained)

	runID := f.enriched.Calls[0].Arguments.String(1)
	assert.Equal(t, result.RunID, runID)
	f.enriched.AssertExpectations(t)
}

func TestRefresh_LoadError(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()

	dbErr := errors.New("connection reset")
	f.parcels.On("ListAll", ctx).Return(nil, dbErr)

	_, err := f.service.Refresh(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbErr)
	f.history.AssertNotCalled(t, "ListAll", mock.Anything)
	f.enriched.AssertNotCalled(t, "ReplaceAll", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefresh_EmptyTransactions(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()

	f.parcels.On("ListAll", ctx).Return([]models.Parcel{}, nil)
	f.history.On("ListAll", ctx).Return([]models.ParcelHistory{}, nil)
	f.transactions.On("ListAll", ctx).Return([]models.Transaction{}, nil)

	_, err := f.service.Refresh(ctx)
	assert.ErrorIs(t, err, ErrNoTransactions)
}

func TestRefresh_StoreError(t *testing.T) {
	f := newTransferFixture(t)
	ctx := context.Background()
	tables := sampleTables()

	f.parcels.On("ListAll", ctx).Return(tables.Parcels, nil)
	f.history.On("ListAll", ctx).Return([]models.ParcelHistory{}, nil)
	f.transactions.On("ListAll", ctx).Return(tables.Transactions, nil)
	f.enriched.On("ReplaceAll", ctx, mock.Anything, mock.Anything).Return(int64(0), errors.New("copy failed"))

	_, err := f.service.Refresh(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store enriched transactions")
}
