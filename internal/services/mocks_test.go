package services

import (
	"bytes"
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/stwalsh4118/devrights/internal/logger"
	"github.com/stwalsh4118/devrights/internal/models"
)

// testLogger returns a JSON logger writing into buf.
func testLogger(buf *bytes.Buffer) *logger.Logger {
	return logger.NewWithOptions(logger.Options{Output: buf, Env: "test", Level: "debug"})
}

// MockParcelRepository is a mock implementation of ParcelRepository for testing
type MockParcelRepository struct {
	mock.Mock
}

func (m *MockParcelRepository) ListAll(ctx context.Context) ([]models.Parcel, error) {
	args := m.Called(ctx)
	parcels, _ := args.Get(0).([]models.Parcel)
	return parcels, args.Error(1)
}

func (m *MockParcelRepository) FindByAPN(ctx context.Context, apn string) (*models.Parcel, error) {
	args := m.Called(ctx, apn)
	parcel, _ := args.Get(0).(*models.Parcel)
	return parcel, args.Error(1)
}

// MockHistoryRepository is a mock implementation of HistoryRepository for testing
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) ListAll(ctx context.Context) ([]models.ParcelHistory, error) {
	args := m.Called(ctx)
	history, _ := args.Get(0).([]models.ParcelHistory)
	return history, args.Error(1)
}

func (m *MockHistoryRepository) FindByAPN(ctx context.Context, apn string) ([]models.ParcelHistory, error) {
	args := m.Called(ctx, apn)
	history, _ := args.Get(0).([]models.ParcelHistory)
	return history, args.Error(1)
}

// MockTransactionRepository is a mock implementation of TransactionRepository for testing
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) ListAll(ctx context.Context) ([]models.Transaction, error) {
	args := m.Called(ctx)
	txs, _ := args.Get(0).([]models.Transaction)
	return txs, args.Error(1)
}

// MockEnrichedRepository is a mock implementation of EnrichedTransactionRepository for testing
type MockEnrichedRepository struct {
	mock.Mock
}

func (m *MockEnrichedRepository) EnsureTable(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockEnrichedRepository) ReplaceAll(ctx context.Context, runID string, rows []models.EnrichedTransaction) (int64, error) {
	args := m.Called(ctx, runID, rows)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockEnrichedRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}
