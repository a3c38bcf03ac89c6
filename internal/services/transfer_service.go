package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stwalsh4118/devrights/internal/filter"
	"github.com/stwalsh4118/devrights/internal/logger"
	"github.com/stwalsh4118/devrights/internal/metrics"
	"github.com/stwalsh4118/devrights/internal/models"
	"github.com/stwalsh4118/devrights/internal/reconcile"
	"github.com/stwalsh4118/devrights/internal/repository"
)

// Transfer service errors
var (
	ErrNoTransactions = errors.New("no transactions to reconcile")
	ErrInvalidFilter  = errors.New("invalid row filter")

	// ErrStoreUnavailable wraps failures to connect to the database.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Tables are the three inputs of a reconciliation run.
type Tables struct {
	Parcels      []models.Parcel
	History      []models.ParcelHistory
	Transactions []models.Transaction
	// Source labels the run in metrics; defaults to metrics.SourceUpload.
	Source string
}

// ReconcileResult is an enriched table, optionally filtered, and the
// summary of the full run.
type ReconcileResult struct {
	RunID        string
	Transactions []models.EnrichedTransaction
	Summary      reconcile.Summary
	Duration     time.Duration
}

// RefreshResult describes a database refresh.
type RefreshResult struct {
	RunID    string
	Summary  reconcile.Summary
	Stored   int64
	Duration time.Duration
}

// Store groups the repositories a refresh reads from and writes to.
type Store struct {
	Parcels      repository.ParcelRepository
	History      repository.HistoryRepository
	Transactions repository.TransactionRepository
	Enriched     repository.EnrichedTransactionRepository
}

// TransferService runs reconciliations.
type TransferService interface {
	// Reconcile enriches the given tables. where, when not blank, is a row
	// filter applied to the finished rows; the summary always covers the
	// whole run.
	// Returns ErrNoTransactions when there is nothing to reconcile.
	// Returns ErrInvalidFilter when where does not compile or evaluate.
	Reconcile(ctx context.Context, tables Tables, where string) (*ReconcileResult, error)

	// Refresh reconciles the database tables and replaces the stored
	// enriched table.
	Refresh(ctx context.Context) (*RefreshResult, error)
}

type transferService struct {
	store   Store
	filter  *filter.Evaluator
	metrics *metrics.Collector
	log     *logger.Logger
}

// NewTransferService creates a new instance of TransferService.
func NewTransferService(store Store, evaluator *filter.Evaluator, collector *metrics.Collector, log *logger.Logger) TransferService {
	return &transferService{
		store:   store,
		filter:  evaluator,
		metrics: collector,
		log:     log,
	}
}

func (s *transferService) Reconcile(ctx context.Context, tables Tables, where string) (*ReconcileResult, error) {
	runID := uuid.NewString()
	log := s.log.WithRunID(runID)

	source := tables.Source
	if source == "" {
		source = metrics.SourceUpload
	}

	if len(tables.Transactions) == 0 {
		log.Warn("Reconciliation requested without transactions", map[string]interface{}{"source": source})
		return nil, ErrNoTransactions
	}

	if where != "" {
		if _, err := s.filter.Compile(where); err != nil {
			log.Warn("Rejected row filter", map[string]interface{}{"where": where, "error": err.Error()})
			return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	result := reconcile.Run(tables.Transactions, tables.Parcels, tables.History)

	rows, err := s.filter.Apply(where, result.Transactions)
	if err != nil {
		s.metrics.RecordFailure(source, time.Since(start))
		log.Warn("Row filter failed", map[string]interface{}{"where": where, "error": err.Error()})
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}

	duration := time.Since(start)
	s.metrics.RecordRun(source, result.Summary, duration)
	logSummary(log, source, result.Summary, duration)

	return &ReconcileResult{
		RunID:        runID,
		Transactions: rows,
		Summary:      result.Summary,
		Duration:     duration,
	}, nil
}

func (s *transferService) Refresh(ctx context.Context) (*RefreshResult, error) {
	runID := uuid.NewString()
	log := s.log.WithRunID(runID)
	start := time.Now()

	fail := func(msg string, err error) error {
		s.metrics.RecordFailure(metrics.SourceDatabase, time.Since(start))
		log.Error(msg, err, nil)
		var connErr *pgconn.ConnectError
		if errors.As(err, &connErr) {
			return fmt.Errorf("%s: %w: %w", msg, ErrStoreUnavailable, err)
		}
		return fmt.Errorf("%s: %w", msg, err)
	}

	parcels, err := s.store.Parcels.ListAll(ctx)
	if err != nil {
		return nil, fail("failed to load parcels", err)
	}
	history, err := s.store.History.ListAll(ctx)
	if err != nil {
		return nil, fail("failed to load parcel history", err)
	}
	transactions, err := s.store.Transactions.ListAll(ctx)
	if err != nil {
		return nil, fail("failed to load transactions", err)
	}

	if len(transactions) == 0 {
		log.Warn("Transaction table is empty", nil)
		return nil, ErrNoTransactions
	}

	result := reconcile.Run(transactions, parcels, history)

	stored, err := s.store.Enriched.ReplaceAll(ctx, runID, result.Transactions)
	if err != nil {
		return nil, fail("failed to store enriched transactions", err)
	}

	duration := time.Since(start)
	s.metrics.RecordRun(metrics.SourceDatabase, result.Summary, duration)
	logSummary(log, metrics.SourceDatabase, result.Summary, duration)

	return &RefreshResult{
		RunID:    runID,
		Summary:  result.Summary,
		Stored:   stored,
		Duration: duration,
	}, nil
}

// logSummary writes the run counts, and a warning listing APNs that could
// not be joined.
func logSummary(log *logger.Logger, source string, summary reconcile.Summary, duration time.Duration) {
	log.Info("Reconciliation complete", map[string]interface{}{
		"source":               source,
		"duration_ms":          duration.Milliseconds(),
		"input_transactions":   summary.InputTransactions,
		"retained":             summary.Retained,
		"excluded_record_type": summary.ExcludedRecordType,
		"excluded_unapproved":  summary.ExcludedUnapproved,
		"joined":               summary.Joined,
		"resolved":             summary.Resolved,
		"ambiguous":            summary.Ambiguous,
		"missing":              summary.Missing,
		"duplicate_history":    summary.DuplicateHistory,
	})

	if len(summary.UnjoinedAPNs) > 0 {
		log.Warn("Transactions without a parcel", map[string]interface{}{
			"count": len(summary.UnjoinedAPNs),
			"apns":  summary.UnjoinedAPNs,
		})
	}
}
