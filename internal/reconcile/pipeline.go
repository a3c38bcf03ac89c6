package reconcile

import (
	"sort"

	"github.com/stwalsh4118/devrights/internal/models"
)

// Summary counts what happened to the rows of one reconciliation run.
type Summary struct {
	UnjoinedAPNs       []string `json:"unjoinedApns" yaml:"unjoined_apns"`
	InputTransactions  int      `json:"inputTransactions" yaml:"input_transactions"`
	Retained           int      `json:"retained" yaml:"retained"`
	ExcludedRecordType int      `json:"excludedRecordType" yaml:"excluded_record_type"`
	ExcludedUnapproved int      `json:"excludedUnapproved" yaml:"excluded_unapproved"`
	Parcels            int      `json:"parcels" yaml:"parcels"`
	HistoryRows        int      `json:"historyRows" yaml:"history_rows"`
	DuplicateHistory   int      `json:"duplicateHistory" yaml:"duplicate_history"`
	Joined             int      `json:"joined" yaml:"joined"`
	Resolved           int      `json:"resolved" yaml:"resolved"`
	Ambiguous          int      `json:"ambiguous" yaml:"ambiguous"`
	Missing            int      `json:"missing" yaml:"missing"`
}

// Result is the enriched table of a run and its summary.
type Result struct {
	Transactions []models.EnrichedTransaction `json:"transactions"`
	Summary      Summary                      `json:"summary"`
}

// Filter keeps approved transactions of a recognized transfer record type.
// A row failing both checks counts as excluded by record type.
func Filter(transactions []models.Transaction) (kept []models.Transaction, excludedRecordType, excludedUnapproved int) {
	kept = make([]models.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if !tx.RecordType.Recognized() {
			excludedRecordType++
			continue
		}
		if !tx.Approved() {
			excludedUnapproved++
			continue
		}
		kept = append(kept, tx)
	}
	return kept, excludedRecordType, excludedUnapproved
}

// Run reconciles one transaction table against one parcel table.
// It filters the transactions, indexes parcels and history, and enriches
// every retained row. Identical inputs always produce identical results.
func Run(transactions []models.Transaction, parcels []models.Parcel, history []models.ParcelHistory) *Result {
	kept, excludedType, excludedUnapproved := Filter(transactions)

	parcelIndex := BuildIndex(parcels)
	historyIndex := BuildHistoryIndex(history)

	rows := Enrich(kept, parcelIndex, historyIndex)

	summary := Summary{
		InputTransactions:  len(transactions),
		Retained:           len(kept),
		ExcludedRecordType: excludedType,
		ExcludedUnapproved: excludedUnapproved,
		Parcels:            len(parcelIndex),
		HistoryRows:        historyIndex.Total(),
		DuplicateHistory:   historyIndex.Duplicates(),
		UnjoinedAPNs:       []string{},
	}

	unjoined := make(map[string]struct{})
	for _, row := range rows {
		switch row.JoinStatus {
		case models.JoinStatusJoined:
			summary.Joined++
		case models.JoinStatusResolved:
			summary.Resolved++
		case models.JoinStatusAmbiguous:
			summary.Ambiguous++
			unjoined[row.OriginalAPN] = struct{}{}
		default:
			summary.Missing++
			unjoined[row.OriginalAPN] = struct{}{}
		}
	}
	delete(unjoined, "")
	for apn := range unjoined {
		summary.UnjoinedAPNs = append(summary.UnjoinedAPNs, apn)
	}
	sort.Strings(summary.UnjoinedAPNs)

	return &Result{Transactions: rows, Summary: summary}
}
