package sources

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/stwalsh4118/devrights/internal/models"
)

// ErrMissingColumn is returned when a required header is absent.
var ErrMissingColumn = errors.New("required column missing")

// ErrEmptyFile is returned when a CSV input has no header row.
var ErrEmptyFile = errors.New("file is empty")

// ReadParcelsCSV reads a parcel master export.
func ReadParcelsCSV(r io.Reader) ([]models.Parcel, Stats, error) {
	var parcels []models.Parcel
	stats, err := readCSV(r, parcelRequired, func(s *Stats, get record) {
		if p, ok := s.parcel(get); ok {
			parcels = append(parcels, p)
		}
	})
	return parcels, stats, err
}

// ReadHistoryCSV reads a parcel genealogy export.
func ReadHistoryCSV(r io.Reader) ([]models.ParcelHistory, Stats, error) {
	var history []models.ParcelHistory
	stats, err := readCSV(r, historyRequired, func(s *Stats, get record) {
		if h, ok := s.history(get); ok {
			history = append(history, h)
		}
	})
	return history, stats, err
}

// ReadTransactionsCSV reads a transacted and banked development rights export.
func ReadTransactionsCSV(r io.Reader) ([]models.Transaction, Stats, error) {
	var transactions []models.Transaction
	stats, err := readCSV(r, transactionRequired, func(s *Stats, get record) {
		if tx, ok := s.transaction(get); ok {
			transactions = append(transactions, tx)
		}
	})
	return transactions, stats, err
}

// readCSV checks the header and calls row for every readable record.
// Records that fail to parse are counted and skipped.
func readCSV(r io.Reader, required []string, row func(*Stats, record)) (Stats, error) {
	var stats Stats

	reader := csv.NewReader(SkipBOM(r))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return stats, ErrEmptyFile
	}
	if err != nil {
		return stats, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colIndex, err := columnIndex(header, required)
	if err != nil {
		return stats, err
	}

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				stats.SkippedMalformed++
				continue
			}
			return stats, fmt.Errorf("failed to read CSV: %w", err)
		}
		if blankRecord(rec) {
			continue
		}

		row(&stats, func(column string) string {
			if idx, ok := colIndex[column]; ok && idx < len(rec) {
				return strings.TrimSpace(rec[idx])
			}
			return ""
		})
	}

	return stats, nil
}

// columnIndex maps trimmed header names to positions and checks required ones.
func columnIndex(header []string, required []string) (map[string]int, error) {
	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}
	for _, req := range required {
		if _, ok := colIndex[req]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, req)
		}
	}
	return colIndex, nil
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// SkipBOM drops a leading UTF-8 byte order mark.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if peeked, err := br.Peek(3); err == nil && peeked[0] == 0xEF && peeked[1] == 0xBB && peeked[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	return br
}
