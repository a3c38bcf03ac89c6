package sources

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/stwalsh4118/devrights/internal/models"
)

// LoadParcels reads a parcel master CSV file.
func LoadParcels(path, encoding string) ([]models.Parcel, Stats, error) {
	var parcels []models.Parcel
	var stats Stats
	err := withFile(path, encoding, func(r io.Reader) error {
		var err error
		parcels, stats, err = ReadParcelsCSV(r)
		return err
	})
	return parcels, stats, err
}

// LoadHistory reads a parcel history CSV file.
func LoadHistory(path, encoding string) ([]models.ParcelHistory, Stats, error) {
	var history []models.ParcelHistory
	var stats Stats
	err := withFile(path, encoding, func(r io.Reader) error {
		var err error
		history, stats, err = ReadHistoryCSV(r)
		return err
	})
	return history, stats, err
}

// LoadTransactions reads and concatenates transaction files in the given
// order. Files ending in .json are read as web service JSON, anything else
// as CSV.
func LoadTransactions(paths []string, encoding string) ([]models.Transaction, Stats, error) {
	var all []models.Transaction
	var total Stats

	for _, path := range paths {
		err := withFile(path, encoding, func(r io.Reader) error {
			var (
				txs   []models.Transaction
				stats Stats
				err   error
			)
			if strings.EqualFold(filepath.Ext(path), ".json") {
				txs, stats, err = ReadTransactionsJSON(r)
			} else {
				txs, stats, err = ReadTransactionsCSV(r)
			}
			if err != nil {
				return err
			}
			all = append(all, txs...)
			total.Add(stats)
			return nil
		})
		if err != nil {
			return nil, total, err
		}
	}

	return all, total, nil
}

func withFile(path, encoding string, read func(io.Reader) error) error {
	f, err := Open(path, encoding)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := read(f); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
