package sources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/stwalsh4118/devrights/internal/models"
)

// featureSet is the feature service query response shape.
type featureSet struct {
	Features []struct {
		Attributes map[string]any `json:"attributes"`
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

// ReadTransactionsJSON reads transactions from the web service JSON.
// It accepts a plain array of records or a feature set whose features carry
// attributes (or GeoJSON properties). Numbers and strings are both accepted
// for every column.
func ReadTransactionsJSON(r io.Reader) ([]models.Transaction, Stats, error) {
	var stats Stats

	items, err := decodeRecords(r)
	if err != nil {
		return nil, stats, err
	}

	transactions := make([]models.Transaction, 0, len(items))
	for _, item := range items {
		if tx, ok := stats.transaction(jsonRecord(item)); ok {
			transactions = append(transactions, tx)
		}
	}
	return transactions, stats, nil
}

// decodeRecords returns the attribute maps of the payload.
func decodeRecords(r io.Reader) ([]map[string]any, error) {
	data, err := io.ReadAll(SkipBOM(r))
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if data[0] == '[' {
		var items []map[string]any
		if err := dec.Decode(&items); err != nil {
			return nil, fmt.Errorf("failed to decode transaction array: %w", err)
		}
		return items, nil
	}

	var set featureSet
	if err := dec.Decode(&set); err != nil {
		return nil, fmt.Errorf("failed to decode feature set: %w", err)
	}
	items := make([]map[string]any, 0, len(set.Features))
	for _, f := range set.Features {
		if f.Attributes != nil {
			items = append(items, f.Attributes)
		} else {
			items = append(items, f.Properties)
		}
	}
	return items, nil
}

// jsonRecord renders a decoded value as the text a CSV cell would hold.
func jsonRecord(item map[string]any) record {
	return func(column string) string {
		switch v := item[column].(type) {
		case nil:
			return ""
		case string:
			return strings.TrimSpace(v)
		case json.Number:
			return v.String()
		case bool:
			if v {
				return "true"
			}
			return "false"
		default:
			return strings.TrimSpace(fmt.Sprint(v))
		}
	}
}
