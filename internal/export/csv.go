package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/stwalsh4118/devrights/internal/models"
)

// WriteCSV writes the enriched table with a header row in Columns order.
// Missing values are written as empty cells.
func WriteCSV(w io.Writer, rows []models.EnrichedTransaction) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ColumnNames()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	cells := make([]string, len(Columns))
	for i := range rows {
		for j, c := range Columns {
			cells[j] = formatCell(c.value(&rows[i]))
		}
		if err := cw.Write(cells); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func formatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprint(x)
	}
}
