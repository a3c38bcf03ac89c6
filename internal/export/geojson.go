package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/stwalsh4118/devrights/internal/models"
)

type featureCollection struct {
	Type     string    `json:"type"`
	Features []feature `json:"features"`
}

type feature struct {
	Type       string               `json:"type"`
	Geometry   *models.MultiPolygon `json:"geometry"`
	Properties map[string]any       `json:"properties"`
}

// WriteGeoJSON writes the enriched table as a FeatureCollection with one
// feature per row. Rows whose parcel was not found have a null geometry.
func WriteGeoJSON(w io.Writer, rows []models.EnrichedTransaction) error {
	fc := featureCollection{
		Type:     "FeatureCollection",
		Features: make([]feature, 0, len(rows)),
	}

	for i := range rows {
		f := feature{
			Type:       "Feature",
			Properties: Record(&rows[i]),
		}
		if p := rows[i].Parcel; p != nil && p.Geom != nil && len(p.Geom.Coordinates) > 0 {
			f.Geometry = p.Geom
		}
		fc.Features = append(fc.Features, f)
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(fc); err != nil {
		return fmt.Errorf("failed to encode GeoJSON: %w", err)
	}
	return nil
}
