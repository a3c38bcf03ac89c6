package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultSRID is the spatial reference of parcel geometry (WGS84).
const DefaultSRID = 4326

// MultiPolygon is a parcel boundary in GeoJSON coordinate order:
// [polygons][rings][points][lon,lat].
// Single polygons are promoted to a one-member MultiPolygon on input so the
// enriched table carries one geometry type.
type MultiPolygon struct {
	Coordinates [][][][2]float64 // GeoJSON coordinate structure
	SRID        int              // Spatial Reference ID (default: 4326)
}

// geoJSONGeometry is the wire form of Polygon and MultiPolygon geometries.
type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// ParseGeoJSON decodes a GeoJSON Polygon or MultiPolygon.
// Blank input yields nil, nil: parcels without geometry are allowed.
func ParseGeoJSON(text string) (*MultiPolygon, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	var mp MultiPolygon
	if err := mp.decode([]byte(text), true); err != nil {
		return nil, err
	}
	return &mp, nil
}

// decode fills mp from GeoJSON. When strict is false an empty type is tolerated.
func (mp *MultiPolygon) decode(data []byte, strict bool) error {
	var geom geoJSONGeometry
	if err := json.Unmarshal(data, &geom); err != nil {
		return fmt.Errorf("failed to unmarshal parcel geometry: %w", err)
	}

	switch geom.Type {
	case "MultiPolygon", "":
		if geom.Type == "" && strict {
			return fmt.Errorf("geometry type is missing")
		}
		var coords [][][][2]float64
		if len(geom.Coordinates) > 0 {
			if err := json.Unmarshal(geom.Coordinates, &coords); err != nil {
				return fmt.Errorf("failed to unmarshal multipolygon coordinates: %w", err)
			}
		}
		mp.Coordinates = coords
	case "Polygon":
		var rings [][][2]float64
		if err := json.Unmarshal(geom.Coordinates, &rings); err != nil {
			return fmt.Errorf("failed to unmarshal polygon coordinates: %w", err)
		}
		mp.Coordinates = [][][][2]float64{rings}
	default:
		return fmt.Errorf("expected Polygon or MultiPolygon type, got %s", geom.Type)
	}

	mp.SRID = DefaultSRID
	return nil
}

// Scan implements sql.Scanner for geometry selected with ST_AsGeoJSON.
func (mp *MultiPolygon) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("failed to scan MultiPolygon: expected []byte or string, got %T", value)
	}

	return mp.decode(data, true)
}

// Value implements driver.Valuer.
// It returns GeoJSON text for use with ST_GeomFromGeoJSON, or nil when empty.
func (mp MultiPolygon) Value() (driver.Value, error) {
	if len(mp.Coordinates) == 0 {
		return nil, nil
	}

	geoJSON, err := json.Marshal(mp)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal multipolygon to GeoJSON: %w", err)
	}
	return string(geoJSON), nil
}

// GeoJSON returns the geometry as GeoJSON text, "" when empty.
func (mp *MultiPolygon) GeoJSON() string {
	if mp == nil || len(mp.Coordinates) == 0 {
		return ""
	}
	v, err := mp.Value()
	if err != nil || v == nil {
		return ""
	}
	return v.(string)
}

// MarshalJSON implements json.Marshaler with GeoJSON output.
func (mp MultiPolygon) MarshalJSON() ([]byte, error) {
	geom := struct {
		Type        string           `json:"type"`
		Coordinates [][][][2]float64 `json:"coordinates"`
	}{
		Type:        "MultiPolygon",
		Coordinates: mp.Coordinates,
	}
	return json.Marshal(geom)
}

// UnmarshalJSON implements json.Unmarshaler for GeoJSON input.
func (mp *MultiPolygon) UnmarshalJSON(data []byte) error {
	return mp.decode(data, false)
}
