package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UnknownDisplay is the rendered value of any absent category.
const UnknownDisplay = "Unknown"

// Sensitivity is the land-sensitivity category of a parcel.
// The zero value means the category is absent; it renders as "Unknown".
type Sensitivity int

const (
	SensitivityUnknown Sensitivity = iota
	SensitivitySEZ
	SensitivitySensitive
	SensitivityNonSensitive
)

// Known reports whether the category was actually derived.
func (s Sensitivity) Known() bool {
	return s != SensitivityUnknown
}

func (s Sensitivity) String() string {
	switch s {
	case SensitivitySEZ:
		return "SEZ"
	case SensitivitySensitive:
		return "Sensitive"
	case SensitivityNonSensitive:
		return "NonSensitive"
	default:
		return UnknownDisplay
	}
}

// ParseSensitivity maps a rendered category back to its value.
// Both "NonSensitive" and the legacy "Non-Sensitive" spelling are accepted.
func ParseSensitivity(s string) Sensitivity {
	switch strings.TrimSpace(s) {
	case "SEZ":
		return SensitivitySEZ
	case "Sensitive":
		return SensitivitySensitive
	case "NonSensitive", "Non-Sensitive":
		return SensitivityNonSensitive
	default:
		return SensitivityUnknown
	}
}

// MarshalJSON renders the category as its display string.
func (s Sensitivity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the display string or null.
func (s *Sensitivity) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal sensitivity: %w", err)
	}
	if raw == nil {
		*s = SensitivityUnknown
		return nil
	}
	*s = ParseSensitivity(*raw)
	return nil
}

// TownCenter is a parcel's proximity to a designated town center.
// The zero value means the proximity is absent.
type TownCenter int

const (
	TownCenterUnknown TownCenter = iota
	TownCenterWithin
	TownCenterQuarterMile
	TownCenterOutside
)

// Raw LOCATION_TO_TOWNCENTER values as published in the parcel master.
const (
	rawWithinTownCenter  = "Within Town Center"
	rawWithinQuarterMile = "Within Quarter Mile of Town Center"
	rawOutsideBuffer     = "Further than Quarter Mile from Town Center"
)

// Known reports whether the proximity is present.
func (t TownCenter) Known() bool {
	return t != TownCenterUnknown
}

func (t TownCenter) String() string {
	switch t {
	case TownCenterWithin:
		return "Town Center"
	case TownCenterQuarterMile:
		return "Quarter Mile Buffer"
	case TownCenterOutside:
		return "Outside Buffer"
	default:
		return UnknownDisplay
	}
}

// ParseTownCenter normalizes a LOCATION_TO_TOWNCENTER value.
// Raw parcel-master text and already normalized names are both accepted;
// surrounding whitespace is ignored. Anything else is TownCenterUnknown.
func ParseTownCenter(raw string) TownCenter {
	switch strings.TrimSpace(raw) {
	case rawWithinTownCenter, "Town Center":
		return TownCenterWithin
	case rawWithinQuarterMile, "Quarter Mile Buffer":
		return TownCenterQuarterMile
	case rawOutsideBuffer, "Outside Buffer":
		return TownCenterOutside
	default:
		return TownCenterUnknown
	}
}

// MarshalJSON renders the proximity as its normalized name.
func (t TownCenter) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts raw or normalized names, or null.
func (t *TownCenter) UnmarshalJSON(data []byte) error {
	var raw *string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to unmarshal town center: %w", err)
	}
	if raw == nil {
		*t = TownCenterUnknown
		return nil
	}
	*t = ParseTownCenter(*raw)
	return nil
}
