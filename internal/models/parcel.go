package models

import (
	"strings"
	"time"
)

// Parcel is one row of the parcel master.
// Nullable attributes use pointers to distinguish between zero values and NULL.
type Parcel struct {
	Geom                    *MultiPolygon `json:"geometry,omitempty"`
	Jurisdiction            *string       `json:"JURISDICTION,omitempty"`
	PlanID                  *string       `json:"PLAN_ID,omitempty"`
	PlanName                *string       `json:"PLAN_NAME,omitempty"`
	ZoningID                *string       `json:"ZONING_ID,omitempty"`
	ZoningDescription       *string       `json:"ZONING_DESCRIPTION,omitempty"`
	TownCenterName          *string       `json:"TOWN_CENTER,omitempty"`
	TAZ                     *int          `json:"TAZ,omitempty"`
	WithinBonusUnitBoundary *bool         `json:"WITHIN_BONUSUNIT_BNDY,omitempty"`
	WithinTRPABoundary      *bool         `json:"WITHIN_TRPA_BNDY,omitempty"`
	ParcelAcres             *float64      `json:"PARCEL_ACRES,omitempty"`
	ParcelSqFt              *float64      `json:"PARCEL_SQFT,omitempty"`
	APN                     string        `json:"APN" binding:"required,apn"`
	LocationToTownCenter    TownCenter    `json:"LOCATION_TO_TOWNCENTER"`
}

// ParcelHistory records what an inactive APN became.
// CurrentAPN holds a one-to-one successor; CurrentAPNs holds the
// comma-delimited successors of a split.
type ParcelHistory struct {
	LastUpdated *time.Time `json:"LastUpdated,omitempty"`
	CurrentAPN  *string    `json:"APN_Current,omitempty"`
	CurrentAPNs *string    `json:"APNs_Current,omitempty"`
	APN         string     `json:"APN" binding:"required,apn"`
}

// StringPtr returns a pointer to the trimmed value, or nil when it is blank.
func StringPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// StringValue dereferences s, returning "" for nil.
func StringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
