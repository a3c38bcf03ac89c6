// Package export writes the enriched transfer table to CSV, GeoJSON and SQLite.
package export

import (
	"strings"

	"github.com/stwalsh4118/devrights/internal/models"
)

// Kind is the storage type of an output column.
type Kind int

const (
	KindText Kind = iota
	KindReal
	KindInteger
	KindBool
)

// Column is one field of the enriched table.
type Column struct {
	Name  string
	Kind  Kind
	value func(e *models.EnrichedTransaction) any
}

// Columns is the fixed column order of every export.
var Columns = []Column{
	text("APN", func(e *models.EnrichedTransaction) *string { return reported(e) }),
	text("NewAPN", newAPN),
	text("JoinStatus", func(e *models.EnrichedTransaction) *string { return str(string(e.JoinStatus)) }),
	text("Successors", func(e *models.EnrichedTransaction) *string { return models.StringPtr(strings.Join(e.Successors, ", ")) }),
	text("RecordType", func(e *models.EnrichedTransaction) *string { return str(string(e.RecordType)) }),
	text("DevelopmentRight", func(e *models.EnrichedTransaction) *string { return e.DevelopmentRight }),
	text("LandCapability", func(e *models.EnrichedTransaction) *string { return e.LandCapability }),
	number("IPESScore", func(e *models.EnrichedTransaction) *float64 { return e.IPESScore }),
	number("CumulativeBankedQuantity", func(e *models.EnrichedTransaction) *float64 { return e.CumulativeBankedQuantity }),
	number("RemainingBankedQuantity", func(e *models.EnrichedTransaction) *float64 { return e.RemainingBankedQuantity }),
	text("LastUpdated", func(e *models.EnrichedTransaction) *string { return e.LastUpdated }),
	text("TransactionNumber", func(e *models.EnrichedTransaction) *string { return e.TransactionNumber }),
	text("TransactionApprovalDate", func(e *models.EnrichedTransaction) *string { return models.StringPtr(e.TransactionApprovalDate) }),
	text("SendingParcel", func(e *models.EnrichedTransaction) *string { return e.SendingParcel }),
	text("ReceivingParcel", func(e *models.EnrichedTransaction) *string { return e.ReceivingParcel }),
	text("AccelaID", func(e *models.EnrichedTransaction) *string { return e.AccelaID }),
	text("JurisdictionPermitNumber", func(e *models.EnrichedTransaction) *string { return e.JurisdictionPermitNumber }),

	text("JURISDICTION", parcelText(func(p *models.Parcel) *string { return p.Jurisdiction })),
	text("PLAN_ID", parcelText(func(p *models.Parcel) *string { return p.PlanID })),
	text("PLAN_NAME", parcelText(func(p *models.Parcel) *string { return p.PlanName })),
	text("ZONING_ID", parcelText(func(p *models.Parcel) *string { return p.ZoningID })),
	text("ZONING_DESCRIPTION", parcelText(func(p *models.Parcel) *string { return p.ZoningDescription })),
	text("TOWN_CENTER", parcelText(func(p *models.Parcel) *string { return p.TownCenterName })),
	text("LOCATION_TO_TOWNCENTER", func(e *models.EnrichedTransaction) *string { return str(e.TownCenter.String()) }),
	{Name: "TAZ", Kind: KindInteger, value: func(e *models.EnrichedTransaction) any {
		if e.Parcel == nil || e.Parcel.TAZ == nil {
			return nil
		}
		return int64(*e.Parcel.TAZ)
	}},
	boolean("WITHIN_BONUSUNIT_BNDY", func(p *models.Parcel) *bool { return p.WithinBonusUnitBoundary }),
	boolean("WITHIN_TRPA_BNDY", func(p *models.Parcel) *bool { return p.WithinTRPABoundary }),
	number("PARCEL_ACRES", parcelReal(func(p *models.Parcel) *float64 { return p.ParcelAcres })),
	number("PARCEL_SQFT", parcelReal(func(p *models.Parcel) *float64 { return p.ParcelSqFt })),

	text("SendingVsReceiving", func(e *models.EnrichedTransaction) *string { return str(e.Role.String()) }),
	text("LandCapabilityCategory", func(e *models.EnrichedTransaction) *string { return str(e.Sensitivity.String()) }),
	text("CounterpartSensitivity", func(e *models.EnrichedTransaction) *string { return str(e.CounterpartSensitivity.String()) }),
	text("Sensitivity_Transition", func(e *models.EnrichedTransaction) *string { return str(e.SensitivityTransition) }),
	text("CounterpartTownCenter", func(e *models.EnrichedTransaction) *string { return str(e.CounterpartTownCenter.String()) }),
	text("TownCenter_Transition", func(e *models.EnrichedTransaction) *string { return str(e.TownCenterTransition) }),
	text("LandSensitivity_and_TownCenter_Transition", func(e *models.EnrichedTransaction) *string {
		return str(e.LandSensitivityAndTownCenterTransition)
	}),
}

// ColumnNames returns the export header.
func ColumnNames() []string {
	names := make([]string, len(Columns))
	for i, c := range Columns {
		names[i] = c.Name
	}
	return names
}

// Record returns the row as column name to value. Missing values are nil;
// present values are string, float64, int64 or bool.
func Record(e *models.EnrichedTransaction) map[string]any {
	rec := make(map[string]any, len(Columns))
	for _, c := range Columns {
		rec[c.Name] = c.value(e)
	}
	return rec
}

// reported is the APN as it appeared in the transaction feed.
func reported(e *models.EnrichedTransaction) *string {
	if e.OriginalAPN != "" {
		return str(e.OriginalAPN)
	}
	return str(e.APN)
}

// newAPN is set only when history resolution replaced the reported APN.
func newAPN(e *models.EnrichedTransaction) *string {
	if !e.Renumbered() {
		return nil
	}
	return str(e.APN)
}

func str(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func text(name string, get func(*models.EnrichedTransaction) *string) Column {
	return Column{Name: name, Kind: KindText, value: func(e *models.EnrichedTransaction) any {
		if v := get(e); v != nil {
			return *v
		}
		return nil
	}}
}

func number(name string, get func(*models.EnrichedTransaction) *float64) Column {
	return Column{Name: name, Kind: KindReal, value: func(e *models.EnrichedTransaction) any {
		if v := get(e); v != nil {
			return *v
		}
		return nil
	}}
}

func boolean(name string, get func(*models.Parcel) *bool) Column {
	return Column{Name: name, Kind: KindBool, value: func(e *models.EnrichedTransaction) any {
		if e.Parcel == nil {
			return nil
		}
		if v := get(e.Parcel); v != nil {
			return *v
		}
		return nil
	}}
}

func parcelText(get func(*models.Parcel) *string) func(*models.EnrichedTransaction) *string {
	return func(e *models.EnrichedTransaction) *string {
		if e.Parcel == nil {
			return nil
		}
		return get(e.Parcel)
	}
}

func parcelReal(get func(*models.Parcel) *float64) func(*models.EnrichedTransaction) *float64 {
	return func(e *models.EnrichedTransaction) *float64 {
		if e.Parcel == nil {
			return nil
		}
		return get(e.Parcel)
	}
}
