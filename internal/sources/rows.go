package sources

import (
	"strings"

	"github.com/stwalsh4118/devrights/internal/models"
)

// Stats reports what a reader kept and skipped.
type Stats struct {
	Rows int `json:"rows" yaml:"rows"`
	// SkippedBlankKey counts parcel and history rows dropped for a blank
	// APN. They cannot be indexed.
	SkippedBlankKey int `json:"skippedBlankKey" yaml:"skipped_blank_key"`
	// BlankAPN counts transaction rows read without an APN. They are kept
	// and end up unjoined.
	BlankAPN int `json:"blankApn" yaml:"blank_apn"`
	// SkippedMalformed counts rows the CSV reader could not parse.
	SkippedMalformed int `json:"skippedMalformed" yaml:"skipped_malformed"`
	// InvalidValues counts cells that were present but could not be
	// converted and were read as missing.
	InvalidValues int `json:"invalidValues" yaml:"invalid_values"`
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Rows += other.Rows
	s.SkippedBlankKey += other.SkippedBlankKey
	s.BlankAPN += other.BlankAPN
	s.SkippedMalformed += other.SkippedMalformed
	s.InvalidValues += other.InvalidValues
}

// record returns the trimmed value of a column, or "" when it is absent.
type record func(column string) string

func (s *Stats) parcel(get record) (models.Parcel, bool) {
	apn := strings.TrimSpace(get(colAPN))
	if apn == "" {
		s.SkippedBlankKey++
		return models.Parcel{}, false
	}

	p := models.Parcel{
		APN:                  apn,
		Jurisdiction:         models.StringPtr(get(colJurisdiction)),
		PlanID:               models.StringPtr(get(colPlanID)),
		PlanName:             models.StringPtr(get(colPlanName)),
		ZoningID:             models.StringPtr(get(colZoningID)),
		ZoningDescription:    models.StringPtr(get(colZoningDescription)),
		TownCenterName:       models.StringPtr(get(colTownCenter)),
		LocationToTownCenter: models.ParseTownCenter(get(colLocationToTownCenter)),
	}

	p.TAZ = parseInt(get(colTAZ))
	s.checkValue(get(colTAZ), p.TAZ != nil)
	p.WithinBonusUnitBoundary = parseBool(get(colWithinBonusUnitBoundary))
	s.checkValue(get(colWithinBonusUnitBoundary), p.WithinBonusUnitBoundary != nil)
	p.WithinTRPABoundary = parseBool(get(colWithinTRPABoundary))
	s.checkValue(get(colWithinTRPABoundary), p.WithinTRPABoundary != nil)
	p.ParcelAcres = parseFloat(get(colParcelAcres))
	s.checkValue(get(colParcelAcres), p.ParcelAcres != nil)
	p.ParcelSqFt = parseFloat(get(colParcelSqFt))
	s.checkValue(get(colParcelSqFt), p.ParcelSqFt != nil)

	if geom, err := models.ParseGeoJSON(get(colGeometry)); err != nil {
		s.InvalidValues++
	} else {
		p.Geom = geom
	}

	s.Rows++
	return p, true
}

func (s *Stats) history(get record) (models.ParcelHistory, bool) {
	apn := strings.TrimSpace(get(colAPN))
	if apn == "" {
		s.SkippedBlankKey++
		return models.ParcelHistory{}, false
	}

	h := models.ParcelHistory{
		APN:         apn,
		CurrentAPN:  models.StringPtr(get(colCurrentAPN)),
		CurrentAPNs: models.StringPtr(get(colCurrentAPNs)),
		LastUpdated: ParseTime(get(colLastUpdated)),
	}
	s.checkValue(get(colLastUpdated), h.LastUpdated != nil)

	s.Rows++
	return h, true
}

func (s *Stats) transaction(get record) (models.Transaction, bool) {
	apn := strings.TrimSpace(get(colAPN))
	if apn == "" {
		s.BlankAPN++
	}

	tx := models.Transaction{
		APN:                      apn,
		RecordType:               models.RecordType(get(colRecordType)),
		TransactionApprovalDate:  get(colTransactionApprovalDate),
		DevelopmentRight:         models.StringPtr(get(colDevelopmentRight)),
		LandCapability:           models.StringPtr(get(colLandCapability)),
		LastUpdated:              models.StringPtr(get(colLastUpdated)),
		TransactionNumber:        models.StringPtr(get(colTransactionNumber)),
		SendingParcel:            models.StringPtr(get(colSendingParcel)),
		ReceivingParcel:          models.StringPtr(get(colReceivingParcel)),
		AccelaID:                 models.StringPtr(get(colAccelaID)),
		JurisdictionPermitNumber: models.StringPtr(get(colJurisdictionPermitNumber)),
	}

	tx.IPESScore = parseFloat(get(colIPESScore))
	s.checkValue(get(colIPESScore), tx.IPESScore != nil)
	tx.CumulativeBankedQuantity = parseFloat(get(colCumulativeBankedQuantity))
	s.checkValue(get(colCumulativeBankedQuantity), tx.CumulativeBankedQuantity != nil)
	tx.RemainingBankedQuantity = parseFloat(get(colRemainingBankedQuantity))
	s.checkValue(get(colRemainingBankedQuantity), tx.RemainingBankedQuantity != nil)

	s.Rows++
	return tx, true
}

// checkValue counts a non-blank cell that failed to parse.
func (s *Stats) checkValue(raw string, parsed bool) {
	if !parsed && strings.TrimSpace(raw) != "" {
		s.InvalidValues++
	}
}
