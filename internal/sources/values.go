package sources

import (
	"strconv"
	"strings"
	"time"
)

// Column names of the agency exports.
const (
	colAPN                      = "APN"
	colJurisdiction             = "JURISDICTION"
	colPlanID                   = "PLAN_ID"
	colPlanName                 = "PLAN_NAME"
	colZoningID                 = "ZONING_ID"
	colZoningDescription        = "ZONING_DESCRIPTION"
	colTownCenter               = "TOWN_CENTER"
	colLocationToTownCenter     = "LOCATION_TO_TOWNCENTER"
	colTAZ                      = "TAZ"
	colWithinBonusUnitBoundary  = "WITHIN_BONUSUNIT_BNDY"
	colWithinTRPABoundary       = "WITHIN_TRPA_BNDY"
	colParcelAcres              = "PARCEL_ACRES"
	colParcelSqFt               = "PARCEL_SQFT"
	colGeometry                 = "GEOMETRY"
	colCurrentAPN               = "APN_Current"
	colCurrentAPNs              = "APNs_Current"
	colLastUpdated              = "LastUpdated"
	colRecordType               = "RecordType"
	colDevelopmentRight         = "DevelopmentRight"
	colLandCapability           = "LandCapability"
	colIPESScore                = "IPESScore"
	colCumulativeBankedQuantity = "CumulativeBankedQuantity"
	colRemainingBankedQuantity  = "RemainingBankedQuantity"
	colTransactionNumber        = "TransactionNumber"
	colTransactionApprovalDate  = "TransactionApprovalDate"
	colSendingParcel            = "SendingParcel"
	colReceivingParcel          = "ReceivingParcel"
	colAccelaID                 = "AccelaID"
	colJurisdictionPermitNumber = "JurisdictionPermitNumber"
)

var (
	parcelRequired      = []string{colAPN, colLocationToTownCenter}
	historyRequired     = []string{colAPN, colCurrentAPN, colCurrentAPNs}
	transactionRequired = []string{colAPN, colRecordType, colTransactionApprovalDate}
)

// timeLayouts are the date formats seen in the exports, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"1/2/2006 3:04:05 PM",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
}

// ParseTime parses a date in any export format, including epoch
// milliseconds as returned by feature services. Blank or unparseable
// values yield nil.
func ParseTime(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if len(raw) >= 11 {
		if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
			t := time.UnixMilli(ms).UTC()
			return &t
		}
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

// parseFloat returns nil for blank or non-numeric values.
func parseFloat(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

// parseInt accepts integral values written with a decimal point ("12.0").
func parseInt(raw string) *int {
	f := parseFloat(raw)
	if f == nil || *f != float64(int(*f)) {
		return nil
	}
	i := int(*f)
	return &i
}

func parseBool(raw string) *bool {
	var b bool
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "t", "yes", "y":
		b = true
	case "0", "false", "f", "no", "n":
		b = false
	default:
		return nil
	}
	return &b
}
