package reconcile

import (
	"fmt"
	"strings"

	"github.com/stwalsh4118/devrights/internal/models"
)

// Enrich joins each transaction to its own parcel and derives the transfer
// classification fields. One enriched row is produced per transaction, in
// input order; rows whose parcel cannot be found are kept with Unknown fields.
//
// Enrichment runs in two phases. The first resolves each row's own parcel,
// role, sensitivity and town center. The counterpart lookups are then built
// from the complete first-phase output, keyed by each row's reported APN, and
// the second phase applies them. The lookups are never modified while rows
// that read them are being produced.
func Enrich(transactions []models.Transaction, parcels ParcelIndex, history *HistoryIndex) []models.EnrichedTransaction {
	rows := make([]models.EnrichedTransaction, len(transactions))
	for i, tx := range transactions {
		rows[i] = enrichOwn(tx, parcels, history)
	}

	lookup := buildCounterpartLookup(rows)
	for i := range rows {
		applyCounterpart(&rows[i], lookup)
	}
	return rows
}

// enrichOwn fills the fields that depend only on the row itself.
func enrichOwn(tx models.Transaction, parcels ParcelIndex, history *HistoryIndex) models.EnrichedTransaction {
	reported := strings.TrimSpace(tx.APN)
	row := models.EnrichedTransaction{
		Transaction: tx,
		OriginalAPN: reported,
		Role:        models.RoleOf(tx.RecordType),
	}
	row.APN = reported

	parcel, ok := parcels.Lookup(reported)
	switch {
	case ok:
		row.JoinStatus = models.JoinStatusJoined
	default:
		// Renumbered parcels get one retry against the successor.
		res := history.Resolve(reported)
		switch res.Kind {
		case ResolutionSingle:
			row.APN = res.ID()
			parcel, ok = parcels.Lookup(row.APN)
			if ok {
				row.JoinStatus = models.JoinStatusResolved
			} else {
				row.JoinStatus = models.JoinStatusMissing
			}
		case ResolutionMultiple:
			row.JoinStatus = models.JoinStatusAmbiguous
			row.Successors = append([]string(nil), res.IDs...)
		default:
			row.JoinStatus = models.JoinStatusMissing
		}
	}

	if !ok {
		return row
	}

	row.Parcel = parcel
	row.Sensitivity = Classify(tx.LandCapability, tx.IPESScore)
	row.TownCenter = parcel.LocationToTownCenter
	return row
}

// counterpartLookup maps a reported APN to the categories derived for it.
type counterpartLookup struct {
	sensitivity map[string]models.Sensitivity
	townCenter  map[string]models.TownCenter
}

// buildCounterpartLookup indexes first-phase rows by reported APN.
// A later row for the same APN replaces an earlier one.
func buildCounterpartLookup(rows []models.EnrichedTransaction) counterpartLookup {
	lookup := counterpartLookup{
		sensitivity: make(map[string]models.Sensitivity, len(rows)),
		townCenter:  make(map[string]models.TownCenter, len(rows)),
	}
	for _, row := range rows {
		lookup.sensitivity[row.OriginalAPN] = row.Sensitivity
		lookup.townCenter[row.OriginalAPN] = row.TownCenter
	}
	return lookup
}

// counterpartAPN returns the APN on the other side of the transfer.
func counterpartAPN(row *models.EnrichedTransaction) string {
	switch row.Role {
	case models.RoleReceiving:
		return strings.TrimSpace(models.StringValue(row.SendingParcel))
	case models.RoleSending:
		return strings.TrimSpace(models.StringValue(row.ReceivingParcel))
	default:
		return ""
	}
}

func applyCounterpart(row *models.EnrichedTransaction, lookup counterpartLookup) {
	if apn := counterpartAPN(row); apn != "" {
		row.CounterpartSensitivity = lookup.sensitivity[apn]
		row.CounterpartTownCenter = lookup.townCenter[apn]
	}

	row.SensitivityTransition = Transition(row.Role, row.Sensitivity.String(), row.CounterpartSensitivity.String())
	row.TownCenterTransition = Transition(row.Role, row.TownCenter.String(), row.CounterpartTownCenter.String())
	row.LandSensitivityAndTownCenterTransition = CombinedTransition(
		row.Role,
		row.Sensitivity, row.TownCenter,
		row.CounterpartSensitivity, row.CounterpartTownCenter,
	)
}

// Transition renders the "From X to Y" string in transfer direction:
// a sending row moves from its own value to the counterpart's, a receiving
// row from the counterpart's to its own.
func Transition(role models.Role, own, counterpart string) string {
	switch role {
	case models.RoleSending:
		return fmt.Sprintf("From %s to %s", own, counterpart)
	case models.RoleReceiving:
		return fmt.Sprintf("From %s to %s", counterpart, own)
	default:
		return models.UnknownDisplay
	}
}

// CombinedTransition renders both sides of the transfer as
// "Sending: S (L) → Receiving: S (L)". It is all-or-nothing: if any of the
// four values is absent, or the role is unknown, the result is "Unknown".
func CombinedTransition(
	role models.Role,
	ownSensitivity models.Sensitivity, ownTownCenter models.TownCenter,
	counterpartSensitivity models.Sensitivity, counterpartTownCenter models.TownCenter,
) string {
	if !ownSensitivity.Known() || !ownTownCenter.Known() ||
		!counterpartSensitivity.Known() || !counterpartTownCenter.Known() {
		return models.UnknownDisplay
	}

	switch role {
	case models.RoleSending:
		return formatCombined(ownSensitivity, ownTownCenter, counterpartSensitivity, counterpartTownCenter)
	case models.RoleReceiving:
		return formatCombined(counterpartSensitivity, counterpartTownCenter, ownSensitivity, ownTownCenter)
	default:
		return models.UnknownDisplay
	}
}

func formatCombined(sendS models.Sensitivity, sendL models.TownCenter, recvS models.Sensitivity, recvL models.TownCenter) string {
	return fmt.Sprintf("Sending: %s (%s) → Receiving: %s (%s)", sendS, sendL, recvS, recvL)
}
