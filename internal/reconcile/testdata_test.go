package reconcile

import (
	"time"

	"github.com/stwalsh4118/devrights/internal/models"
)

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func parcel(apn string, tc models.TownCenter) models.Parcel {
	return models.Parcel{
		APN:                  apn,
		Jurisdiction:         strPtr("CSLT"),
		LocationToTownCenter: tc,
	}
}

func transfer(apn string, recordType models.RecordType, landCap string, sending, receiving string) models.Transaction {
	tx := models.Transaction{
		APN:                     apn,
		RecordType:              recordType,
		TransactionApprovalDate: "2024-03-01",
		SendingParcel:           models.StringPtr(sending),
		ReceivingParcel:         models.StringPtr(receiving),
	}
	if landCap != "" {
		tx.LandCapability = strPtr(landCap)
	}
	return tx
}

func history(old, current, currents string, updated *time.Time) models.ParcelHistory {
	return models.ParcelHistory{
		APN:         old,
		CurrentAPN:  models.StringPtr(current),
		CurrentAPNs: models.StringPtr(currents),
		LastUpdated: updated,
	}
}
