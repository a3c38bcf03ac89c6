package models

import "strings"

// RecordType is the LT Info record type of a development-right transaction.
type RecordType string

// Record types that take part in transfer reconciliation.
const (
	RecordTypeReceivingTransfer   RecordType = "Transfer Receiving Parcel"
	RecordTypeSendingTransfer     RecordType = "Transfer Sending Parcel"
	RecordTypeReceivingConversion RecordType = "Conversion With Transfer Receiving Parcel"
	RecordTypeSendingConversion   RecordType = "Conversion With Transfer Sending Parcel"
)

// Recognized reports whether the record type is one of the four transfer types.
func (r RecordType) Recognized() bool {
	switch r {
	case RecordTypeReceivingTransfer, RecordTypeSendingTransfer,
		RecordTypeReceivingConversion, RecordTypeSendingConversion:
		return true
	}
	return false
}

// Role is the side of a transfer a transaction row describes.
type Role int

const (
	RoleUnknown Role = iota
	RoleSending
	RoleReceiving
)

func (r Role) String() string {
	switch r {
	case RoleSending:
		return "Sending"
	case RoleReceiving:
		return "Receiving"
	default:
		return UnknownDisplay
	}
}

// MarshalText renders the role as its display name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// RoleOf derives the role from the record type text.
func RoleOf(recordType RecordType) Role {
	switch {
	case strings.Contains(string(recordType), "Receiving Parcel"):
		return RoleReceiving
	case strings.Contains(string(recordType), "Sending Parcel"):
		return RoleSending
	default:
		return RoleUnknown
	}
}

// Transaction is one row of the transacted and banked development rights feed.
type Transaction struct {
	DevelopmentRight         *string    `json:"DevelopmentRight,omitempty"`
	LandCapability           *string    `json:"LandCapability,omitempty"`
	IPESScore                *float64   `json:"IPESScore,omitempty"`
	CumulativeBankedQuantity *float64   `json:"CumulativeBankedQuantity,omitempty"`
	RemainingBankedQuantity  *float64   `json:"RemainingBankedQuantity,omitempty"`
	LastUpdated              *string    `json:"LastUpdated,omitempty"`
	TransactionNumber        *string    `json:"TransactionNumber,omitempty"`
	SendingParcel            *string    `json:"SendingParcel,omitempty"`
	ReceivingParcel          *string    `json:"ReceivingParcel,omitempty"`
	AccelaID                 *string    `json:"AccelaID,omitempty"`
	JurisdictionPermitNumber *string    `json:"JurisdictionPermitNumber,omitempty"`
	APN                      string     `json:"APN"`
	RecordType               RecordType `json:"RecordType"`
	TransactionApprovalDate  string     `json:"TransactionApprovalDate"`
}

// Approved reports whether the transaction carries an approval date.
func (t Transaction) Approved() bool {
	return strings.TrimSpace(t.TransactionApprovalDate) != ""
}
