package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTownCenter(t *testing.T) {
	tests := []struct {
		raw  string
		want TownCenter
	}{
		{"Within Town Center", TownCenterWithin},
		{"  Within Quarter Mile of Town Center ", TownCenterQuarterMile},
		{"Further than Quarter Mile from Town Center", TownCenterOutside},
		{"Quarter Mile Buffer", TownCenterQuarterMile},
		{"Outside Buffer", TownCenterOutside},
		{"", TownCenterUnknown},
		{"Somewhere else", TownCenterUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTownCenter(tt.raw))
		})
	}
}

func TestTownCenterString(t *testing.T) {
	assert.Equal(t, "Town Center", TownCenterWithin.String())
	assert.Equal(t, "Quarter Mile Buffer", TownCenterQuarterMile.String())
	assert.Equal(t, "Outside Buffer", TownCenterOutside.String())
	assert.Equal(t, "Unknown", TownCenterUnknown.String())
	assert.False(t, TownCenterUnknown.Known())
}

func TestSensitivityRoundTrip(t *testing.T) {
	for _, s := range []Sensitivity{SensitivitySEZ, SensitivitySensitive, SensitivityNonSensitive, SensitivityUnknown} {
		assert.Equal(t, s, ParseSensitivity(s.String()))
	}
	assert.Equal(t, SensitivityNonSensitive, ParseSensitivity("Non-Sensitive"))
}

func TestSensitivityJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		S Sensitivity `json:"s"`
	}{S: SensitivityNonSensitive})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"NonSensitive"}`, string(data))

	var s Sensitivity = SensitivitySEZ
	require.NoError(t, json.Unmarshal([]byte(`null`), &s))
	assert.Equal(t, SensitivityUnknown, s)
}

func TestRoleOf(t *testing.T) {
	assert.Equal(t, RoleReceiving, RoleOf(RecordTypeReceivingTransfer))
	assert.Equal(t, RoleReceiving, RoleOf(RecordTypeReceivingConversion))
	assert.Equal(t, RoleSending, RoleOf(RecordTypeSendingTransfer))
	assert.Equal(t, RoleSending, RoleOf(RecordTypeSendingConversion))
	assert.Equal(t, RoleUnknown, RoleOf("Banked Allocation"))
}

func TestRecordTypeRecognized(t *testing.T) {
	assert.True(t, RecordTypeSendingConversion.Recognized())
	assert.False(t, RecordType("Allocation Assignment").Recognized())
	assert.False(t, RecordType("").Recognized())
}

func TestTransactionApproved(t *testing.T) {
	assert.True(t, Transaction{TransactionApprovalDate: "2023-04-01"}.Approved())
	assert.False(t, Transaction{TransactionApprovalDate: ""}.Approved())
	assert.False(t, Transaction{TransactionApprovalDate: "   "}.Approved())
}
