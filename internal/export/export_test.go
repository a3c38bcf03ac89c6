package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/devrights/internal/models"
	"github.com/stwalsh4118/devrights/internal/reconcile"
)

func ptr[T any](v T) *T { return &v }

// sampleRows reconciles a sending parcel that was renumbered, a receiving
// parcel that joins directly and a receiving parcel that no longer exists.
func sampleRows(t *testing.T) []models.EnrichedTransaction {
	t.Helper()

	geom, err := models.ParseGeoJSON(`{"type":"Polygon","coordinates":[[[-120,39],[-120,39.1],[-119.9,39.1],[-120,39]]]}`)
	require.NoError(t, err)

	parcels := []models.Parcel{
		{APN: "NEW-1", LocationToTownCenter: models.TownCenterOutside, Jurisdiction: ptr("EL"), TAZ: ptr(7), Geom: geom},
		{APN: "R-1", LocationToTownCenter: models.TownCenterWithin, WithinTRPABoundary: ptr(true), ParcelAcres: ptr(0.5)},
	}
	history := []models.ParcelHistory{
		{APN: "OLD-1", CurrentAPN: ptr("NEW-1"), LastUpdated: ptr(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))},
	}
	transactions := []models.Transaction{
		{APN: "OLD-1", RecordType: models.RecordTypeSendingTransfer, TransactionApprovalDate: "2023-01-01",
			LandCapability: ptr("Bailey 2"), ReceivingParcel: ptr("R-1"), SendingParcel: ptr("OLD-1")},
		{APN: "R-1", RecordType: models.RecordTypeReceivingTransfer, TransactionApprovalDate: "2023-01-01",
			IPESScore: ptr(900.0), SendingParcel: ptr("OLD-1"), ReceivingParcel: ptr("R-1")},
		{APN: "GONE", RecordType: models.RecordTypeReceivingTransfer, TransactionApprovalDate: "2023-02-01"},
	}

	return reconcile.Run(transactions, parcels, history).Transactions
}

func TestRecord(t *testing.T) {
	rows := sampleRows(t)
	require.Len(t, rows, 3)

	sending := Record(&rows[0])
	assert.Equal(t, "OLD-1", sending["APN"])
	assert.Equal(t, "NEW-1", sending["NewAPN"])
	assert.Equal(t, "resolved", sending["JoinStatus"])
	assert.Equal(t, "EL", sending["JURISDICTION"])
	assert.Equal(t, int64(7), sending["TAZ"])
	assert.Equal(t, "Sending", sending["SendingVsReceiving"])
	assert.Equal(t, "Sensitive", sending["LandCapabilityCategory"])
	assert.Equal(t, "NonSensitive", sending["CounterpartSensitivity"])
	assert.Equal(t, "From Sensitive to NonSensitive", sending["Sensitivity_Transition"])
	assert.Equal(t, "From Outside Buffer to Town Center", sending["TownCenter_Transition"])
	assert.Nil(t, sending["IPESScore"])

	receiving := Record(&rows[1])
	assert.Nil(t, receiving["NewAPN"])
	assert.Equal(t, 900.0, receiving["IPESScore"])
	assert.Equal(t, true, receiving["WITHIN_TRPA_BNDY"])
	assert.Nil(t, receiving["WITHIN_BONUSUNIT_BNDY"])

	missing := Record(&rows[2])
	assert.Equal(t, "missing", missing["JoinStatus"])
	assert.Nil(t, missing["JURISDICTION"])
	assert.Equal(t, "Unknown", missing["LOCATION_TO_TOWNCENTER"])
	assert.Len(t, missing, len(Columns))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRows(t)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, ColumnNames(), records[0])

	col := make(map[string]int)
	for i, name := range records[0] {
		col[name] = i
	}
	assert.Equal(t, "NEW-1", records[1][col["NewAPN"]])
	assert.Equal(t, "7", records[1][col["TAZ"]])
	assert.Equal(t, "1", records[2][col["WITHIN_TRPA_BNDY"]])
	assert.Equal(t, "0.5", records[2][col["PARCEL_ACRES"]])
	assert.Equal(t, "", records[3][col["JURISDICTION"]])
	assert.Equal(t,
		"Sending: Sensitive (Outside Buffer) → Receiving: NonSensitive (Town Center)",
		records[1][col["LandSensitivity_and_TownCenter_Transition"]])
}

func TestWriteGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, sampleRows(t)))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry   json.RawMessage `json:"geometry"`
			Properties map[string]any  `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fc))
	assert.Equal(t, "FeatureCollection", fc.Type)
	require.Len(t, fc.Features, 3)

	assert.Contains(t, string(fc.Features[0].Geometry), `"MultiPolygon"`)
	assert.Equal(t, "null", string(fc.Features[1].Geometry))
	assert.Equal(t, "null", string(fc.Features[2].Geometry))
	assert.Equal(t, "OLD-1", fc.Features[0].Properties["APN"])
}

func TestSQLiteWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scratch.db")
	w, err := OpenSQLite(path, "Parcel_Transfers")
	require.NoError(t, err)
	defer w.Close()

	rows := sampleRows(t)
	require.NoError(t, w.Write(rows))
	// A second run replaces the table rather than appending.
	require.NoError(t, w.Write(rows[:2]))

	var count int
	require.NoError(t, w.DB().Get(&count, `SELECT COUNT(*) FROM "Parcel_Transfers"`))
	assert.Equal(t, 2, count)

	var got struct {
		APN        string  `db:"APN"`
		NewAPN     *string `db:"NewAPN"`
		TAZ        *int64  `db:"TAZ"`
		Transition string  `db:"Sensitivity_Transition"`
		Geometry   *string `db:"GEOMETRY"`
	}
	require.NoError(t, w.DB().Get(&got,
		`SELECT "APN", "NewAPN", "TAZ", "Sensitivity_Transition", "GEOMETRY" FROM "Parcel_Transfers" WHERE "APN" = ?`, "OLD-1"))
	assert.Equal(t, "NEW-1", *got.NewAPN)
	require.NotNil(t, got.TAZ)
	assert.Equal(t, int64(7), *got.TAZ)
	assert.Equal(t, "From Sensitive to NonSensitive", got.Transition)
	require.NotNil(t, got.Geometry)
	assert.Contains(t, *got.Geometry, "MultiPolygon")
}

func TestCreateTableSQL(t *testing.T) {
	ddl := createTableSQL("Parcel_Transfers")
	assert.Contains(t, ddl, `CREATE TABLE "Parcel_Transfers"`)
	assert.Contains(t, ddl, `"IPESScore" REAL`)
	assert.Contains(t, ddl, `"WITHIN_TRPA_BNDY" INTEGER`)
	assert.Contains(t, ddl, `"GEOMETRY" TEXT`)
}
