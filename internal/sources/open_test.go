package sources

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stwalsh4118/devrights/internal/config"
	"github.com/stwalsh4118/devrights/internal/models"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func TestOpen_Windows1252(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tx.csv")
	// 0xE9 is é in Windows-1252.
	writeFile(t, path, []byte("APN,RecordType,TransactionApprovalDate,DevelopmentRight\nA,Transfer Sending Parcel,2020-01-01,Caf\xe9\n"))

	f, err := Open(path, config.EncodingWindows1252)
	require.NoError(t, err)
	defer f.Close()

	txs, _, err := ReadTransactionsCSV(f)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "Café", models.StringValue(txs[0].DevelopmentRight))
}

func TestOpen_UTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plain.txt")
	writeFile(t, path, []byte("Café"))

	f, err := Open(path, "")
	require.NoError(t, err)
	defer f.Close()

	data, err := io.ReadAll(f)
	require.NoError(t, err)
	assert.Equal(t, "Café", string(data))
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.csv"), config.EncodingUTF8)
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "x.csv")
	writeFile(t, path, []byte("x"))
	_, err = Open(path, "ebcdic")
	assert.Error(t, err)
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "raw", "2021", "b.csv"), []byte("x"))
	writeFile(t, filepath.Join(dir, "raw", "2020", "a.csv"), []byte("x"))
	writeFile(t, filepath.Join(dir, "raw", "notes.txt"), []byte("x"))
	plain := filepath.Join(dir, "raw", "2020", "a.csv")

	paths, err := Expand([]string{filepath.Join(dir, "raw", "**", "*.csv"), plain, ""})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "raw", "2020", "a.csv"),
		filepath.Join(dir, "raw", "2021", "b.csv"),
	}, paths)
}

func TestExpand_NoMatch(t *testing.T) {
	_, err := Expand([]string{filepath.Join(t.TempDir(), "*.json")})
	assert.Error(t, err)

	_, err = Expand([]string{filepath.Join(t.TempDir(), "absent.csv")})
	assert.Error(t, err)
}

func TestLoadTransactions_MixedFormats(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "a.csv")
	jsonPath := filepath.Join(dir, "b.JSON")
	writeFile(t, csvPath, []byte("APN,RecordType,TransactionApprovalDate\nA,Transfer Sending Parcel,2020-01-01\n,x,y\n"))
	writeFile(t, jsonPath, []byte(`[{"APN":"B","RecordType":"Transfer Receiving Parcel","TransactionApprovalDate":"2020-01-02"}]`))

	txs, stats, err := LoadTransactions([]string{csvPath, jsonPath}, config.EncodingUTF8)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "A", txs[0].APN)
	assert.Empty(t, txs[1].APN)
	assert.Equal(t, "B", txs[2].APN)
	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 1, stats.BlankAPN)
}

func TestLoadParcels_ReportsPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parcels.csv")
	writeFile(t, path, []byte("APN\nA\n"))

	_, _, err := LoadParcels(path, config.EncodingUTF8)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "parcels.csv")
}
