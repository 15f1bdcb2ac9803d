package output

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cliandouble08/car-dealer-scraper/internal/types"
)

func sampleDealers() []types.Dealer {
	return []types.Dealer{
		{
			SourceURL: "https://www.ford.com/dealerships",
			Name:      "Springfield Ford",
			Address:   "123 Main St",
			City:      "Springfield",
			State:     "IL",
			ZipCode:   "62701",
			Phone:     "(555) 123-4567",
			SearchZip: "62701",
			SessionID: "s-1",
		},
		{
			SourceURL: "https://www.ford.com/dealerships",
			Name:      "Shelbyville Ford",
			State:     "IL",
		},
	}
}

func TestWriteCSV(t *testing.T) {
	w := NewWriter(t.TempDir())

	path, err := w.WriteCSV("www.Ford.com", sampleDealers())
	require.NoError(t, err)
	assert.Contains(t, filepath.Base(path), "ford_com_dealers_")

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, "Springfield Ford", rows[1][1])
	assert.Equal(t, "(555) 123-4567", rows[1][6])
	assert.Equal(t, "Shelbyville Ford", rows[2][1])
}

func TestWriteJSON(t *testing.T) {
	w := NewWriter(t.TempDir())

	path, err := w.WriteJSON("ford.com", sampleDealers())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got []types.Dealer
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Springfield Ford", got[0].Name)
	assert.Equal(t, "62701", got[0].ZipCode)
}

func TestWriteCSV_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w := NewWriter(dir)

	path, err := w.WriteCSV("ford.com", nil)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}
