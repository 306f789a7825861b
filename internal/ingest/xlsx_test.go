package ingest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/abuzz-labs/intel-cli/internal/model"
)

var feedHeader = []string{"Competitor", "Date", "Title", "Summary", "Event Type", "Region", "Threat Level", "Details", "Source URL"}

func createFeedXLSX(t *testing.T, rows [][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Feed")
	require.NoError(t, err)
	for _, rowData := range append([][]string{feedHeader}, rows...) {
		row := sheet.AddRow()
		for _, cellData := range rowData {
			row.AddCell().SetString(cellData)
		}
	}
	path := filepath.Join(t.TempDir(), "feed.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadWorkbook(t *testing.T) {
	path := createFeedXLSX(t, [][]string{
		{"Pointr", "2025-06-03", "Series C closed", "Raised $50M", "Investment/Funding Round", "EUROPE", "4", `{"financialValue":"$50M"}`, "https://example.com/a"},
		{"Mappedin", "2025/06/04", "Airport deployment", "", "New Project/Installation", "", "", "", ""},
	})

	rows, err := ReadWorkbook(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Pointr", rows[0].CompetitorName)
	assert.Equal(t, time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC), rows[0].Item.OccurredAt)
	assert.Equal(t, model.EventFunding, rows[0].Item.EventType)
	assert.Equal(t, 4, rows[0].Item.ThreatLevel)
	assert.Equal(t, "EUROPE", rows[0].Item.Region)

	// Missing threat level defaults to 1, short rows are padded.
	assert.Equal(t, 1, rows[1].Item.ThreatLevel)
	assert.Empty(t, rows[1].Item.Region)
}

func TestReadWorkbookSkipsBlankRows(t *testing.T) {
	path := createFeedXLSX(t, [][]string{
		{"", "", ""},
		{"Pointr", "2025-06-03", "Series C closed", "", "Investment/Funding Round", "", "3", "", ""},
	})

	rows, err := ReadWorkbook(path)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestReadWorkbookRejectsBadRow(t *testing.T) {
	cases := []struct {
		name string
		row  []string
	}{
		{"empty competitor", []string{"", "2025-06-03", "T", "", "Product Launch", "", "2", "", ""}},
		{"bad date", []string{"Pointr", "June third", "T", "", "Product Launch", "", "2", "", ""}},
		{"empty title", []string{"Pointr", "2025-06-03", "", "", "Product Launch", "", "2", "", ""}},
		{"unknown event type", []string{"Pointr", "2025-06-03", "T", "", "Gossip", "", "2", "", ""}},
		{"threat out of range", []string{"Pointr", "2025-06-03", "T", "", "Product Launch", "", "9", "", ""}},
		{"threat not a number", []string{"Pointr", "2025-06-03", "T", "", "Product Launch", "", "high", "", ""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := createFeedXLSX(t, [][]string{tc.row})
			_, err := ReadWorkbook(path)
			assert.Error(t, err)
		})
	}
}

func TestReadWorkbookEventTypeCaseInsensitive(t *testing.T) {
	path := createFeedXLSX(t, [][]string{
		{"Pointr", "2025-06-03", "T", "", "pRoDuCt LaUnCh", "", "2", "", ""},
	})

	rows, err := ReadWorkbook(path)
	require.NoError(t, err)
	assert.Equal(t, model.EventProductLaunch, rows[0].Item.EventType)
}

func TestReadWorkbookMissingFile(t *testing.T) {
	_, err := ReadWorkbook(filepath.Join(t.TempDir(), "nope.xlsx"))
	assert.Error(t, err)
}
