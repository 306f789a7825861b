// Package ingest loads intelligence feeds into the store: XLSX workbooks
// exported by the news collector, and the competitor roster seed.
package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/abuzz-labs/intel-cli/internal/model"
)

// Workbook column order. The first row is a header and is skipped.
const (
	colCompetitor = iota
	colDate
	colTitle
	colSummary
	colEventType
	colRegion
	colThreatLevel
	colDetails
	colSourceURL
	columnCount
)

// dateLayouts are tried in order when parsing the occurred-at cell. Collector
// exports use ISO dates; hand-edited sheets sometimes carry slashes.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	time.RFC3339,
}

// Row is one parsed workbook line: the item plus the competitor name it
// belongs to. The importer resolves the name to an ID.
type Row struct {
	CompetitorName string
	Item           model.IntelligenceItem
}

// ReadWorkbook parses an XLSX feed file into rows. A malformed row aborts the
// whole file with its line number so the sheet can be fixed rather than
// silently half-imported.
func ReadWorkbook(path string) ([]Row, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: open workbook %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("ingest: workbook %s has no sheets", path)
	}

	sheet := f.Sheets[0]
	rows := make([]Row, 0, len(sheet.Rows))
	for i, raw := range sheet.Rows {
		if i == 0 {
			continue // header
		}
		cells := rowToStrings(raw)
		if isBlank(cells) {
			continue
		}
		row, err := parseRow(cells)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: %s row %d", path, i+1)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(cells []string) (Row, error) {
	if len(cells) < columnCount {
		padded := make([]string, columnCount)
		copy(padded, cells)
		cells = padded
	}

	name := strings.TrimSpace(cells[colCompetitor])
	if name == "" {
		return Row{}, eris.New("competitor name is empty")
	}

	occurredAt, err := parseDate(cells[colDate])
	if err != nil {
		return Row{}, err
	}

	title := strings.TrimSpace(cells[colTitle])
	if title == "" {
		return Row{}, eris.New("title is empty")
	}

	eventType, err := parseEventType(cells[colEventType])
	if err != nil {
		return Row{}, err
	}

	threat, err := parseThreatLevel(cells[colThreatLevel])
	if err != nil {
		return Row{}, err
	}

	return Row{
		CompetitorName: name,
		Item: model.IntelligenceItem{
			OccurredAt:  occurredAt,
			Title:       title,
			Summary:     strings.TrimSpace(cells[colSummary]),
			EventType:   eventType,
			Region:      strings.TrimSpace(cells[colRegion]),
			ThreatLevel: threat,
			Details:     strings.TrimSpace(cells[colDetails]),
			SourceURL:   strings.TrimSpace(cells[colSourceURL]),
		},
	}, nil
}

func parseDate(cell string) (time.Time, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, eris.New("date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cell); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, eris.Errorf("unparseable date %q", cell)
}

func parseEventType(cell string) (model.EventType, error) {
	cell = strings.TrimSpace(cell)
	for _, et := range model.AllEventTypes {
		if strings.EqualFold(cell, string(et)) {
			return et, nil
		}
	}
	return "", eris.Errorf("unknown event type %q", cell)
}

func parseThreatLevel(cell string) (int, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(cell)
	if err != nil {
		return 0, eris.Errorf("unparseable threat level %q", cell)
	}
	if n < 1 || n > 5 {
		return 0, eris.Errorf("threat level %d out of range 1-5", n)
	}
	return n, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
