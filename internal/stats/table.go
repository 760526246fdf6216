package stats

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/lingua-health/lingua/internal/model"
)

// HistoryDateLayout formats timestamps in the history table.
const HistoryDateLayout = "2006-01-02 15:04"

// HistoryRows converts records into table cells, newest first.
func HistoryRows(records []model.ScanRecord, loc *time.Location) [][]string {
	if loc == nil {
		loc = time.Local
	}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		rows = append(rows, []string{
			rec.Timestamp.In(loc).Format(HistoryDateLayout),
			rec.ID,
			fmt.Sprintf("%.0f", rec.Results.Redness),
			fmt.Sprintf("%.0f", rec.Results.Moisture),
			fmt.Sprintf("%.0f", rec.Results.Cracks),
			rec.Results.Color,
			rec.Results.Guidance.MedicalUrgency,
		})
	}
	return rows
}

// HistoryHeaders names the history table columns.
var HistoryHeaders = []string{"Date", "ID", "Redness", "Moisture", "Cracks", "Color", "Urgency"}

// RenderHistoryTable prints the scan history as an aligned table.
func RenderHistoryTable(w io.Writer, records []model.ScanRecord, loc *time.Location) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No scans found.")
		return err
	}
	rightAlign := map[int]bool{2: true, 3: true, 4: true}
	for _, line := range formatTable(HistoryHeaders, HistoryRows(records, loc), rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func formatTable(headers []string, rows [][]string, rightAlignCols map[int]bool) []string {
	colCount := len(headers)
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}
	if colCount == 0 {
		return nil
	}
	widths := make([]int, colCount)
	measure := func(row []string) {
		for i, cell := range row {
			if cw := runewidth.StringWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}
	measure(headers)
	for _, row := range rows {
		measure(row)
	}

	lines := make([]string, 0, len(rows)+1)
	if len(headers) > 0 {
		lines = append(lines, formatRow(headers, widths, rightAlignCols))
	}
	for _, row := range rows {
		lines = append(lines, formatRow(row, widths, rightAlignCols))
	}
	return lines
}

func formatRow(row []string, widths []int, rightAlignCols map[int]bool) string {
	cells := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(row) {
			cell = row[i]
		}
		if rightAlignCols[i] {
			cells[i] = runewidth.FillLeft(cell, width)
		} else {
			cells[i] = runewidth.FillRight(cell, width)
		}
	}
	return strings.TrimRight(strings.Join(cells, " "), " ")
}
