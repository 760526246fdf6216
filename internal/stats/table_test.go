package stats

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/lingua-health/lingua/internal/model"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Date", "Color", "Redness"}
	rows := [][]string{
		{"Oct 1", "pink", "12"},
		{"Oct 2", "淡红", "7"},
	}
	lines := formatTable(headers, rows, map[int]bool{2: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	want := []string{
		"Date  Color Redness",
		"Oct 1 pink       12",
		"Oct 2 淡红        7",
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Fatalf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestRenderHistoryTable(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHistoryTable(&buf, nil, time.UTC); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No scans found.") {
		t.Fatalf("expected empty notice")
	}

	buf.Reset()
	records := []model.ScanRecord{{
		ID:        "abc123",
		Timestamp: time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC),
		Results: model.AnalysisResult{
			Redness: 42, Moisture: 61.4, Cracks: 3, Color: "pale",
			Guidance: model.Guidance{MedicalUrgency: "low"},
		},
	}}
	if err := RenderHistoryTable(&buf, records, time.UTC); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d", len(lines))
	}
	for _, cell := range []string{"2026-10-19 08:30", "abc123", "42", "61", "pale", "low"} {
		if !strings.Contains(lines[1], cell) {
			t.Fatalf("row %q missing %q", lines[1], cell)
		}
	}
}
