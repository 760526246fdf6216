package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lingua-health/lingua/internal/model"
)

func TestRenderTrendChart(t *testing.T) {
	var buf bytes.Buffer
	points := []model.TrendPoint{
		{Date: "Oct 1", Redness: 10, Moisture: 90, Cracks: 0},
		{Date: "Oct 2", Redness: 50, Moisture: 60, Cracks: 20},
		{Date: "Oct 3", Redness: 100, Moisture: 30, Cracks: 40},
	}
	if err := RenderTrendChart(&buf, "Trend", points, 20, 4, false); err != nil {
		t.Fatalf("RenderTrendChart failed: %v", err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	// title + rows + date axis + legend
	if len(lines) != 1+4+1+1 {
		t.Fatalf("expected 7 lines, got %d:\n%s", len(lines), out)
	}
	if lines[0] != "Trend" {
		t.Fatalf("unexpected title %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "100 │ ") || !strings.HasPrefix(lines[4], "  0 │ ") {
		t.Fatalf("expected fixed scale labels, got %q and %q", lines[1], lines[4])
	}
	if !strings.Contains(lines[5], "Oct 1") || !strings.HasSuffix(lines[5], "Oct 3") {
		t.Fatalf("unexpected date axis %q", lines[5])
	}
	for _, name := range []string{"Redness", "Moisture", "Cracks"} {
		if !strings.Contains(lines[6], name) {
			t.Fatalf("legend missing %s: %q", name, lines[6])
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("expected no color codes for a buffer")
	}
}

func TestRenderTrendChartEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderTrendChart(&buf, "Trend", nil, 20, 4, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for an empty trend")
	}
}

func TestValueToRowIsFixedScale(t *testing.T) {
	tests := []struct {
		value float64
		want  int
	}{
		{100, 0},
		{0, 15},
		{150, 0},
		{-5, 15},
		{50, 8},
	}
	for _, tt := range tests {
		if got := valueToRow(tt.value, 16); got != tt.want {
			t.Fatalf("valueToRow(%v) = %d, want %d", tt.value, got, tt.want)
		}
	}
}

func TestChartWidthFor(t *testing.T) {
	if got := ChartWidthFor(80); got != 80-len("100")-len([]rune(axisSeparator)) {
		t.Fatalf("unexpected width %d", got)
	}
	if got := ChartWidthFor(0); got != minChartWidth {
		t.Fatalf("expected min width %d, got %d", minChartWidth, got)
	}
}
