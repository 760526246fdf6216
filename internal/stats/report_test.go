package stats

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/lingua-health/lingua/internal/scans"
	"github.com/lingua-health/lingua/internal/store"
)

func TestLoadReport(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	repo := scans.Load(ctx, kv, nil)
	now := time.Date(2026, 10, 19, 18, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rec := scan(string(rune('a'+i)), now.AddDate(0, 0, i-2), float64(10*(i+1)), 50, 5)
		if err := repo.Insert(ctx, rec); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	report := LoadReport(ctx, kv, 2, now, time.UTC, nil)
	if len(report.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(report.Records))
	}
	if report.Streak != 3 {
		t.Fatalf("expected streak 3, got %d", report.Streak)
	}
	if len(report.Trend) != 2 || report.Trend[1].Redness != 30 {
		t.Fatalf("unexpected trend %+v", report.Trend)
	}
	if report.Summary.Samples != 2 || report.Summary.MeanRedness != 25 {
		t.Fatalf("unexpected summary %+v", report.Summary)
	}

	var buf bytes.Buffer
	if err := RenderReport(&buf, report, 30, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Scans: 3", "Streak: 3 day(s)", "Trend"} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
}

func TestRenderReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderReport(&buf, BuildReport(nil, 7, time.Now(), time.UTC), 30, false); err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "No scans found." {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
