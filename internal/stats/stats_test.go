package stats

import (
	"math"
	"testing"
	"time"

	"github.com/lingua-health/lingua/internal/model"
)

func TestStreak(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 10, 19, 15, 0, 0, 0, loc)
	day := func(offset int, hour int) time.Time {
		return time.Date(2026, 10, 19+offset, hour, 0, 0, 0, loc)
	}
	tests := []struct {
		name       string
		timestamps []time.Time
		want       int
	}{
		{"empty", nil, 0},
		{"today yesterday and the day before", []time.Time{day(0, 9), day(-1, 9), day(-2, 9)}, 3},
		{"any order", []time.Time{day(-2, 9), day(0, 9), day(-1, 9)}, 3},
		{"only three days ago", []time.Time{day(-3, 9)}, 0},
		{"ends yesterday", []time.Time{day(-1, 23), day(-2, 1)}, 2},
		{"same day counted once", []time.Time{day(0, 1), day(0, 9), day(0, 14)}, 1},
		{"stops at first gap", []time.Time{day(0, 9), day(-1, 9), day(-3, 9), day(-4, 9)}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Streak(tt.timestamps, now, loc); got != tt.want {
				t.Fatalf("Streak = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStreakUsesSessionTimeZone(t *testing.T) {
	tehran := time.FixedZone("IRST", 3*3600+1800)
	now := time.Date(2026, 10, 19, 1, 0, 0, 0, tehran)
	// 22:00 UTC on the 18th is already the 19th in Tehran.
	ts := []time.Time{time.Date(2026, 10, 18, 22, 0, 0, 0, time.UTC)}
	if got := Streak(ts, now, tehran); got != 1 {
		t.Fatalf("expected streak 1 in local zone, got %d", got)
	}
}

func scan(id string, ts time.Time, redness, moisture, cracks float64) model.ScanRecord {
	return model.ScanRecord{
		ID:        id,
		Timestamp: ts,
		Results:   model.AnalysisResult{Redness: redness, Moisture: moisture, Cracks: cracks},
	}
}

func TestTrendTakesRecentWindowChronologically(t *testing.T) {
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	var records []model.ScanRecord
	for i := 9; i >= 0; i-- {
		records = append(records, scan("r", base.AddDate(0, 0, i), float64(i), 0, 0))
	}
	points := Trend(records, 3, time.UTC)
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	want := []string{"Oct 8", "Oct 9", "Oct 10"}
	for i, p := range points {
		if p.Date != want[i] {
			t.Fatalf("point %d date %q, want %q", i, p.Date, want[i])
		}
		if p.Redness != float64(7+i) {
			t.Fatalf("point %d redness %v", i, p.Redness)
		}
	}

	if short := Trend(records[:2], 7, time.UTC); len(short) != 2 {
		t.Fatalf("expected a shorter series, got %d", len(short))
	}
	if empty := Trend(nil, 7, time.UTC); len(empty) != 0 {
		t.Fatalf("expected no points")
	}
}

func TestSummarize(t *testing.T) {
	points := []model.TrendPoint{
		{Redness: 10, Moisture: 80, Cracks: 0},
		{Redness: 30, Moisture: 40, Cracks: 6},
	}
	got := Summarize(points)
	if got.Samples != 2 {
		t.Fatalf("expected 2 samples, got %d", got.Samples)
	}
	checks := map[string][2]float64{
		"mean redness":  {got.MeanRedness, 20},
		"mean moisture": {got.MeanMoisture, 60},
		"mean cracks":   {got.MeanCracks, 3},
		"max redness":   {got.MaxRedness, 30},
		"min moisture":  {got.MinMoisture, 40},
	}
	for name, c := range checks {
		if math.Abs(c[0]-c[1]) > 1e-9 {
			t.Fatalf("%s = %v, want %v", name, c[0], c[1])
		}
	}
	if (Summarize(nil) != model.TrendSummary{}) {
		t.Fatalf("expected zero summary for no points")
	}
}
