package stats

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/lingua-health/lingua/internal/model"
	"github.com/lingua-health/lingua/internal/scans"
	"github.com/lingua-health/lingua/internal/store"
)

// Report contains precomputed data for the trend command and dashboard.
type Report struct {
	Records []model.ScanRecord
	Streak  int
	Trend   []model.TrendPoint
	Summary model.TrendSummary
}

// BuildReport derives a report from records held newest first.
func BuildReport(records []model.ScanRecord, window int, now time.Time, loc *time.Location) Report {
	timestamps := make([]time.Time, len(records))
	for i, rec := range records {
		timestamps[i] = rec.Timestamp
	}
	trend := Trend(records, window, loc)
	return Report{
		Records: records,
		Streak:  Streak(timestamps, now, loc),
		Trend:   trend,
		Summary: Summarize(trend),
	}
}

// LoadReport reads the scan history from kv and builds a report.
func LoadReport(ctx context.Context, kv store.KV, window int, now time.Time, loc *time.Location, logger *log.Logger) Report {
	return BuildReport(scans.Load(ctx, kv, logger).All(), window, now, loc)
}

// RenderReport prints the streak, summary, and trend chart.
func RenderReport(w io.Writer, r Report, width int, forceColor bool) error {
	if len(r.Records) == 0 {
		_, err := fmt.Fprintln(w, "No scans found.")
		return err
	}
	if _, err := fmt.Fprintf(w, "Scans: %d\nStreak: %d day(s)\n", len(r.Records), r.Streak); err != nil {
		return err
	}
	s := r.Summary
	if _, err := fmt.Fprintf(w, "Last %d: redness avg %.1f max %.1f, moisture avg %.1f min %.1f, cracks avg %.1f\n\n",
		s.Samples, s.MeanRedness, s.MaxRedness, s.MeanMoisture, s.MinMoisture, s.MeanCracks); err != nil {
		return err
	}
	return RenderTrendChart(w, "Trend", r.Trend, width, 0, forceColor)
}
