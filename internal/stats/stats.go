// Package stats derives streaks and trend series from scan history and
// renders them for the terminal.
package stats

import (
	"sort"
	"time"

	mstats "github.com/montanaflynn/stats"

	"github.com/lingua-health/lingua/internal/model"
)

// DefaultTrendWindow is the number of records charted on the dashboard.
const DefaultTrendWindow = 7

// TrendDateLayout formats trend point dates.
const TrendDateLayout = "Jan 2"

// Streak counts consecutive calendar days with at least one scan, ending today
// or yesterday in loc. Timestamps may be in any order.
func Streak(timestamps []time.Time, now time.Time, loc *time.Location) int {
	if len(timestamps) == 0 {
		return 0
	}
	if loc == nil {
		loc = time.Local
	}
	days := make(map[time.Time]struct{}, len(timestamps))
	for _, ts := range timestamps {
		days[dayOf(ts, loc)] = struct{}{}
	}
	distinct := make([]time.Time, 0, len(days))
	for d := range days {
		distinct = append(distinct, d)
	}
	sort.Slice(distinct, func(i, j int) bool {
		return distinct[i].After(distinct[j])
	})

	today := dayOf(now, loc)
	yesterday := today.AddDate(0, 0, -1)
	if !distinct[0].Equal(today) && !distinct[0].Equal(yesterday) {
		return 0
	}
	streak := 1
	expected := distinct[0].AddDate(0, 0, -1)
	for _, d := range distinct[1:] {
		if !d.Equal(expected) {
			break
		}
		streak++
		expected = expected.AddDate(0, 0, -1)
	}
	return streak
}

// dayOf truncates ts to midnight of its calendar day in loc. AddDate on the
// result stays on calendar boundaries across DST changes.
func dayOf(ts time.Time, loc *time.Location) time.Time {
	y, m, d := ts.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Trend projects the most recent window records into chronological chart
// points. records are expected newest first, as the repository keeps them.
func Trend(records []model.ScanRecord, window int, loc *time.Location) []model.TrendPoint {
	if window <= 0 {
		window = DefaultTrendWindow
	}
	if loc == nil {
		loc = time.Local
	}
	if len(records) > window {
		records = records[:window]
	}
	points := make([]model.TrendPoint, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		rec := records[i]
		points = append(points, model.TrendPoint{
			Date:     rec.Timestamp.In(loc).Format(TrendDateLayout),
			Redness:  rec.Results.Redness,
			Moisture: rec.Results.Moisture,
			Cracks:   rec.Results.Cracks,
		})
	}
	return points
}

// Summarize aggregates a trend series.
func Summarize(points []model.TrendPoint) model.TrendSummary {
	if len(points) == 0 {
		return model.TrendSummary{}
	}
	redness := make(mstats.Float64Data, len(points))
	moisture := make(mstats.Float64Data, len(points))
	cracks := make(mstats.Float64Data, len(points))
	for i, p := range points {
		redness[i] = p.Redness
		moisture[i] = p.Moisture
		cracks[i] = p.Cracks
	}
	// Errors only occur on empty input, which is handled above.
	sum := model.TrendSummary{Samples: len(points)}
	sum.MeanRedness, _ = mstats.Mean(redness)
	sum.MeanMoisture, _ = mstats.Mean(moisture)
	sum.MeanCracks, _ = mstats.Mean(cracks)
	sum.MaxRedness, _ = mstats.Max(redness)
	sum.MinMoisture, _ = mstats.Min(moisture)
	return sum
}
