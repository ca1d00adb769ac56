package aggregator

import (
	"time"

	"github.com/gjwo/nilm-gjw-data/pkg/canonical"
)

// roundToDayStart returns local midnight of the day t falls on
func roundToDayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// getDayEnd returns the last second of the day (next day start - 1)
func getDayEnd(dayStart time.Time) time.Time {
	return dayStart.AddDate(0, 0, 1).Add(-time.Second)
}

// Daily summarizes a canonical frame per local day of its timezone.
func Daily(f *canonical.Frame) []DaySummary {
	var summaries []DaySummary
	columns := len(f.Columns())

	var current *DaySummary
	var sums []float64
	flush := func() {
		if current == nil {
			return
		}
		current.Means = make([]float64, columns)
		for i, sum := range sums {
			current.Means[i] = sum / float64(current.Samples)
		}
		summaries = append(summaries, *current)
	}

	for i := 0; i < f.Len(); i++ {
		ts := f.Time(i)
		dayStart := roundToDayStart(ts)
		if current == nil || !current.DayStart.Equal(dayStart) {
			flush()
			current = &DaySummary{DayStart: dayStart, First: ts}
			sums = make([]float64, columns)
		}
		current.Samples++
		current.Last = ts
		for col := 0; col < columns; col++ {
			sums[col] += float64(f.Value(i, col))
		}
	}
	flush()
	return summaries
}
