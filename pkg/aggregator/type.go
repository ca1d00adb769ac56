package aggregator

import "time"

// DaySummary describes the coverage of one local calendar day of a frame.
type DaySummary struct {
	DayStart time.Time
	Samples  int
	First    time.Time
	Last     time.Time
	// Mean of each column, in column order
	Means []float64
}

// Seconds of the day without a sample. A day has 23 or 25 hours on a
// daylight saving change.
func (d DaySummary) MissingSeconds() int {
	dayEnd := getDayEnd(d.DayStart)
	total := int(dayEnd.Sub(d.DayStart)/time.Second) + 1
	if missing := total - d.Samples; missing > 0 {
		return missing
	}
	return 0
}
