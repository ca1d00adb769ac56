package channel

import (
	"time"

	"github.com/gjwo/nilm-gjw-data/pkg/types"
)

// RawReading is one parsed line of a dump file.
type RawReading struct {
	Timestamp int64
	Value     float64
}

type Sample struct {
	Timestamp int64 // unix seconds
	Value     float64
}

// Series holds one channel's readings for one date on a 1 second grid.
// Samples are ascending with exactly one entry per second of the covered span.
type Series struct {
	Channel  types.Channel
	Date     string
	Location *time.Location
	Samples  []Sample
}

func (s *Series) Len() int {
	return len(s.Samples)
}

// Time returns the i-th timestamp in the series' zone.
func (s *Series) Time(i int) time.Time {
	return time.Unix(s.Samples[i].Timestamp, 0).In(s.Location)
}
