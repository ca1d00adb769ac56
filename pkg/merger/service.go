// Package merger joins the channel series of one date into one frame.
package merger

import (
	"fmt"
	"sort"
	"time"

	"github.com/gjwo/nilm-gjw-data/pkg/channel"
	"github.com/gjwo/nilm-gjw-data/pkg/frame"
	"github.com/sirupsen/logrus"
)

// Merge outer joins the series on timestamp. A channel with no sample at a
// timestamp present in another channel reads zero there, which treats a
// missing reading as no power on that channel.
func Merge(series ...*channel.Series) (*frame.Frame, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("nothing to merge")
	}

	columns := make([]string, len(series))
	for i, s := range series {
		columns[i] = string(s.Channel)
	}
	merged := frame.New(columns...)

	// Rows by timestamp, values default to zero
	rows := make(map[int64][]float64)
	for col, s := range series {
		for _, sample := range s.Samples {
			values, ok := rows[sample.Timestamp]
			if !ok {
				values = make([]float64, len(series))
				rows[sample.Timestamp] = values
			}
			values[col] = sample.Value
		}
	}

	timestamps := make([]int64, 0, len(rows))
	for ts := range rows {
		timestamps = append(timestamps, ts)
	}
	sort.Slice(timestamps, func(i, j int) bool { return timestamps[i] < timestamps[j] })

	merged.Rows = make([]frame.Row, len(timestamps))
	for i, ts := range timestamps {
		merged.Rows[i] = frame.Row{Timestamp: ts, Values: rows[ts]}
	}

	logSummary(series[0], merged)
	return merged, nil
}

func logSummary(first *channel.Series, merged *frame.Frame) {
	fields := logrus.Fields{
		"date": first.Date,
		"rows": merged.Len(),
	}
	if start, end, ok := merged.Span(); ok {
		loc := first.Location
		if loc == nil {
			loc = time.UTC
		}
		fields["first"] = time.Unix(start, 0).In(loc).Format(time.RFC3339)
		fields["last"] = time.Unix(end, 0).In(loc).Format(time.RFC3339)
	}
	logrus.WithFields(fields).Info("merged channel pair")
}
