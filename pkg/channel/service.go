// Package channel turns one channel's dump file into a per second series.
package channel

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/gjwo/nilm-gjw-data/pkg/esmutils"
	"github.com/gjwo/nilm-gjw-data/pkg/filepair"
	"github.com/gjwo/nilm-gjw-data/pkg/types"
	"github.com/sirupsen/logrus"
)

// Upper bound on the resampled span of one file. A dump covers a day, a
// corrupt timestamp would otherwise allocate an arbitrarily large grid.
const maxSeriesSpan = int64(7 * 24 * time.Hour / time.Second)

type Standardizer struct {
	resolver *filepair.Resolver
	location *time.Location
}

func NewStandardizer(resolver *filepair.Resolver, location *time.Location) *Standardizer {
	return &Standardizer{
		resolver: resolver,
		location: location,
	}
}

// Standardize reads the channel's dump for date from dir and returns it
// deduplicated, localized and resampled to 1 Hz with forward fill.
func (s *Standardizer) Standardize(dir, date string, ch types.Channel) (*Series, error) {
	path, err := s.resolver.Path(dir, date, ch)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: dump file not found: %s", types.ErrParse, path)
		}
		return nil, fmt.Errorf("%w: open %s: %v", types.ErrParse, path, err)
	}
	defer file.Close()

	raw, err := ReadRaw(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	series, err := FromRaw(ch, date, s.location, raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"channel":  ch,
		"date":     date,
		"readings": len(raw),
		"samples":  series.Len(),
	}).Debug("standardized channel")
	return series, nil
}

// ReadRaw parses a headerless (timestamp, value) CSV.
func ReadRaw(r io.Reader) ([]RawReading, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true
	reader.ReuseRecord = true

	var readings []RawReading
	for line := 1; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrParse, err)
		}

		ts, ok := esmutils.ParseUnixSeconds(record[0])
		if !ok {
			return nil, fmt.Errorf("%w: line %d: invalid timestamp %q", types.ErrParse, line, record[0])
		}
		val, ok := esmutils.ParseNumeric(record[1])
		if !ok {
			return nil, fmt.Errorf("%w: line %d: invalid value %q", types.ErrParse, line, record[1])
		}
		readings = append(readings, RawReading{Timestamp: ts, Value: val})
	}
	return readings, nil
}

// FromRaw builds a Series from parsed readings. The first reading of a
// repeated timestamp wins, and gaps are filled with the last observed value.
func FromRaw(ch types.Channel, date string, loc *time.Location, raw []RawReading) (*Series, error) {
	series := &Series{
		Channel:  ch,
		Date:     date,
		Location: loc,
	}

	unique := dedupe(raw)
	if len(unique) == 0 {
		return series, nil
	}
	sort.SliceStable(unique, func(i, j int) bool {
		return unique[i].Timestamp < unique[j].Timestamp
	})

	start := unique[0].Timestamp
	end := unique[len(unique)-1].Timestamp
	// end-start overflows int64 when start is negative and end is large
	if start < 0 && end > math.MaxInt64+start || end-start > maxSeriesSpan {
		return nil, fmt.Errorf("%w: readings from %d to %d span more than %ds", types.ErrParse, start, end, maxSeriesSpan)
	}

	// Grid points are unique by construction
	span := end - start
	series.Samples = make([]Sample, 0, span+1)
	next := 0
	var last float64
	for i := int64(0); i <= span; i++ {
		t := start + i
		if next < len(unique) && unique[next].Timestamp == t {
			last = unique[next].Value
			next++
		}
		series.Samples = append(series.Samples, Sample{Timestamp: t, Value: last})
	}
	return series, nil
}

func dedupe(raw []RawReading) []RawReading {
	seen := make(map[int64]struct{}, len(raw))
	out := make([]RawReading, 0, len(raw))
	for _, r := range raw {
		if _, dup := seen[r.Timestamp]; dup {
			continue
		}
		seen[r.Timestamp] = struct{}{}
		out = append(out, r)
	}
	return out
}
