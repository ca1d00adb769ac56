// Package canonical accumulates merged frames of one meter and finalizes
// them into the schema written to the store.
package canonical

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/gjwo/nilm-gjw-data/pkg/esmutils"
	"github.com/gjwo/nilm-gjw-data/pkg/frame"
	"github.com/gjwo/nilm-gjw-data/pkg/types"
	"github.com/sirupsen/logrus"
)

var ErrFinalized = errors.New("accumulator already finalized")

type Canonicalizer struct {
	mapping  map[string]types.Measurement
	location *time.Location
}

func NewCanonicalizer(mapping map[string]types.Measurement, loc *time.Location) *Canonicalizer {
	return &Canonicalizer{mapping: mapping, location: loc}
}

// Canonicalize maps a raw frame onto the measurement taxonomy. Duplicate
// timestamps keep their first row, rows with a non numeric value are
// dropped and the result is sorted by time.
func (c *Canonicalizer) Canonicalize(key types.MeterKey, raw *frame.Frame) (*Frame, error) {
	// Cross-date duplicates, first occurrence wins
	seen := make(map[int64]struct{}, raw.Len())
	rows := make([]frame.Row, 0, raw.Len())
	for _, row := range raw.Rows {
		if _, dup := seen[row.Timestamp]; dup {
			continue
		}
		seen[row.Timestamp] = struct{}{}
		rows = append(rows, row)
	}

	columns := make([]types.Measurement, len(raw.Columns))
	for i, name := range raw.Columns {
		m, ok := c.mapping[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", types.ErrUnknownColumn, name)
		}
		columns[i] = m
	}

	type entry struct {
		ts     int64
		values []float32
	}
	entries := make([]entry, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		if len(row.Values) != len(columns) {
			return nil, fmt.Errorf("%w: row at %d has %d values for %d columns", types.ErrSchema, row.Timestamp, len(row.Values), len(columns))
		}
		values := make([]float32, len(columns))
		numeric := true
		for i, v := range row.Values {
			if values[i], numeric = esmutils.ToStorePrecision(v); !numeric {
				break
			}
		}
		if !numeric {
			dropped++
			continue
		}
		entries = append(entries, entry{ts: row.Timestamp, values: values})
	}
	if dropped > 0 {
		logrus.WithFields(logrus.Fields{
			"key":     key.String(),
			"dropped": dropped,
		}).Warn("dropped rows with non numeric values")
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].ts < entries[j].ts })

	index := make([]time.Time, len(entries))
	values := make([][]float32, len(entries))
	for i, e := range entries {
		index[i] = time.Unix(e.ts, 0).In(c.location)
		values[i] = e.values
	}

	f, err := NewFrame(key, c.location, columns, index, values)
	if err != nil {
		return nil, err
	}
	f.dropped = dropped
	return f, nil
}

// Accumulator collects the merged frames of one meter across dates.
// It is append only and finalizes exactly once.
type Accumulator struct {
	key       types.MeterKey
	columns   []string
	rows      []frame.Row
	finalized bool
}

func NewAccumulator(key types.MeterKey) *Accumulator {
	return &Accumulator{key: key}
}

func (a *Accumulator) Key() types.MeterKey {
	return a.key
}

func (a *Accumulator) Len() int {
	return len(a.rows)
}

// Append adds a merged frame. All frames must share the same columns.
func (a *Accumulator) Append(f *frame.Frame) error {
	if a.finalized {
		return ErrFinalized
	}
	if a.columns == nil {
		a.columns = append([]string(nil), f.Columns...)
	} else if !slices.Equal(a.columns, f.Columns) {
		return fmt.Errorf("%w: columns %v do not match %v", types.ErrSchema, f.Columns, a.columns)
	}
	a.rows = append(a.rows, f.Rows...)
	return nil
}

// Finalize canonicalizes everything appended so far.
func (a *Accumulator) Finalize(c *Canonicalizer) (*Frame, error) {
	if a.finalized {
		return nil, ErrFinalized
	}
	a.finalized = true

	f, err := c.Canonicalize(a.key, &frame.Frame{Columns: a.columns, Rows: a.rows})
	a.rows = nil
	return f, err
}
