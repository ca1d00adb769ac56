package canonical

import (
	"fmt"
	"time"

	"github.com/gjwo/nilm-gjw-data/pkg/types"
)

// Frame is the finished per meter table. The index is strictly increasing
// and every value is a finite float32. A Frame is never mutated after
// construction; accessors return copies.
type Frame struct {
	key      types.MeterKey
	location *time.Location
	columns  []types.Measurement
	index    []time.Time
	values   [][]float32
	dropped  int
}

// NewFrame checks the invariants of a canonical frame.
func NewFrame(key types.MeterKey, loc *time.Location, columns []types.Measurement, index []time.Time, values [][]float32) (*Frame, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: frame has no timezone", types.ErrSchema)
	}
	if len(index) != len(values) {
		return nil, fmt.Errorf("%w: %d index entries for %d rows", types.ErrSchema, len(index), len(values))
	}
	seen := make(map[types.Measurement]struct{}, len(columns))
	for _, c := range columns {
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("%w: duplicate column %s", types.ErrSchema, c)
		}
		seen[c] = struct{}{}
	}
	for i, row := range values {
		if len(row) != len(columns) {
			return nil, fmt.Errorf("%w: row %d has %d values for %d columns", types.ErrSchema, i, len(row), len(columns))
		}
		if i > 0 && !index[i].After(index[i-1]) {
			return nil, fmt.Errorf("%w: index not strictly increasing at row %d", types.ErrSchema, i)
		}
	}

	f := &Frame{
		key:      key,
		location: loc,
		columns:  append([]types.Measurement(nil), columns...),
		index:    make([]time.Time, len(index)),
		values:   make([][]float32, len(values)),
	}
	for i := range index {
		f.index[i] = index[i].In(loc)
		f.values[i] = append([]float32(nil), values[i]...)
	}
	return f, nil
}

func (f *Frame) Key() types.MeterKey {
	return f.key
}

func (f *Frame) Location() *time.Location {
	return f.location
}

func (f *Frame) Len() int {
	return len(f.index)
}

func (f *Frame) Columns() []types.Measurement {
	return append([]types.Measurement(nil), f.columns...)
}

func (f *Frame) Time(i int) time.Time {
	return f.index[i]
}

func (f *Frame) Row(i int) []float32 {
	return append([]float32(nil), f.values[i]...)
}

func (f *Frame) Value(i, col int) float32 {
	return f.values[i][col]
}

// DroppedRows counts rows removed because a value was not numeric.
func (f *Frame) DroppedRows() int {
	return f.dropped
}
