// Package frame holds rows of raw channel values keyed by unix second,
// before they are mapped onto the canonical schema.
package frame

type Row struct {
	Timestamp int64
	Values    []float64
}

// Frame is a table with raw channel labels as columns.
type Frame struct {
	Columns []string
	Rows    []Row
}

func New(columns ...string) *Frame {
	return &Frame{Columns: columns}
}

func (f *Frame) Len() int {
	return len(f.Rows)
}

// Span returns the first and last row timestamps.
func (f *Frame) Span() (first, last int64, ok bool) {
	if len(f.Rows) == 0 {
		return 0, 0, false
	}
	return f.Rows[0].Timestamp, f.Rows[len(f.Rows)-1].Timestamp, true
}
