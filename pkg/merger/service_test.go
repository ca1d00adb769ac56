package merger

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gjwo/nilm-gjw-data/pkg/canonical"
	"github.com/gjwo/nilm-gjw-data/pkg/channel"
	"github.com/gjwo/nilm-gjw-data/pkg/filepair"
	"github.com/gjwo/nilm-gjw-data/pkg/frame"
	"github.com/gjwo/nilm-gjw-data/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(ch types.Channel, samples ...channel.Sample) *channel.Series {
	return &channel.Series{
		Channel:  ch,
		Date:     "2020-01-01",
		Location: time.UTC,
		Samples:  samples,
	}
}

func TestMergeDisjointRangesZeroFills(t *testing.T) {
	active := series(types.ChannelActive,
		channel.Sample{Timestamp: 100, Value: 1},
		channel.Sample{Timestamp: 101, Value: 2},
	)
	reactive := series(types.ChannelReactive,
		channel.Sample{Timestamp: 200, Value: 7},
	)

	merged, err := Merge(active, reactive)
	require.NoError(t, err)

	assert.Equal(t, []string{"active", "reactive"}, merged.Columns)
	assert.Equal(t, []frame.Row{
		{Timestamp: 100, Values: []float64{1, 0}},
		{Timestamp: 101, Values: []float64{2, 0}},
		{Timestamp: 200, Values: []float64{0, 7}},
	}, merged.Rows)
}

func TestMergeOverlap(t *testing.T) {
	active := series(types.ChannelActive,
		channel.Sample{Timestamp: 1577836800, Value: 100},
		channel.Sample{Timestamp: 1577836801, Value: 105},
	)
	reactive := series(types.ChannelReactive,
		channel.Sample{Timestamp: 1577836800, Value: 10},
	)

	merged, err := Merge(active, reactive)
	require.NoError(t, err)

	require.Equal(t, 2, merged.Len())
	assert.Equal(t, []float64{100, 10}, merged.Rows[0].Values)
	assert.Equal(t, []float64{105, 0}, merged.Rows[1].Values)

	first, last, ok := merged.Span()
	assert.True(t, ok)
	assert.Equal(t, int64(1577836800), first)
	assert.Equal(t, int64(1577836801), last)
}

func TestMergeEmptySeries(t *testing.T) {
	merged, err := Merge(series(types.ChannelActive), series(types.ChannelReactive))
	require.NoError(t, err)
	assert.Equal(t, 0, merged.Len())
}

func TestMergeNothing(t *testing.T) {
	_, err := Merge()
	assert.Error(t, err)
}

// Europe/London falls back at 2015-10-25T01:00:00Z, local 01:00-02:00 happens twice.
func TestPipelineAcrossClockChange(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	dir := t.TempDir()
	write := func(name, content string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	// 01:59:55 BST to 01:00:05 GMT
	write("4-POWER_REAL_FINE 2015-10-25 Dump.csv", "1445734795,100\n1445734805,110\n")
	write("5-POWER_REACTIVE_STANDARD 2015-10-25 Dump.csv", "1445734795,10\n1445734800,20\n")

	std := channel.NewStandardizer(filepair.NewResolver(map[types.Channel]types.FileTemplate{
		types.ChannelActive:   {Prefix: "4-POWER_REAL_FINE ", Suffix: " Dump"},
		types.ChannelReactive: {Prefix: "5-POWER_REACTIVE_STANDARD ", Suffix: " Dump"},
	}), loc)
	active, err := std.Standardize(dir, "2015-10-25", types.ChannelActive)
	require.NoError(t, err)
	reactive, err := std.Standardize(dir, "2015-10-25", types.ChannelReactive)
	require.NoError(t, err)

	merged, err := Merge(active, reactive)
	require.NoError(t, err)

	canon := canonical.NewCanonicalizer(map[string]types.Measurement{
		"active":   {Physical: "power", Type: "active"},
		"reactive": {Physical: "power", Type: "reactive"},
	}, loc)
	f, err := canon.Canonicalize(types.MeterKey{Building: 1, Meter: 1}, merged)
	require.NoError(t, err)

	// one row per second of the 10 second window
	require.Equal(t, 11, f.Len())
	for i := 1; i < f.Len(); i++ {
		assert.Equal(t, time.Second, f.Time(i).Sub(f.Time(i-1)), "row %d", i)
	}

	first := f.Time(0)
	_, offset := first.Zone()
	assert.Equal(t, 3600, offset)
	assert.Equal(t, []int{1, 59, 55}, []int{first.Hour(), first.Minute(), first.Second()})

	repeated := f.Time(5)
	_, offset = repeated.Zone()
	assert.Equal(t, 0, offset)
	assert.Equal(t, []int{1, 0, 0}, []int{repeated.Hour(), repeated.Minute(), repeated.Second()})
	assert.Equal(t, 1, f.Time(10).Hour())

	assert.Equal(t, []float32{100, 10}, f.Row(0))
	assert.Equal(t, []float32{100, 20}, f.Row(5))
	assert.Equal(t, []float32{100, 0}, f.Row(6))
	assert.Equal(t, []float32{110, 0}, f.Row(10))
}
