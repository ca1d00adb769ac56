package filepair

import (
	"path/filepath"
	"testing"

	"github.com/gjwo/nilm-gjw-data/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gjwResolver() *Resolver {
	return NewResolver(map[types.Channel]types.FileTemplate{
		types.ChannelActive:   {Prefix: "4-POWER_REAL_FINE ", Suffix: " Dump"},
		types.ChannelReactive: {Prefix: "5-POWER_REACTIVE_STANDARD ", Suffix: " Dump"},
	})
}

func TestFileName(t *testing.T) {
	r := gjwResolver()

	tests := []struct {
		channel  types.Channel
		expected string
	}{
		{types.ChannelActive, "4-POWER_REAL_FINE 2020-01-01 Dump.csv"},
		{types.ChannelReactive, "5-POWER_REACTIVE_STANDARD 2020-01-01 Dump.csv"},
	}
	for _, tt := range tests {
		t.Run(string(tt.channel), func(t *testing.T) {
			name, err := r.FileName("2020-01-01", tt.channel)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestPairDoesNotTouchFilesystem(t *testing.T) {
	dir := filepath.Join("no", "such", "dir")
	active, reactive, err := gjwResolver().Pair(dir, "2015-06-30")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "4-POWER_REAL_FINE 2015-06-30 Dump.csv"), active)
	assert.Equal(t, filepath.Join(dir, "5-POWER_REACTIVE_STANDARD 2015-06-30 Dump.csv"), reactive)
}

func TestUnknownChannel(t *testing.T) {
	_, err := gjwResolver().Path("dir", "2020-01-01", types.Channel("voltage"))
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrMissingTemplate)
	assert.ErrorIs(t, err, types.ErrConfiguration)
}
