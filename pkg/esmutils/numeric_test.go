package esmutils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseNumeric(t *testing.T) {
	tests := []struct {
		in    string
		want  float64
		valid bool
	}{
		{"100", 100, true},
		{" 10.5 ", 10.5, true},
		{"-3e2", -300, true},
		{"", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseNumeric(tt.in)
		assert.Equal(t, tt.valid, ok, tt.in)
		if tt.valid {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestParseUnixSeconds(t *testing.T) {
	v, ok := ParseUnixSeconds("1577836800")
	assert.True(t, ok)
	assert.Equal(t, int64(1577836800), v)

	_, ok = ParseUnixSeconds("1577836800.5")
	assert.False(t, ok)
}

func TestToStorePrecision(t *testing.T) {
	v, ok := ToStorePrecision(105)
	assert.True(t, ok)
	assert.Equal(t, float32(105), v)

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), math.MaxFloat64} {
		_, ok := ToStorePrecision(bad)
		assert.False(t, ok, "%v", bad)
	}
}
