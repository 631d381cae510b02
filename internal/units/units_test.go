package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_KnownUnits(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"celsius", 0, 273.15},
		{"degree", 180, math.Pi},
		{"g/s", 526.51, 0.52651},
		{"km", 1, 1000},
		{"km/h", 60, 60 * 1000.0 / 3600.0},
		{"kPa", 101.325, 101325},
		{"nm", 1, 1e-9},
		{"rpm", 60, 2 * math.Pi},
		{"s", 1, 1e9},
		{"K", 42, 42},
		{"m", 42, 42},
		{"m/s", 42, 42},
		{"Pa", 42, 42},
		{"kg/s", 42, 42},
		{"percent", 42, 42},
		{"rad/s", 42, 42},
		{"rad", 42, 42},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fn, ok := Lookup(tc.name)
			require.True(t, ok)
			assert.InDelta(t, tc.want, fn(tc.in), 1e-9)
		})
	}
}

func TestLookup_UnknownUnit(t *testing.T) {
	_, ok := Lookup("furlong")
	assert.False(t, ok)
}
