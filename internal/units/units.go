// Package units holds the static raw-unit-name to SI conversion table
// (spec.md §4.1). It is intentionally a small hard-coded map, not a
// pluggable registry: spec.md §9 calls the original's unit table a
// hard-coded table and says not to expose it as pluggable unless
// tests require it.
package units

import "math"

// Convert is a pure raw-value to SI-value conversion function.
type Convert func(v float64) float64

var table = map[string]Convert{
	// already-SI, identity conversions
	"K":       identity,
	"m":       identity,
	"m/s":     identity,
	"Pa":      identity,
	"kg/s":    identity,
	"percent": identity,
	"rad/s":   identity,
	"rad":     identity,

	"celsius": func(v float64) float64 { return v + 273.15 },
	"degree":  func(v float64) float64 { return v * math.Pi / 180 },
	"g/s":     func(v float64) float64 { return v / 1000 },
	"km":      func(v float64) float64 { return v * 1000 },
	"km/h":    func(v float64) float64 { return v * 1000 / 3600 },
	"kPa":     func(v float64) float64 { return v * 1000 },
	"nm":      func(v float64) float64 { return v * 1e-9 },
	"rpm":     func(v float64) float64 { return v * math.Pi / 30 },
	"s":       func(v float64) float64 { return v * 1e9 },
}

func identity(v float64) float64 { return v }

// Lookup resolves a raw-unit name to its conversion function. The
// bool result is false when the name is not registered; callers
// (the schema compiler) treat that as a fatal schema error.
func Lookup(name string) (Convert, bool) {
	fn, ok := table[name]
	return fn, ok
}
