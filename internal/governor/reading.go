// v0
// internal/governor/reading.go
package governor

import "math"

// Reading is an optional sensor value. A Reading without a value is "not
// available"; it is never read as zero.
type Reading struct {
	value float64
	ok    bool
}

// Some wraps a sample. Non-finite samples are reported as absent.
func Some(v float64) Reading {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Reading{}
	}
	return Reading{value: v, ok: true}
}

// None is the absent reading.
func None() Reading { return Reading{} }

// Get returns the value and whether it is available.
func (r Reading) Get() (float64, bool) { return r.value, r.ok }

// Valid reports whether the reading carries a value.
func (r Reading) Valid() bool { return r.ok }

// Sensors is the raw optional sensor bundle supplied each tick. Indoor
// temperature arrives through ControlInput.AmbientTemperature.
type Sensors struct {
	OutdoorTemperature Reading
	IndoorHumidity     Reading
	OutdoorHumidity    Reading
	IndoorCO2          Reading
}

// Conditioned is the sanitized bundle produced by the conditioner. Filtered
// values are only present when the matching clamped value is present.
type Conditioned struct {
	IndoorTemperature  Reading
	OutdoorTemperature Reading
	IndoorHumidity     Reading
	OutdoorHumidity    Reading
	IndoorCO2          Reading

	FilteredIndoorTemperature Reading
	FilteredIndoorHumidity    Reading
	FilteredIndoorCO2         Reading
}
