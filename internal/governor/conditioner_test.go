// v0
// internal/governor/conditioner_test.go
package governor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadingRejectsNonFinite(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, ok := Some(v).Get()
		assert.False(t, ok, "value %v", v)
	}
	v, ok := Some(0).Get()
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
	assert.False(t, None().Valid())
}

func TestConditionClampsToPhysicalRange(t *testing.T) {
	c := conditioned(90, Sensors{
		OutdoorTemperature: Some(-55),
		IndoorHumidity:     Some(101.5),
		OutdoorHumidity:    Some(-2),
		IndoorCO2:          Some(7000),
	})
	cases := []struct {
		name string
		got  Reading
		want float64
	}{
		{"indoor temperature", c.IndoorTemperature, 85},
		{"outdoor temperature", c.OutdoorTemperature, -40},
		{"indoor humidity", c.IndoorHumidity, 100},
		{"outdoor humidity", c.OutdoorHumidity, 0},
		{"indoor co2", c.IndoorCO2, 5000},
		{"filtered co2", c.FilteredIndoorCO2, 5000},
	}
	for _, tc := range cases {
		v, ok := tc.got.Get()
		require.True(t, ok, tc.name)
		assert.Equal(t, tc.want, v, tc.name)
	}
}

func TestConditionDropsMissingSignals(t *testing.T) {
	c := conditioned(math.NaN(), Sensors{IndoorCO2: None()})
	assert.False(t, c.IndoorTemperature.Valid())
	assert.False(t, c.FilteredIndoorTemperature.Valid())
	assert.False(t, c.OutdoorHumidity.Valid())
	assert.False(t, c.FilteredIndoorCO2.Valid())
}

func TestFilterSeedsWithFirstSample(t *testing.T) {
	var s state
	f := FilterTunables{TemperatureAlpha: 0.5, HumidityAlpha: 1, CO2Alpha: 1}

	c := s.condition(Some(20), Sensors{}, f)
	v, _ := c.FilteredIndoorTemperature.Get()
	assert.Equal(t, 20.0, v, "first sample must seed the filter")

	c = s.condition(Some(22), Sensors{}, f)
	v, _ = c.FilteredIndoorTemperature.Get()
	assert.InDelta(t, 21.0, v, 1e-9)

	c = s.condition(Some(math.NaN()), Sensors{}, f)
	assert.False(t, c.FilteredIndoorTemperature.Valid())
	assert.True(t, s.temperature.seeded)
	assert.InDelta(t, 21.0, s.temperature.value, 1e-9, "absent samples leave memory untouched")

	c = s.condition(Some(23), Sensors{}, f)
	v, _ = c.FilteredIndoorTemperature.Get()
	assert.InDelta(t, 22.0, v, 1e-9)
}

func TestConditionIsIdempotentWithFiltersDisabled(t *testing.T) {
	var s state
	f := unfiltered().Filter
	first := s.condition(Some(31.25), Sensors{
		OutdoorTemperature: Some(99),
		IndoorHumidity:     Some(55),
		OutdoorHumidity:    Some(48),
		IndoorCO2:          Some(812),
	}, f)
	second := s.condition(first.FilteredIndoorTemperature, Sensors{
		OutdoorTemperature: first.OutdoorTemperature,
		IndoorHumidity:     first.FilteredIndoorHumidity,
		OutdoorHumidity:    first.OutdoorHumidity,
		IndoorCO2:          first.FilteredIndoorCO2,
	}, f)
	require.Equal(t, first, second)
}
