// v0
// internal/governor/conditioner.go
package governor

// bounds is a physical range for one kind of signal.
type bounds struct{ lo, hi float64 }

var (
	temperatureBounds = bounds{lo: -40, hi: 85}
	humidityBounds    = bounds{lo: 0, hi: 100}
	co2Bounds         = bounds{lo: 0, hi: 5000}
)

// clamp pins a present reading into the range. Sensors drift slightly past
// their nominal limits under noise, so out-of-range samples are kept.
func (b bounds) clamp(r Reading) Reading {
	v, ok := r.Get()
	if !ok {
		return None()
	}
	switch {
	case v < b.lo:
		v = b.lo
	case v > b.hi:
		v = b.hi
	}
	return Some(v)
}

// filter runs r through the memory when present and leaves the memory
// untouched otherwise.
func filter(r Reading, alpha float64, mem *filterMemory) Reading {
	v, ok := r.Get()
	if !ok {
		return None()
	}
	return Some(mem.apply(v, alpha))
}

// condition sanitizes one tick's raw readings and updates filter memory.
func (s *state) condition(ambient Reading, raw Sensors, f FilterTunables) Conditioned {
	c := Conditioned{
		IndoorTemperature:  temperatureBounds.clamp(ambient),
		OutdoorTemperature: temperatureBounds.clamp(raw.OutdoorTemperature),
		IndoorHumidity:     humidityBounds.clamp(raw.IndoorHumidity),
		OutdoorHumidity:    humidityBounds.clamp(raw.OutdoorHumidity),
		IndoorCO2:          co2Bounds.clamp(raw.IndoorCO2),
	}
	c.FilteredIndoorTemperature = filter(c.IndoorTemperature, f.TemperatureAlpha, &s.temperature)
	c.FilteredIndoorHumidity = filter(c.IndoorHumidity, f.HumidityAlpha, &s.humidity)
	c.FilteredIndoorCO2 = filter(c.IndoorCO2, f.CO2Alpha, &s.co2)
	return c
}
