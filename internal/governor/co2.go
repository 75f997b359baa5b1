// v0
// internal/governor/co2.go
package governor

// co2 runs the CO2 hysteresis controller. latch is only touched when the
// controller is enabled and a reading is available.
func co2(enabled bool, c Conditioned, t CO2Tunables, latch *bool) Determination {
	if !enabled {
		return Determination{}
	}
	ppm, ok := c.FilteredIndoorCO2.Get()
	if !ok {
		return Determination{}
	}
	switch {
	case !*latch && ppm >= t.Target+t.Deadband:
		*latch = true
	case *latch && ppm <= t.Target-t.Deadband:
		*latch = false
	}
	if !*latch {
		return Determination{}
	}
	return latchedLevel(ppm, t.Target, t.Span, t.Gamma, t.MinLevel)
}

// latchedLevel is the shared ramp of the latched controllers. It never
// proposes less than min once latched.
func latchedLevel(v, target, span, gamma float64, min int) Determination {
	if v <= target {
		return engaged(min)
	}
	return engaged(max(min, ramp(v-target, span, gamma)))
}
