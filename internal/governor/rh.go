// v0
// internal/governor/rh.go
package governor

// outdoorBlocked reports whether outdoor air is too humid to help.
func outdoorBlocked(indoor, outdoor, margin float64) bool {
	return outdoor >= indoor+margin
}

// rh runs the humidity hysteresis controller. Both indoor and outdoor
// readings are required; a blocked outdoor condition releases the latch
// even mid-cycle.
func rh(enabled bool, c Conditioned, t RHTunables, latch *bool) Determination {
	if !enabled {
		return Determination{}
	}
	indoor, ok := c.FilteredIndoorHumidity.Get()
	if !ok {
		return Determination{}
	}
	outdoor, ok := c.OutdoorHumidity.Get()
	if !ok {
		return Determination{}
	}
	blocked := outdoorBlocked(indoor, outdoor, t.OutsideMargin)
	switch {
	case !*latch && indoor >= t.Target+t.Deadband && !blocked:
		*latch = true
	case *latch && (indoor <= t.Target-t.Deadband || blocked):
		*latch = false
	}
	if !*latch {
		return Determination{}
	}
	return latchedLevel(indoor, t.Target, t.High-t.Low, t.Gamma, t.MinLevel)
}
