// v0
// internal/governor/thermal.go
package governor

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidSetpoint is reported when the target temperature is not finite.
	ErrInvalidSetpoint = errors.New("setpoint is not a finite number")
	// ErrInvalidAmbient is reported when the ambient temperature is not finite.
	ErrInvalidAmbient = errors.New("ambient temperature is not a finite number")
)

// thermalTrace carries the intermediate values for diagnostics.
type thermalTrace struct {
	Floor float64
	Error float64
	Drive float64
}

// targetFloor raises the setpoint to what outdoor air can actually deliver.
func targetFloor(setpoint float64, outdoor Reading, margin float64) float64 {
	if out, ok := outdoor.Get(); ok {
		return math.Max(setpoint, out+margin)
	}
	return setpoint
}

// thermal maps the indoor temperature error onto a fan level. It only runs
// while the thermostat demands cooling.
func thermal(in ControlInput, c Conditioned, t ThermalTunables) (Determination, thermalTrace, error) {
	var tr thermalTrace
	if in.Action != ActionCooling {
		return Determination{}, tr, nil
	}
	if !isFinite(in.TargetTemperature) {
		return Determination{}, tr, fmt.Errorf("thermal: %w (%v)", ErrInvalidSetpoint, in.TargetTemperature)
	}
	if in.AmbientMissing {
		return Determination{}, tr, nil
	}
	if !isFinite(in.AmbientTemperature) {
		return Determination{}, tr, fmt.Errorf("thermal: %w (%v)", ErrInvalidAmbient, in.AmbientTemperature)
	}
	indoor, ok := c.FilteredIndoorTemperature.Get()
	if !ok {
		return Determination{}, tr, nil
	}
	tr.Floor = targetFloor(in.TargetTemperature, c.OutdoorTemperature, t.OutsideMargin)
	tr.Error = indoor - tr.Floor
	if tr.Error <= t.Deadband {
		return Determination{}, tr, nil
	}
	span, gamma := t.AutoSpan, t.AutoGamma
	if in.FanMode == FanQuiet {
		span, gamma = t.QuietSpan, t.QuietGamma
	}
	tr.Drive = clampFloat(tr.Error/span, 0, 1)
	return engaged(ramp(tr.Error, span, gamma)), tr, nil
}
