// v0
// internal/governor/helpers_test.go
package governor

import (
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

// unfiltered returns the defaults with every filter disabled.
func unfiltered() Tunables {
	t := DefaultTunables()
	t.Filter = FilterTunables{TemperatureAlpha: 1, HumidityAlpha: 1, CO2Alpha: 1}
	return t
}

func newTestGovernor(t *testing.T, cfg Tunables) *Governor {
	t.Helper()
	g, err := New(cfg, discardLogger())
	if err != nil {
		t.Fatalf("new governor: %v", err)
	}
	return g
}

func cooling(ambient, target float64, fan FanMode) ControlInput {
	return ControlInput{AmbientTemperature: ambient, TargetTemperature: target, Action: ActionCooling, FanMode: fan}
}

// conditioned runs the conditioner once with filters disabled.
func conditioned(ambient float64, raw Sensors) Conditioned {
	var s state
	return s.condition(Some(ambient), raw, unfiltered().Filter)
}
