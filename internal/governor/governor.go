// v0
// internal/governor/governor.go

// Package governor decides the fan level and lid position of the ventilation
// fan from the thermostat demand and the environmental sensors.
//
// A Governor owns all cross-tick memory (hysteresis latches, filter memory,
// the debounced label). It is not safe for concurrent use: callers invoke
// Update once per tick from a single goroutine and Reset only between ticks.
package governor

import (
	"fmt"
	"log/slog"
)

// Result is everything one tick produced.
type Result struct {
	Output   ControlOutput `json:"output"`
	Active   Controller    `json:"active"`
	RawLevel int           `json:"rawLevel"`
	Thermal  Determination `json:"thermal"`
	CO2      Determination `json:"co2"`
	RH       Determination `json:"rh"`
	// Label is set when the active controller label must be published.
	Label  *LabelEvent `json:"label,omitempty"`
	Faults []error     `json:"-"`
}

type Governor struct {
	cfg   Tunables
	lg    *slog.Logger
	st    state
	label labelLatch
}

// New validates the tunables and returns a governor with empty memory.
func New(cfg Tunables, lg *slog.Logger) (*Governor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if lg == nil {
		lg = slog.Default()
	}
	return &Governor{cfg: cfg, lg: lg.With("component", "governor")}, nil
}

// Tunables returns the active configuration.
func (g *Governor) Tunables() Tunables { return g.cfg }

// SetTunables swaps the configuration. Memory is kept.
func (g *Governor) SetTunables(cfg Tunables) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.cfg = cfg
	g.lg.Info("tunables updated")
	return nil
}

// Reset clears latches, filter memory and the slew limiter. It is called
// when the thermostat is (re)enabled. The published label is kept so the
// next tick does not republish an unchanged label.
func (g *Governor) Reset() {
	g.st = state{}
	g.lg.Info("state reset")
}

// Snapshot copies the governor memory.
func (g *Governor) Snapshot() Snapshot {
	s := Snapshot{
		CO2Latch:         g.st.co2Latch,
		RHLatch:          g.st.rhLatch,
		FilteredTempC:    g.st.temperature.ptr(),
		FilteredHumidity: g.st.humidity.ptr(),
		FilteredCO2:      g.st.co2.ptr(),
		SlewLevel:        g.st.slew.current,
	}
	if g.label.published {
		s.LastPublished = g.label.last.String()
	}
	return s
}

// Update runs one control tick. It never fails: faults disable the affected
// controller and are reported in Result.Faults.
func (g *Governor) Update(in ControlInput, raw Sensors, tg Toggles) Result {
	var res Result
	ambient := Some(in.AmbientTemperature)
	if in.AmbientMissing {
		ambient = None()
	}
	c := g.st.condition(ambient, raw, g.cfg.Filter)

	th, tr, err := thermal(in, c, g.cfg.Thermal)
	if err != nil {
		res.Faults = append(res.Faults, err)
		g.lg.Warn("thermal controller disabled", "error", err)
	} else if in.Action == ActionCooling {
		g.lg.Debug("thermal", "floor", tr.Floor, "error", tr.Error, "drive", tr.Drive, "level", th.Level)
	}
	res.Thermal = th

	co2Was := g.st.co2Latch
	res.CO2 = co2(tg.CO2Enabled, c, g.cfg.CO2, &g.st.co2Latch)
	if co2Was != g.st.co2Latch {
		g.lg.Info("co2 latch", "active", g.st.co2Latch, "ppm", fmtReading(c.FilteredIndoorCO2))
	}
	rhWas := g.st.rhLatch
	res.RH = rh(tg.RHEnabled, c, g.cfg.RH, &g.st.rhLatch)
	if rhWas != g.st.rhLatch {
		g.lg.Info("rh latch", "active", g.st.rhLatch, "indoor", fmtReading(c.FilteredIndoorHumidity), "outdoor", fmtReading(c.OutdoorHumidity))
	}

	comb := combine(res.Thermal, res.CO2, res.RH)
	res.RawLevel = comb.Level
	res.Active = comb.Active
	res.Output = override(comb, in, g.cfg.Override)

	if in.FanMode == FanOff {
		g.st.slew.force(0)
	} else {
		g.st.slew.step(res.Output.FanSpeed, g.cfg.Slew)
		res.Output.FanSpeed = g.st.slew.limit(levelCap(in.FanMode, g.cfg.Override))
	}

	res.Label = g.label.observe(res.Active)
	return res
}

func fmtReading(r Reading) string {
	v, ok := r.Get()
	if !ok {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", v)
}
