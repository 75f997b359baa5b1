// v0
// internal/governor/tunables.go
package governor

import (
	"errors"
	"fmt"
)

// ErrInvalidTunables wraps every tunables validation failure.
var ErrInvalidTunables = errors.New("invalid tunables")

// FilterTunables holds the one-pole filter weights. Alpha 1 disables a filter.
type FilterTunables struct {
	TemperatureAlpha float64 `yaml:"temperature_alpha" json:"temperatureAlpha"`
	HumidityAlpha    float64 `yaml:"humidity_alpha" json:"humidityAlpha"`
	CO2Alpha         float64 `yaml:"co2_alpha" json:"co2Alpha"`
}

type ThermalTunables struct {
	// OutsideMargin keeps the effective target above what outdoor air can reach.
	OutsideMargin float64 `yaml:"outside_margin" json:"outsideMargin"`
	Deadband      float64 `yaml:"deadband" json:"deadband"`
	AutoSpan      float64 `yaml:"auto_span" json:"autoSpan"`
	QuietSpan     float64 `yaml:"quiet_span" json:"quietSpan"`
	AutoGamma     float64 `yaml:"auto_gamma" json:"autoGamma"`
	QuietGamma    float64 `yaml:"quiet_gamma" json:"quietGamma"`
}

type CO2Tunables struct {
	Target   float64 `yaml:"target" json:"target"`
	Deadband float64 `yaml:"deadband" json:"deadband"`
	Span     float64 `yaml:"span" json:"span"`
	Gamma    float64 `yaml:"gamma" json:"gamma"`
	MinLevel int     `yaml:"min_level" json:"minLevel"`
}

type RHTunables struct {
	Target        float64 `yaml:"target" json:"target"`
	Deadband      float64 `yaml:"deadband" json:"deadband"`
	Low           float64 `yaml:"low" json:"low"`
	High          float64 `yaml:"high" json:"high"`
	OutsideMargin float64 `yaml:"outside_margin" json:"outsideMargin"`
	Gamma         float64 `yaml:"gamma" json:"gamma"`
	MinLevel      int     `yaml:"min_level" json:"minLevel"`
}

type OverrideTunables struct {
	MinRunLevel int `yaml:"min_run_level" json:"minRunLevel"`
	QuietCap    int `yaml:"quiet_cap" json:"quietCap"`
}

// SlewTunables rate-limit the final level. Zero values disable the limiter.
type SlewTunables struct {
	MinPersistTicks int `yaml:"min_persist_ticks" json:"minPersistTicks"`
	MaxStepPerTick  int `yaml:"max_step_per_tick" json:"maxStepPerTick"`
}

// Tunables is the complete governor configuration.
type Tunables struct {
	Filter   FilterTunables   `yaml:"filter" json:"filter"`
	Thermal  ThermalTunables  `yaml:"thermal" json:"thermal"`
	CO2      CO2Tunables      `yaml:"co2" json:"co2"`
	RH       RHTunables       `yaml:"rh" json:"rh"`
	Override OverrideTunables `yaml:"override" json:"override"`
	Slew     SlewTunables     `yaml:"slew" json:"slew"`
}

// DefaultTunables returns the stock configuration.
func DefaultTunables() Tunables {
	return Tunables{
		Filter: FilterTunables{TemperatureAlpha: 0.4, HumidityAlpha: 0.5, CO2Alpha: 0.5},
		Thermal: ThermalTunables{
			OutsideMargin: 0.5,
			AutoSpan:      5.0,
			QuietSpan:     7.0,
			AutoGamma:     1.0,
			QuietGamma:    2.5,
		},
		CO2: CO2Tunables{Target: 700, Deadband: 75, Span: 800, Gamma: 1.0, MinLevel: 1},
		RH: RHTunables{
			Target: 60, Deadband: 3, Low: 60, High: 80,
			OutsideMargin: 5, Gamma: 1.0, MinLevel: 1,
		},
		Override: OverrideTunables{MinRunLevel: 1, QuietCap: 6},
	}
}

// Validate checks ranges. Errors wrap ErrInvalidTunables.
func (t Tunables) Validate() error {
	alphas := map[string]float64{
		"filter.temperature_alpha": t.Filter.TemperatureAlpha,
		"filter.humidity_alpha":    t.Filter.HumidityAlpha,
		"filter.co2_alpha":         t.Filter.CO2Alpha,
	}
	for k, a := range alphas {
		if !(a >= 0 && a <= 1) {
			return fmt.Errorf("%w: %s=%.3f outside 0..1", ErrInvalidTunables, k, a)
		}
	}
	positive := []struct {
		key string
		v   float64
	}{
		{"thermal.auto_span", t.Thermal.AutoSpan},
		{"thermal.quiet_span", t.Thermal.QuietSpan},
		{"thermal.auto_gamma", t.Thermal.AutoGamma},
		{"thermal.quiet_gamma", t.Thermal.QuietGamma},
		{"co2.span", t.CO2.Span},
		{"co2.gamma", t.CO2.Gamma},
		{"rh.gamma", t.RH.Gamma},
	}
	for _, p := range positive {
		if !(p.v > 0) || !isFinite(p.v) {
			return fmt.Errorf("%w: %s must be > 0", ErrInvalidTunables, p.key)
		}
	}
	finite := []struct {
		key string
		v   float64
	}{
		{"thermal.outside_margin", t.Thermal.OutsideMargin},
		{"thermal.deadband", t.Thermal.Deadband},
		{"co2.target", t.CO2.Target},
		{"co2.deadband", t.CO2.Deadband},
		{"rh.target", t.RH.Target},
		{"rh.deadband", t.RH.Deadband},
		{"rh.low", t.RH.Low},
		{"rh.high", t.RH.High},
		{"rh.outside_margin", t.RH.OutsideMargin},
	}
	for _, f := range finite {
		if !isFinite(f.v) {
			return fmt.Errorf("%w: %s must be a finite number", ErrInvalidTunables, f.key)
		}
	}
	if t.Thermal.Deadband < 0 || t.CO2.Deadband < 0 || t.RH.Deadband < 0 {
		return fmt.Errorf("%w: deadbands must be >= 0", ErrInvalidTunables)
	}
	if t.RH.High <= t.RH.Low {
		return fmt.Errorf("%w: rh.high %.1f must exceed rh.low %.1f", ErrInvalidTunables, t.RH.High, t.RH.Low)
	}
	levels := map[string]int{
		"co2.min_level":          t.CO2.MinLevel,
		"rh.min_level":           t.RH.MinLevel,
		"override.min_run_level": t.Override.MinRunLevel,
		"override.quiet_cap":     t.Override.QuietCap,
	}
	for k, l := range levels {
		if l < 0 || l > MaxLevel {
			return fmt.Errorf("%w: %s=%d outside 0..%d", ErrInvalidTunables, k, l, MaxLevel)
		}
	}
	if t.Override.QuietCap < t.Override.MinRunLevel {
		return fmt.Errorf("%w: override.quiet_cap %d below min_run_level %d", ErrInvalidTunables, t.Override.QuietCap, t.Override.MinRunLevel)
	}
	if t.Slew.MinPersistTicks < 0 || t.Slew.MaxStepPerTick < 0 {
		return fmt.Errorf("%w: slew settings must be >= 0", ErrInvalidTunables)
	}
	return nil
}
