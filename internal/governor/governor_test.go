// v0
// internal/governor/governor_test.go
package governor

import (
	"bytes"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsInvalidTunables(t *testing.T) {
	cfg := DefaultTunables()
	cfg.Override.QuietCap = 11
	_, err := New(cfg, discardLogger())
	require.ErrorIs(t, err, ErrInvalidTunables)
}

func TestValidateRejectsNonFiniteTunables(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	cases := map[string]func(*Tunables){
		"nan alpha":       func(c *Tunables) { c.Filter.CO2Alpha = nan },
		"nan target":      func(c *Tunables) { c.CO2.Target = nan },
		"inf span":        func(c *Tunables) { c.Thermal.AutoSpan = inf },
		"nan deadband":    func(c *Tunables) { c.RH.Deadband = nan },
		"nan margin":      func(c *Tunables) { c.Thermal.OutsideMargin = nan },
		"inf rh high":     func(c *Tunables) { c.RH.High = inf },
		"nan rh margin":   func(c *Tunables) { c.RH.OutsideMargin = nan },
		"nan quiet gamma": func(c *Tunables) { c.Thermal.QuietGamma = nan },
	}
	for name, mutate := range cases {
		cfg := DefaultTunables()
		mutate(&cfg)
		assert.ErrorIs(t, cfg.Validate(), ErrInvalidTunables, name)
	}
	require.NoError(t, DefaultTunables().Validate())
}

func TestUpdateOutputStaysInRange(t *testing.T) {
	g := newTestGovernor(t, DefaultTunables())
	ambients := []float64{-60, 10, 21, 24.9, 27, 40, 120, math.NaN()}
	targets := []float64{18, 22, 30, math.Inf(1)}
	fans := []FanMode{FanOff, FanLow, FanAuto, FanQuiet}
	lids := []LidMode{LidAuto, LidForceOpen, LidForceClosed}
	sensors := []Sensors{
		{},
		{OutdoorTemperature: Some(12), IndoorCO2: Some(1900), IndoorHumidity: Some(85), OutdoorHumidity: Some(30)},
		{OutdoorTemperature: Some(35), IndoorCO2: Some(420), IndoorHumidity: Some(40), OutdoorHumidity: Some(90)},
	}
	for _, amb := range ambients {
		for _, tgt := range targets {
			for _, fan := range fans {
				for _, lid := range lids {
					for _, s := range sensors {
						in := ControlInput{AmbientTemperature: amb, TargetTemperature: tgt, Action: ActionCooling, FanMode: fan, LidMode: lid}
						res := g.Update(in, s, Toggles{CO2Enabled: true, RHEnabled: true})
						if res.Output.FanSpeed < 0 || res.Output.FanSpeed > MaxLevel {
							t.Fatalf("fan speed %d out of range for %+v", res.Output.FanSpeed, in)
						}
						if fan == FanOff && res.Output.FanSpeed != 0 {
							t.Fatalf("fan mode off produced %d", res.Output.FanSpeed)
						}
						if fan == FanQuiet && res.Output.FanSpeed > g.Tunables().Override.QuietCap {
							t.Fatalf("quiet mode exceeded cap: %d", res.Output.FanSpeed)
						}
						if lid == LidForceClosed && res.Output.LidOpen {
							t.Fatalf("lid opened while forced closed")
						}
					}
				}
			}
		}
	}
}

func TestUpdateReportsFaults(t *testing.T) {
	g := newTestGovernor(t, unfiltered())
	res := g.Update(cooling(26, math.NaN(), FanAuto), Sensors{}, Toggles{})
	require.Len(t, res.Faults, 1)
	assert.True(t, errors.Is(res.Faults[0], ErrInvalidSetpoint))
	assert.Equal(t, ControlOutput{}, res.Output)
}

func TestUpdateMissingAmbientIsNotAFault(t *testing.T) {
	g := newTestGovernor(t, DefaultTunables())
	g.Update(cooling(30, 24, FanAuto), Sensors{}, Toggles{})

	in := cooling(math.NaN(), 24, FanAuto)
	in.AmbientMissing = true
	res := g.Update(in, Sensors{}, Toggles{})
	assert.Empty(t, res.Faults)
	assert.Equal(t, Determination{}, res.Thermal)
	assert.Equal(t, ControlOutput{}, res.Output)

	filtered := g.Snapshot().FilteredTempC
	require.NotNil(t, filtered)
	assert.Equal(t, 30.0, *filtered, "filter memory must survive a sensor outage")
}

func TestUpdateQuietCapAcrossControllers(t *testing.T) {
	g := newTestGovernor(t, unfiltered())
	in := cooling(21, 22, FanQuiet)
	res := g.Update(in, Sensors{IndoorCO2: Some(3000)}, Toggles{CO2Enabled: true})
	assert.Equal(t, 10, res.RawLevel)
	assert.Equal(t, ControllerCO2, res.Active)
	assert.Equal(t, 6, res.Output.FanSpeed)
	assert.True(t, res.Output.LidOpen)
}

func TestUpdatePublishesOnlyOnChange(t *testing.T) {
	g := newTestGovernor(t, unfiltered())
	var events []LabelEvent
	tick := func(in ControlInput) {
		if ev := g.Update(in, Sensors{}, Toggles{}).Label; ev != nil {
			events = append(events, *ev)
		}
	}
	tick(cooling(25, 20, FanAuto))
	tick(cooling(25, 20, FanAuto))
	require.Len(t, events, 1)
	assert.Equal(t, ControllerThermal, events[0].Controller)
	assert.True(t, events[0].First)

	tick(cooling(19, 20, FanAuto))
	tick(cooling(19, 20, FanAuto))
	require.Len(t, events, 2)
	assert.Equal(t, ControllerOff, events[1].Controller)
	assert.Equal(t, ControllerThermal, events[1].Previous)
}

func TestResetClearsMemoryButKeepsLabel(t *testing.T) {
	cfg := DefaultTunables()
	g := newTestGovernor(t, cfg)
	idle := ControlInput{AmbientTemperature: 25, TargetTemperature: 20, Action: ActionIdle}
	g.Update(idle, Sensors{IndoorCO2: Some(1200)}, Toggles{CO2Enabled: true})
	snap := g.Snapshot()
	require.True(t, snap.CO2Latch)
	require.NotNil(t, snap.FilteredTempC)
	require.Equal(t, "CO2", snap.LastPublished)

	g.Reset()
	snap = g.Snapshot()
	assert.False(t, snap.CO2Latch)
	assert.Nil(t, snap.FilteredTempC)
	assert.Nil(t, snap.FilteredCO2)
	assert.Equal(t, "CO2", snap.LastPublished)

	res := g.Update(cooling(19, 20, FanAuto), Sensors{IndoorCO2: Some(1200)}, Toggles{CO2Enabled: true})
	assert.Nil(t, res.Label, "unchanged label must not republish after reset")
	assert.Equal(t, ControllerCO2, res.Active)
}

func TestSlewLimitsFinalLevel(t *testing.T) {
	cfg := unfiltered()
	cfg.Slew = SlewTunables{MinPersistTicks: 2, MaxStepPerTick: 1}
	g := newTestGovernor(t, cfg)

	var got []int
	for i := 0; i < 4; i++ {
		got = append(got, g.Update(cooling(22.5, 20, FanAuto), Sensors{}, Toggles{}).Output.FanSpeed)
	}
	assert.Equal(t, []int{0, 1, 1, 2}, got)

	res := g.Update(cooling(22.5, 20, FanOff), Sensors{}, Toggles{})
	assert.Equal(t, 0, res.Output.FanSpeed, "off bypasses the limiter")
}

func TestSetTunablesValidates(t *testing.T) {
	g := newTestGovernor(t, DefaultTunables())
	bad := DefaultTunables()
	bad.Filter.CO2Alpha = 2
	require.ErrorIs(t, g.SetTunables(bad), ErrInvalidTunables)

	good := DefaultTunables()
	good.Override.QuietCap = 4
	require.NoError(t, g.SetTunables(good))
	assert.Equal(t, 4, g.Tunables().Override.QuietCap)
}

func TestLogLinesCarryComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	g, err := New(DefaultTunables(), slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, err)
	g.Update(cooling(26, math.NaN(), FanAuto), Sensors{}, Toggles{})

	line := strings.TrimSpace(buf.String())
	require.NotEmpty(t, line)
	assert.Equal(t, 1, strings.Count(line, "component=governor"), line)
}
