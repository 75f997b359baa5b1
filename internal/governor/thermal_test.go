// v0
// internal/governor/thermal_test.go
package governor

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetFloorFollowsOutdoor(t *testing.T) {
	assert.Equal(t, 30.5, targetFloor(18, Some(30), 0.5))
	assert.Equal(t, 22.0, targetFloor(22, Some(15), 0.5))
	assert.Equal(t, 18.0, targetFloor(18, None(), 0.5))
}

func TestThermalRamp(t *testing.T) {
	tun := DefaultTunables().Thermal
	cases := []struct {
		name    string
		ambient float64
		target  float64
		fan     FanMode
		want    int
	}{
		{"below target", 19.0, 20.0, FanAuto, 0},
		{"half span linear", 22.5, 20.0, FanAuto, 5},
		{"exact step does not round up", 21.5, 20.0, FanAuto, 3},
		{"small error starts at one", 20.1, 20.0, FanAuto, 1},
		{"saturated", 30.0, 20.0, FanAuto, 10},
		{"quiet ramps gently", 22.5, 20.0, FanQuiet, 1},
		{"quiet saturates", 27.0, 20.0, FanQuiet, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := cooling(tc.ambient, tc.target, tc.fan)
			d, _, err := thermal(in, conditioned(tc.ambient, Sensors{}), tun)
			require.NoError(t, err)
			assert.Equal(t, tc.want, d.Level)
			assert.Equal(t, tc.want > 0, d.Active)
			assert.Equal(t, d.Active, d.LidRequest)
		})
	}
}

func TestThermalIdleWithoutCoolingDemand(t *testing.T) {
	in := cooling(30, 20, FanAuto)
	in.Action = ActionIdle
	d, _, err := thermal(in, conditioned(30, Sensors{}), DefaultTunables().Thermal)
	require.NoError(t, err)
	assert.Equal(t, Determination{}, d)
}

func TestThermalDeadband(t *testing.T) {
	tun := DefaultTunables().Thermal
	tun.Deadband = 0.3
	d, _, err := thermal(cooling(20.2, 20, FanAuto), conditioned(20.2, Sensors{}), tun)
	require.NoError(t, err)
	assert.Zero(t, d.Level)
}

func TestThermalRejectsNonFiniteInput(t *testing.T) {
	tun := DefaultTunables().Thermal

	d, _, err := thermal(cooling(25, math.NaN(), FanAuto), conditioned(25, Sensors{}), tun)
	assert.True(t, errors.Is(err, ErrInvalidSetpoint))
	assert.Equal(t, Determination{}, d)

	d, _, err = thermal(cooling(math.Inf(1), 20, FanAuto), conditioned(math.Inf(1), Sensors{}), tun)
	assert.True(t, errors.Is(err, ErrInvalidAmbient))
	assert.Equal(t, Determination{}, d)
}

func TestThermalDoesNotCoolBelowOutdoor(t *testing.T) {
	g := newTestGovernor(t, unfiltered())
	res := g.Update(cooling(29, 18, FanAuto), Sensors{OutdoorTemperature: Some(30)}, Toggles{})
	assert.Equal(t, 0, res.Output.FanSpeed)
	assert.False(t, res.Thermal.Active)
	assert.Equal(t, ControllerOff, res.Active)
}
