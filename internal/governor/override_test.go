// v0
// internal/governor/override_test.go
package governor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOverrideFanModes(t *testing.T) {
	o := DefaultTunables().Override // min run 1, quiet cap 6
	active := func(level int) Combined {
		return Combined{Level: level, Active: ControllerThermal, AnyActive: true, AnyLidRequest: true}
	}
	cases := []struct {
		name   string
		comb   Combined
		action Action
		fan    FanMode
		want   int
	}{
		{"off beats full demand", active(10), ActionCooling, FanOff, 0},
		{"low while cooling", Combined{}, ActionCooling, FanLow, 1},
		{"low while a controller runs", active(8), ActionIdle, FanLow, 1},
		{"low without demand", Combined{}, ActionIdle, FanLow, 0},
		{"auto minimum run", Combined{Level: 0, AnyActive: true}, ActionCooling, FanAuto, 1},
		{"auto passes level", active(7), ActionCooling, FanAuto, 7},
		{"auto idle", Combined{}, ActionCooling, FanAuto, 0},
		{"quiet cap", active(10), ActionCooling, FanQuiet, 6},
		{"quiet below cap", active(3), ActionCooling, FanQuiet, 3},
		{"quiet minimum run", Combined{AnyActive: true}, ActionIdle, FanQuiet, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := ControlInput{Action: tc.action, FanMode: tc.fan}
			got := override(tc.comb, in, o)
			assert.Equal(t, tc.want, got.FanSpeed)
		})
	}
}

func TestOverrideLidPrecedence(t *testing.T) {
	o := DefaultTunables().Override
	req := Combined{Level: 2, Active: ControllerCO2, AnyActive: true, AnyLidRequest: true}

	assert.False(t, override(req, ControlInput{LidMode: LidForceClosed}, o).LidOpen)
	assert.True(t, override(req, ControlInput{LidMode: LidAuto}, o).LidOpen)
	assert.True(t, override(Combined{}, ControlInput{LidMode: LidForceOpen}, o).LidOpen)
	assert.False(t, override(Combined{}, ControlInput{LidMode: LidAuto}, o).LidOpen)
}

func TestLabelLatchDebounces(t *testing.T) {
	var l labelLatch
	ev := l.observe(ControllerOff)
	if assert.NotNil(t, ev) {
		assert.True(t, ev.First)
		assert.Equal(t, ControllerOff, ev.Controller)
	}
	assert.Nil(t, l.observe(ControllerOff))

	ev = l.observe(ControllerThermal)
	if assert.NotNil(t, ev) {
		assert.False(t, ev.First)
		assert.Equal(t, ControllerOff, ev.Previous)
	}
	assert.Nil(t, l.observe(ControllerThermal))
}
