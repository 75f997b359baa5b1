// v0
// internal/governor/rh_test.go
package governor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func humid(indoor, outdoor float64) Conditioned {
	return conditioned(22, Sensors{IndoorHumidity: Some(indoor), OutdoorHumidity: Some(outdoor)})
}

func TestOutdoorBlocked(t *testing.T) {
	assert.False(t, outdoorBlocked(70, 70, 5))
	assert.False(t, outdoorBlocked(70, 66, 5))
	assert.True(t, outdoorBlocked(60, 66, 5))
	assert.True(t, outdoorBlocked(60, 65, 5))
}

func TestRHBlockedOutdoorPreventsActivation(t *testing.T) {
	tun := DefaultTunables().RH
	latch := false
	d := rh(true, humid(70, 76), tun, &latch)
	assert.Equal(t, Determination{}, d)
	assert.False(t, latch)
}

func TestRHHysteresisAndBlockRelease(t *testing.T) {
	tun := DefaultTunables().RH // target 60, deadband 3, span 20
	latch := false

	d := rh(true, humid(62, 40), tun, &latch)
	assert.False(t, d.Active, "inside deadband")

	d = rh(true, humid(64, 40), tun, &latch)
	assert.True(t, d.Active)
	assert.Equal(t, 2, d.Level)

	d = rh(true, humid(58, 40), tun, &latch)
	assert.True(t, d.Active, "stays latched above target-deadband")
	assert.Equal(t, 1, d.Level)

	d = rh(true, humid(64, 70), tun, &latch)
	assert.False(t, d.Active, "block releases the latch mid-cycle")
	assert.False(t, latch)

	d = rh(true, humid(64, 40), tun, &latch)
	assert.True(t, d.Active)
	d = rh(true, humid(57, 40), tun, &latch)
	assert.False(t, d.Active)
}

func TestRHNeedsBothReadings(t *testing.T) {
	tun := DefaultTunables().RH
	latch := true
	d := rh(true, conditioned(22, Sensors{IndoorHumidity: Some(80)}), tun, &latch)
	assert.Equal(t, Determination{}, d)
	assert.True(t, latch)

	d = rh(false, humid(80, 20), tun, &latch)
	assert.Equal(t, Determination{}, d)
	assert.True(t, latch)
}
