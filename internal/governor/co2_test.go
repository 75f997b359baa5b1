// v0
// internal/governor/co2_test.go
package governor

import "testing"

func TestCO2HysteresisDoesNotChatter(t *testing.T) {
	tun := DefaultTunables().CO2 // target 700, deadband 75
	latch := false
	steps := []struct {
		ppm    float64
		active bool
		level  int
	}{
		{700, false, 0},
		{774, false, 0},
		{775, true, 1},
		{701, true, 1},
		{700, true, 1},
		{626, true, 1},
		{625, false, 0},
		{760, false, 0},
		{1500, true, 10},
		{1100, true, 5},
	}
	for i, s := range steps {
		d := co2(true, conditioned(22, Sensors{IndoorCO2: Some(s.ppm)}), tun, &latch)
		if d.Active != s.active || d.Level != s.level {
			t.Fatalf("step %d (%.0f ppm): got active=%v level=%d, want active=%v level=%d", i, s.ppm, d.Active, d.Level, s.active, s.level)
		}
		if latch != s.active {
			t.Fatalf("step %d: latch=%v want %v", i, latch, s.active)
		}
	}
}

func TestCO2RespectsMinimumLevel(t *testing.T) {
	tun := DefaultTunables().CO2
	tun.MinLevel = 3
	latch := true
	d := co2(true, conditioned(22, Sensors{IndoorCO2: Some(710)}), tun, &latch)
	if d.Level != 3 {
		t.Fatalf("expected minimum level 3, got %d", d.Level)
	}
	d = co2(true, conditioned(22, Sensors{IndoorCO2: Some(650)}), tun, &latch)
	if d.Level != 3 || !d.LidRequest {
		t.Fatalf("below target while latched should run at minimum, got %+v", d)
	}
}

func TestCO2DisabledLeavesLatchUntouched(t *testing.T) {
	tun := DefaultTunables().CO2
	latch := true
	if d := co2(false, conditioned(22, Sensors{IndoorCO2: Some(2000)}), tun, &latch); d != (Determination{}) {
		t.Fatalf("disabled controller proposed %+v", d)
	}
	if d := co2(true, conditioned(22, Sensors{}), tun, &latch); d != (Determination{}) {
		t.Fatalf("controller without reading proposed %+v", d)
	}
	if !latch {
		t.Fatalf("latch must survive while the controller is disabled")
	}
}
