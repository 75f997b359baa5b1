// v0
// internal/governor/ramp.go
package governor

import "math"

// levelEpsilon absorbs float noise so that an exact level (e.g. 10*0.3) does
// not ceil to the next step.
const levelEpsilon = 1e-9

// ramp maps an error onto a fan level: ceil(MaxLevel * clamp(err/span)^gamma).
func ramp(err, span, gamma float64) int {
	if !(span > 0) {
		return 0
	}
	drive := clampFloat(err/span, 0, 1)
	level := math.Ceil(MaxLevel*math.Pow(drive, gamma) - levelEpsilon)
	return clampInt(int(level), 0, MaxLevel)
}

func clampFloat(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// engaged builds the determination of a controller proposing level.
func engaged(level int) Determination {
	level = clampInt(level, 0, MaxLevel)
	return Determination{Level: level, LidRequest: level > 0, Active: level > 0}
}
