// v0
// internal/governor/override.go
package governor

// levelCap is the highest level a fan mode allows.
func levelCap(mode FanMode, o OverrideTunables) int {
	if mode == FanQuiet {
		return o.QuietCap
	}
	return MaxLevel
}

// override applies the user's fan and lid modes to the combined demand.
func override(c Combined, in ControlInput, o OverrideTunables) ControlOutput {
	level := 0
	switch in.FanMode {
	case FanOff:
		level = 0
	case FanLow:
		if in.Action == ActionCooling || c.AnyActive {
			level = max(o.MinRunLevel, 1)
		}
	case FanQuiet:
		level = c.Level
		if c.AnyActive {
			level = clampInt(max(c.Level, o.MinRunLevel), o.MinRunLevel, o.QuietCap)
		}
	default:
		level = c.Level
		if c.AnyActive {
			level = clampInt(max(c.Level, o.MinRunLevel), o.MinRunLevel, MaxLevel)
		}
	}
	level = clampInt(level, 0, levelCap(in.FanMode, o))

	out := ControlOutput{FanSpeed: level, LidOpen: c.AnyLidRequest}
	switch in.LidMode {
	case LidForceOpen:
		out.LidOpen = true
	case LidForceClosed:
		out.LidOpen = false
	}
	return out
}

// LabelEvent instructs the caller to publish the active controller label.
type LabelEvent struct {
	Controller Controller `json:"controller"`
	Previous   Controller `json:"previous"`
	First      bool       `json:"first"`
}

// labelLatch debounces the active controller label.
type labelLatch struct {
	last      Controller
	published bool
}

// observe returns an event on the first call and on every change.
func (l *labelLatch) observe(c Controller) *LabelEvent {
	if l.published && l.last == c {
		return nil
	}
	ev := &LabelEvent{Controller: c, Previous: l.last, First: !l.published}
	l.last = c
	l.published = true
	return ev
}
