// v0
// internal/governor/combiner.go
package governor

import (
	"cmp"
	"slices"
)

// priority orders controllers for tie-breaks; lower wins. Adding a
// controller means adding a case here.
func (c Controller) priority() int {
	switch c {
	case ControllerThermal:
		return 0
	case ControllerCO2:
		return 1
	case ControllerRH:
		return 2
	case ControllerOff:
		return 3
	}
	panic("governor: controller without priority")
}

type candidate struct {
	source Controller
	Determination
}

// rank orders candidates by level, then by priority.
func rank(a, b candidate) int {
	if c := cmp.Compare(a.Level, b.Level); c != 0 {
		return c
	}
	return cmp.Compare(b.source.priority(), a.source.priority())
}

// Combined is the merged demand of all controllers.
type Combined struct {
	Level         int
	Active        Controller
	AnyActive     bool
	AnyLidRequest bool
}

func combine(thermal, co2, rh Determination) Combined {
	cands := []candidate{
		{source: ControllerThermal, Determination: thermal},
		{source: ControllerCO2, Determination: co2},
		{source: ControllerRH, Determination: rh},
	}
	best := slices.MaxFunc(cands, rank)
	out := Combined{Level: best.Level, Active: best.source}
	if best.Level == 0 {
		out.Active = ControllerOff
	}
	for _, c := range cands {
		out.AnyActive = out.AnyActive || c.Active
		out.AnyLidRequest = out.AnyLidRequest || c.LidRequest
	}
	return out
}
