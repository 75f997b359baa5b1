// v0
// internal/governor/state.go
package governor

// filterMemory is the one-pole filter state of a single signal.
type filterMemory struct {
	value  float64
	seeded bool
}

// apply blends x into the memory. The first sample seeds the filter.
func (f *filterMemory) apply(x, alpha float64) float64 {
	if !f.seeded {
		f.value = x
		f.seeded = true
		return x
	}
	f.value = alpha*x + (1-alpha)*f.value
	return f.value
}

type slewMemory struct {
	current int
	persist int
}

// state is the only cross-tick memory of the governor.
type state struct {
	co2Latch bool
	rhLatch  bool

	temperature filterMemory
	humidity    filterMemory
	co2         filterMemory

	slew slewMemory
}

// Snapshot is a read-only copy of the governor memory for diagnostics.
type Snapshot struct {
	CO2Latch         bool     `json:"co2Latch"`
	RHLatch          bool     `json:"rhLatch"`
	FilteredTempC    *float64 `json:"filteredTempC,omitempty"`
	FilteredHumidity *float64 `json:"filteredHumidity,omitempty"`
	FilteredCO2      *float64 `json:"filteredCO2,omitempty"`
	SlewLevel        int      `json:"slewLevel"`
	LastPublished    string   `json:"lastPublished,omitempty"`
}

func (f filterMemory) ptr() *float64 {
	if !f.seeded {
		return nil
	}
	v := f.value
	return &v
}
