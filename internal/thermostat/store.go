// v0
// internal/thermostat/store.go
package thermostat

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/anthonysecco/minuet-firmware/internal/governor"
)

// ErrSetpointRange indicates that the provided setpoint falls outside the permitted range.
var ErrSetpointRange = errors.New("setpoint outside configured range")

// Settings is the user-facing thermostat state.
type Settings struct {
	TargetC    float64 `json:"targetC"`
	Action     string  `json:"action"`
	FanMode    string  `json:"fanMode"`
	LidMode    string  `json:"lidMode"`
	CO2Enabled bool    `json:"co2Enabled"`
	RHEnabled  bool    `json:"rhEnabled"`
}

// Update is a partial change; nil fields are left alone.
type Update struct {
	TargetC    *float64 `json:"targetC,omitempty"`
	Action     *string  `json:"action,omitempty"`
	FanMode    *string  `json:"fanMode,omitempty"`
	LidMode    *string  `json:"lidMode,omitempty"`
	CO2Enabled *bool    `json:"co2Enabled,omitempty"`
	RHEnabled  *bool    `json:"rhEnabled,omitempty"`
}

// Store holds the thermostat inputs of the governor. HTTP handlers write it
// while the engine reads it once per tick, so access is guarded by a RWMutex.
type Store struct {
	mu      sync.RWMutex
	target  float64
	action  governor.Action
	fan     governor.FanMode
	lid     governor.LidMode
	toggles governor.Toggles
	reset   bool
	min     float64
	max     float64
}

// NewStore validates the initial setpoint against the allowed range.
func NewStore(target, min, max float64, toggles governor.Toggles) (*Store, error) {
	if target < min || target > max {
		return nil, fmt.Errorf("thermostat: initial %.2f outside %.2f..%.2f", target, min, max)
	}
	return &Store{target: target, min: min, max: max, toggles: toggles}, nil
}

// Input builds the governor input for one tick. An absent ambient reading
// is passed on as missing, not as an invalid temperature.
func (s *Store) Input(ambient governor.Reading) governor.ControlInput {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := ambient.Get()
	return governor.ControlInput{
		AmbientTemperature: v,
		AmbientMissing:     !ok,
		TargetTemperature:  s.target,
		Action:             s.action,
		FanMode:            s.fan,
		LidMode:            s.lid,
	}
}

func (s *Store) Toggles() governor.Toggles {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.toggles
}

func (s *Store) Snapshot() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Settings{
		TargetC:    s.target,
		Action:     s.action.String(),
		FanMode:    s.fan.String(),
		LidMode:    s.lid.String(),
		CO2Enabled: s.toggles.CO2Enabled,
		RHEnabled:  s.toggles.RHEnabled,
	}
}

// Range exposes the allowable setpoint bounds.
func (s *Store) Range() (float64, float64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.min, s.max
}

// Apply validates every field before changing anything. Switching the action
// from idle to cooling queues a governor reset.
func (s *Store) Apply(u Update) (Settings, error) {
	var (
		action governor.Action
		fan    governor.FanMode
		lid    governor.LidMode
		err    error
	)
	if u.TargetC != nil && (math.IsNaN(*u.TargetC) || *u.TargetC < s.min || *u.TargetC > s.max) {
		return Settings{}, fmt.Errorf("%w: %.2f", ErrSetpointRange, *u.TargetC)
	}
	if u.Action != nil {
		if action, err = governor.ParseAction(*u.Action); err != nil {
			return Settings{}, err
		}
	}
	if u.FanMode != nil {
		if fan, err = governor.ParseFanMode(*u.FanMode); err != nil {
			return Settings{}, err
		}
	}
	if u.LidMode != nil {
		if lid, err = governor.ParseLidMode(*u.LidMode); err != nil {
			return Settings{}, err
		}
	}

	s.mu.Lock()
	if u.TargetC != nil {
		s.target = *u.TargetC
	}
	if u.Action != nil {
		if s.action != governor.ActionCooling && action == governor.ActionCooling {
			s.reset = true
		}
		s.action = action
	}
	if u.FanMode != nil {
		s.fan = fan
	}
	if u.LidMode != nil {
		s.lid = lid
	}
	if u.CO2Enabled != nil {
		s.toggles.CO2Enabled = *u.CO2Enabled
	}
	if u.RHEnabled != nil {
		s.toggles.RHEnabled = *u.RHEnabled
	}
	s.mu.Unlock()
	return s.Snapshot(), nil
}

// RequestReset queues a governor reset for the next tick.
func (s *Store) RequestReset() {
	s.mu.Lock()
	s.reset = true
	s.mu.Unlock()
}

// TakeReset reports and clears a pending reset.
func (s *Store) TakeReset() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.reset
	s.reset = false
	return r
}
