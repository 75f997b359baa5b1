// v0
// internal/governor/types.go
package governor

import (
	"errors"
	"fmt"
	"strings"
)

// MaxLevel is the highest discrete fan level.
const MaxLevel = 10

// ErrUnknownMode is returned when a mode label cannot be parsed.
var ErrUnknownMode = errors.New("unknown mode")

// Action is the thermostat's climate demand.
type Action uint8

const (
	ActionIdle Action = iota
	ActionCooling
)

func (a Action) String() string {
	switch a {
	case ActionCooling:
		return "cooling"
	default:
		return "idle"
	}
}

// FanMode is the user-selected fan behavior.
type FanMode uint8

const (
	// FanAuto is the zero value so an unset mode behaves like the default.
	FanAuto FanMode = iota
	FanOff
	FanLow
	FanQuiet
)

func (m FanMode) String() string {
	switch m {
	case FanOff:
		return "off"
	case FanLow:
		return "low"
	case FanQuiet:
		return "quiet"
	default:
		return "auto"
	}
}

// LidMode is the user-selected lid behavior.
type LidMode uint8

const (
	LidAuto LidMode = iota
	LidForceOpen
	LidForceClosed
)

func (m LidMode) String() string {
	switch m {
	case LidForceOpen:
		return "open"
	case LidForceClosed:
		return "closed"
	default:
		return "auto"
	}
}

// ParseAction accepts "idle"/"off" and "cooling"/"cool".
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "idle", "off", "":
		return ActionIdle, nil
	case "cooling", "cool":
		return ActionCooling, nil
	}
	return ActionIdle, fmt.Errorf("%w: action %q", ErrUnknownMode, s)
}

// ParseFanMode accepts off, low, auto and quiet.
func ParseFanMode(s string) (FanMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return FanAuto, nil
	case "off":
		return FanOff, nil
	case "low":
		return FanLow, nil
	case "quiet":
		return FanQuiet, nil
	}
	return FanAuto, fmt.Errorf("%w: fan mode %q", ErrUnknownMode, s)
}

// ParseLidMode accepts auto, open and closed.
func ParseLidMode(s string) (LidMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "auto", "":
		return LidAuto, nil
	case "open", "keep_open", "force-open":
		return LidForceOpen, nil
	case "closed", "keep_closed", "force-closed":
		return LidForceClosed, nil
	}
	return LidAuto, fmt.Errorf("%w: lid mode %q", ErrUnknownMode, s)
}

// ControlInput is supplied by the thermostat once per tick.
type ControlInput struct {
	AmbientTemperature float64
	// AmbientMissing marks the indoor sensor as unavailable. The thermal
	// controller is then skipped without a fault.
	AmbientMissing    bool
	TargetTemperature float64
	Action            Action
	FanMode           FanMode
	LidMode           LidMode
}

// Toggles enable the optional air quality controllers.
type Toggles struct {
	CO2Enabled bool
	RHEnabled  bool
}

// ControlOutput is the actuator command for one tick.
type ControlOutput struct {
	FanSpeed int  `json:"fanSpeed"`
	LidOpen  bool `json:"lidOpen"`
}

// Determination is one controller's proposal. Active is tracked apart from
// Level so activity can later be decoupled from magnitude.
type Determination struct {
	Level      int  `json:"level"`
	LidRequest bool `json:"lidRequest"`
	Active     bool `json:"active"`
}

// Controller names the controller driving the combined level.
type Controller uint8

const (
	ControllerOff Controller = iota
	ControllerThermal
	ControllerCO2
	ControllerRH
)

func (c Controller) String() string {
	switch c {
	case ControllerThermal:
		return "Thermal"
	case ControllerCO2:
		return "CO2"
	case ControllerRH:
		return "RH"
	default:
		return "Off"
	}
}

// MarshalText renders the display label.
func (c Controller) MarshalText() ([]byte, error) { return []byte(c.String()), nil }
