// v0
// internal/sensors/store.go
package sensors

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/anthonysecco/minuet-firmware/internal/governor"
)

// Signal names one environmental sensor.
type Signal string

const (
	IndoorTemperature  Signal = "indoor_temperature"
	OutdoorTemperature Signal = "outdoor_temperature"
	IndoorHumidity     Signal = "indoor_humidity"
	OutdoorHumidity    Signal = "outdoor_humidity"
	IndoorCO2          Signal = "indoor_co2"
)

// Signals lists every known signal.
var Signals = []Signal{IndoorTemperature, OutdoorTemperature, IndoorHumidity, OutdoorHumidity, IndoorCO2}

// ParseSignal validates a signal name.
func ParseSignal(s string) (Signal, error) {
	for _, sig := range Signals {
		if string(sig) == s {
			return sig, nil
		}
	}
	return "", fmt.Errorf("unknown signal %q", s)
}

type sample struct {
	value float64
	at    time.Time
}

// Store keeps the latest sample per signal. Samples older than maxAge are
// reported as not available.
type Store struct {
	mu      sync.RWMutex
	maxAge  time.Duration
	samples map[Signal]sample
}

func NewStore(maxAge time.Duration) *Store {
	return &Store{maxAge: maxAge, samples: make(map[Signal]sample, len(Signals))}
}

// Set records a sample. Non-finite values clear the signal.
func (s *Store) Set(sig Signal, v float64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		delete(s.samples, sig)
		return
	}
	s.samples[sig] = sample{value: v, at: at}
}

// Clear drops a signal, e.g. when the sensor reports itself unavailable.
func (s *Store) Clear(sig Signal) {
	s.mu.Lock()
	delete(s.samples, sig)
	s.mu.Unlock()
}

func (s *Store) reading(sig Signal, now time.Time) governor.Reading {
	smp, ok := s.samples[sig]
	if !ok {
		return governor.None()
	}
	if s.maxAge > 0 && now.Sub(smp.at) > s.maxAge {
		return governor.None()
	}
	return governor.Some(smp.value)
}

// Snapshot returns the governor sensor bundle and the indoor ambient
// temperature reading.
func (s *Store) Snapshot(now time.Time) (governor.Sensors, governor.Reading) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return governor.Sensors{
		OutdoorTemperature: s.reading(OutdoorTemperature, now),
		IndoorHumidity:     s.reading(IndoorHumidity, now),
		OutdoorHumidity:    s.reading(OutdoorHumidity, now),
		IndoorCO2:          s.reading(IndoorCO2, now),
	}, s.reading(IndoorTemperature, now)
}

// Values returns the fresh samples for status reporting.
func (s *Store) Values(now time.Time) map[Signal]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[Signal]float64, len(s.samples))
	for sig := range s.samples {
		if v, ok := s.reading(sig, now).Get(); ok {
			out[sig] = v
		}
	}
	return out
}
