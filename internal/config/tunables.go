// v0
// internal/config/tunables.go
package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/anthonysecco/minuet-firmware/internal/governor"
)

// ErrUnknownKey is returned for a properties key that maps to no tunable.
var ErrUnknownKey = errors.New("unknown tunables key")

// LoadTunables reads the governor tunables from path. YAML files (.yaml,
// .yml) are decoded with unknown fields rejected; any other file is parsed
// as key=value properties using the same dotted keys. A missing file yields
// the defaults. Unset keys keep their default value.
func LoadTunables(path string) (governor.Tunables, error) {
	t := governor.DefaultTunables()
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return t, nil
	}
	if err != nil {
		return t, fmt.Errorf("open %s: %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(b))
		dec.KnownFields(true)
		if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
			return t, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		if err := parseProperties(bytes.NewReader(b), &t); err != nil {
			return t, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

func parseProperties(r io.Reader, t *governor.Tunables) error {
	floats, ints := fields(t)
	s := bufio.NewScanner(r)
	line := 0
	for s.Scan() {
		line++
		raw := strings.TrimSpace(s.Text())
		if raw == "" || strings.HasPrefix(raw, "#") || strings.HasPrefix(raw, "//") {
			continue
		}
		k, v, ok := strings.Cut(raw, "=")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if p, ok := floats[k]; ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("line %d: %s: %w", line, k, err)
			}
			*p = f
			continue
		}
		if p, ok := ints[k]; ok {
			i, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("line %d: %s: %w", line, k, err)
			}
			*p = i
			continue
		}
		return fmt.Errorf("line %d: %w: %s", line, ErrUnknownKey, k)
	}
	return s.Err()
}

// fields maps the dotted keys onto the tunables. Keys match the YAML layout.
func fields(t *governor.Tunables) (map[string]*float64, map[string]*int) {
	floats := map[string]*float64{
		"filter.temperature_alpha": &t.Filter.TemperatureAlpha,
		"filter.humidity_alpha":    &t.Filter.HumidityAlpha,
		"filter.co2_alpha":         &t.Filter.CO2Alpha,
		"thermal.outside_margin":   &t.Thermal.OutsideMargin,
		"thermal.deadband":         &t.Thermal.Deadband,
		"thermal.auto_span":        &t.Thermal.AutoSpan,
		"thermal.quiet_span":       &t.Thermal.QuietSpan,
		"thermal.auto_gamma":       &t.Thermal.AutoGamma,
		"thermal.quiet_gamma":      &t.Thermal.QuietGamma,
		"co2.target":               &t.CO2.Target,
		"co2.deadband":             &t.CO2.Deadband,
		"co2.span":                 &t.CO2.Span,
		"co2.gamma":                &t.CO2.Gamma,
		"rh.target":                &t.RH.Target,
		"rh.deadband":              &t.RH.Deadband,
		"rh.low":                   &t.RH.Low,
		"rh.high":                  &t.RH.High,
		"rh.outside_margin":        &t.RH.OutsideMargin,
		"rh.gamma":                 &t.RH.Gamma,
	}
	ints := map[string]*int{
		"co2.min_level":          &t.CO2.MinLevel,
		"rh.min_level":           &t.RH.MinLevel,
		"override.min_run_level": &t.Override.MinRunLevel,
		"override.quiet_cap":     &t.Override.QuietCap,
		"slew.min_persist_ticks": &t.Slew.MinPersistTicks,
		"slew.max_step_per_tick": &t.Slew.MaxStepPerTick,
	}
	return floats, ints
}
