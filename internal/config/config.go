// v0
// internal/config/config.go
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	HTTPBind       string
	DeviceID       string
	KafkaBrokers   []string
	CommandTopic   string
	TelemetryTopic string
	MQTTBroker     string
	MQTTClientID   string
	SensorPrefix   string
	DisplayTopic   string
	TickInterval   time.Duration
	SensorMaxAge   time.Duration
	TunablesPath   string
	SetpointMinC   float64
	SetpointMaxC   float64
	DefaultTargetC float64
	CO2Enabled     bool
	RHEnabled      bool
}

// FromEnv reads the service configuration. Kafka and MQTT are optional; a
// governor without brokers still runs and serves its HTTP API.
func FromEnv() (*AppConfig, error) {
	c := &AppConfig{
		HTTPBind:       getenv("HTTP_BIND", ":8086"),
		DeviceID:       getenv("DEVICE_ID", "minuet"),
		KafkaBrokers:   split(getenv("KAFKA_BROKERS", ""), ","),
		CommandTopic:   getenv("COMMAND_TOPIC", "minuet.commands"),
		TelemetryTopic: getenv("TELEMETRY_TOPIC", "minuet.telemetry"),
		MQTTBroker:     getenv("MQTT_BROKER", ""),
		MQTTClientID:   getenv("MQTT_CLIENT_ID", "minuet-governor"),
		SensorPrefix:   strings.TrimSuffix(getenv("MQTT_SENSOR_PREFIX", "minuet/sensors"), "/"),
		DisplayTopic:   getenv("MQTT_DISPLAY_TOPIC", "minuet/display/controller"),
		TickInterval:   time.Duration(geti("TICK_INTERVAL_MS", 5000)) * time.Millisecond,
		SensorMaxAge:   time.Duration(geti("SENSOR_MAX_AGE_MS", 120000)) * time.Millisecond,
		TunablesPath:   getenv("TUNABLES_PATH", "./configs/governor.yaml"),
		SetpointMinC:   getf("SETPOINT_MIN_C", 10),
		SetpointMaxC:   getf("SETPOINT_MAX_C", 35),
		DefaultTargetC: getf("DEFAULT_TARGET_C", 24),
		CO2Enabled:     getb("CO2_CONTROL_ENABLED", true),
		RHEnabled:      getb("RH_CONTROL_ENABLED", true),
	}
	if c.TickInterval <= 0 {
		return nil, errors.New("TICK_INTERVAL_MS must be > 0")
	}
	if c.SetpointMinC >= c.SetpointMaxC {
		return nil, errors.New("SETPOINT_MIN_C must be below SETPOINT_MAX_C")
	}
	if c.DefaultTargetC < c.SetpointMinC || c.DefaultTargetC > c.SetpointMaxC {
		return nil, errors.New("DEFAULT_TARGET_C outside setpoint range")
	}
	return c, nil
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func geti(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return d
}

func getf(k string, d float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return d
}

func getb(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

func split(s, sep string) []string {
	if s == "" {
		return nil
	}
	p := strings.Split(s, sep)
	out := make([]string, 0, len(p))
	for _, x := range p {
		x = strings.TrimSpace(x)
		if x != "" {
			out = append(out, x)
		}
	}
	return out
}
