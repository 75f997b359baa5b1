// v0
// internal/sensors/mqtt.go
package sensors

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// errUnavailable marks a payload that reports the sensor as offline.
var errUnavailable = errors.New("sensor unavailable")

// MQTTSource feeds the Store from <prefix>/<signal> topics.
type MQTTSource struct {
	prefix string
	store  *Store
	lg     *slog.Logger
	now    func() time.Time
}

func NewMQTTSource(prefix string, store *Store, lg *slog.Logger) *MQTTSource {
	return &MQTTSource{prefix: strings.TrimSuffix(prefix, "/"), store: store, lg: lg, now: time.Now}
}

// OnConnect is the paho connect handler. The broker drops subscriptions of
// a clean session, so the wildcard is re-registered on every (re)connect.
func (m *MQTTSource) OnConnect(c mqtt.Client) {
	if err := m.Subscribe(c); err != nil {
		m.lg.Error("mqtt subscribe failed", "error", err)
	}
}

// Subscribe registers the wildcard subscription on c.
func (m *MQTTSource) Subscribe(c mqtt.Client) error {
	topic := m.prefix + "/+"
	tok := c.Subscribe(topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		m.handle(msg.Topic(), msg.Payload())
	})
	if !tok.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("subscribe %s: timeout", topic)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}
	m.lg.Info("mqtt subscribed", "topic", topic)
	return nil
}

func (m *MQTTSource) handle(topic string, payload []byte) {
	name := strings.TrimPrefix(strings.TrimPrefix(topic, m.prefix), "/")
	sig, err := ParseSignal(name)
	if err != nil {
		m.lg.Debug("mqtt topic ignored", "topic", topic)
		return
	}
	v, err := parsePayload(payload)
	if errors.Is(err, errUnavailable) {
		m.store.Clear(sig)
		m.lg.Info("sensor unavailable", "signal", sig)
		return
	}
	if err != nil {
		m.lg.Warn("bad sensor payload", "signal", sig, "error", err)
		return
	}
	m.store.Set(sig, v, m.now())
}

// parsePayload accepts {"value": x} or a bare number as published by ESPHome.
func parsePayload(b []byte) (float64, error) {
	s := strings.TrimSpace(string(b))
	switch strings.ToLower(s) {
	case "", "nan", "unavailable", "unknown", "null":
		return 0, errUnavailable
	}
	if strings.HasPrefix(s, "{") {
		var body struct {
			Value *float64 `json:"value"`
		}
		if err := json.Unmarshal(b, &body); err != nil {
			return 0, fmt.Errorf("decode: %w", err)
		}
		if body.Value == nil {
			return 0, errUnavailable
		}
		return *body.Value, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return v, nil
}

// Connect builds and connects a paho client. onConnect runs after the
// first connect and after every automatic reconnect.
func Connect(broker, clientID string, lg *slog.Logger, onConnect mqtt.OnConnectHandler) (mqtt.Client, error) {
	c := mqtt.NewClient(clientOptions(broker, clientID, lg, onConnect))
	tok := c.Connect()
	if !tok.WaitTimeout(15 * time.Second) {
		return nil, fmt.Errorf("mqtt connect %s: timeout", broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, err)
	}
	return c, nil
}

func clientOptions(broker, clientID string, lg *slog.Logger, onConnect mqtt.OnConnectHandler) *mqtt.ClientOptions {
	return mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			lg.Warn("mqtt connection lost", "error", err)
		}).
		SetOnConnectHandler(func(c mqtt.Client) {
			lg.Info("mqtt connected", "broker", broker)
			if onConnect != nil {
				onConnect(c)
			}
		})
}
