// v0
// internal/telemetry/display.go
package telemetry

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/anthonysecco/minuet-firmware/internal/governor"
)

// MQTTDisplay publishes the active-controller label as a retained message,
// so a display that reconnects gets the current value.
type MQTTDisplay struct {
	client  mqtt.Client
	topic   string
	timeout time.Duration
}

func NewMQTTDisplay(client mqtt.Client, topic string) *MQTTDisplay {
	return &MQTTDisplay{client: client, topic: topic, timeout: 5 * time.Second}
}

func (d *MQTTDisplay) PublishLabel(ctx context.Context, ev governor.LabelEvent) error {
	tok := d.client.Publish(d.topic, 1, true, ev.Controller.String())
	select {
	case <-tok.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d.timeout):
		return fmt.Errorf("publish %s: timeout", d.topic)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", d.topic, err)
	}
	return nil
}
