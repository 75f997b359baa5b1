// v0
// internal/telemetry/kafka.go
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/anthonysecco/minuet-firmware/internal/circuitbreaker"
	"github.com/anthonysecco/minuet-firmware/internal/governor"
)

// KafkaPublisher writes commands and label events keyed by device id.
type KafkaPublisher struct {
	w            circuitbreaker.MessageWriter
	deviceID     string
	commandTopic string
	eventTopic   string
	log          *slog.Logger
	now          func() time.Time
}

func NewKafkaPublisher(w circuitbreaker.MessageWriter, deviceID, commandTopic, eventTopic string, log *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		w:            w,
		deviceID:     deviceID,
		commandTopic: commandTopic,
		eventTopic:   eventTopic,
		log:          log.With(slog.String("component", "kafka-publisher")),
		now:          time.Now,
	}
}

// NewKafkaWriter builds a topic-less writer; the topic is set per message.
func NewKafkaWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

func (p *KafkaPublisher) PublishCommand(ctx context.Context, cmd Command) error {
	if cmd.ID == "" {
		cmd.ID = uuid.NewString()
	}
	if cmd.DeviceID == "" {
		cmd.DeviceID = p.deviceID
	}
	if cmd.Timestamp.IsZero() {
		cmd.Timestamp = p.now().UTC()
	}
	return p.write(ctx, p.commandTopic, cmd)
}

func (p *KafkaPublisher) PublishLabel(ctx context.Context, ev governor.LabelEvent) error {
	out := LabelEvent{
		ID:        uuid.NewString(),
		DeviceID:  p.deviceID,
		Timestamp: p.now().UTC(),
		Label:     ev.Controller.String(),
	}
	if !ev.First {
		out.Previous = ev.Previous.String()
	}
	return p.write(ctx, p.eventTopic, out)
}

func (p *KafkaPublisher) write(ctx context.Context, topic string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", topic, err)
	}
	msg := kafka.Message{Topic: topic, Key: []byte(p.deviceID), Value: b, Time: p.now()}
	if err := p.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write %s: %w", topic, err)
	}
	p.log.Debug("published", slog.String("topic", topic), slog.Int("bytes", len(b)))
	return nil
}
