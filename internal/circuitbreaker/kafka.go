// v0
// internal/circuitbreaker/kafka.go
package circuitbreaker

import (
	"context"
	"errors"

	"github.com/segmentio/kafka-go"
)

// MessageWriter is the subset of kafka.Writer the wrapper needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaWriter guards a kafka writer with a Policy.
type KafkaWriter struct {
	writer MessageWriter
	policy *Policy
}

func NewKafkaWriter(w MessageWriter, p *Policy) *KafkaWriter {
	return &KafkaWriter{writer: w, policy: p}
}

func (w *KafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w == nil || w.writer == nil {
		return errors.New("nil kafka writer")
	}
	return w.policy.Do(ctx, func(ctx context.Context) error {
		return w.writer.WriteMessages(ctx, msgs...)
	})
}
