// v0
// internal/telemetry/telemetry.go
package telemetry

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anthonysecco/minuet-firmware/internal/governor"
)

// Command is the actuator instruction emitted each tick.
type Command struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"deviceId"`
	Timestamp time.Time `json:"timestamp"`
	FanSpeed  int       `json:"fanSpeed"`
	LidOpen   bool      `json:"lidOpen"`
	Active    string    `json:"activeController"`
}

// LabelEvent is the wire form of a governor label change.
type LabelEvent struct {
	ID        string    `json:"id"`
	DeviceID  string    `json:"deviceId"`
	Timestamp time.Time `json:"timestamp"`
	Label     string    `json:"label"`
	Previous  string    `json:"previous,omitempty"`
}

// CommandSink receives actuator commands.
type CommandSink interface {
	PublishCommand(ctx context.Context, cmd Command) error
}

// LabelSink receives active-controller label changes.
type LabelSink interface {
	PublishLabel(ctx context.Context, ev governor.LabelEvent) error
}

// Labels fans a label event out to several sinks concurrently.
type Labels []LabelSink

func (l Labels) PublishLabel(ctx context.Context, ev governor.LabelEvent) error {
	errs := make([]error, len(l))
	var g errgroup.Group
	for i, s := range l {
		i, s := i, s
		g.Go(func() error {
			errs[i] = s.PublishLabel(ctx, ev)
			return nil
		})
	}
	_ = g.Wait()
	return errors.Join(errs...)
}
