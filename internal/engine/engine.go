// v0
// internal/engine/engine.go
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anthonysecco/minuet-firmware/internal/governor"
	"github.com/anthonysecco/minuet-firmware/internal/metrics"
	"github.com/anthonysecco/minuet-firmware/internal/sensors"
	"github.com/anthonysecco/minuet-firmware/internal/telemetry"
	"github.com/anthonysecco/minuet-firmware/internal/thermostat"
)

type Stats struct {
	Ticks         int64 `json:"ticks"`
	Resets        int64 `json:"resets"`
	CommandsOut   int64 `json:"commandsOut"`
	LabelsOut     int64 `json:"labelsOut"`
	PublishErrors int64 `json:"publishErrors"`
	Faults        int64 `json:"faults"`
}

// Status is the engine view served on /status.
type Status struct {
	Stats    Stats                      `json:"stats"`
	LastTick time.Time                  `json:"lastTick"`
	Last     *governor.Result           `json:"last,omitempty"`
	State    governor.Snapshot          `json:"state"`
	Tunables governor.Tunables          `json:"tunables"`
	Input    thermostat.Settings        `json:"input"`
	Sensors  map[sensors.Signal]float64 `json:"sensors"`
}

// Deps bundles the engine collaborators. Commands, Labels and Metrics are
// optional.
type Deps struct {
	Governor   *governor.Governor
	Thermostat *thermostat.Store
	Sensors    *sensors.Store
	Commands   telemetry.CommandSink
	Labels     telemetry.LabelSink
	Metrics    *metrics.Metrics
}

// Engine drives the governor. tickMu keeps ticks and their publications in
// order; mu guards the governor and the stats and is never held while
// publishing.
type Engine struct {
	lg       *slog.Logger
	interval time.Duration
	now      func() time.Time
	d        Deps
	wake     chan struct{}

	tickMu   sync.Mutex
	mu       sync.Mutex
	stats    Stats
	last     *governor.Result
	lastTick time.Time
}

func New(d Deps, interval time.Duration, lg *slog.Logger) *Engine {
	return &Engine{
		lg:       lg.With(slog.String("component", "engine")),
		interval: interval,
		now:      time.Now,
		d:        d,
		wake:     make(chan struct{}, 1),
	}
}

func (e *Engine) Run(ctx context.Context) error {
	e.lg.Info("engine start", "interval_ms", e.interval.Milliseconds())
	t := time.NewTicker(e.interval)
	defer t.Stop()
	for {
		if _, err := e.Tick(ctx); err != nil {
			e.lg.Error("tick publish failed", "error", err)
		}
		select {
		case <-ctx.Done():
			e.lg.Info("engine stop")
			return nil
		case <-t.C:
		case <-e.wake:
			t.Reset(e.interval)
		}
	}
}

// Trigger asks Run for an immediate tick, e.g. after a thermostat change.
// It never blocks; triggers that arrive before the tick runs coalesce.
func (e *Engine) Trigger() {
	select {
	case e.wake <- struct{}{}:
	default:
	}
}

// Tick evaluates one control cycle and publishes its output. The governor
// result is always returned; the error reports publication failures only.
// Publications share a deadline of one tick interval.
func (e *Engine) Tick(ctx context.Context) (governor.Result, error) {
	e.tickMu.Lock()
	defer e.tickMu.Unlock()

	start := e.now()
	res := e.evaluate(start)

	pctx, cancel := context.WithTimeout(ctx, e.interval)
	defer cancel()
	cmdErr, labelErr := e.publish(pctx, res, start)

	e.mu.Lock()
	e.count(cmdErr, &e.stats.CommandsOut, e.d.Commands != nil)
	e.count(labelErr, &e.stats.LabelsOut, res.Label != nil && e.d.Labels != nil)
	e.mu.Unlock()

	if cmdErr != nil {
		e.d.Metrics.PublishError("command")
	}
	if labelErr != nil {
		e.d.Metrics.PublishError("label")
	}
	e.d.Metrics.ObserveTick(res, e.now().Sub(start))
	return res, errors.Join(cmdErr, labelErr)
}

func (e *Engine) evaluate(start time.Time) governor.Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.d.Thermostat.TakeReset() {
		e.d.Governor.Reset()
		e.stats.Resets++
		e.lg.Info("governor reset")
	}

	raw, ambient := e.d.Sensors.Snapshot(start)
	in := e.d.Thermostat.Input(ambient)
	res := e.d.Governor.Update(in, raw, e.d.Thermostat.Toggles())

	e.stats.Ticks++
	e.stats.Faults += int64(len(res.Faults))
	e.last = &res
	e.lastTick = start
	if res.Label != nil {
		e.lg.Info("active controller", "label", res.Label.Controller.String(), "previous", res.Label.Previous.String(), "first", res.Label.First)
	}
	return res
}

// publish sends the command and the label event concurrently so a slow
// command sink does not hold back the display.
func (e *Engine) publish(ctx context.Context, res governor.Result, start time.Time) (cmdErr, labelErr error) {
	var g errgroup.Group
	if e.d.Commands != nil {
		g.Go(func() error {
			cmdErr = e.d.Commands.PublishCommand(ctx, telemetry.Command{
				FanSpeed:  res.Output.FanSpeed,
				LidOpen:   res.Output.LidOpen,
				Active:    res.Active.String(),
				Timestamp: start.UTC(),
			})
			return nil
		})
	}
	if res.Label != nil && e.d.Labels != nil {
		ev := *res.Label
		g.Go(func() error {
			labelErr = e.d.Labels.PublishLabel(ctx, ev)
			return nil
		})
	}
	_ = g.Wait()
	return cmdErr, labelErr
}

// count must be called with mu held.
func (e *Engine) count(err error, ok *int64, attempted bool) {
	switch {
	case !attempted:
	case err != nil:
		e.stats.PublishErrors++
	default:
		*ok++
	}
}

// RequestReset queues a governor reset for the next tick.
func (e *Engine) RequestReset() { e.d.Thermostat.RequestReset() }

func (e *Engine) Tunables() governor.Tunables {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.d.Governor.Tunables()
}

// SetTunables swaps governor tunables between ticks.
func (e *Engine) SetTunables(t governor.Tunables) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.d.Governor.SetTunables(t); err != nil {
		return err
	}
	e.lg.Info("tunables updated")
	return nil
}

func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := Status{
		Stats:    e.stats,
		LastTick: e.lastTick,
		State:    e.d.Governor.Snapshot(),
		Tunables: e.d.Governor.Tunables(),
		Input:    e.d.Thermostat.Snapshot(),
		Sensors:  e.d.Sensors.Values(e.now()),
	}
	if e.last != nil {
		last := *e.last
		st.Last = &last
	}
	return st
}
