// v0
// cmd/governor/main.go
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"golang.org/x/sync/errgroup"

	"github.com/anthonysecco/minuet-firmware/internal/circuitbreaker"
	"github.com/anthonysecco/minuet-firmware/internal/config"
	"github.com/anthonysecco/minuet-firmware/internal/engine"
	"github.com/anthonysecco/minuet-firmware/internal/governor"
	"github.com/anthonysecco/minuet-firmware/internal/httpapi"
	"github.com/anthonysecco/minuet-firmware/internal/logging"
	"github.com/anthonysecco/minuet-firmware/internal/metrics"
	"github.com/anthonysecco/minuet-firmware/internal/sensors"
	"github.com/anthonysecco/minuet-firmware/internal/telemetry"
	"github.com/anthonysecco/minuet-firmware/internal/thermostat"
)

func main() {
	lg, lf := logging.Init()
	defer func(lf *os.File) {
		if lf == os.Stdout {
			return
		}
		if err := lf.Close(); err != nil {
			lg.Error("log file close", "error", err)
		}
	}(lf)
	lg.Info("minuet governor starting")

	if err := run(lg); err != nil {
		lg.Error("governor exited", "error", err)
		os.Exit(1)
	}
	lg.Info("minuet governor stopped")
}

func run(lg *slog.Logger) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	lg.Info("config loaded", "bind", cfg.HTTPBind, "brokers", cfg.KafkaBrokers, "mqtt", cfg.MQTTBroker, "tick", cfg.TickInterval.String())

	tun, err := config.LoadTunables(cfg.TunablesPath)
	if err != nil {
		return err
	}
	gov, err := governor.New(tun, lg)
	if err != nil {
		return err
	}
	thermo, err := thermostat.NewStore(cfg.DefaultTargetC, cfg.SetpointMinC, cfg.SetpointMaxC,
		governor.Toggles{CO2Enabled: cfg.CO2Enabled, RHEnabled: cfg.RHEnabled})
	if err != nil {
		return err
	}
	m := metrics.New()
	store := sensors.NewStore(cfg.SensorMaxAge)
	deps := engine.Deps{Governor: gov, Thermostat: thermo, Sensors: store, Metrics: m}
	var labels telemetry.Labels

	if len(cfg.KafkaBrokers) > 0 {
		policy, err := circuitbreaker.NewPolicyFromEnv("kafka", lg)
		if err != nil {
			return err
		}
		if b := policy.Breaker(); b != nil {
			b.OnStateChange = func(name string, s circuitbreaker.State) {
				m.SetCircuitBreakerState(name, float64(s))
			}
			m.SetCircuitBreakerState(b.Name(), float64(b.State()))
		}
		kw := telemetry.NewKafkaWriter(cfg.KafkaBrokers)
		defer kw.Close()
		pub := telemetry.NewKafkaPublisher(circuitbreaker.NewKafkaWriter(kw, policy), cfg.DeviceID, cfg.CommandTopic, cfg.TelemetryTopic, lg)
		deps.Commands = pub
		labels = append(labels, pub)
		lg.Info("kafka publisher ready", "commands", cfg.CommandTopic, "events", cfg.TelemetryTopic, "breaker", policy.Enabled())
	}

	var client mqtt.Client
	if cfg.MQTTBroker != "" {
		src := sensors.NewMQTTSource(cfg.SensorPrefix, store, lg)
		client, err = sensors.Connect(cfg.MQTTBroker, cfg.MQTTClientID, lg, src.OnConnect)
		if err != nil {
			return err
		}
		defer client.Disconnect(250)
		labels = append(labels, telemetry.NewMQTTDisplay(client, cfg.DisplayTopic))
	}
	if len(labels) > 0 {
		deps.Labels = labels
	}

	eng := engine.New(deps, cfg.TickInterval, lg)
	reload := func() (governor.Tunables, error) { return config.LoadTunables(cfg.TunablesPath) }
	srv := httpapi.New(cfg.HTTPBind, eng, thermo, reload, m, os.Stdout, lg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return eng.Run(ctx) })
	g.Go(srv.Start)
	g.Go(func() error {
		<-ctx.Done()
		sh, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Stop(sh)
	})
	return g.Wait()
}
