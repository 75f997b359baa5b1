// v0
// internal/metrics/metrics.go
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/anthonysecco/minuet-firmware/internal/governor"
)

var controllers = []governor.Controller{
	governor.ControllerOff,
	governor.ControllerThermal,
	governor.ControllerCO2,
	governor.ControllerRH,
}

type Metrics struct {
	reg *prometheus.Registry

	ticks         prometheus.Counter
	faults        *prometheus.CounterVec
	fanLevel      prometheus.Gauge
	rawLevel      prometheus.Gauge
	lidOpen       prometheus.Gauge
	active        *prometheus.GaugeVec
	labelChanges  *prometheus.CounterVec
	publishErrors *prometheus.CounterVec
	cbState       *prometheus.GaugeVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	tickDuration  prometheus.Histogram
}

// New registers all collectors on a private registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "governor_ticks_total",
			Help: "Total governor ticks evaluated.",
		}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "governor_faults_total",
			Help: "Invalid-input faults reported by the governor.",
		}, []string{"kind"}),
		fanLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "governor_fan_level",
			Help: "Fan level commanded on the last tick (0-10).",
		}),
		rawLevel: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "governor_raw_level",
			Help: "Combined controller level before fan-mode overrides.",
		}),
		lidOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "governor_lid_open",
			Help: "1 when the lid is commanded open.",
		}),
		active: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "governor_active_controller",
			Help: "1 for the controller currently driving the fan.",
		}, []string{"controller"}),
		labelChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "governor_label_changes_total",
			Help: "Active-controller label publications.",
		}, []string{"controller"}),
		publishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "governor_publish_errors_total",
			Help: "Failed publications by sink.",
		}, []string{"sink"}),
		cbState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cb_state",
			Help: "Circuit breaker state gauge (0 closed, 1 half, 2 open).",
		}, []string{"target"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total count of HTTP requests processed by route and status.",
		}, []string{"route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of HTTP request durations by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "governor_tick_duration_seconds",
			Help:    "Time spent evaluating and publishing one tick.",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}),
	}

	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.ticks,
		m.faults,
		m.fanLevel,
		m.rawLevel,
		m.lidOpen,
		m.active,
		m.labelChanges,
		m.publishErrors,
		m.cbState,
		m.httpRequests,
		m.httpDuration,
		m.tickDuration,
	)
	for _, c := range controllers {
		m.active.WithLabelValues(c.String()).Set(0)
	}
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// ObserveTick records the outcome of one governor tick.
func (m *Metrics) ObserveTick(res governor.Result, took time.Duration) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.tickDuration.Observe(took.Seconds())
	m.fanLevel.Set(float64(res.Output.FanSpeed))
	m.rawLevel.Set(float64(res.RawLevel))
	m.lidOpen.Set(b2f(res.Output.LidOpen))
	for _, c := range controllers {
		m.active.WithLabelValues(c.String()).Set(b2f(c == res.Active))
	}
	if res.Label != nil {
		m.labelChanges.WithLabelValues(res.Label.Controller.String()).Inc()
	}
	for _, err := range res.Faults {
		m.faults.WithLabelValues(faultKind(err)).Inc()
	}
}

func (m *Metrics) PublishError(sink string) {
	if m == nil {
		return
	}
	m.publishErrors.WithLabelValues(sink).Inc()
}

func (m *Metrics) SetCircuitBreakerState(target string, state float64) {
	if m == nil {
		return
	}
	m.cbState.WithLabelValues(target).Set(state)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (m *Metrics) WrapHandler(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next.ServeHTTP(recorder, r)

		if m != nil {
			m.httpRequests.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
			m.httpDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		}
	})
}

func faultKind(err error) string {
	switch {
	case errors.Is(err, governor.ErrInvalidSetpoint):
		return "setpoint"
	case errors.Is(err, governor.ErrInvalidAmbient):
		return "ambient"
	default:
		return "other"
	}
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
