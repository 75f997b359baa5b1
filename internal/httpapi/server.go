// v0
// internal/httpapi/server.go
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/anthonysecco/minuet-firmware/internal/engine"
	"github.com/anthonysecco/minuet-firmware/internal/governor"
	"github.com/anthonysecco/minuet-firmware/internal/metrics"
	"github.com/anthonysecco/minuet-firmware/internal/thermostat"
)

// Engine is the part of the control engine the API drives.
type Engine interface {
	Tick(ctx context.Context) (governor.Result, error)
	Status() engine.Status
	RequestReset()
	SetTunables(t governor.Tunables) error
	Trigger()
}

// ReloadFunc loads fresh governor tunables from disk.
type ReloadFunc func() (governor.Tunables, error)

type Server struct {
	lg      *slog.Logger
	eng     Engine
	thermo  *thermostat.Store
	reload  ReloadFunc
	metrics *metrics.Metrics
	http    *http.Server
}

// New wires the router. accessLog receives gorilla combined-format lines;
// nil disables access logging.
func New(bind string, eng Engine, thermo *thermostat.Store, reload ReloadFunc, m *metrics.Metrics, accessLog io.Writer, lg *slog.Logger) *Server {
	s := &Server{
		lg:      lg.With(slog.String("component", "http")),
		eng:     eng,
		thermo:  thermo,
		reload:  reload,
		metrics: m,
	}
	var h http.Handler = s.Router()
	if accessLog != nil {
		h = handlers.LoggingHandler(accessLog, h)
	}
	h = handlers.CORS(
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPut, http.MethodPost}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
	s.http = &http.Server{Addr: bind, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	return s
}

// Router returns the bare route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	s.route(r, "/health", s.getHealth, http.MethodGet)
	s.route(r, "/status", s.getStatus, http.MethodGet)
	s.route(r, "/thermostat", s.getThermostat, http.MethodGet)
	s.route(r, "/thermostat", s.putThermostat, http.MethodPut)
	s.route(r, "/toggles", s.putToggles, http.MethodPut)
	s.route(r, "/governor/reset", s.postReset, http.MethodPost)
	s.route(r, "/governor/tick", s.postTick, http.MethodPost)
	s.route(r, "/config/reload", s.postReload, http.MethodPost)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}
	return r
}

func (s *Server) route(r *mux.Router, path string, fn http.HandlerFunc, method string) {
	r.Handle(path, s.metrics.WrapHandler(path, fn)).Methods(method)
}

func (s *Server) Start() error {
	s.lg.Info("http start", "bind", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.lg.Info("http stop")
	return s.http.Shutdown(ctx)
}

func (s *Server) getHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (s *Server) getStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.eng.Status())
}

func (s *Server) getThermostat(w http.ResponseWriter, _ *http.Request) {
	lo, hi := s.thermo.Range()
	writeJSON(w, http.StatusOK, map[string]any{
		"settings":    s.thermo.Snapshot(),
		"setpointMin": lo,
		"setpointMax": hi,
	})
}

func (s *Server) putThermostat(w http.ResponseWriter, r *http.Request) {
	var u thermostat.Update
	if !decode(w, r, &u) {
		return
	}
	s.apply(w, u)
}

func (s *Server) putToggles(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CO2Enabled *bool `json:"co2Enabled"`
		RHEnabled  *bool `json:"rhEnabled"`
	}
	if !decode(w, r, &body) {
		return
	}
	s.apply(w, thermostat.Update{CO2Enabled: body.CO2Enabled, RHEnabled: body.RHEnabled})
}

func (s *Server) apply(w http.ResponseWriter, u thermostat.Update) {
	st, err := s.thermo.Apply(u)
	if err != nil {
		if errors.Is(err, thermostat.ErrSetpointRange) || errors.Is(err, governor.ErrUnknownMode) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.lg.Error("thermostat update", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.lg.Info("thermostat updated", "target", st.TargetC, "action", st.Action, "fan", st.FanMode, "lid", st.LidMode, "co2", st.CO2Enabled, "rh", st.RHEnabled)
	s.eng.Trigger()
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) postReset(w http.ResponseWriter, _ *http.Request) {
	s.eng.RequestReset()
	s.eng.Trigger()
	writeJSON(w, http.StatusAccepted, map[string]any{"status": "reset queued"})
}

func (s *Server) postTick(w http.ResponseWriter, r *http.Request) {
	res, err := s.eng.Tick(r.Context())
	body := map[string]any{"result": res}
	if err != nil {
		body["publishError"] = err.Error()
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) postReload(w http.ResponseWriter, _ *http.Request) {
	if s.reload == nil {
		writeError(w, http.StatusNotImplemented, "reload not configured")
		return
	}
	t, err := s.reload()
	if err == nil {
		err = s.eng.SetTunables(t)
	}
	if err != nil {
		s.lg.Error("reload", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, governor.ErrInvalidTunables) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}
	s.eng.Trigger()
	writeJSON(w, http.StatusOK, map[string]any{"status": "reloaded", "tunables": t})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
