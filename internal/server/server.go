// Package server exposes an observed scenario over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/observed/internal/demo"
	"github.com/aretw0/observed/internal/logging"
	"github.com/aretw0/observed/pkg/domain"
	"github.com/aretw0/observed/pkg/identity"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Target is the observable served by the handler.
type Target interface {
	Call(arg string) ([]demo.Line, error)
	Observers() []identity.Key
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics mounts /metrics backed by g.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// Server holds the HTTP handlers.
type Server struct {
	target   Target
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// ObserverView is one entry of GET /observers.
type ObserverView struct {
	Kind string `json:"kind"`
	Key  string `json:"key"`
}

// CallRequest is the body of POST /call.
type CallRequest struct {
	Arg string `json:"arg"`
}

// CallResponse is returned by POST /call. Error is set when an observer
// failed; Trace still lists what ran.
type CallResponse struct {
	Trace []demo.Line `json:"trace"`
	Error string      `json:"error,omitempty"`
}

// NewHandler returns the router for target.
func NewHandler(target Target, opts ...Option) http.Handler {
	s := &Server{
		target: target,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.Health)
	r.Get("/observers", s.Observers)
	r.Post("/call", s.Call)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	if _, err := w.Write([]byte("ok")); err != nil {
		s.logger.Error("Health: failed to write response", "error", err)
	}
}

// Observers handles GET /observers.
func (s *Server) Observers(w http.ResponseWriter, r *http.Request) {
	keys := s.target.Observers()
	views := make([]ObserverView, 0, len(keys))
	for _, k := range keys {
		views = append(views, ObserverView{Kind: k.Kind().String(), Key: k.String()})
	}
	s.writeJSON(w, http.StatusOK, views)
}

// Call handles POST /call.
func (s *Server) Call(w http.ResponseWriter, r *http.Request) {
	var body CallRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("Call: invalid request body", "error", err)
		return
	}

	trace, err := s.target.Call(body.Arg)
	resp := CallResponse{Trace: trace}
	if err != nil {
		resp.Error = err.Error()
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrObserverFailed) {
			status = http.StatusBadGateway
		}
		s.logger.Error("Call failed", "arg", body.Arg, "error", err)
		s.writeJSON(w, status, resp)
		return
	}
	s.logger.Debug("Call dispatched", "arg", body.Arg, "lines", len(trace))
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "status", status, "error", err)
	}
}
