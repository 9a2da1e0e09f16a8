// Package health provides the liveness and readiness endpoints.
//
// /healthz reports whether the process is up and marked ready. /readyz
// additionally runs every registered check (the store, for one) and reports
// static details such as the completion backend in use. Docker and
// Kubernetes probes poll these endpoints.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

// checkTimeout bounds a single readiness check.
const checkTimeout = 2 * time.Second

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

type check struct {
	name string
	fn   CheckFunc
}

// Server is a lightweight HTTP server that exposes /healthz and /readyz.
type Server struct {
	port  int
	ready atomic.Bool

	mu      sync.RWMutex
	checks  []check
	details map[string]string

	server *http.Server
}

// New creates a new health check server.
func New(port int) *Server {
	return &Server{port: port, details: make(map[string]string)}
}

// SetReady marks the service as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.ready.Store(ready)
}

// AddCheck registers a readiness check under name.
func (s *Server) AddCheck(name string, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checks = append(s.checks, check{name: name, fn: fn})
}

// SetDetail records a static value reported by /readyz.
func (s *Server) SetDetail(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details[key] = value
}

type report struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Handler returns the probe routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if !s.ready.Load() {
			writeReport(w, http.StatusServiceUnavailable, report{Status: "not_ready"})
			return
		}
		writeReport(w, http.StatusOK, report{Status: "ok"})
	})

	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) {
		rep, ok := s.readiness(r.Context())
		if !ok {
			writeReport(w, http.StatusServiceUnavailable, rep)
			return
		}
		writeReport(w, http.StatusOK, rep)
	})

	return mux
}

func (s *Server) readiness(ctx context.Context) (report, bool) {
	s.mu.RLock()
	checks := append([]check(nil), s.checks...)
	details := maps.Clone(s.details)
	s.mu.RUnlock()

	rep := report{Status: "ok", Details: details}
	ok := s.ready.Load()
	if !ok {
		rep.Status = "not_ready"
	}

	if len(checks) > 0 {
		rep.Checks = make(map[string]string, len(checks))
	}
	for _, c := range checks {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := c.fn(cctx)
		cancel()
		if err != nil {
			slog.Warn("readiness check failed", "check", c.name, "error", err)
			rep.Checks[c.name] = err.Error()
			rep.Status = "not_ready"
			ok = false
			continue
		}
		rep.Checks[c.name] = "ok"
	}
	return rep, ok
}

func writeReport(w http.ResponseWriter, status int, rep report) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(rep)
}

// ListenAndServe starts the health check HTTP server.
// It blocks until the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	slog.Info("health server listening", "port", s.port)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("health server: %w", err)
	}
	return nil
}
