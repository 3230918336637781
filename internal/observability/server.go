// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package observability serves Prometheus metrics and the liveness and
// readiness probes on a listener separate from the API.
package observability

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"

	"github.com/accountd/accountd/pkg/errutil"
)

// Probe is one named readiness check, such as the database or token cache.
type Probe struct {
	Name  string
	Check func(ctx context.Context) error
}

// ReadinessReport is the body of /healthz/readiness. Checks maps each probe
// name to "ok" or to the error code the probe failed with.
type ReadinessReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Server exposes /metrics, /healthz/liveness and /healthz/readiness.
type Server struct {
	addr     string
	probes   []Probe
	registry *prometheus.Registry
	metrics  *Metrics
	handler  http.Handler

	mu       sync.Mutex
	listener net.Listener
	httpSrv  *http.Server
}

// NewServer creates a server that will listen on addr ("host:port"; port 0
// picks a free one). Readiness holds only while every probe passes.
func NewServer(addr string, probes ...Probe) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		addr:     addr,
		probes:   probes,
		registry: registry,
		metrics:  NewMetrics(registry),
	}

	mux := http.NewServeMux()
	mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	mux.HandleFunc("GET /healthz/liveness", handleLiveness)
	mux.HandleFunc("GET /healthz/readiness", s.handleReadiness)
	s.handler = mux

	return s
}

// Metrics returns the API collectors registered on this server.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Handler returns the probe and metrics routes.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the listener and serves in the background. The returned
// channel receives a serve failure, if any, and is closed once serving ends.
func (s *Server) Start() (<-chan error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.httpSrv != nil {
		return nil, oops.Code("OBSERVABILITY_ALREADY_RUNNING").With("addr", s.addr).Errorf("observability server already running")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return nil, oops.Code("OBSERVABILITY_LISTEN_FAILED").With("addr", s.addr).Wrap(err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.listener = listener
	s.httpSrv = srv

	errCh := make(chan error, 1)
	go func() {
		defer close(errCh)
		if serveErr := srv.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	slog.Info("observability server started", "addr", listener.Addr().String())
	return errCh, nil
}

// Stop shuts the server down. Stopping a server that is not running is a
// no-op.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpSrv
	s.httpSrv = nil
	s.listener = nil
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil {
		return oops.Code("OBSERVABILITY_SHUTDOWN_FAILED").With("addr", s.addr).Wrap(err)
	}

	slog.Info("observability server stopped")
	return nil
}

// Addr returns the bound address, or "" when not running.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func handleLiveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	//nolint:errcheck // client may have gone away
	w.Write([]byte("ok\n"))
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	report := ReadinessReport{Status: "ready", Checks: make(map[string]string, len(s.probes))}
	status := http.StatusOK

	for _, p := range s.probes {
		if err := p.Check(r.Context()); err != nil {
			code := errutil.Code(err)
			if code == "" {
				code = "error"
			}
			report.Checks[p.Name] = code
			report.Status = "unavailable"
			status = http.StatusServiceUnavailable
			slog.WarnContext(r.Context(), "readiness probe failed", append([]any{"probe", p.Name}, errutil.Attrs(err)...)...)
			continue
		}
		report.Checks[p.Name] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // client may have gone away
	json.NewEncoder(w).Encode(report)
}
