// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the research digest over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/kataras/golog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pdiddy/research-digest/internal/digest"
	"github.com/pdiddy/research-digest/pkg/types"
)

// Default settings for the HTTP service.
const (
	DefaultAddr            = ":8000"
	DefaultShutdownTimeout = 30 * time.Second
)

// maxRequestBytes caps the summarize request body.
const maxRequestBytes = 1 << 20

// Digester runs one research digest. *digest.Runner implements it.
type Digester interface {
	Run(ctx context.Context, query string) (digest.State, error)
}

type summarizeRequest struct {
	Query string `json:"query"`
}

type summarizeResponse struct {
	Summary string `json:"summary"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// Server routes HTTP requests to a Digester.
type Server struct {
	digester Digester
	cfg      types.ServerConfig
	metrics  *Metrics
	log      *golog.Logger
	handler  http.Handler
}

// New builds a Server. Metrics are registered with reg and served from it
// at /metrics.
func New(d Digester, cfg types.ServerConfig, reg *prometheus.Registry, logger *golog.Logger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}
	if logger == nil {
		logger = golog.New()
		logger.SetOutput(io.Discard)
	}

	s := &Server{
		digester: d,
		cfg:      cfg,
		metrics:  NewMetrics(reg),
		log:      logger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/summarize", s.handleSummarize).Methods(http.MethodPost)
	router.HandleFunc("/health", handleHealth).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	s.handler = cors(cfg.AllowedOrigins)(router)
	return s
}

// Handler returns the root handler with CORS applied.
func (s *Server) Handler() http.Handler { return s.handler }

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
// within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("listening on %s", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		s.metrics.Duration.Observe(time.Since(start).Seconds())
	}()

	var req summarizeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBytes)).Decode(&req); err != nil {
		s.metrics.Requests.WithLabelValues(outcomeBadRequest).Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.metrics.Requests.WithLabelValues(outcomeBadRequest).Inc()
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "query is required"})
		return
	}

	state, err := s.digester.Run(r.Context(), req.Query)
	if state.RunID != "" {
		w.Header().Set("X-Run-ID", state.RunID)
	}
	if err != nil {
		step := "unknown"
		var runErr *digest.RunError
		if errors.As(err, &runErr) {
			step = runErr.Step.String()
		}
		s.metrics.Failures.WithLabelValues(step).Inc()
		s.metrics.Requests.WithLabelValues(outcomeError).Inc()
		s.log.Errorf("run %s failed: %v", state.RunID, err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: err.Error()})
		return
	}

	s.metrics.Rewrites.Observe(float64(state.RewriteCount))
	s.metrics.Requests.WithLabelValues(outcomeOK).Inc()
	writeJSON(w, http.StatusOK, summarizeResponse{Summary: state.FinalOutput})
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// cors allows cross-origin calls from the listed origins. An empty list or
// "*" allows any origin. Preflight requests are answered directly.
func cors(allowed []string) func(http.Handler) http.Handler {
	allowAll := len(allowed) == 0
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			allowAll = true
		}
		set[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || set[origin]) {
				h := w.Header()
				if allowAll {
					h.Set("Access-Control-Allow-Origin", "*")
				} else {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				if reqHeaders := r.Header.Get("Access-Control-Request-Headers"); reqHeaders != "" {
					h.Set("Access-Control-Allow-Headers", reqHeaders)
				}
				h.Set("Access-Control-Expose-Headers", "X-Run-ID")
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
