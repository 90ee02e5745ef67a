// Package server exposes the notification run over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/amishk599/jobwatch/internal/job"
)

// Runner performs one notification run.
type Runner interface {
	Run(ctx context.Context) (*job.Report, error)
}

// Server serves the run trigger, health check and metrics.
type Server struct {
	runner   Runner
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// New creates a server. gatherer backs the /metrics endpoint.
func New(runner Runner, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	return &Server{
		runner:   runner,
		gatherer: gatherer,
		logger:   logger,
	}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Get("/api/notify", s.notify)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func (s *Server) notify(w http.ResponseWriter, r *http.Request) {
	report, err := s.runner.Run(r.Context())
	if err != nil {
		s.logger.Error("notification run failed",
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		writeJSON(w, http.StatusInternalServerError, errorResponse{
			Error:   "Failed to process notifications",
			Details: err.Error(),
		})
		return
	}

	w.Header().Set("X-Run-ID", report.RunID)
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
