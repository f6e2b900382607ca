// Package httpapi serves the calendar converter over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/username/appkit/internal/config"
	"github.com/username/appkit/internal/metrics"
	"github.com/username/appkit/pkg/dateutil"
)

// DayNamer returns a display name for a Monday-based weekday index.
type DayNamer interface {
	DayName(index int) string
}

// Server holds the dependencies shared by the handlers.
type Server struct {
	clock   dateutil.Clock
	days    DayNamer
	limiter *ClientLimiter
	logger  *zap.Logger
}

// NewServer creates a server. A nil clock reads the system clock; nil days
// uses English weekday names.
func NewServer(clock dateutil.Clock, days DayNamer, logger *zap.Logger) *Server {
	if clock == nil {
		clock = dateutil.RealClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{clock: clock, days: days, logger: logger}
}

// Router wires the API routes.
func (s *Server) Router(cfg config.HTTPConfig, metricsCfg config.MetricsConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if metricsCfg.Enabled {
		path := metricsCfg.Path
		if path == "" {
			path = "/metrics"
		}
		r.Get(path, func(w http.ResponseWriter, r *http.Request) {
			metrics.Handler().ServeHTTP(w, r)
		})
	}

	r.Route("/v1", func(r chi.Router) {
		if cfg.RateLimit > 0 {
			if s.limiter == nil {
				s.limiter = NewClientLimiter(rate.Limit(cfg.RateLimit), cfg.GetRateBurst(), 5*time.Minute)
			}
			r.Use(s.limiter.Middleware())
		}
		r.Get("/today", s.handleToday)
		r.Get("/dates/{date}", s.handleDate)
		r.Get("/dates/{a}/diff/{b}", s.handleDiff)
		r.Get("/offsets/{offset}", s.handleOffset)
	})

	return r
}

// Close releases the rate limiter, if any.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Close()
	}
}

// ListenAndServe runs handler on cfg.Addr until ctx is cancelled, then shuts
// down gracefully.
func ListenAndServe(ctx context.Context, cfg config.HTTPConfig, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
