// Package server implements the collector: it accepts readings from the
// sensor node, keeps the latest one in memory, appends every reading to the
// log and renders a status page.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/and161185/fill-monitor/internal/config"
	"github.com/and161185/fill-monitor/internal/server/metrics"
	"github.com/and161185/fill-monitor/internal/server/middleware"
	"github.com/and161185/fill-monitor/storage"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 5 * time.Second
	journalTimeout  = 3 * time.Second
)

type Server struct {
	slot    storage.LastReading
	log     storage.Log
	journal storage.Journal
	config  *config.CollectorConfig
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewServer wires the collector. journal may be nil.
func NewServer(slot storage.LastReading, log storage.Log, journal storage.Journal, cfg *config.CollectorConfig, logger *zap.SugaredLogger) *Server {
	return &Server{
		slot:    slot,
		log:     log,
		journal: journal,
		config:  cfg,
		logger:  logger,
		metrics: metrics.NewMetrics(),
		now:     time.Now,
	}
}

// Router builds the collector's route table.
func (srv *Server) Router() http.Handler {
	router := chi.NewRouter()
	router.Use(chiMiddleware.Recoverer)
	router.Use(chiMiddleware.StripSlashes)
	router.Use(middleware.BodyLimit(middleware.MaxBodyBytes))
	router.Use(middleware.LogMiddleware(srv.logger))
	router.Use(middleware.CompressMiddleware)

	latestCORS := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	})

	router.Method(http.MethodPost, "/data", srv.metrics.WrapHandler("/data", http.HandlerFunc(srv.IngestHandler)))
	router.Method(http.MethodGet, "/", srv.metrics.WrapHandler("/", http.HandlerFunc(srv.StatusHandler)))
	router.Method(http.MethodGet, "/ping", srv.metrics.WrapHandler("/ping", http.HandlerFunc(srv.PingHandler)))
	router.Handle("/api/latest", latestCORS.Handler(srv.metrics.WrapHandler("/api/latest", http.HandlerFunc(srv.LatestHandler))))
	router.Method(http.MethodGet, "/metrics", srv.metrics.Handler())

	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (srv *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              srv.config.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		srv.logger.Infof("collector listening on %s", srv.config.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	srv.logger.Info("shutting down collector")
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
