// Package main runs the scheduled ingest trigger. It asks the weather
// backend to ingest on a cron schedule and exposes its own health endpoint.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/weatherdash/weatherdash/internal/api/middleware"
	"github.com/weatherdash/weatherdash/internal/api/response"
	"github.com/weatherdash/weatherdash/internal/config"
	"github.com/weatherdash/weatherdash/internal/provider/resilience"
	"github.com/weatherdash/weatherdash/internal/scheduler"
	"github.com/weatherdash/weatherdash/internal/telemetry"
	"github.com/weatherdash/weatherdash/internal/weather/backend"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// defaultSpec matches the backend's own ingest cadence.
const defaultSpec = "*/5 * * * *"

func main() {
	const serviceName = "weatherdash-worker"

	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := cfg.NewLogger(serviceName, Version)

	spec := cfg.AutoIngestCron
	if spec == "" {
		spec = defaultSpec
	}

	log.Info().
		Str("build_time", BuildTime).
		Str("backend", cfg.BackendBaseURL).
		Str("spec", spec).
		Msg("starting ingest worker")

	tp, err := telemetry.Init(context.Background(), telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    cfg.Env,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.OTelEnabled,
		SampleRatio:    cfg.OTelSampleRatio,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	registry := resilience.NewRegistry()
	clientCfg := resilience.DefaultClientConfig(backend.ProviderName)
	clientCfg.Timeout = cfg.BackendTimeout
	clientCfg.Registry = registry

	remote := backend.NewClient(backend.ClientConfig{
		BaseURL:    cfg.BackendBaseURL,
		HTTPClient: resilience.NewClient(clientCfg),
		Registry:   registry,
		Logger:     log,
	})

	sched, err := scheduler.New(scheduler.Config{
		Name:    "backend-ingest",
		Spec:    spec,
		Job:     remote.RunIngest,
		Timeout: cfg.BackendTimeout,
		Logger:  log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scheduler")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(sched, registry, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("health server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("health server error")
		}
	}()

	sched.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down worker")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := sched.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("scheduler did not stop in time")
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("worker stopped")
}

type workerHealth struct {
	Status    string           `json:"status"`
	Version   string           `json:"version"`
	Scheduler scheduler.Status `json:"scheduler"`
	Backend   string           `json:"backend"`
}

// newRouter serves GET /health with the scheduler and breaker state.
func newRouter(sched *scheduler.Scheduler, registry *resilience.Registry, log zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		body := workerHealth{
			Status:    "OK",
			Version:   Version,
			Scheduler: sched.Status(),
			Backend:   "unknown",
		}
		if h := registry.GetHealth(backend.ProviderName); h != nil {
			body.Backend = h.CircuitState.String()
			if !h.IsHealthy() {
				body.Status = "DEGRADED"
			}
		}
		response.JSON(w, r, http.StatusOK, body)
	})

	return r
}
