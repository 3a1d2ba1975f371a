// Package main provides the entrypoint for the weather dashboard server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"

	"github.com/weatherdash/weatherdash/internal/api"
	"github.com/weatherdash/weatherdash/internal/api/handler"
	"github.com/weatherdash/weatherdash/internal/api/middleware"
	"github.com/weatherdash/weatherdash/internal/config"
	"github.com/weatherdash/weatherdash/internal/dashboard"
	"github.com/weatherdash/weatherdash/internal/observability"
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

func main() {
	const serviceName = "weatherdash"

	cfg, err := config.Load()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("invalid configuration")
	}

	log := cfg.NewLogger(serviceName, Version)
	log.Info().
		Str("build_time", BuildTime).
		Str("env", cfg.Env).
		Str("backend", cfg.BackendBaseURL).
		Msg("starting weather dashboard")

	ctx := context.Background()

	tp, err := telemetry.Init(ctx, telemetry.Config{
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

	if cfg.OTelEnabled {
		log.Info().
			Str("otlp_endpoint", cfg.OTLPEndpoint).
			Float64("sample_ratio", cfg.OTelSampleRatio).
			Msg("OpenTelemetry initialized")
	}

	httpMetrics, err := middleware.NewMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize http metrics")
	}
	providerMetrics, err := middleware.NewProviderMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize provider metrics")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	syncMetrics := observability.NewMetrics(reg)

	registry := resilience.NewRegistry()

	breaker := resilience.DefaultCircuitBreakerConfig(backend.ProviderName)
	breaker.MaxRequests = uint32(max(cfg.BulkConcurrency, resilience.DefaultHalfOpenRequests))
	breaker.OnStateChange = func(name string, from, to gobreaker.State) {
		syncMetrics.CircuitStateChanged(name, from, to)
		log.Warn().
			Str("provider", name).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("circuit breaker state changed")
	}

	clientCfg := resilience.DefaultClientConfig(backend.ProviderName)
	clientCfg.Timeout = cfg.BackendTimeout
	clientCfg.CircuitBreaker = &breaker
	clientCfg.Registry = registry

	remote := backend.NewClient(backend.ClientConfig{
		BaseURL:    cfg.BackendBaseURL,
		HTTPClient: resilience.NewClient(clientCfg),
		Registry:   registry,
		Metrics:    providerMetrics,
		Logger:     log,
	})

	store := dashboard.NewStore(dashboard.Config{
		Remote:          remote,
		BulkConcurrency: cfg.BulkConcurrency,
		HourlyHours:     cfg.HourlyHours,
		Metrics:         syncMetrics,
		Logger:          log,
	})

	waitForBackend(ctx, cfg, log)
	if err := store.RefreshHealth(ctx); err != nil {
		log.Warn().Err(err).Msg("initial health check failed")
	}
	if _, err := store.RefreshLocations(ctx); err != nil {
		log.Warn().Err(err).Msg("initial location load failed")
	}

	var sched *scheduler.Scheduler
	var schedStatus handler.SchedulerStatus
	if cfg.AutoIngestCron != "" {
		sched, err = scheduler.New(scheduler.Config{
			Name:   "auto-ingest",
			Spec:   cfg.AutoIngestCron,
			Job:    store.IngestAll,
			Logger: log,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create ingest scheduler")
		}
		sched.Start()
		schedStatus = sched
		log.Info().Str("spec", cfg.AutoIngestCron).Msg("auto ingest scheduled")
	}

	router := api.NewRouter(api.RouterConfig{
		Version:        Version,
		BuildTime:      BuildTime,
		Logger:         log,
		Metrics:        httpMetrics,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Store:          store,
		Preset:         dashboard.KoreaPreset(),
		Registry:       registry,
		Scheduler:      schedStatus,
	})

	// Ingest waits on the backend for up to three sequential calls.
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: max(15*time.Second, 3*cfg.BackendTimeout+5*time.Second),
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("ingest scheduler did not stop in time")
		}
	}

	done := make(chan struct{})
	go func() {
		store.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		log.Error().Msg("background refreshes still running at shutdown")
	}

	log.Info().Msg("server stopped")
}

// waitForBackend polls the backend health endpoint with exponential backoff
// until it answers or cfg.StartupWait elapses. A backend that never answers
// is logged and the dashboard starts anyway, showing it as unreachable.
func waitForBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) {
	probeBreaker := resilience.DefaultCircuitBreakerConfig("startup-probe")
	probeBreaker.ReadyToTrip = func(gobreaker.Counts) bool { return false }

	probeCfg := resilience.DefaultClientConfig("startup-probe")
	probeCfg.Timeout = cfg.BackendTimeout
	probeCfg.CircuitBreaker = &probeBreaker

	probe := backend.NewClient(backend.ClientConfig{
		BaseURL:    cfg.BackendBaseURL,
		HTTPClient: resilience.NewClient(probeCfg),
		Logger:     zerolog.Nop(),
	})

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	b.MaxElapsedTime = cfg.StartupWait

	start := time.Now()
	err := backoff.RetryNotify(
		func() error {
			_, err := probe.Health(ctx)
			return err
		},
		backoff.WithContext(b, ctx),
		func(err error, next time.Duration) {
			log.Info().Err(err).Dur("retry_in", next).Msg("waiting for weather backend")
		},
	)
	if err != nil {
		log.Warn().Err(err).Dur("waited", time.Since(start)).Msg("weather backend not reachable, starting anyway")
		return
	}
	log.Info().Dur("waited", time.Since(start)).Msg("weather backend reachable")
}
