// Package api provides the dashboard's HTTP API.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/weatherdash/weatherdash/internal/api/handler"
	"github.com/weatherdash/weatherdash/internal/api/middleware"
	"github.com/weatherdash/weatherdash/internal/api/models"
	"github.com/weatherdash/weatherdash/internal/api/response"
	"github.com/weatherdash/weatherdash/internal/dashboard"
	"github.com/weatherdash/weatherdash/internal/provider/resilience"
	"github.com/weatherdash/weatherdash/internal/weather"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version   string
	BuildTime string
	Logger    zerolog.Logger

	// Metrics records OpenTelemetry HTTP metrics when set.
	Metrics *middleware.Metrics
	// MetricsHandler serves GET /metrics when set.
	MetricsHandler http.Handler

	Store     *dashboard.Store
	Preset    []weather.NewLocation
	Registry  *resilience.Registry
	Scheduler handler.SchedulerStatus
}

// NewRouter creates a chi router with all dashboard routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing())
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware())
	}
	r.Use(middleware.Logger(cfg.Logger))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, r, "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, r, models.NewProblem(models.ProblemTypeValidation, "Method not allowed", http.StatusMethodNotAllowed, "").
			WithDetail(r.Method+" is not supported on "+r.URL.Path))
	})

	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.Registry, cfg.Scheduler)
	dashHandler := handler.NewDashboardHandler(cfg.Store, cfg.Preset, cfg.Logger)

	triggerRateLimit := middleware.RateLimitByIP(middleware.TriggerRateLimit)
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)

	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/ops/health", opsHandler.HealthCheck)

		r.Group(func(r chi.Router) {
			r.Use(standardRateLimit)
			r.Use(middleware.RequireJSON)

			r.Get("/state", dashHandler.GetState)
			r.Post("/health:refresh", dashHandler.RefreshHealth)
			r.Post("/locations", dashHandler.CreateLocation)
			r.Put("/selection", dashHandler.Select)
			r.Post("/hourly:reload", dashHandler.ReloadHourly)
			r.Get("/hourly/chart.svg", dashHandler.HourlyChart)

			// These fan out to the backend.
			r.With(triggerRateLimit).Post("/locations:refresh", dashHandler.RefreshLocations)
			r.With(triggerRateLimit).Post("/presets:seed", dashHandler.SeedPreset)
			r.With(triggerRateLimit).Post("/ingest", dashHandler.Ingest)
		})
	})

	return r
}
