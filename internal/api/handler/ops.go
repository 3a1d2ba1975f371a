// Package handler provides HTTP handlers for the dashboard API.
package handler

import (
	"net/http"
	"time"

	"github.com/weatherdash/weatherdash/internal/api/models"
	"github.com/weatherdash/weatherdash/internal/api/response"
	"github.com/weatherdash/weatherdash/internal/provider/resilience"
	"github.com/weatherdash/weatherdash/internal/scheduler"
)

// SchedulerStatus reports the state of a scheduled job.
type SchedulerStatus interface {
	Status() scheduler.Status
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	registry  *resilience.Registry
	scheduler SchedulerStatus
}

// NewOpsHandler creates a new OpsHandler. registry and sched may be nil.
func NewOpsHandler(version, buildTime string, registry *resilience.Registry, sched SchedulerStatus) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		registry:  registry,
		scheduler: sched,
	}
}

// HealthCheck handles GET /v1/ops/health. The process is live whenever it
// answers; an open or half-open backend circuit reports DEGRADED.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status:    models.HealthStatusOK,
		Time:      models.Timestamp(time.Now()),
		Version:   h.version,
		BuildTime: h.buildTime,
	}

	if h.registry != nil {
		for _, p := range h.registry.GetAllHealth() {
			status := providerStatus(p)
			if status.Status != models.HealthStatusOK {
				health.Status = models.HealthStatusDegraded
			}
			health.Providers = append(health.Providers, status)
		}
	}
	if h.scheduler != nil {
		health.Scheduler = h.scheduler.Status()
	}

	response.JSON(w, r, http.StatusOK, health)
}

func providerStatus(p *resilience.ProviderHealth) models.ProviderStatus {
	status := models.ProviderStatus{
		Provider:            p.Name,
		Status:              models.HealthStatusOK,
		CircuitState:        p.CircuitState.String(),
		ConsecutiveFailures: p.Counts.ConsecutiveFailures,
		LastError:           p.LastError,
	}
	switch {
	case p.IsDegraded():
		status.Status = models.HealthStatusDegraded
	case !p.IsHealthy():
		status.Status = models.HealthStatusFail
	}
	if p.LastSuccessAt != nil {
		status.LastSuccessAt = models.NewTimestamp(*p.LastSuccessAt)
	}
	if p.LastFailureAt != nil {
		status.LastFailureAt = models.NewTimestamp(*p.LastFailureAt)
	}
	return status
}
