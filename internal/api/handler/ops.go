// Package handler provides HTTP handlers for the locationapp API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/danisampedro/locationapp/internal/api/models"
	"github.com/danisampedro/locationapp/internal/api/response"
	"github.com/danisampedro/locationapp/internal/provider/resilience"
)

// Pinger checks a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsConfig configures the operational endpoints. DB and Providers are
// optional.
type OpsConfig struct {
	Version   string
	BuildTime string
	DB        Pinger
	Providers *resilience.Registry
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	db        Pinger
	providers *resilience.Registry
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(cfg OpsConfig) *OpsHandler {
	return &OpsHandler{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		db:        cfg.DB,
		providers: cfg.Providers,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, r, http.StatusOK, models.Health{
		Status:  models.HealthStatusOK,
		Time:    models.Timestamp(time.Now()),
		Version: h.version,
		Details: map[string]interface{}{
			"buildTime": h.buildTime,
		},
	})
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	db := h.database(r.Context())
	status := http.StatusOK
	if db.Status == models.HealthStatusFail {
		status = http.StatusServiceUnavailable
	}

	response.JSON(w, r, status, models.Health{
		Status: db.Status,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			db.Name: db.Status,
		},
	})
}

// SystemStatus handles GET /v1/ops/status - provider and subsystem status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	status := models.SystemStatus{
		Status:     models.HealthStatusOK,
		Time:       models.Timestamp(time.Now()),
		Subsystems: []models.SubsystemStatus{h.database(r.Context())},
		Providers:  []models.ProviderStatus{},
	}

	if h.providers != nil {
		for _, ph := range h.providers.Snapshot() {
			status.Providers = append(status.Providers, providerStatus(ph))
		}
	}

	for _, s := range status.Subsystems {
		if s.Status == models.HealthStatusFail {
			status.Status = models.HealthStatusFail
		}
	}
	if status.Status == models.HealthStatusOK {
		for _, p := range status.Providers {
			if p.Status != models.HealthStatusOK {
				status.Status = models.HealthStatusDegraded
			}
		}
	}

	response.JSON(w, r, http.StatusOK, status)
}

func (h *OpsHandler) database(ctx context.Context) models.SubsystemStatus {
	if h.db == nil {
		detail := "in-memory storage"
		return models.SubsystemStatus{Name: "storage", Status: models.HealthStatusOK, Detail: &detail}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		detail := err.Error()
		return models.SubsystemStatus{Name: "postgres", Status: models.HealthStatusFail, Detail: &detail}
	}
	return models.SubsystemStatus{Name: "postgres", Status: models.HealthStatusOK}
}

func providerStatus(ph resilience.ProviderHealth) models.ProviderStatus {
	ps := models.ProviderStatus{
		Provider:     ph.Name,
		Status:       models.HealthStatusOK,
		CircuitState: ph.State.String(),
	}
	switch {
	case ph.Degraded():
		ps.Status = models.HealthStatusDegraded
	case !ph.Healthy():
		ps.Status = models.HealthStatusFail
	}
	if ph.LastSuccessAt != nil {
		t := models.Timestamp(*ph.LastSuccessAt)
		ps.LastSuccessAt = &t
	}
	if ph.LastFailureAt != nil {
		t := models.Timestamp(*ph.LastFailureAt)
		ps.LastFailureAt = &t
	}
	if ph.LastError != "" {
		msg := ph.LastError
		ps.Message = &msg
	}
	return ps
}
