package application

import (
	"context"
	"log/slog"

	"github.com/alorle/epg-manager/internal/port/driven"
	"github.com/alorle/epg-manager/logging"
	"github.com/alorle/epg-manager/metrics"
)

// HealthService orchestrates health checks for the application and its dependencies.
type HealthService struct {
	db     driven.ChannelRepository
	logger *slog.Logger
}

// NewHealthService creates a new health check service.
func NewHealthService(db driven.ChannelRepository, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &HealthService{
		db:     db,
		logger: logger,
	}
}

// ComponentHealth represents the health status of a single component.
type ComponentHealth struct {
	Status string // "ok" or "error"
	Error  string // empty if status is "ok", otherwise contains error message
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status string          // "ok" if all components are healthy, "degraded" otherwise
	DB     ComponentHealth // storage gateway health
}

// Healthy reports whether every component is ok.
func (h HealthStatus) Healthy() bool {
	return h.Status == "ok"
}

// Check performs health checks on all dependencies.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status: "ok",
		DB:     ComponentHealth{Status: "ok"},
	}

	if err := s.db.Ping(ctx); err != nil {
		status.DB = ComponentHealth{
			Status: "error",
			Error:  err.Error(),
		}
		status.Status = "degraded"

		metrics.RecordHealthCheckFailure()
		s.logger.Warn("health check failed", "event", logging.EventHealthCheckFails, "error", err)
	}

	return status
}
