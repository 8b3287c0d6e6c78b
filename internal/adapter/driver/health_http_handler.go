package driver

import (
	"context"
	"net/http"
	"time"

	"github.com/alorle/epg-manager/internal/application"
)

// healthCheckTimeout bounds the gateway ping so a hung database cannot stall probes.
const healthCheckTimeout = 2 * time.Second

// HealthHTTPHandler serves GET /health.
type HealthHTTPHandler struct {
	service *application.HealthService
}

func NewHealthHTTPHandler(service *application.HealthService) *HealthHTTPHandler {
	return &HealthHTTPHandler{service: service}
}

type healthResponse struct {
	Status    string `json:"status"`
	DB        string `json:"db"`
	DBError   string `json:"db_error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

func (h *HealthHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	started := time.Now()
	report := h.service.Check(ctx)

	code := http.StatusOK
	if !report.Healthy() {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, code, healthResponse{
		Status:    report.Status,
		DB:        report.DB.Status,
		DBError:   report.DB.Error,
		LatencyMS: time.Since(started).Milliseconds(),
	})
}
