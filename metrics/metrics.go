package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/alorle/epg-manager/internal/failure"
)

var (
	// HTTPRequests counts served requests by method, matched route and status code
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "epg_http_requests_total",
		Help: "Total number of HTTP requests served",
	}, []string{"method", "route", "status"})

	// HTTPRequestDuration observes request latency by method and matched route
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "epg_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// ChannelsCreated counts successfully registered channels
	ChannelsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "epg_channels_created_total",
		Help: "Total number of channels created",
	})

	// ProgramsWritten counts program writes by operation (create, update, delete)
	ProgramsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "epg_programs_written_total",
		Help: "Total number of program writes",
	}, []string{"operation"})

	// Rejections counts requests refused by a domain rule, by failure kind
	Rejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "epg_rejections_total",
		Help: "Total number of requests rejected by business rules",
	}, []string{"kind"})

	// HealthCheckFailures tracks health check failures
	HealthCheckFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "epg_health_check_failures_total",
		Help: "Total number of health check failures",
	})
)

// Program write operations
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
)

// RecordChannelCreated increments the channel creation counter
func RecordChannelCreated() {
	ChannelsCreated.Inc()
}

// RecordProgramWritten increments the program write counter for an operation
func RecordProgramWritten(operation string) {
	ProgramsWritten.WithLabelValues(operation).Inc()
}

// RecordRejection counts err when it is a domain failure; technical errors are ignored
func RecordRejection(err error) {
	switch {
	case failure.IsBusiness(err):
		Rejections.WithLabelValues("business").Inc()
	case failure.IsNotFound(err):
		Rejections.WithLabelValues("not_found").Inc()
	}
}

// RecordHealthCheckFailure increments the health check failure counter
func RecordHealthCheckFailure() {
	HealthCheckFailures.Inc()
}
