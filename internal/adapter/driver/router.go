package driver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alorle/epg-manager/internal/application"
	"github.com/alorle/epg-manager/logging"
	"github.com/alorle/epg-manager/metrics"
)

// apiPrefix is the path prefix of every request validated against the
// OpenAPI document.
const apiPrefix = "/epg/api/"

// Services groups the application services exposed over HTTP.
type Services struct {
	Channels *application.ChannelService
	Programs *application.ProgramService
	Guide    *application.GuideService
	Health   *application.HealthService
}

// NewRouter builds the complete HTTP handler: the validated EPG API, health
// and metrics endpoints, wrapped in access logging and instrumentation.
func NewRouter(ctx context.Context, services Services, logger *slog.Logger) (http.Handler, error) {
	doc, err := LoadOpenAPI(ctx)
	if err != nil {
		return nil, err
	}

	api := http.NewServeMux()
	NewChannelHTTPHandler(services.Channels, logger).RegisterRoutes(api)
	NewProgramHTTPHandler(services.Programs, logger).RegisterRoutes(api)
	api.Handle("GET /epg/api/guide.xml", NewGuideHTTPHandler(services.Guide, logger))
	api.Handle("GET /epg/api/openapi.json", NewOpenAPIHTTPHandler(doc))

	root := http.NewServeMux()
	root.Handle(apiPrefix, requestValidator(doc)(api))
	root.Handle("GET /health", NewHealthHTTPHandler(services.Health))
	root.Handle("GET /metrics", promhttp.Handler())

	return metrics.Middleware(logging.Middleware(logger, root)), nil
}
