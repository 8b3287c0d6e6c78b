package driver

import (
	"bytes"
	"log/slog"
	"net/http"

	"github.com/alorle/epg-manager/internal/application"
)

// GuideHTTPHandler serves the whole schedule as an XMLTV document.
type GuideHTTPHandler struct {
	service *application.GuideService
	logger  *slog.Logger
}

// NewGuideHTTPHandler creates a new HTTP handler for the guide export.
func NewGuideHTTPHandler(service *application.GuideService, logger *slog.Logger) *GuideHTTPHandler {
	return &GuideHTTPHandler{service: service, logger: logger}
}

// ServeHTTP handles GET /epg/api/guide.xml
func (h *GuideHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	guide, err := h.service.BuildGuide(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	// Render fully before writing so an encoding failure can still become a 500.
	var buf bytes.Buffer
	if err := guide.WriteXMLTV(&buf); err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
