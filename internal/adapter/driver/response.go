package driver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/alorle/epg-manager/internal/failure"
)

// errorResponse represents a JSON error response for transport and technical failures.
type errorResponse struct {
	Error string `json:"error"`
}

// failureResponse carries a domain failure verbatim.
type failureResponse struct {
	MessageKey string   `json:"messageKey"`
	Arguments  []string `json:"arguments"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps a service error to a response. Business failures
// become 400 and not-found failures 404, both keeping their message key and
// arguments. Anything else is logged and hidden behind a 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var business *failure.BusinessError
	if errors.As(err, &business) {
		writeJSON(w, http.StatusBadRequest, failureResponse{MessageKey: business.MessageKey, Arguments: business.Arguments})
		return
	}

	var notFound *failure.ResourceNotFoundError
	if errors.As(err, &notFound) {
		writeJSON(w, http.StatusNotFound, failureResponse{MessageKey: notFound.MessageKey, Arguments: notFound.Arguments})
		return
	}

	logger.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// decodeJSON reads the request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
