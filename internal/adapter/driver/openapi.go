package driver

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	nethttpmiddleware "github.com/oapi-codegen/nethttp-middleware"
)

//go:embed openapi/openapi.yaml
var openAPIDocument []byte

// LoadOpenAPI parses and validates the embedded API description.
func LoadOpenAPI(ctx context.Context) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(openAPIDocument)
	if err != nil {
		return nil, fmt.Errorf("loading OpenAPI document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validating OpenAPI document: %w", err)
	}

	// Match requests on path only, whatever host the service is reached through.
	doc.Servers = nil

	return doc, nil
}

// requestValidator rejects requests whose parameters or bodies do not match
// the document's types. Required fields are deliberately not declared there,
// so missing fields reach the domain rules and get their specific messages.
func requestValidator(doc *openapi3.T) func(http.Handler) http.Handler {
	return nethttpmiddleware.OapiRequestValidatorWithOptions(doc, &nethttpmiddleware.Options{
		Options: openapi3filter.Options{
			ExcludeResponseBody: true,
		},
		ErrorHandler: func(w http.ResponseWriter, message string, statusCode int) {
			writeError(w, statusCode, message)
		},
		SilenceServersWarning: true,
	})
}

// OpenAPIHTTPHandler serves the API description as JSON.
type OpenAPIHTTPHandler struct {
	doc *openapi3.T
}

// NewOpenAPIHTTPHandler creates a handler serving doc.
func NewOpenAPIHTTPHandler(doc *openapi3.T) *OpenAPIHTTPHandler {
	return &OpenAPIHTTPHandler{doc: doc}
}

// ServeHTTP handles GET /epg/api/openapi.json
func (h *OpenAPIHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.doc)
}
