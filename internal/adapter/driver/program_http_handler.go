package driver

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/oapi-codegen/runtime"

	"github.com/alorle/epg-manager/internal/application"
	"github.com/alorle/epg-manager/internal/program"
)

// ProgramHTTPHandler handles HTTP requests for the program scheduler.
type ProgramHTTPHandler struct {
	service *application.ProgramService
	logger  *slog.Logger
}

// NewProgramHTTPHandler creates a new HTTP handler for programs.
func NewProgramHTTPHandler(service *application.ProgramService, logger *slog.Logger) *ProgramHTTPHandler {
	return &ProgramHTTPHandler{service: service, logger: logger}
}

// programRequest represents the JSON body for creating or updating a program.
// Every field is optional on the wire; presence rules live in the domain.
type programRequest struct {
	ChannelID   *string `json:"channelId"`
	ImageURL    *string `json:"imageUrl"`
	Title       *string `json:"title"`
	Description *string `json:"description"`
	StartTime   *string `json:"startTime"`
	EndTime     *string `json:"endTime"`
}

// programResponse represents a program in JSON format.
type programResponse struct {
	ID          string `json:"id"`
	ChannelID   string `json:"channelId"`
	ImageURL    string `json:"imageUrl"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
}

// RegisterRoutes adds the program endpoints to mux.
func (h *ProgramHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /epg/api/programs/create", h.handleCreate)
	mux.HandleFunc("GET /epg/api/programs/channelId/{channelId}", h.handleListByChannel)
	mux.HandleFunc("GET /epg/api/programs/programId/{id}", h.handleGet)
	mux.HandleFunc("PUT /epg/api/programs/programId/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /epg/api/programs/programId/{id}", h.handleDelete)
}

func toProgramResponse(p program.Program) programResponse {
	return programResponse{
		ID:          p.ID(),
		ChannelID:   p.ChannelID(),
		ImageURL:    p.ImageURL(),
		Title:       p.Title(),
		Description: p.Description(),
		StartTime:   program.FormatTime(p.StartTime()),
		EndTime:     program.FormatTime(p.EndTime()),
	}
}

func toProgramResponses(programs []program.Program) []programResponse {
	resp := make([]programResponse, 0, len(programs))
	for _, p := range programs {
		resp = append(resp, toProgramResponse(p))
	}
	return resp
}

func (req programRequest) toPatch() (program.Patch, error) {
	patch := program.Patch{
		ChannelID:   req.ChannelID,
		ImageURL:    req.ImageURL,
		Title:       req.Title,
		Description: req.Description,
	}

	var err error
	if patch.StartTime, err = parseOptionalTime("startTime", req.StartTime); err != nil {
		return program.Patch{}, err
	}
	if patch.EndTime, err = parseOptionalTime("endTime", req.EndTime); err != nil {
		return program.Patch{}, err
	}
	return patch, nil
}

// parseOptionalTime treats nil and empty values as absent.
func parseOptionalTime(field string, value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := program.ParseTime(*value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", field, err)
	}
	return &t, nil
}

// pathParam binds a required string path parameter.
func pathParam(r *http.Request, name string) (string, error) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, r.PathValue(name), &value, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return "", fmt.Errorf("invalid %s: %w", name, err)
	}
	return value, nil
}

func (h *ProgramHTTPHandler) decodePatch(w http.ResponseWriter, r *http.Request) (program.Patch, bool) {
	var req programRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return program.Patch{}, false
	}

	patch, err := req.toPatch()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return program.Patch{}, false
	}
	return patch, true
}

// handleCreate handles POST /epg/api/programs/create
func (h *ProgramHTTPHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	patch, ok := h.decodePatch(w, r)
	if !ok {
		return
	}

	p, err := h.service.CreateProgram(r.Context(), patch)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toProgramResponse(p))
}

// handleListByChannel handles GET /epg/api/programs/channelId/{channelId}
func (h *ProgramHTTPHandler) handleListByChannel(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathParam(r, "channelId")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	programs, err := h.service.GetAllProgramsByChannelID(r.Context(), channelID)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toProgramResponses(programs))
}

// handleGet handles GET /epg/api/programs/programId/{id}
func (h *ProgramHTTPHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.service.GetProgramByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toProgramResponse(p))
}

// handleUpdate handles PUT /epg/api/programs/programId/{id}
func (h *ProgramHTTPHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	patch, ok := h.decodePatch(w, r)
	if !ok {
		return
	}

	p, err := h.service.UpdateProgramByID(r.Context(), id, patch)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toProgramResponse(p))
}

// handleDelete handles DELETE /epg/api/programs/programId/{id}
func (h *ProgramHTTPHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	deleted, err := h.service.DeleteProgramByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if !deleted {
		writeServiceError(w, r, h.logger, program.NoProgramFound(id))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
