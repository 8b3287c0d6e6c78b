package driver

import (
	"log/slog"
	"net/http"

	"github.com/alorle/epg-manager/internal/application"
	"github.com/alorle/epg-manager/internal/channel"
)

// ChannelHTTPHandler handles HTTP requests for the channel registry.
type ChannelHTTPHandler struct {
	service *application.ChannelService
	logger  *slog.Logger
}

// NewChannelHTTPHandler creates a new HTTP handler for channels.
func NewChannelHTTPHandler(service *application.ChannelService, logger *slog.Logger) *ChannelHTTPHandler {
	return &ChannelHTTPHandler{service: service, logger: logger}
}

// channelRequest represents the JSON body for creating a channel.
type channelRequest struct {
	Name     *string `json:"name"`
	Position *int    `json:"position"`
	Category *string `json:"category"`
}

// channelResponse represents a channel in JSON format.
type channelResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
	Category string `json:"category"`
}

// RegisterRoutes adds the channel endpoints to mux.
func (h *ChannelHTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /epg/api/channels/create", h.handleCreate)
	mux.HandleFunc("GET /epg/api/channels", h.handleList)
}

func toChannelResponse(ch channel.Channel) channelResponse {
	return channelResponse{
		ID:       ch.ID(),
		Name:     ch.Name(),
		Position: ch.Position(),
		Category: ch.Category(),
	}
}

func (req channelRequest) toDraft() channel.Draft {
	var d channel.Draft
	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Category != nil {
		d.Category = *req.Category
	}
	d.Position = req.Position
	return d
}

// handleCreate handles POST /epg/api/channels/create
func (h *ChannelHTTPHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req channelRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ch, err := h.service.CreateChannel(r.Context(), req.toDraft())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toChannelResponse(ch))
}

// handleList handles GET /epg/api/channels
func (h *ChannelHTTPHandler) handleList(w http.ResponseWriter, r *http.Request) {
	channels, err := h.service.GetAllChannels(r.Context())
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}

	resp := make([]channelResponse, 0, len(channels))
	for _, ch := range channels {
		resp = append(resp, toChannelResponse(ch))
	}

	writeJSON(w, http.StatusOK, resp)
}
