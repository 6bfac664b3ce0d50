package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jwebster45206/npc-engine/internal/sim"
	"github.com/jwebster45206/npc-engine/pkg/interaction"
)

const defaultInteractionLimit = 10

// LocationInteractionsResponse lists visible interactions, newest first.
type LocationInteractionsResponse struct {
	LocationID   string               `json:"location_id"`
	Interactions []interaction.Result `json:"interactions"`
}

type LocationHandler struct {
	sim    *sim.Simulation
	logger *slog.Logger
}

func NewLocationHandler(s *sim.Simulation, logger *slog.Logger) *LocationHandler {
	return &LocationHandler{sim: s, logger: logger}
}

// ServeHTTP handles GET /v1/locations/{id}/interactions?limit=N
func (h *LocationHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	parts := splitPath(r.URL.Path)
	if len(parts) != 4 || parts[0] != "v1" || parts[1] != "locations" || parts[3] != "interactions" {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid path. Expected /v1/locations/{id}/interactions")
		return
	}

	limit := defaultInteractionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, h.logger, http.StatusBadRequest, "limit must be a non-negative integer.")
			return
		}
		limit = n
	}

	results := h.sim.LocationInteractions(parts[2], limit)
	if results == nil {
		results = []interaction.Result{}
	}
	writeJSON(w, h.logger, http.StatusOK, LocationInteractionsResponse{
		LocationID:   parts[2],
		Interactions: results,
	})
}
