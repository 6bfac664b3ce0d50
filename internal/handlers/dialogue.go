package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/npc-engine/internal/sim"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
)

// SelectRequest picks one of the responses offered by the current node.
type SelectRequest struct {
	ResponseID string `json:"response_id"`
}

// EndResponse reports whether a conversation was open.
type EndResponse struct {
	Ended bool `json:"ended"`
}

// DialogueHandler drives player conversations.
type DialogueHandler struct {
	sim     *sim.Simulation
	timeout time.Duration
	logger  *slog.Logger
}

// NewDialogueHandler bounds each response selection by timeout, which covers
// narrative generation.
func NewDialogueHandler(s *sim.Simulation, timeout time.Duration, logger *slog.Logger) *DialogueHandler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DialogueHandler{sim: s, timeout: timeout, logger: logger}
}

// ServeHTTP routes:
//
//	GET  /v1/dialogue/{npc}
//	POST /v1/dialogue/{npc}/start
//	POST /v1/dialogue/{npc}/select
//	POST /v1/dialogue/{npc}/end
func (h *DialogueHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path)
	if len(parts) < 3 || len(parts) > 4 || parts[0] != "v1" || parts[1] != "dialogue" {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid path. Expected /v1/dialogue/{npc}/{action}")
		return
	}
	npcID := parts[2]

	if len(parts) == 3 {
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
			return
		}
		conv, ok := h.sim.Conversation(npcID)
		if !ok {
			writeError(w, h.logger, http.StatusNotFound, "No active conversation.")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, conv)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	switch parts[3] {
	case "start":
		result, err := h.sim.StartConversation(npcID)
		if err != nil {
			h.writeDialogueError(w, npcID, err)
			return
		}
		h.logger.Info("Conversation started", "npc_id", npcID, "node_id", result.NodeID)
		writeJSON(w, h.logger, http.StatusOK, result)

	case "select":
		var req SelectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ResponseID == "" {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'response_id' field.")
			return
		}
		ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
		defer cancel()
		result, err := h.sim.SelectResponse(ctx, npcID, req.ResponseID)
		if err != nil {
			h.writeDialogueError(w, npcID, err)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, result)

	case "end":
		writeJSON(w, h.logger, http.StatusOK, EndResponse{Ended: h.sim.EndConversation(npcID)})

	default:
		writeError(w, h.logger, http.StatusNotFound, "Unknown dialogue action.")
	}
}

func (h *DialogueHandler) writeDialogueError(w http.ResponseWriter, npcID string, err error) {
	switch {
	case errors.Is(err, sim.ErrNPCNotFound):
		writeError(w, h.logger, http.StatusNotFound, "NPC not found.")
	case errors.Is(err, dialogue.ErrNoActiveConversation):
		writeError(w, h.logger, http.StatusConflict, "No active conversation.")
	case errors.Is(err, dialogue.ErrResponseNotFound):
		writeError(w, h.logger, http.StatusBadRequest, "Response not found.")
	case errors.Is(err, dialogue.ErrResponseUnavailable):
		writeError(w, h.logger, http.StatusForbidden, "Response requirements not met.")
	default:
		h.logger.Error("Dialogue request failed", "error", err, "npc_id", npcID)
		writeError(w, h.logger, http.StatusInternalServerError, "Dialogue request failed.")
	}
}
