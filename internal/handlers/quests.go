package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/npc-engine/internal/sim"
)

// QuestListResponse maps quest IDs to who gave them and their status.
type QuestListResponse struct {
	Quests map[string]sim.QuestEntry `json:"quests"`
}

// QuestCompleteResponse names the NPC credited with the completed quest.
type QuestCompleteResponse struct {
	QuestID string `json:"quest_id"`
	NPCID   string `json:"npc_id"`
	Status  string `json:"status"`
}

type QuestHandler struct {
	sim    *sim.Simulation
	logger *slog.Logger
}

func NewQuestHandler(s *sim.Simulation, logger *slog.Logger) *QuestHandler {
	return &QuestHandler{sim: s, logger: logger}
}

// ServeHTTP handles:
//
//	GET  /v1/quests
//	POST /v1/quests/{id}/complete
func (h *QuestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path)
	switch {
	case len(parts) == 2 && parts[0] == "v1" && parts[1] == "quests":
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, QuestListResponse{Quests: h.sim.Quests()})

	case len(parts) == 4 && parts[0] == "v1" && parts[1] == "quests" && parts[3] == "complete":
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		npcID, err := h.sim.CompleteQuest(parts[2])
		if errors.Is(err, sim.ErrQuestNotInProgress) {
			writeError(w, h.logger, http.StatusConflict, "Quest is not in progress.")
			return
		}
		if err != nil {
			h.logger.Error("Failed to complete quest", "quest_id", parts[2], "error", err)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to complete quest.")
			return
		}
		h.logger.Info("Quest completed", "quest_id", parts[2], "npc_id", npcID)
		writeJSON(w, h.logger, http.StatusOK, QuestCompleteResponse{
			QuestID: parts[2],
			NPCID:   npcID,
			Status:  sim.QuestCompleted,
		})

	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found.")
	}
}
