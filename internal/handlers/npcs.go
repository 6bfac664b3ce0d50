package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/npc-engine/internal/sim"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/schedule"
)

// NPCListResponse is returned by GET /v1/npcs.
type NPCListResponse struct {
	NPCs  []actor.NPC `json:"npcs"`
	Clock int64       `json:"clock"`
}

// ScheduleResponse is the NPC's routine for the current day.
type ScheduleResponse struct {
	NPCID        string                 `json:"npc_id"`
	Day          int                    `json:"day"`
	Entries      []schedule.Entry       `json:"entries"`
	Appointments []schedule.Appointment `json:"appointments"`
}

// RelationshipView flattens one outgoing relationship.
type RelationshipView struct {
	NPCID string `json:"npc_id"`
	Name  string `json:"name"`
	Value int    `json:"value"`
	Type  string `json:"type"`
}

// AppointmentRequest books a special appointment.
type AppointmentRequest struct {
	Location  string `json:"location"`
	Activity  string `json:"activity"`
	StartTime int64  `json:"start_time"`
	EndTime   *int64 `json:"end_time,omitempty"`
}

// NPCHandler serves read access to NPCs and their schedules.
type NPCHandler struct {
	sim    *sim.Simulation
	logger *slog.Logger
}

func NewNPCHandler(s *sim.Simulation, logger *slog.Logger) *NPCHandler {
	return &NPCHandler{sim: s, logger: logger}
}

// ServeHTTP routes:
//
//	GET    /v1/npcs
//	GET    /v1/npcs/{id}
//	GET    /v1/npcs/{id}/activity
//	GET    /v1/npcs/{id}/relationships
//	GET    /v1/npcs/{id}/schedule
//	GET    /v1/npcs/{id}/memory
//	POST   /v1/npcs/{id}/appointments
//	DELETE /v1/npcs/{id}/appointments/{appointmentID}
func (h *NPCHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path)
	if len(parts) < 2 || parts[0] != "v1" || parts[1] != "npcs" {
		writeError(w, h.logger, http.StatusNotFound, "Not found.")
		return
	}

	if len(parts) == 2 {
		if r.Method != http.MethodGet {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, NPCListResponse{NPCs: h.sim.NPCs(), Clock: h.sim.Clock()})
		return
	}

	npcID := parts[2]
	npc, ok := h.sim.NPC(npcID)
	if !ok {
		writeError(w, h.logger, http.StatusNotFound, "NPC not found.")
		return
	}

	if len(parts) >= 4 && parts[3] == "appointments" {
		h.handleAppointments(w, r, npcID, parts[4:])
		return
	}

	if r.Method != http.MethodGet {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	if len(parts) == 3 {
		writeJSON(w, h.logger, http.StatusOK, npc)
		return
	}
	if len(parts) != 4 {
		writeError(w, h.logger, http.StatusNotFound, "Not found.")
		return
	}

	switch parts[3] {
	case "activity":
		slot, _ := h.sim.CurrentActivity(npcID)
		writeJSON(w, h.logger, http.StatusOK, slot)
	case "relationships":
		h.handleRelationships(w, npcID)
	case "schedule":
		entries, _ := h.sim.DaySchedule(npcID)
		tuning := h.sim.Tuning()
		writeJSON(w, h.logger, http.StatusOK, ScheduleResponse{
			NPCID:        npcID,
			Day:          tuning.Clock.DayOfWeek(h.sim.Clock()),
			Entries:      entries,
			Appointments: h.sim.Appointments(npcID),
		})
	case "memory":
		mem, ok := h.sim.Memory(npcID)
		if !ok {
			writeError(w, h.logger, http.StatusNotFound, "NPC has no memory of the player.")
			return
		}
		writeJSON(w, h.logger, http.StatusOK, mem)
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found.")
	}
}

func (h *NPCHandler) handleRelationships(w http.ResponseWriter, npcID string) {
	rels, _ := h.sim.Relationships(npcID)
	out := make([]RelationshipView, 0, len(rels))
	for _, rel := range rels {
		view := RelationshipView{
			Value: rel.Record.Value,
			Type:  rel.Record.Type.String(),
		}
		if rel.NPC != nil {
			view.NPCID = rel.NPC.ID
			view.Name = rel.NPC.Name
		}
		out = append(out, view)
	}
	writeJSON(w, h.logger, http.StatusOK, out)
}

func (h *NPCHandler) handleAppointments(w http.ResponseWriter, r *http.Request, npcID string, rest []string) {
	switch {
	case r.Method == http.MethodPost && len(rest) == 0:
		var req AppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.Warn("Invalid appointment body", "error", err)
			writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'location' and 'start_time'.")
			return
		}
		appt, err := h.sim.ScheduleAppointment(npcID, req.Location, req.Activity, req.StartTime, req.EndTime)
		if errors.Is(err, sim.ErrInvalidAppointment) {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid appointment.")
			return
		}
		if err != nil {
			h.logger.Error("Failed to schedule appointment", "error", err, "npc_id", npcID)
			writeError(w, h.logger, http.StatusInternalServerError, "Failed to schedule appointment.")
			return
		}
		h.logger.Info("Appointment scheduled", "npc_id", npcID, "appointment_id", appt.ID, "location", appt.Location)
		writeJSON(w, h.logger, http.StatusCreated, appt)

	case r.Method == http.MethodDelete && len(rest) == 1:
		if !h.sim.CancelAppointment(npcID, rest[0]) {
			writeError(w, h.logger, http.StatusNotFound, "Appointment not found.")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodGet && len(rest) == 0:
		writeJSON(w, h.logger, http.StatusOK, h.sim.Appointments(npcID))

	default:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed.")
	}
}
