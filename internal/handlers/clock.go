package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/npc-engine/internal/sim"
	"github.com/jwebster45206/npc-engine/pkg/queue"
)

// Enqueuer accepts clock-advance requests.
type Enqueuer interface {
	EnqueueRequest(ctx context.Context, req *queue.Request) error
}

// QueuedNotifier announces accepted requests to event subscribers.
type QueuedNotifier interface {
	PublishRequestQueued(ctx context.Context, worldID uuid.UUID, requestID string, requestType string) error
}

// AdvanceRequest asks for the clock to move forward.
type AdvanceRequest struct {
	Minutes int64 `json:"minutes"`
}

// AdvanceResponse acknowledges a queued advance.
type AdvanceResponse struct {
	RequestID string `json:"request_id"`
	WorldID   string `json:"world_id"`
	Minutes   int64  `json:"minutes"`
	Status    string `json:"status"`
}

// ClockResponse decomposes the current world time.
type ClockResponse struct {
	Clock int64 `json:"clock"`
	Hour  int   `json:"hour"`
	Day   int   `json:"day"`
}

type ClockHandler struct {
	sim      *sim.Simulation
	queue    Enqueuer
	notifier QueuedNotifier
	logger   *slog.Logger
}

func NewClockHandler(s *sim.Simulation, q Enqueuer, logger *slog.Logger) *ClockHandler {
	return &ClockHandler{sim: s, queue: q, logger: logger}
}

// WithNotifier returns the handler for method chaining
func (h *ClockHandler) WithNotifier(n QueuedNotifier) *ClockHandler {
	h.notifier = n
	return h
}

// ServeHTTP handles GET /v1/clock and POST /v1/clock/advance
func (h *ClockHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	parts := splitPath(r.URL.Path)
	switch {
	case len(parts) == 2 && r.Method == http.MethodGet:
		now := h.sim.Clock()
		c := h.sim.Tuning().Clock
		writeJSON(w, h.logger, http.StatusOK, ClockResponse{
			Clock: now,
			Hour:  c.HourOfDay(now),
			Day:   c.DayOfWeek(now),
		})
	case len(parts) == 3 && parts[2] == "advance" && r.Method == http.MethodPost:
		h.handleAdvance(w, r)
	case len(parts) == 2 || (len(parts) == 3 && parts[2] == "advance"):
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed.")
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found.")
	}
}

func (h *ClockHandler) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var body AdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'minutes' field.")
		return
	}

	req := queue.NewAdvanceRequest(h.sim.WorldID(), body.Minutes)
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.queue.EnqueueRequest(r.Context(), req); err != nil {
		if errors.Is(err, queue.ErrInvalidRequest) {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("Failed to enqueue clock advance", "error", err)
		writeError(w, h.logger, http.StatusServiceUnavailable, "Failed to queue clock advance.")
		return
	}

	if h.notifier != nil {
		if err := h.notifier.PublishRequestQueued(r.Context(), req.WorldID, req.RequestID, string(req.Type)); err != nil {
			h.logger.Warn("Failed to publish queued event", "error", err)
		}
	}

	h.logger.Info("Clock advance queued",
		"request_id", req.RequestID,
		"world_id", req.WorldID.String(),
		"minutes", req.Minutes)

	writeJSON(w, h.logger, http.StatusAccepted, AdvanceResponse{
		RequestID: req.RequestID,
		WorldID:   req.WorldID.String(),
		Minutes:   req.Minutes,
		Status:    "queued",
	})
}
