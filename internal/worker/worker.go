package worker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/npc-engine/internal/services/events"
	"github.com/jwebster45206/npc-engine/internal/services/queue"
	"github.com/jwebster45206/npc-engine/internal/sim"
	queuePkg "github.com/jwebster45206/npc-engine/pkg/queue"
	"github.com/jwebster45206/npc-engine/pkg/storage"
	"github.com/redis/go-redis/v9"
)

const (
	workerTimeout = 5 * time.Second
	lockTTL       = 30 * time.Second
)

// releaseScript deletes the lock only if this worker still owns it.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Worker processes requests from the clock queue
type Worker struct {
	id          string
	queue       *queue.ClockQueue
	store       storage.Storage
	broadcaster *events.Broadcaster
	redisClient *redis.Client
	log         *slog.Logger
	ctx         context.Context
	cancel      context.CancelFunc

	mu     sync.RWMutex
	worlds map[uuid.UUID]*sim.Simulation
}

// New creates a new worker instance
func New(q *queue.ClockQueue, store storage.Storage, redisClient *redis.Client, log *slog.Logger, workerID string) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	if workerID == "" {
		workerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Worker{
		id:          workerID,
		queue:       q,
		store:       store,
		broadcaster: events.NewBroadcaster(redisClient, log),
		redisClient: redisClient,
		log:         log.With("worker_id", workerID),
		ctx:         ctx,
		cancel:      cancel,
		worlds:      make(map[uuid.UUID]*sim.Simulation),
	}
}

// Register makes a simulation available to queued requests.
func (w *Worker) Register(s *sim.Simulation) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.worlds[s.WorldID()] = s
}

func (w *Worker) world(id uuid.UUID) (*sim.Simulation, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.worlds[id]
	return s, ok
}

// Start begins processing requests from the queue
func (w *Worker) Start() error {
	w.log.Info("Worker starting")

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info("Worker shutting down")
			return nil
		default:
			if err := w.processNextRequest(); err != nil {
				w.log.Error("Error processing request", "error", err)
				// Continue processing even on error
				select {
				case <-w.ctx.Done():
				case <-time.After(time.Second):
				}
			}
		}
	}
}

// Stop gracefully shuts down the worker
func (w *Worker) Stop() {
	w.log.Info("Worker stop requested")
	w.cancel()
}

// processNextRequest pulls the next request from the queue and processes it
func (w *Worker) processNextRequest() error {
	req, err := w.queue.BlockingDequeueRequest(w.ctx, workerTimeout)
	if err != nil {
		return fmt.Errorf("failed to dequeue request: %w", err)
	}
	if req == nil {
		// Queue is empty or timeout occurred - this is normal
		return nil
	}

	w.log.Info("Received request from queue",
		"request_id", req.RequestID,
		"type", req.Type,
		"world_id", req.WorldID.String(),
	)

	locked, err := w.acquireWorldLock(req.WorldID)
	if err != nil {
		return fmt.Errorf("failed to acquire world lock: %w", err)
	}
	if !locked {
		// Another worker holds this world; put the request back at the end
		w.log.Info("World already locked, re-queueing request",
			"request_id", req.RequestID,
			"world_id", req.WorldID.String(),
		)
		if err := w.queue.EnqueueRequest(w.ctx, req); err != nil {
			return fmt.Errorf("failed to re-queue request: %w", err)
		}
		return nil
	}

	defer w.releaseWorldLock(req.WorldID)
	return w.processRequest(req)
}

func lockKey(worldID uuid.UUID) string {
	return fmt.Sprintf("world-lock:%s", worldID.String())
}

// acquireWorldLock attempts to acquire a lock for a world.
// Returns true if lock was acquired, false if already locked
func (w *Worker) acquireWorldLock(worldID uuid.UUID) (bool, error) {
	return w.redisClient.SetNX(w.ctx, lockKey(worldID), w.id, lockTTL).Result()
}

// releaseWorldLock releases the lock for a world
func (w *Worker) releaseWorldLock(worldID uuid.UUID) {
	if err := releaseScript.Run(context.Background(), w.redisClient, []string{lockKey(worldID)}, w.id).Err(); err != nil {
		w.log.Error("Failed to release world lock", "error", err, "world_id", worldID.String())
	}
}

// processRequest applies a request to its world and saves a snapshot.
func (w *Worker) processRequest(req *queuePkg.Request) error {
	start := time.Now()

	if err := w.broadcaster.PublishRequestProcessing(w.ctx, req.WorldID, req.RequestID, string(req.Type)); err != nil {
		w.log.Error("Failed to publish processing event", "error", err)
	}

	result, err := w.apply(req)
	if err != nil {
		w.log.Error("Request failed",
			"error", err,
			"request_id", req.RequestID,
			"world_id", req.WorldID.String(),
		)
		if pubErr := w.broadcaster.PublishRequestFailed(w.ctx, req.WorldID, req.RequestID, err.Error()); pubErr != nil {
			w.log.Error("Failed to publish failure event", "error", pubErr)
		}
		return err
	}

	result["duration_ms"] = time.Since(start).Milliseconds()
	w.log.Info("Request processed successfully",
		"request_id", req.RequestID,
		"type", req.Type,
		"duration_ms", result["duration_ms"],
	)

	if err := w.broadcaster.PublishRequestCompleted(w.ctx, req.WorldID, req.RequestID, result); err != nil {
		w.log.Error("Failed to publish completion event", "error", err)
	}
	return nil
}

func (w *Worker) apply(req *queuePkg.Request) (map[string]interface{}, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	s, ok := w.world(req.WorldID)
	if !ok {
		return nil, fmt.Errorf("world %s is not loaded by this worker", req.WorldID)
	}

	result := map[string]interface{}{}
	if req.Type == queuePkg.RequestTypeAdvance {
		report, err := s.Advance(w.ctx, req.Minutes)
		if err != nil {
			return nil, fmt.Errorf("failed to advance world: %w", err)
		}
		result["from"] = report.From
		result["to"] = report.To
		result["moves"] = len(report.Moves)
		result["interactions"] = len(report.Interactions)
		result["new_relationships"] = report.NewRelationships
	}

	if err := s.Save(w.ctx, w.store); err != nil {
		return nil, err
	}
	result["clock"] = s.Clock()
	return result, nil
}
