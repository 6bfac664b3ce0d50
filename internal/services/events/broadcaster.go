package events

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/npc-engine/pkg/interaction"
	"github.com/jwebster45206/npc-engine/pkg/schedule"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeRequestQueued     EventType = "request.queued"
	EventTypeRequestProcessing EventType = "request.processing"
	EventTypeRequestCompleted  EventType = "request.completed"
	EventTypeRequestFailed     EventType = "request.failed"
	EventTypeClockAdvanced     EventType = "clock.advanced"
	EventTypeNPCMoved          EventType = "npc.moved"
	EventTypeInteraction       EventType = "interaction.occurred"
)

// Event represents a generic event structure
type Event struct {
	Type      EventType              `json:"type"`
	RequestID string                 `json:"request_id,omitempty"`
	WorldID   string                 `json:"world_id,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Channel is the pub/sub channel carrying a world's events.
func Channel(worldID uuid.UUID) string {
	return fmt.Sprintf("world-events:%s", worldID.String())
}

// Broadcaster publishes events to Redis Pub/Sub for SSE distribution
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Subscribe opens a subscription to a world's channel. The caller closes it.
func (b *Broadcaster) Subscribe(ctx context.Context, worldID uuid.UUID) *redis.PubSub {
	return b.redisClient.Subscribe(ctx, Channel(worldID))
}

// PublishRequestQueued publishes a request.queued event
func (b *Broadcaster) PublishRequestQueued(ctx context.Context, worldID uuid.UUID, requestID string, requestType string) error {
	return b.publish(ctx, worldID, Event{
		Type:      EventTypeRequestQueued,
		RequestID: requestID,
		Data: map[string]interface{}{
			"status": "queued",
			"type":   requestType,
		},
	})
}

// PublishRequestProcessing publishes a request.processing event
func (b *Broadcaster) PublishRequestProcessing(ctx context.Context, worldID uuid.UUID, requestID string, requestType string) error {
	return b.publish(ctx, worldID, Event{
		Type:      EventTypeRequestProcessing,
		RequestID: requestID,
		Data: map[string]interface{}{
			"status": "processing",
			"type":   requestType,
		},
	})
}

// PublishRequestCompleted publishes a request.completed event
func (b *Broadcaster) PublishRequestCompleted(ctx context.Context, worldID uuid.UUID, requestID string, result map[string]interface{}) error {
	return b.publish(ctx, worldID, Event{
		Type:      EventTypeRequestCompleted,
		RequestID: requestID,
		Data: map[string]interface{}{
			"status": "completed",
			"result": result,
		},
	})
}

// PublishRequestFailed publishes a request.failed event
func (b *Broadcaster) PublishRequestFailed(ctx context.Context, worldID uuid.UUID, requestID string, errorMsg string) error {
	return b.publish(ctx, worldID, Event{
		Type:      EventTypeRequestFailed,
		RequestID: requestID,
		Data: map[string]interface{}{
			"status": "failed",
			"error":  errorMsg,
		},
	})
}

// PublishClockAdvanced publishes a clock.advanced event
func (b *Broadcaster) PublishClockAdvanced(ctx context.Context, worldID uuid.UUID, clock int64, hour, day int) error {
	return b.publish(ctx, worldID, Event{
		Type: EventTypeClockAdvanced,
		Data: map[string]interface{}{
			"clock": clock,
			"hour":  hour,
			"day":   day,
		},
	})
}

// PublishLocationChanges publishes one npc.moved event per change.
func (b *Broadcaster) PublishLocationChanges(ctx context.Context, worldID uuid.UUID, changes []schedule.LocationChange) error {
	for _, c := range changes {
		err := b.publish(ctx, worldID, Event{
			Type: EventTypeNPCMoved,
			Data: map[string]interface{}{
				"npc_id":   c.NPCID,
				"from":     c.OldLocationID,
				"to":       c.NewLocationID,
				"activity": c.Activity,
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// PublishInteractions publishes one interaction.occurred event per visible
// result.
func (b *Broadcaster) PublishInteractions(ctx context.Context, worldID uuid.UUID, results []interaction.Result) error {
	for _, r := range results {
		if !r.IsVisible {
			continue
		}
		err := b.publish(ctx, worldID, Event{
			Type: EventTypeInteraction,
			Data: map[string]interface{}{
				"id":          r.ID,
				"npc1_id":     r.NPC1ID,
				"npc2_id":     r.NPC2ID,
				"type":        r.Type.String(),
				"location":    r.Location,
				"description": r.Description,
				"timestamp":   r.Timestamp,
			},
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// publish sends an event to the world-specific channel
func (b *Broadcaster) publish(ctx context.Context, worldID uuid.UUID, event Event) error {
	channel := Channel(worldID)
	event.WorldID = worldID.String()

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", event.Type,
		"request_id", event.RequestID,
	)
	return nil
}
