package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jwebster45206/npc-engine/pkg/queue"
	"github.com/redis/go-redis/v9"
)

// RequestsKey is the Redis list holding pending simulation requests.
const RequestsKey = "clock-advances"

// ClockQueue is a FIFO of clock-advance and save requests shared by every
// API instance and worker.
type ClockQueue struct {
	client *Client
}

func NewClockQueue(client *Client) *ClockQueue {
	return &ClockQueue{
		client: client,
	}
}

// EnqueueRequest validates a request and appends it to the queue.
func (q *ClockQueue) EnqueueRequest(ctx context.Context, req *queue.Request) error {
	if err := req.Validate(); err != nil {
		return err
	}
	data, err := req.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize request: %w", err)
	}

	if err := q.client.rdb.RPush(ctx, RequestsKey, data).Err(); err != nil {
		return fmt.Errorf("failed to enqueue request: %w", err)
	}
	q.client.logger.Debug("Request enqueued", "request_id", req.RequestID, "type", req.Type, "world_id", req.WorldID)
	return nil
}

// DequeueRequest removes and returns the next request.
// Returns nil if queue is empty
func (q *ClockQueue) DequeueRequest(ctx context.Context) (*queue.Request, error) {
	result, err := q.client.rdb.LPop(ctx, RequestsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Queue is empty
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	req, err := queue.FromJSON([]byte(result))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// BlockingDequeueRequest waits up to timeout for a request. It returns
// nil, nil when the timeout passes with the queue still empty.
func (q *ClockQueue) BlockingDequeueRequest(ctx context.Context, timeout time.Duration) (*queue.Request, error) {
	result, err := q.client.rdb.BLPop(ctx, timeout, RequestsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if ctx.Err() != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to dequeue request: %w", err)
	}

	// BLPop returns [key, value]
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected BLPop result: %v", result)
	}

	req, err := queue.FromJSON([]byte(result[1]))
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}

// Peek returns up to limit raw queued requests without removing them.
// A limit of zero or less returns everything.
func (q *ClockQueue) Peek(ctx context.Context, limit int) ([]*queue.Request, error) {
	end := int64(limit - 1)
	if limit <= 0 {
		end = -1 // Get all
	}
	raw, err := q.client.rdb.LRange(ctx, RequestsKey, 0, end).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to peek requests: %w", err)
	}

	out := make([]*queue.Request, 0, len(raw))
	for _, r := range raw {
		req, err := queue.FromJSON([]byte(r))
		if err != nil {
			q.client.logger.Warn("Skipping unparseable request", "error", err)
			continue
		}
		out = append(out, req)
	}
	return out, nil
}

// Depth returns the number of pending requests.
func (q *ClockQueue) Depth(ctx context.Context) (int, error) {
	count, err := q.client.rdb.LLen(ctx, RequestsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get request queue depth: %w", err)
	}
	return int(count), nil
}

// Clear drops every pending request.
func (q *ClockQueue) Clear(ctx context.Context) error {
	if err := q.client.rdb.Del(ctx, RequestsKey).Err(); err != nil {
		return fmt.Errorf("failed to clear request queue: %w", err)
	}
	return nil
}
