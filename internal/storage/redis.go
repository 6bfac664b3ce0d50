package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/npc-engine/pkg/storage"
	"github.com/redis/go-redis/v9"
)

const snapshotPrefix = "snapshot:"

// RedisStorage implements the Storage interface using Redis for world
// snapshots and the filesystem for static definitions (NPCs, dialogue, PCs).
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
	ttl     time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ storage.Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a new Redis storage instance for a host:port address
func NewRedisStorage(addr string, dataDir string, logger *slog.Logger) *RedisStorage {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return NewRedisStorageWithClient(rdb, dataDir, logger)
}

// NewRedisStorageWithClient wraps an existing client.
func NewRedisStorageWithClient(rdb *redis.Client, dataDir string, logger *slog.Logger) *RedisStorage {
	if dataDir == "" {
		dataDir = "./data"
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RedisStorage{
		client:  rdb,
		logger:  logger,
		dataDir: dataDir,
	}
}

// WithTTL sets an expiry on saved snapshots. Zero keeps them indefinitely.
// Returns the RedisStorage for method chaining.
func (r *RedisStorage) WithTTL(ttl time.Duration) *RedisStorage {
	r.ttl = ttl
	return r
}

// Client exposes the underlying Redis client so the queue, broadcaster and
// worker can share one connection pool.
func (r *RedisStorage) Client() *redis.Client {
	return r.client
}

// Health and lifecycle methods

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

// WaitForConnection waits for Redis to become available (used during startup)
func (r *RedisStorage) WaitForConnection(ctx context.Context) error {
	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		if err := r.Ping(ctx); err != nil {
			r.logger.Debug("Redis not ready yet", "error", err, "attempt", i+1)

			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled while waiting for redis: %w", ctx.Err())
			case <-time.After(retryDelay):
				continue
			}
		}

		r.logger.Info("Redis connection established")
		return nil
	}

	return fmt.Errorf("redis did not become available after %d attempts", maxRetries)
}

// Snapshot operations (Redis-backed)

func (r *RedisStorage) SaveSnapshot(ctx context.Context, id uuid.UUID, s *storage.Snapshot) error {
	if s == nil {
		return errors.New("snapshot cannot be nil")
	}
	s.SavedAt = time.Now()

	data, err := json.Marshal(s)
	if err != nil {
		r.logger.Error("Failed to marshal snapshot", "world_id", id, "error", err)
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := r.client.Set(ctx, snapshotPrefix+id.String(), data, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save snapshot", "world_id", id, "error", err)
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	r.logger.Debug("Snapshot saved", "world_id", id, "bytes", len(data))
	return nil
}

func (r *RedisStorage) LoadSnapshot(ctx context.Context, id uuid.UUID) (*storage.Snapshot, error) {
	data, err := r.client.Get(ctx, snapshotPrefix+id.String()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			r.logger.Warn("Snapshot not found", "world_id", id)
			return nil, nil // Return nil for not found
		}
		r.logger.Error("Failed to load snapshot", "world_id", id, "error", err)
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	if len(data) == 0 {
		r.logger.Warn("Snapshot not found", "world_id", id)
		return nil, nil
	}

	var s storage.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		r.logger.Error("Failed to unmarshal snapshot", "world_id", id, "error", err)
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &s, nil
}

func (r *RedisStorage) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	if err := r.client.Del(ctx, snapshotPrefix+id.String()).Err(); err != nil {
		r.logger.Error("Failed to delete snapshot", "world_id", id, "error", err)
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
