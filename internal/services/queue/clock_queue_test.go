package queue

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/npc-engine/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), "redis://"+mr.Addr(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestNewClient_BareAddress(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(context.Background(), mr.Addr(), nil)
	require.NoError(t, err)
	defer client.Close()

	assert.NotNil(t, client.GetRedisClient())
}

func TestNewClient_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewClient(context.Background(), addr, nil)
	assert.Error(t, err)
}

func TestClockQueue_FIFO(t *testing.T) {
	client, _ := setupTestRedis(t)
	q := NewClockQueue(client)
	ctx := context.Background()
	world := uuid.New()

	for _, m := range []int64{15, 30, 45} {
		require.NoError(t, q.EnqueueRequest(ctx, queue.NewAdvanceRequest(world, m)))
	}

	depth, err := q.Depth(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, depth)

	peeked, err := q.Peek(ctx, 2)
	require.NoError(t, err)
	require.Len(t, peeked, 2)
	assert.Equal(t, int64(15), peeked[0].Minutes)

	for _, want := range []int64{15, 30, 45} {
		req, err := q.DequeueRequest(ctx)
		require.NoError(t, err)
		require.NotNil(t, req)
		assert.Equal(t, want, req.Minutes)
		assert.Equal(t, world, req.WorldID)
	}

	req, err := q.DequeueRequest(ctx)
	assert.NoError(t, err)
	assert.Nil(t, req)
}

func TestClockQueue_RejectsInvalid(t *testing.T) {
	client, mr := setupTestRedis(t)
	q := NewClockQueue(client)

	err := q.EnqueueRequest(context.Background(), queue.NewAdvanceRequest(uuid.New(), 0))
	assert.ErrorIs(t, err, queue.ErrInvalidRequest)
	assert.False(t, mr.Exists(RequestsKey))
}

func TestClockQueue_BlockingDequeue(t *testing.T) {
	client, _ := setupTestRedis(t)
	q := NewClockQueue(client)
	ctx := context.Background()

	require.NoError(t, q.EnqueueRequest(ctx, &queue.Request{
		RequestID: "save-1",
		Type:      queue.RequestTypeSave,
		WorldID:   uuid.New(),
	}))

	req, err := q.BlockingDequeueRequest(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "save-1", req.RequestID)
	assert.Equal(t, queue.RequestTypeSave, req.Type)
}

func TestClockQueue_BlockingDequeueTimeout(t *testing.T) {
	client, _ := setupTestRedis(t)
	q := NewClockQueue(client)

	req, err := q.BlockingDequeueRequest(context.Background(), time.Second)
	assert.NoError(t, err)
	assert.Nil(t, req)
}

func TestClockQueue_PeekSkipsGarbage(t *testing.T) {
	client, mr := setupTestRedis(t)
	q := NewClockQueue(client)
	ctx := context.Background()

	_, err := mr.Lpush(RequestsKey, "not json")
	require.NoError(t, err)
	require.NoError(t, q.EnqueueRequest(ctx, queue.NewAdvanceRequest(uuid.New(), 5)))

	peeked, err := q.Peek(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, peeked, 1)

	require.NoError(t, q.Clear(ctx))
	depth, _ := q.Depth(ctx)
	assert.Equal(t, 0, depth)
}
