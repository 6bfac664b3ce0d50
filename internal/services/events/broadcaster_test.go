package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jwebster45206/npc-engine/pkg/interaction"
	"github.com/jwebster45206/npc-engine/pkg/schedule"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Broadcaster, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewBroadcaster(rdb, nil), rdb
}

func receive(t *testing.T, ch <-chan *redis.Message) Event {
	t.Helper()
	select {
	case msg := <-ch:
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestBroadcaster_PublishesToWorldChannel(t *testing.T) {
	b, _ := setup(t)
	ctx := context.Background()
	world := uuid.New()

	sub := b.Subscribe(ctx, world)
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)
	ch := sub.Channel()

	require.NoError(t, b.PublishClockAdvanced(ctx, world, 540, 9, 0))
	require.NoError(t, b.PublishLocationChanges(ctx, world, []schedule.LocationChange{
		{NPCID: "mira", OldLocationID: "mira_house", NewLocationID: "market", Activity: "Selling wares"},
	}))
	require.NoError(t, b.PublishInteractions(ctx, world, []interaction.Result{
		{ID: "hidden", NPC1ID: "a", NPC2ID: "b", Type: interaction.Trade, IsVisible: false},
		{ID: "seen", NPC1ID: "mira", NPC2ID: "old_tom", Type: interaction.Conflict, Location: "market", IsVisible: true},
	}))

	ev := receive(t, ch)
	assert.Equal(t, EventTypeClockAdvanced, ev.Type)
	assert.Equal(t, world.String(), ev.WorldID)
	assert.Equal(t, float64(9), ev.Data["hour"])

	ev = receive(t, ch)
	assert.Equal(t, EventTypeNPCMoved, ev.Type)
	assert.Equal(t, "market", ev.Data["to"])

	ev = receive(t, ch)
	assert.Equal(t, EventTypeInteraction, ev.Type)
	assert.Equal(t, "seen", ev.Data["id"])
	assert.Equal(t, "conflict", ev.Data["type"])
}

func TestBroadcaster_OtherWorldsDoNotReceive(t *testing.T) {
	b, _ := setup(t)
	ctx := context.Background()

	sub := b.Subscribe(ctx, uuid.New())
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, b.PublishRequestQueued(ctx, uuid.New(), "r1", "advance"))

	select {
	case msg := <-sub.Channel():
		t.Fatalf("unexpected message: %s", msg.Payload)
	case <-time.After(100 * time.Millisecond):
	}
}
