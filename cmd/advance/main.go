package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/logger"
	"github.com/jwebster45206/npc-engine/internal/services/events"
	"github.com/jwebster45206/npc-engine/internal/services/queue"
	queuePkg "github.com/jwebster45206/npc-engine/pkg/queue"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	worldFlag := flag.String("world", cfg.WorldID, "world ID to advance (defaults to WORLD_ID)")
	minutes := flag.Int64("minutes", 60, "minutes to advance the clock")
	redisURL := flag.String("redis", cfg.RedisURL, "Redis address or URL")
	wait := flag.Duration("wait", 0, "wait up to this long for the worker to finish (0 = don't wait)")
	flag.Parse()

	worldID, err := uuid.Parse(*worldFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid world id %q: %v\n", *worldFlag, err)
		os.Exit(2)
	}

	req := queuePkg.NewAdvanceRequest(worldID, *minutes)
	if err := req.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	quiet := logger.Discard()
	ctx := context.Background()

	client, err := queue.NewClient(ctx, *redisURL, quiet)
	if err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}
	defer client.Close()

	broadcaster := events.NewBroadcaster(client.GetRedisClient(), quiet)

	// Subscribe before enqueueing so the completion event cannot be missed
	pubsub := broadcaster.Subscribe(ctx, worldID)
	defer pubsub.Close()
	if _, err := pubsub.Receive(ctx); err != nil {
		log.Fatal("Failed to subscribe to world events: ", err)
	}

	if err := queue.NewClockQueue(client).EnqueueRequest(ctx, req); err != nil {
		log.Fatal("Failed to enqueue request: ", err)
	}
	if err := broadcaster.PublishRequestQueued(ctx, worldID, req.RequestID, string(req.Type)); err != nil {
		log.Print("Failed to publish queued event: ", err)
	}
	fmt.Printf("Queued %d minute advance for world %s (request %s)\n", req.Minutes, worldID, req.RequestID)

	if *wait <= 0 {
		return
	}

	waitCtx, cancel := context.WithTimeout(ctx, *wait)
	defer cancel()
	msgs := pubsub.Channel()
	for {
		select {
		case <-waitCtx.Done():
			fmt.Fprintln(os.Stderr, "timed out waiting for the worker")
			os.Exit(1)
		case msg := <-msgs:
			var event events.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil || event.RequestID != req.RequestID {
				continue
			}
			switch event.Type {
			case events.EventTypeRequestCompleted:
				fmt.Printf("Completed: clock=%v moves=%v interactions=%v\n",
					event.Data["clock"], event.Data["moves"], event.Data["interactions"])
				return
			case events.EventTypeRequestFailed:
				fmt.Fprintf(os.Stderr, "Failed: %v\n", event.Data["error"])
				os.Exit(1)
			}
		}
	}
}
