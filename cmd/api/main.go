package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/handlers"
	"github.com/jwebster45206/npc-engine/internal/logger"
	"github.com/jwebster45206/npc-engine/internal/middleware"
	"github.com/jwebster45206/npc-engine/internal/services"
	"github.com/jwebster45206/npc-engine/internal/services/events"
	"github.com/jwebster45206/npc-engine/internal/services/queue"
	"github.com/jwebster45206/npc-engine/internal/sim"
	"github.com/jwebster45206/npc-engine/internal/storage"
	"github.com/jwebster45206/npc-engine/internal/worker"
	"github.com/jwebster45206/npc-engine/pkg/dice"
	"github.com/jwebster45206/npc-engine/pkg/narrative"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting NPC Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"data_dir", cfg.DataDir,
		"worker_enabled", cfg.WorkerEnabled)

	tuning, err := config.LoadTuning(cfg.TuningFile)
	if err != nil {
		log.Error("Failed to load tuning", "error", err, "file", cfg.TuningFile)
		os.Exit(1)
	}

	rdb, err := queue.Dial(cfg.RedisURL)
	if err != nil {
		log.Error("Invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	store := storage.NewRedisStorageWithClient(rdb, cfg.DataDir, log).WithTTL(cfg.SnapshotTTL)
	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	if err := store.WaitForConnection(storageCtx); err != nil {
		log.Error("Failed to connect to storage", "error", err)
		os.Exit(1)
	}
	log.Info("Storage connection established successfully")

	// Storage, queue and events share one connection pool
	queueClient := queue.NewClientFromRedis(rdb, log)
	clockQueue := queue.NewClockQueue(queueClient)
	broadcaster := events.NewBroadcaster(queueClient.GetRedisClient(), log)

	seed := cfg.Seed
	if seed == 0 {
		if seed, err = dice.NewSeed(); err != nil {
			log.Error("Failed to seed simulation", "error", err)
			os.Exit(1)
		}
	}

	worldID := uuid.Nil
	if cfg.WorldID != "" {
		if worldID, err = uuid.Parse(cfg.WorldID); err != nil {
			log.Error("Invalid WORLD_ID", "error", err, "world_id", cfg.WorldID)
			os.Exit(1)
		}
	}

	simulation, restored, err := sim.Open(storageCtx, store, worldID, tuning, dice.NewSource(seed), log)
	if err != nil {
		log.Error("Failed to open world", "error", err)
		os.Exit(1)
	}
	simulation.WithPublisher(broadcaster)
	log = logger.WithWorldID(log, simulation.WorldID().String())
	log.Info("World ready", "restored", restored, "clock", simulation.Clock(), "seed", seed)

	if cfg.PCID != "" {
		if err := simulation.LoadPC(storageCtx, store, cfg.PCID); err != nil {
			log.Error("Failed to load player character", "error", err, "pc_id", cfg.PCID)
			os.Exit(1)
		}
	}

	var filter *narrative.ProfanityFilter
	if narrative.ShouldFilterContent(cfg.ContentRating) {
		filter = narrative.NewProfanityFilter()
	}
	switch strings.ToLower(cfg.NarratorProvider) {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Error("ANTHROPIC_API_KEY is required for the anthropic narrator")
			os.Exit(1)
		}
		simulation.WithGenerator(services.NewAnthropicNarrator(cfg.AnthropicAPIKey, cfg.AnthropicModel, log), filter)
		log.Info("Using Anthropic narrative generator", "model", cfg.AnthropicModel)
	case "mock":
		simulation.WithGenerator(services.NewMockNarrator(), filter)
		log.Info("Using mock narrative generator")
	case "", "none":
		log.Info("No narrative generator configured, using fallback descriptions")
	default:
		log.Error("Invalid narrator provider specified", "provider", cfg.NarratorProvider, "supported", []string{"none", "anthropic", "mock"})
		os.Exit(1)
	}

	if err := simulation.Save(storageCtx, store); err != nil {
		log.Error("Failed to save initial snapshot", "error", err)
		os.Exit(1)
	}

	var w *worker.Worker
	if cfg.WorkerEnabled {
		w = worker.New(clockQueue, store, queueClient.GetRedisClient(), log, os.Getenv("WORKER_ID"))
		w.Register(simulation)
		go func() {
			if err := w.Start(); err != nil {
				log.Error("Worker error", "error", err)
			}
		}()
	}

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"storage": store,
		"queue": handlers.PingFunc(func(ctx context.Context) error {
			return queueClient.GetRedisClient().Ping(ctx).Err()
		}),
	}, simulation.Clock, log)
	mux.Handle("/health", healthHandler)

	npcHandler := handlers.NewNPCHandler(simulation, log)
	mux.Handle("/v1/npcs", npcHandler)
	mux.Handle("/v1/npcs/", npcHandler)

	mux.Handle("/v1/locations/", handlers.NewLocationHandler(simulation, log))
	mux.Handle("/v1/dialogue/", handlers.NewDialogueHandler(simulation, tuning.NarrativeTimeout, log))

	questHandler := handlers.NewQuestHandler(simulation, log)
	mux.Handle("/v1/quests", questHandler)
	mux.Handle("/v1/quests/", questHandler)

	clockHandler := handlers.NewClockHandler(simulation, clockQueue, log).WithNotifier(broadcaster)
	mux.Handle("/v1/clock", clockHandler)
	mux.Handle("/v1/clock/", clockHandler)

	mux.Handle("/v1/events/", handlers.NewEventsHandler(broadcaster, log))

	handler := middleware.Chain(mux,
		middleware.RequestID(),
		middleware.Logger(log),
		middleware.Recover(log),
	)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: the SSE endpoint holds connections open
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if w != nil {
		w.Stop()
	}

	if err := simulation.Save(shutdownCtx, store); err != nil {
		log.Error("Failed to save final snapshot", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}
