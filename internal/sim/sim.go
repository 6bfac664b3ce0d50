// Package sim wires the scheduler, relationship graph, memories, interaction
// engine and dialogue engine around one world. A Simulation is safe for
// concurrent use; every method holds its lock for the duration of the call.
package sim

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/dice"
	"github.com/jwebster45206/npc-engine/pkg/interaction"
	"github.com/jwebster45206/npc-engine/pkg/memory"
	"github.com/jwebster45206/npc-engine/pkg/narrative"
	"github.com/jwebster45206/npc-engine/pkg/relationship"
	"github.com/jwebster45206/npc-engine/pkg/schedule"
	"github.com/jwebster45206/npc-engine/pkg/state"
)

var (
	ErrNPCNotFound        = errors.New("npc not found")
	ErrInvalidMinutes     = errors.New("minutes must be positive")
	ErrInvalidAppointment = errors.New("invalid appointment")
	ErrQuestNotInProgress = errors.New("quest is not in progress")
)

// Publisher receives the outcome of each clock advance.
// *events.Broadcaster satisfies it.
type Publisher interface {
	PublishClockAdvanced(ctx context.Context, worldID uuid.UUID, clock int64, hour, day int) error
	PublishLocationChanges(ctx context.Context, worldID uuid.UUID, changes []schedule.LocationChange) error
	PublishInteractions(ctx context.Context, worldID uuid.UUID, results []interaction.Result) error
}

// Simulation is the explicit context object for one world.
type Simulation struct {
	mu sync.Mutex

	world  *state.World
	tuning config.Tuning
	rng    dice.Source
	logger *slog.Logger

	scheduler    *schedule.Scheduler
	graph        *relationship.Graph
	initializer  *relationship.Initializer
	memories     *memory.Store
	interactions *interaction.Engine
	dialogue     *dialogue.Engine
	quests       *QuestLog
	publisher    Publisher
}

// New builds a simulation around a world. A nil world starts an empty one.
func New(world *state.World, tuning config.Tuning, rng dice.Source, logger *slog.Logger) *Simulation {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if world == nil {
		world = state.NewWorld()
	}
	logger = logger.With("world_id", world.ID.String())

	s := &Simulation{
		world:  world,
		tuning: tuning,
		rng:    rng,
		logger: logger,
		graph:  relationship.NewGraph(),
		quests: NewQuestLog(),
	}
	s.scheduler = schedule.NewScheduler(world, tuning.Clock, logger).
		WithDebounce(tuning.LocationDebounce)
	s.initializer = relationship.NewInitializer(world, s.graph, rng, logger)
	s.memories = memory.NewStore().
		WithHistoryCap(tuning.HistoryCap).
		WithEventCap(tuning.EventLogCap)
	s.interactions = interaction.NewEngine(world, s.scheduler, s.graph, rng, logger).
		WithCooldown(tuning.InteractionCooldown).
		WithLogLimit(tuning.InteractionLogLimit).
		WithVisibility(interaction.ChanceVisibility(rng, tuning.VisibilityChance)).
		WithNarrator(narrative.NewNarrator(nil, logger))
	s.dialogue = dialogue.NewEngine(s.memories, world, rng, logger).
		WithQuestManager(s.quests).
		WithClock(func() int64 { return world.Clock })
	return s
}

// WithGenerator routes interaction descriptions through a text generator.
// A non-nil filter scrubs generated text.
// Returns the Simulation for method chaining
func (s *Simulation) WithGenerator(gen narrative.Generator, filter *narrative.ProfanityFilter) *Simulation {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := narrative.NewNarrator(gen, s.logger).WithTimeout(s.tuning.NarrativeTimeout)
	if filter != nil {
		n = n.WithFilter(filter)
	}
	s.interactions.WithNarrator(n)
	return s
}

// WithPublisher sets where advance results are announced.
// Returns the Simulation for method chaining
func (s *Simulation) WithPublisher(p Publisher) *Simulation {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.publisher = p
	return s
}

func (s *Simulation) WorldID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.ID
}

// Clock returns the current simulation time in minutes.
func (s *Simulation) Clock() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.world.Clock
}

func (s *Simulation) Tuning() config.Tuning {
	return s.tuning
}
