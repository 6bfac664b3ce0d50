package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/dice"
	"github.com/jwebster45206/npc-engine/pkg/state"
	"github.com/jwebster45206/npc-engine/pkg/storage"
)

var ErrInvalidDefinition = errors.New("invalid npc definition")

// AddNPC puts an NPC into the world, builds its routine and places it where
// that routine says it is right now.
func (s *Simulation) AddNPC(def *storage.NPCDefinition) error {
	if def == nil || def.ID == "" {
		return fmt.Errorf("add npc: %w", ErrInvalidDefinition)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	npc := def.NPC.Clone()
	if npc.Location == "" {
		npc.Location = npc.Home
	}
	s.world.AddNPC(npc)

	if len(def.Schedule) > 0 {
		s.scheduler.SetSchedule(npc.ID, def.Schedule)
	}
	s.scheduler.InitializeSchedule(npc, def.ForcedLocations)
	for day, loc := range def.WeeklyOverrides {
		if !s.scheduler.SetWeeklyOverride(npc.ID, day, loc) {
			s.logger.Warn("Ignoring weekly override", "npc_id", npc.ID, "day", day)
		}
	}

	if slot, ok := s.scheduler.GetCurrentActivity(npc.ID, s.world.Clock); ok {
		npc.Location = slot.LocationID
		npc.CurrentActivity = slot.Activity
	}
	return nil
}

// RegisterDialogue installs an NPC's dialogue graph after validating it.
func (s *Simulation) RegisterDialogue(npcID string, nodes []dialogue.Node) error {
	if errs := dialogue.Validate(nodes); len(errs) > 0 {
		return fmt.Errorf("dialogue %s: %w", npcID, errors.Join(errs...))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialogue.RegisterGraph(npcID, nodes)
}

// SetPC sets the player character used for requirement and skill checks.
func (s *Simulation) SetPC(pc *actor.PC) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.world.PC = pc
}

// LoadResult counts what LoadDefinitions installed.
type LoadResult struct {
	NPCs      int
	Dialogues int
	Skipped   int
}

// LoadDefinitions adds every stored NPC not already in the world and
// registers every stored dialogue graph. Broken files are logged and
// skipped; only a failure to list definitions is returned.
func (s *Simulation) LoadDefinitions(ctx context.Context, store storage.Storage) (LoadResult, error) {
	var res LoadResult

	npcIDs, err := store.ListNPCs(ctx)
	if err != nil {
		return res, fmt.Errorf("list npcs: %w", err)
	}
	for _, id := range npcIDs {
		if _, ok := s.npc(id); ok {
			continue
		}
		def, err := store.GetNPC(ctx, id)
		if err == nil {
			err = s.AddNPC(def)
		}
		if err != nil {
			s.logger.Warn("Skipping NPC definition", "npc_id", id, "error", err)
			res.Skipped++
			continue
		}
		res.NPCs++
	}

	dialogueIDs, err := store.ListDialogues(ctx)
	if err != nil {
		return res, fmt.Errorf("list dialogues: %w", err)
	}
	for _, id := range dialogueIDs {
		nodes, err := store.GetDialogue(ctx, id)
		if err == nil {
			err = s.RegisterDialogue(id, nodes)
		}
		if err != nil {
			s.logger.Warn("Skipping dialogue", "npc_id", id, "error", err)
			res.Skipped++
			continue
		}
		res.Dialogues++
	}

	s.logger.Info("Definitions loaded",
		"npcs", res.NPCs,
		"dialogues", res.Dialogues,
		"skipped", res.Skipped)
	return res, nil
}

// LoadPC builds the player character from a stored spec.
func (s *Simulation) LoadPC(ctx context.Context, store storage.Storage, pcID string) error {
	spec, err := store.GetPCSpec(ctx, pcID)
	if err != nil {
		return fmt.Errorf("load pc %s: %w", pcID, err)
	}
	pc, err := actor.NewPCFromSpec(spec)
	if err != nil {
		return fmt.Errorf("build pc %s: %w", pcID, err)
	}
	s.SetPC(pc)
	return nil
}

// Snapshot captures the full persistent state. Active conversations are not
// included.
func (s *Simulation) Snapshot() *storage.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &storage.Snapshot{
		World:         s.world.Clone(),
		Schedules:     s.scheduler.Export(),
		Relationships: s.graph.Export(),
		Memories:      s.memories.Export(),
		Interactions:  s.interactions.Export(),
		Quests:        s.quests.Export(),
	}
}

// FromSnapshot rebuilds a simulation from saved state. Dialogue graphs are
// not part of a snapshot and must be loaded again.
func FromSnapshot(snap *storage.Snapshot, tuning config.Tuning, rng dice.Source, logger *slog.Logger) (*Simulation, error) {
	if snap == nil || snap.World == nil {
		return nil, errors.New("snapshot has no world")
	}
	s := New(snap.World.Clone(), tuning, rng, logger)
	s.scheduler.Import(snap.Schedules)
	s.graph.Import(snap.Relationships)
	s.memories.Import(snap.Memories)
	s.interactions.Import(snap.Interactions)
	s.quests.Import(snap.Quests)
	return s, nil
}

// Save writes a snapshot of the world to storage.
func (s *Simulation) Save(ctx context.Context, store storage.Storage) error {
	snap := s.Snapshot()
	if err := store.SaveSnapshot(ctx, snap.World.ID, snap); err != nil {
		return fmt.Errorf("save world %s: %w", snap.World.ID, err)
	}
	return nil
}

// Open restores the world saved under worldID, or starts a fresh world with
// that ID when none is stored, then installs every stored definition. A nil
// worldID always starts fresh with a random ID. It reports whether a
// snapshot was restored.
func Open(ctx context.Context, store storage.Storage, worldID uuid.UUID, tuning config.Tuning, rng dice.Source, logger *slog.Logger) (*Simulation, bool, error) {
	var (
		s        *Simulation
		restored bool
	)
	if worldID != uuid.Nil {
		snap, err := store.LoadSnapshot(ctx, worldID)
		if err != nil {
			return nil, false, fmt.Errorf("load world %s: %w", worldID, err)
		}
		if snap != nil {
			s, err = FromSnapshot(snap, tuning, rng, logger)
			if err != nil {
				return nil, false, fmt.Errorf("restore world %s: %w", worldID, err)
			}
			restored = true
		}
	}
	if s == nil {
		world := state.NewWorld()
		if worldID != uuid.Nil {
			world.ID = worldID
		}
		s = New(world, tuning, rng, logger)
	}

	if _, err := s.LoadDefinitions(ctx, store); err != nil {
		return nil, false, err
	}
	return s, restored, nil
}
