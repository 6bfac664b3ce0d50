package storage

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/interaction"
	"github.com/jwebster45206/npc-engine/pkg/memory"
	"github.com/jwebster45206/npc-engine/pkg/relationship"
	"github.com/jwebster45206/npc-engine/pkg/schedule"
	"github.com/jwebster45206/npc-engine/pkg/state"
)

// Storage defines a unified interface for all storage operations.
// World snapshots live in Redis; NPC, dialogue and PC definitions are read
// from the filesystem.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Snapshot operations (Redis-backed). LoadSnapshot returns nil, nil when
	// the world does not exist.
	SaveSnapshot(ctx context.Context, id uuid.UUID, s *Snapshot) error
	LoadSnapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error)
	DeleteSnapshot(ctx context.Context, id uuid.UUID) error

	// NPC definitions (filesystem-backed)
	ListNPCs(ctx context.Context) ([]string, error)
	GetNPC(ctx context.Context, npcID string) (*NPCDefinition, error)

	// Dialogue graphs (filesystem-backed)
	ListDialogues(ctx context.Context) ([]string, error)
	GetDialogue(ctx context.Context, npcID string) ([]dialogue.Node, error)

	// PC operations (filesystem-backed, returns PCSpec not PC)
	// Use actor.NewPCFromSpec to build the full PC from the returned spec
	GetPCSpec(ctx context.Context, pcID string) (*actor.PCSpec, error)
	ListPCs(ctx context.Context) ([]string, error)
}

// Snapshot is the complete persistent state of a simulated world.
type Snapshot struct {
	World         *state.World                     `json:"world"`
	Schedules     map[string]*schedule.Timeline    `json:"schedules,omitempty"`
	Relationships map[string][]relationship.Record `json:"relationships,omitempty"`
	Memories      map[string]*memory.Memory        `json:"memories,omitempty"`
	Interactions  interaction.State                `json:"interactions"`
	Quests        map[string]QuestRecord           `json:"quests,omitempty"`
	SavedAt       time.Time                        `json:"saved_at"`
}

// NPCDefinition is an NPC data file: the NPC itself plus optional routine
// customizations applied when it joins a world.
type NPCDefinition struct {
	actor.NPC
	// Schedule replaces the occupation template when set.
	Schedule        []schedule.Entry `json:"schedule,omitempty"`
	WeeklyOverrides map[int]string   `json:"weekly_overrides,omitempty"`
	ForcedLocations map[int]string   `json:"forced_locations,omitempty"`
}

// QuestRecord is a quest the player has taken from an NPC.
type QuestRecord struct {
	NPCID  string `json:"npc_id"`
	Status string `json:"status"`
}
