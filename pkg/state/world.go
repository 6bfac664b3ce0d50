package state

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/npc-engine/pkg/actor"
)

// NPCRegistry is the CRUD view of the NPC population consumed by the engines.
type NPCRegistry interface {
	GetNPC(id string) (*actor.NPC, bool)
	NPCsInLocation(locationID string) []*actor.NPC
	AllNPCs() []*actor.NPC
	UpdateNPC(npc *actor.NPC) bool
}

// World is the in-memory population of a simulation session: its NPCs, the
// player character and the current clock.
type World struct {
	ID        uuid.UUID
	Clock     int64
	PC        *actor.PC
	CreatedAt time.Time
	UpdatedAt time.Time

	npcs map[string]*actor.NPC
}

var _ NPCRegistry = (*World)(nil)

func NewWorld() *World {
	now := time.Now()
	return &World{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		npcs:      make(map[string]*actor.NPC),
	}
}

// AddNPC inserts or replaces an NPC. NPCs without an ID are ignored.
func (w *World) AddNPC(npc *actor.NPC) bool {
	if npc == nil || npc.ID == "" {
		return false
	}
	if w.npcs == nil {
		w.npcs = make(map[string]*actor.NPC)
	}
	w.npcs[npc.ID] = npc
	return true
}

func (w *World) RemoveNPC(id string) bool {
	if _, ok := w.npcs[id]; !ok {
		return false
	}
	delete(w.npcs, id)
	return true
}

func (w *World) GetNPC(id string) (*actor.NPC, bool) {
	npc, ok := w.npcs[id]
	return npc, ok
}

// NPCsInLocation returns the NPCs at a location ordered by ID.
func (w *World) NPCsInLocation(locationID string) []*actor.NPC {
	var out []*actor.NPC
	for _, npc := range w.npcs {
		if npc.Location == locationID {
			out = append(out, npc)
		}
	}
	sortByID(out)
	return out
}

// AllNPCs returns every NPC ordered by ID.
func (w *World) AllNPCs() []*actor.NPC {
	out := make([]*actor.NPC, 0, len(w.npcs))
	for _, npc := range w.npcs {
		out = append(out, npc)
	}
	sortByID(out)
	return out
}

// UpdateNPC replaces a known NPC. Unknown IDs are rejected.
func (w *World) UpdateNPC(npc *actor.NPC) bool {
	if npc == nil {
		return false
	}
	if _, ok := w.npcs[npc.ID]; !ok {
		return false
	}
	w.npcs[npc.ID] = npc
	return true
}

// Locations returns the distinct occupied locations, sorted.
func (w *World) Locations() []string {
	var locs []string
	for _, npc := range w.npcs {
		if npc.Location != "" && !slices.Contains(locs, npc.Location) {
			locs = append(locs, npc.Location)
		}
	}
	slices.Sort(locs)
	return locs
}

// Clone returns a copy whose NPCs can be mutated independently of w.
// The PC is shared.
func (w *World) Clone() *World {
	c := *w
	c.npcs = make(map[string]*actor.NPC, len(w.npcs))
	for id, npc := range w.npcs {
		c.npcs[id] = npc.Clone()
	}
	return &c
}

func (w *World) NPCCount() int {
	return len(w.npcs)
}

// ItemCount reports how many of an item the player holds.
func (w *World) ItemCount(item string) int {
	return w.PC.ItemCount(item)
}

// AbilityScore reports the player's score for an ability.
func (w *World) AbilityScore(ability string) int {
	return w.PC.AbilityScore(ability)
}

type worldJSON struct {
	ID        uuid.UUID    `json:"id"`
	Clock     int64        `json:"clock"`
	PC        *actor.PC    `json:"pc,omitempty"`
	NPCs      []*actor.NPC `json:"npcs"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (w *World) MarshalJSON() ([]byte, error) {
	return json.Marshal(worldJSON{
		ID:        w.ID,
		Clock:     w.Clock,
		PC:        w.PC,
		NPCs:      w.AllNPCs(),
		CreatedAt: w.CreatedAt,
		UpdatedAt: w.UpdatedAt,
	})
}

func (w *World) UnmarshalJSON(data []byte) error {
	var aux worldJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	w.ID = aux.ID
	w.Clock = aux.Clock
	w.PC = aux.PC
	w.CreatedAt = aux.CreatedAt
	w.UpdatedAt = aux.UpdatedAt
	w.npcs = make(map[string]*actor.NPC, len(aux.NPCs))
	for _, npc := range aux.NPCs {
		w.AddNPC(npc)
	}
	return nil
}

func sortByID(npcs []*actor.NPC) {
	slices.SortFunc(npcs, func(a, b *actor.NPC) int {
		return strings.Compare(a.ID, b.ID)
	})
}
