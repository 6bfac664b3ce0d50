package interaction

import (
	"maps"
	"slices"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/relationship"
)

// Relationship joins a relationship record to the NPC it refers to.
type Relationship struct {
	NPC    *actor.NPC          `json:"npc"`
	Record relationship.Record `json:"record"`
}

// RecentLocationInteractions returns visible interactions at a location,
// newest first. A non-positive limit returns all of them.
func (e *Engine) RecentLocationInteractions(locationID string, limit int) []Result {
	var out []Result
	for i := len(e.log) - 1; i >= 0; i-- {
		r := e.log[i]
		if r.Location != locationID || !r.IsVisible {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// InteractionsBetween returns every logged interaction of the pair in
// chronological order.
func (e *Engine) InteractionsBetween(a, b string) []Result {
	var out []Result
	for _, r := range e.log {
		if r.Involves(a) && r.Involves(b) {
			out = append(out, r)
		}
	}
	return out
}

// NPCRelationships returns the NPC's relationship records joined to the NPCs
// they refer to. Records about NPCs no longer in the registry are dropped.
func (e *Engine) NPCRelationships(npcID string) []Relationship {
	var out []Relationship
	for _, rec := range e.graph.Records(npcID) {
		npc, ok := e.registry.GetNPC(rec.OtherNPCID)
		if !ok {
			continue
		}
		out = append(out, Relationship{NPC: npc, Record: rec})
	}
	return out
}

// Log returns a copy of the interaction log, oldest first.
func (e *Engine) Log() []Result {
	return slices.Clone(e.log)
}

// State is the engine's persistent state.
type State struct {
	Log      []Result         `json:"log,omitempty"`
	LastPair map[string]int64 `json:"last_pair,omitempty"`
}

// Export returns a copy of the log and pair cooldown table.
func (e *Engine) Export() State {
	return State{Log: slices.Clone(e.log), LastPair: maps.Clone(e.lastPair)}
}

// Import replaces the log and pair cooldown table.
func (e *Engine) Import(s State) {
	e.log = nil
	for _, r := range s.Log {
		e.appendLog(r)
	}
	e.lastPair = make(map[string]int64, len(s.LastPair))
	maps.Copy(e.lastPair, s.LastPair)
}
