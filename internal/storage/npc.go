package storage

import (
	"context"
	"fmt"

	"github.com/jwebster45206/npc-engine/pkg/storage"
)

// NPC operations (filesystem-backed)

func (r *RedisStorage) ListNPCs(ctx context.Context) ([]string, error) {
	return r.listJSON("npcs")
}

func (r *RedisStorage) GetNPC(ctx context.Context, npcID string) (*storage.NPCDefinition, error) {
	var def storage.NPCDefinition
	found, err := r.readJSON("npcs", npcID, &def)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("npc not found: %s", npcID)
	}

	// Filename overrides any ID in the JSON
	def.ID = npcID
	return &def, nil
}
