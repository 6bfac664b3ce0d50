package storage

import (
	"context"
	"fmt"

	"github.com/jwebster45206/npc-engine/pkg/actor"
)

// PC operations (filesystem-backed, returns PCSpec only)

func (r *RedisStorage) GetPCSpec(ctx context.Context, pcID string) (*actor.PCSpec, error) {
	var spec actor.PCSpec
	found, err := r.readJSON("pcs", pcID, &spec)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("pc not found: %s", pcID)
	}

	// Ensure ID is set from the parameter
	spec.ID = pcID
	return &spec, nil
}

func (r *RedisStorage) ListPCs(ctx context.Context) ([]string, error) {
	return r.listJSON("pcs")
}
