package storage

import (
	"context"
	"encoding/json"

	"github.com/jwebster45206/npc-engine/pkg/dialogue"
)

// dialogueFile accepts either a bare array of nodes or an object with a
// "nodes" field.
type dialogueFile struct {
	Nodes []dialogue.Node `json:"nodes"`
}

func (d *dialogueFile) UnmarshalJSON(data []byte) error {
	var nodes []dialogue.Node
	if err := json.Unmarshal(data, &nodes); err == nil {
		d.Nodes = nodes
		return nil
	}

	type Alias dialogueFile
	var aux Alias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*d = dialogueFile(aux)
	return nil
}

// DecodeDialogue parses a dialogue file in either accepted form.
func DecodeDialogue(data []byte) ([]dialogue.Node, error) {
	var f dialogueFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	return f.Nodes, nil
}

// Dialogue operations (filesystem-backed)

func (r *RedisStorage) ListDialogues(ctx context.Context) ([]string, error) {
	return r.listJSON("dialogue")
}

// GetDialogue returns nil, nil when the NPC has no dialogue file.
func (r *RedisStorage) GetDialogue(ctx context.Context, npcID string) ([]dialogue.Node, error) {
	var f dialogueFile
	found, err := r.readJSON("dialogue", npcID, &f)
	if err != nil || !found {
		return nil, err
	}
	return f.Nodes, nil
}
