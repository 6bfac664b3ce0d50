package state

import (
	"encoding/json"
	"testing"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorld_Registry(t *testing.T) {
	w := NewWorld()
	assert.True(t, w.AddNPC(&actor.NPC{ID: "b", Location: "market"}))
	assert.True(t, w.AddNPC(&actor.NPC{ID: "a", Location: "market"}))
	assert.True(t, w.AddNPC(&actor.NPC{ID: "c", Location: "forge"}))
	assert.False(t, w.AddNPC(&actor.NPC{Name: "no id"}))
	assert.False(t, w.AddNPC(nil))

	market := w.NPCsInLocation("market")
	require.Len(t, market, 2)
	assert.Equal(t, "a", market[0].ID)
	assert.Equal(t, "b", market[1].ID)

	assert.Equal(t, []string{"forge", "market"}, w.Locations())
	assert.Len(t, w.AllNPCs(), 3)

	_, ok := w.GetNPC("missing")
	assert.False(t, ok)

	assert.False(t, w.UpdateNPC(&actor.NPC{ID: "ghost"}))
	assert.True(t, w.UpdateNPC(&actor.NPC{ID: "c", Location: "market"}))
	assert.Len(t, w.NPCsInLocation("market"), 3)

	assert.True(t, w.RemoveNPC("a"))
	assert.False(t, w.RemoveNPC("a"))
	assert.Equal(t, 2, w.NPCCount())
}

func TestWorld_JSONRoundTrip(t *testing.T) {
	w := NewWorld()
	w.Clock = 1234
	w.AddNPC(&actor.NPC{ID: "mira", Name: "Mira", Occupation: "merchant", Location: "market"})
	pc, err := actor.NewPCFromSpec(&actor.PCSpec{ID: "hero", MaxHP: 10, HP: 10, Inventory: []string{"rope"}})
	require.NoError(t, err)
	w.PC = pc

	data, err := json.Marshal(w)
	require.NoError(t, err)

	var restored World
	require.NoError(t, json.Unmarshal(data, &restored))
	assert.Equal(t, w.ID, restored.ID)
	assert.Equal(t, int64(1234), restored.Clock)
	npc, ok := restored.GetNPC("mira")
	require.True(t, ok)
	assert.Equal(t, "merchant", npc.Occupation)
	assert.Equal(t, 1, restored.ItemCount("rope"))
}

func TestWorld_Clone(t *testing.T) {
	w := NewWorld()
	w.Clock = 90
	w.AddNPC(&actor.NPC{ID: "mira", Location: "market", Items: []string{"lantern"}})

	c := w.Clone()
	npc, _ := c.GetNPC("mira")
	npc.Location = "tavern"
	npc.Items[0] = "rope"
	c.AddNPC(&actor.NPC{ID: "old_tom"})

	orig, _ := w.GetNPC("mira")
	assert.Equal(t, "market", orig.Location)
	assert.Equal(t, "lantern", orig.Items[0])
	assert.Equal(t, 1, w.NPCCount())
	assert.Equal(t, w.ID, c.ID)
	assert.Equal(t, int64(90), c.Clock)
}
