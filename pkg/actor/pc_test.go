package actor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSpec() *PCSpec {
	return &PCSpec{
		ID:    "test_bard",
		Name:  "Test Bard",
		Class: "Bard",
		Level: 3,
		Stats: Stats5e{
			Strength:     8,
			Dexterity:    14,
			Constitution: 12,
			Intelligence: 10,
			Wisdom:       13,
			Charisma:     16,
		},
		HP:         18,
		MaxHP:      22,
		AC:         13,
		Attributes: map[string]int{"persuasion": 5},
		Inventory:  []string{"rope", "lute", "Rope"},
	}
}

func TestStats5e_ToAttributes(t *testing.T) {
	stats := Stats5e{Strength: 16, Dexterity: 14, Constitution: 15, Intelligence: 10, Wisdom: 12, Charisma: 8}
	attrs := stats.ToAttributes()

	tests := []struct {
		key      string
		expected int
	}{
		{"strength", 16},
		{"dexterity", 14},
		{"constitution", 15},
		{"intelligence", 10},
		{"wisdom", 12},
		{"charisma", 8},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := attrs[tt.key]; got != tt.expected {
				t.Errorf("ToAttributes()[%q] = %d, want %d", tt.key, got, tt.expected)
			}
		})
	}
}

func TestModifierFor(t *testing.T) {
	tests := []struct {
		score int
		want  int
	}{
		{1, -5}, {8, -1}, {9, -1}, {10, 0}, {11, 0}, {12, 1}, {16, 3}, {17, 3}, {20, 5},
	}
	for _, tt := range tests {
		if got := ModifierFor(tt.score); got != tt.want {
			t.Errorf("ModifierFor(%d) = %d, want %d", tt.score, got, tt.want)
		}
	}
}

func TestPC_AbilitiesAndItems(t *testing.T) {
	pc, err := NewPCFromSpec(testSpec())
	require.NoError(t, err)
	require.NotNil(t, pc.Actor)

	assert.Equal(t, 16, pc.AbilityScore("charisma"))
	assert.Equal(t, 16, pc.AbilityScore("Charisma"))
	assert.Equal(t, 3, pc.AbilityModifier("charisma"))
	assert.Equal(t, -1, pc.AbilityModifier("strength"))
	assert.Equal(t, 5, pc.AbilityScore("persuasion"))
	assert.Equal(t, 0, pc.AbilityScore("arcana"))

	assert.Equal(t, 2, pc.ItemCount("rope"))
	assert.Equal(t, 0, pc.ItemCount("torch"))

	pc.AddItem("torch", 2)
	assert.Equal(t, 2, pc.ItemCount("torch"))
	assert.Equal(t, 1, pc.RemoveItem("rope", 1))
	assert.Equal(t, 1, pc.ItemCount("rope"))
	assert.Equal(t, 1, pc.RemoveItem("rope", 5))
	assert.Equal(t, 0, pc.ItemCount("rope"))
}

func TestNewPCFromSpec_Nil(t *testing.T) {
	_, err := NewPCFromSpec(nil)
	assert.Error(t, err)
}

func TestLoadPC(t *testing.T) {
	tempDir := t.TempDir()
	testFile := filepath.Join(tempDir, "wandering_bard.json")

	data, err := json.Marshal(testSpec())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(testFile, data, 0644))

	pc, err := LoadPC(testFile)
	require.NoError(t, err)

	// Filename overrides the ID in the JSON
	assert.Equal(t, "wandering_bard", pc.Spec.ID)
	assert.Equal(t, 22, pc.Actor.MaxHP())
	assert.Equal(t, 18, pc.Actor.HP())
	assert.Equal(t, 13, pc.Actor.AC())
}

func TestPC_JSONRoundTripRebuildsActor(t *testing.T) {
	pc, err := NewPCFromSpec(testSpec())
	require.NoError(t, err)

	data, err := json.Marshal(pc)
	require.NoError(t, err)

	var restored PC
	require.NoError(t, json.Unmarshal(data, &restored))
	require.NotNil(t, restored.Actor)
	assert.Equal(t, 18, restored.Actor.HP())
	assert.Equal(t, 3, restored.AbilityModifier("charisma"))
	assert.Equal(t, 2, restored.ItemCount("rope"))
}

func TestNPC_Fallbacks(t *testing.T) {
	npc := &NPC{ID: "mira", Location: "market"}
	assert.Equal(t, "market", npc.HomeOrLocation())
	assert.Equal(t, "market", npc.WorkplaceOrLocation())

	npc.Home = "cottage"
	npc.Workplace = "stall"
	assert.Equal(t, "cottage", npc.HomeOrLocation())
	assert.Equal(t, "stall", npc.WorkplaceOrLocation())

	npc.Items = []string{"apple"}
	c := npc.Clone()
	c.Items[0] = "pear"
	assert.Equal(t, "apple", npc.Items[0])
}
