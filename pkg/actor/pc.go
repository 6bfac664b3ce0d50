package actor

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/jwebster45206/d20"
)

// Stats5e represents the six core D&D 5e ability scores
type Stats5e struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// ToAttributes converts Stats5e to a map for d20.Actor compatibility
func (s *Stats5e) ToAttributes() map[string]int {
	return map[string]int{
		"strength":     s.Strength,
		"dexterity":    s.Dexterity,
		"constitution": s.Constitution,
		"intelligence": s.Intelligence,
		"wisdom":       s.Wisdom,
		"charisma":     s.Charisma,
	}
}

// PCSpec is the serializable specification for a Player Character
type PCSpec struct {
	ID              string         `json:"id"`
	Name            string         `json:"name,omitempty"`
	Class           string         `json:"class,omitempty"`
	Level           int            `json:"level,omitempty"`
	Race            string         `json:"race,omitempty"`
	Pronouns        string         `json:"pronouns,omitempty"`
	Description     string         `json:"description,omitempty"`
	Stats           Stats5e        `json:"stats,omitempty"`
	HP              int            `json:"hp,omitempty"`     // Current HP (for serialization)
	MaxHP           int            `json:"max_hp,omitempty"` // Maximum HP
	AC              int            `json:"ac,omitempty"`
	CombatModifiers map[string]int `json:"combat_modifiers,omitempty"`
	Attributes      map[string]int `json:"attributes,omitempty"` // Skills, proficiencies, etc.
	Inventory       []string       `json:"inventory,omitempty"`  // One entry per item held; repeats count as quantity
}

// PC is the runtime representation of a Player Character
type PC struct {
	Spec  *PCSpec
	Actor *d20.Actor // Built at runtime from PCSpec
}

// NewPCFromSpec creates a PC from a PCSpec
func NewPCFromSpec(spec *PCSpec) (*PC, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}

	actor, err := buildActor(spec)
	if err != nil {
		return nil, err
	}
	return &PC{Spec: spec, Actor: actor}, nil
}

func buildActor(spec *PCSpec) (*d20.Actor, error) {
	allAttrs := spec.Stats.ToAttributes()
	maps.Copy(allAttrs, spec.Attributes)

	maxHP := spec.MaxHP
	if maxHP <= 0 {
		maxHP = 1
	}

	actor, err := d20.NewActor(spec.ID).
		WithHP(maxHP).
		WithAC(spec.AC).
		WithAttributes(allAttrs).
		WithCombatModifiers(spec.CombatModifiers).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	if spec.HP != maxHP && spec.HP > 0 {
		if err := actor.SetHP(spec.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}
	return actor, nil
}

// LoadPC loads a PC from a JSON file and builds its d20.Actor.
// The filename (without .json extension) overrides any ID in the JSON
func LoadPC(path string) (*PC, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read PC file: %w", err)
	}

	var spec PCSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal PC spec: %w", err)
	}

	spec.ID = strings.TrimSuffix(filepath.Base(path), ".json")

	return NewPCFromSpec(&spec)
}

// AbilityScore returns the named ability or attribute score, or 0 if the PC lacks it.
func (pc *PC) AbilityScore(ability string) int {
	if pc == nil {
		return 0
	}
	key := strings.ToLower(ability)
	if pc.Actor != nil {
		if v, ok := pc.Actor.Attribute(key); ok {
			return v
		}
		return 0
	}
	return pc.Spec.Stats.ToAttributes()[key]
}

// AbilityModifier returns the 5e modifier for an ability: floor((score-10)/2).
func (pc *PC) AbilityModifier(ability string) int {
	return ModifierFor(pc.AbilityScore(ability))
}

// ModifierFor converts an ability score to its modifier.
func ModifierFor(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// ItemCount returns how many of the named item the PC holds. Matching is case-insensitive.
func (pc *PC) ItemCount(item string) int {
	if pc == nil || pc.Spec == nil {
		return 0
	}
	count := 0
	for _, held := range pc.Spec.Inventory {
		if strings.EqualFold(held, item) {
			count++
		}
	}
	return count
}

// AddItem adds qty of an item to the inventory.
func (pc *PC) AddItem(item string, qty int) {
	for i := 0; i < qty; i++ {
		pc.Spec.Inventory = append(pc.Spec.Inventory, item)
	}
}

// RemoveItem removes up to qty of an item and returns how many were removed.
func (pc *PC) RemoveItem(item string, qty int) int {
	removed := 0
	pc.Spec.Inventory = slices.DeleteFunc(pc.Spec.Inventory, func(held string) bool {
		if removed < qty && strings.EqualFold(held, item) {
			removed++
			return true
		}
		return false
	})
	return removed
}

// MarshalJSON converts PC back to PCSpec format, reading current HP from the Actor
func (pc *PC) MarshalJSON() ([]byte, error) {
	if pc == nil {
		return []byte("null"), nil
	}
	if pc.Actor == nil {
		return json.Marshal(pc.Spec)
	}

	spec := *pc.Spec
	spec.HP = pc.Actor.HP()
	spec.MaxHP = pc.Actor.MaxHP()
	spec.AC = pc.Actor.AC()
	return json.Marshal(&spec)
}

// UnmarshalJSON reconstructs a PC from JSON and rebuilds its Actor
func (pc *PC) UnmarshalJSON(data []byte) error {
	var spec PCSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("failed to unmarshal PC spec: %w", err)
	}

	actor, err := buildActor(&spec)
	if err != nil {
		return fmt.Errorf("failed to rebuild actor: %w", err)
	}
	pc.Spec = &spec
	pc.Actor = actor
	return nil
}
