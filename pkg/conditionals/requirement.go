// Package conditionals decides whether gated dialogue options are open to the
// player.
package conditionals

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRequirement is returned for requirements that cannot be evaluated.
var ErrInvalidRequirement = errors.New("invalid requirement")

// RequirementType is what a requirement checks.
type RequirementType int

const (
	RequireItem RequirementType = iota
	RequireQuest
	RequireSkill
	RequireAbility
	RequireFaction
	RequireTopic
)

var requirementNames = map[RequirementType]string{
	RequireItem:    "item",
	RequireQuest:   "quest",
	RequireSkill:   "skill",
	RequireAbility: "ability",
	RequireFaction: "faction",
	RequireTopic:   "topic",
}

func (t RequirementType) String() string {
	if name, ok := requirementNames[t]; ok {
		return name
	}
	return fmt.Sprintf("requirement(%d)", int(t))
}

// ParseRequirementType parses a requirement type name.
func ParseRequirementType(s string) (RequirementType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range requirementNames {
		if name == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown type %q", ErrInvalidRequirement, s)
}

func (t RequirementType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *RequirementType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseRequirementType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Requirement gates a dialogue response. Value is a minimum quantity, score
// or familiarity depending on Type.
type Requirement struct {
	Type   RequirementType `json:"type"`
	Target string          `json:"target"`
	Value  int             `json:"value,omitempty"`
}

// UnmarshalJSON accepts the object form or the shorthand string
// "type:target[:value]", e.g. "item:rope:2".
func (r *Requirement) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		parsed, err := ParseRequirement(str)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	}

	type Alias Requirement
	aux := &struct{ *Alias }{Alias: (*Alias)(r)}
	return json.Unmarshal(data, aux)
}

// ParseRequirement parses the shorthand "type:target[:value]".
func ParseRequirement(s string) (Requirement, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return Requirement{}, fmt.Errorf("%w: %q", ErrInvalidRequirement, s)
	}
	t, err := ParseRequirementType(parts[0])
	if err != nil {
		return Requirement{}, err
	}
	r := Requirement{Type: t, Target: strings.TrimSpace(parts[1])}
	if len(parts) == 3 {
		v, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			return Requirement{}, fmt.Errorf("%w: bad value in %q", ErrInvalidRequirement, s)
		}
		r.Value = v
	}
	return r, nil
}

// Validate reports requirements missing a target.
func (r Requirement) Validate() error {
	if _, ok := requirementNames[r.Type]; !ok {
		return fmt.Errorf("%w: type %d", ErrInvalidRequirement, int(r.Type))
	}
	if r.Target == "" {
		return fmt.Errorf("%w: %s requirement has no target", ErrInvalidRequirement, r.Type)
	}
	return nil
}

func (r Requirement) String() string {
	if r.Value != 0 {
		return fmt.Sprintf("%s:%s:%d", r.Type, r.Target, r.Value)
	}
	return fmt.Sprintf("%s:%s", r.Type, r.Target)
}

// View is the player and memory state requirements are checked against.
// It avoids import cycles with the actor and memory packages.
type View interface {
	ItemCount(item string) int
	AbilityScore(ability string) int
	TopicFamiliarity(topic string) int
	QuestAvailable(questID string) bool
}

// Evaluate checks a single requirement. Skill and faction checks have no
// backing system yet and always pass.
func Evaluate(r Requirement, v View) bool {
	switch r.Type {
	case RequireItem:
		return v.ItemCount(r.Target) >= max(r.Value, 1)
	case RequireQuest:
		return v.QuestAvailable(r.Target)
	case RequireSkill:
		return true
	case RequireAbility:
		return v.AbilityScore(r.Target) >= r.Value
	case RequireFaction:
		return true
	case RequireTopic:
		return v.TopicFamiliarity(r.Target) >= r.Value
	default:
		return false
	}
}

// EvaluateAll reports whether every requirement holds. No requirements means open.
func EvaluateAll(reqs []Requirement, v View) bool {
	for _, r := range reqs {
		if !Evaluate(r, v) {
			return false
		}
	}
	return true
}
