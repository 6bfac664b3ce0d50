// Package relationship holds the directional affinity records NPCs keep about
// each other and seeds them when strangers first share a location.
package relationship

import (
	"encoding/json"
	"fmt"
)

// Bounds of a relationship value.
const (
	MinValue = -100
	MaxValue = 100
)

// Type is the category derived from a relationship value.
type Type int

const (
	Enemy Type = iota
	Disliked
	Unfriendly
	Neutral
	Friendly
	Friend
	CloseFriend
)

var typeNames = [...]string{
	Enemy:       "enemy",
	Disliked:    "disliked",
	Unfriendly:  "unfriendly",
	Neutral:     "neutral",
	Friendly:    "friendly",
	Friend:      "friend",
	CloseFriend: "close_friend",
}

// TypeFor maps a value onto the relationship ladder. It is the only place the
// thresholds live.
func TypeFor(value int) Type {
	switch {
	case value <= -75:
		return Enemy
	case value <= -30:
		return Disliked
	case value <= -10:
		return Unfriendly
	case value < 10:
		return Neutral
	case value < 30:
		return Friendly
	case value < 75:
		return Friend
	default:
		return CloseFriend
	}
}

func (t Type) String() string {
	if t < Enemy || t > CloseFriend {
		return fmt.Sprintf("type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType returns the Type with the given name.
func ParseType(name string) (Type, error) {
	for i, n := range typeNames {
		if n == name {
			return Type(i), nil
		}
	}
	return Neutral, fmt.Errorf("unknown relationship type %q", name)
}

func (t Type) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Record is what one NPC thinks of another.
type Record struct {
	OtherNPCID          string `json:"other_npc_id"`
	Value               int    `json:"value"`
	Type                Type   `json:"type"`
	LastInteractionTime int64  `json:"last_interaction_time"`
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
