// Package interaction simulates NPCs meeting each other while the player is
// elsewhere. Each pass pairs up free NPCs that share a location, picks what
// they do together and moves their relationship accordingly.
package interaction

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type is the kind of interaction between two NPCs.
type Type int

const (
	Conversation Type = iota
	Trade
	Conflict
	Collaboration
)

func (t Type) String() string {
	switch t {
	case Conversation:
		return "conversation"
	case Trade:
		return "trade"
	case Conflict:
		return "conflict"
	case Collaboration:
		return "collaboration"
	default:
		return fmt.Sprintf("interaction(%d)", int(t))
	}
}

// ParseType parses a lowercase interaction type name.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(s) {
	case "conversation":
		return Conversation, nil
	case "trade":
		return Trade, nil
	case "conflict":
		return Conflict, nil
	case "collaboration":
		return Collaboration, nil
	}
	return Conversation, fmt.Errorf("unknown interaction type %q", s)
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

// DeltaRange is the inclusive range of relationship change for a type.
func (t Type) DeltaRange() (lo, hi int) {
	switch t {
	case Trade:
		return 1, 7
	case Conflict:
		return -15, -6
	case Collaboration:
		return 5, 14
	default:
		return -2, 2
	}
}

// Result is one interaction that happened.
type Result struct {
	ID                 string `json:"id"`
	NPC1ID             string `json:"npc1_id"`
	NPC2ID             string `json:"npc2_id"`
	Type               Type   `json:"type"`
	Description        string `json:"description"`
	RelationshipChange int    `json:"relationship_change"`
	Timestamp          int64  `json:"timestamp"`
	Location           string `json:"location"`
	IsVisible          bool   `json:"is_visible"`
}

// Involves reports whether the NPC took part.
func (r Result) Involves(npcID string) bool {
	return r.NPC1ID == npcID || r.NPC2ID == npcID
}

// TradePartners lists occupations that do business together. The check is
// symmetric.
var TradePartners = map[string][]string{
	"merchant":   {"merchant", "blacksmith", "farmer", "innkeeper", "noble"},
	"blacksmith": {"guard", "farmer"},
	"farmer":     {"innkeeper", "priest"},
	"innkeeper":  {"noble"},
	"scholar":    {"noble", "priest"},
}

// TradeCompatible reports whether two occupations trade with each other.
func TradeCompatible(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == "" || b == "" {
		return false
	}
	for _, o := range TradePartners[a] {
		if o == b {
			return true
		}
	}
	for _, o := range TradePartners[b] {
		if o == a {
			return true
		}
	}
	return false
}

// pairKey identifies an unordered NPC pair.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}
