// Package dialogue runs branching conversations between the player and NPCs.
// Each NPC owns a static graph of nodes; the engine walks it one response at a
// time, gating options by requirements and resolving skill checks with a d20.
package dialogue

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/jwebster45206/npc-engine/pkg/conditionals"
	"github.com/jwebster45206/npc-engine/pkg/memory"
)

// Node tags the engine looks for when opening a conversation.
const (
	TagIntroduction = "introduction"
	TagGreeting     = "greeting"
	TagFriendly     = "friendly"
	TagHostile      = "hostile"
)

// SkillCheck sends the conversation down one of several branches depending on
// a d20 roll against DC. Critical branches are optional.
type SkillCheck struct {
	Ability               string `json:"ability"`
	DC                    int    `json:"dc"`
	SuccessNodeID         string `json:"success_node_id"`
	FailureNodeID         string `json:"failure_node_id"`
	CriticalSuccessNodeID string `json:"critical_success_node_id,omitempty"`
	CriticalFailureNodeID string `json:"critical_failure_node_id,omitempty"`
}

// Response is an option the player can pick at a node.
type Response struct {
	ID                 string                     `json:"id"`
	Text               string                     `json:"text"`
	NextNodeID         string                     `json:"next_node_id,omitempty"`
	Requirements       []conditionals.Requirement `json:"requirements,omitempty"`
	RelationshipEffect int                        `json:"relationship_effect,omitempty"`
	IsGoodbye          bool                       `json:"is_goodbye,omitempty"`
	IsQuestAccept      bool                       `json:"is_quest_accept,omitempty"`
	IsQuestRefuse      bool                       `json:"is_quest_refuse,omitempty"`
	SkillCheckModifier int                        `json:"skill_check_modifier,omitempty"`
}

// Node is one thing the NPC says.
type Node struct {
	ID           string      `json:"id"`
	Text         string      `json:"text"`
	Responses    []Response  `json:"responses,omitempty"`
	SkillCheck   *SkillCheck `json:"skill_check,omitempty"`
	Tags         []string    `json:"tags,omitempty"`
	RevealsTopic string      `json:"reveals_topic,omitempty"`
	QuestID      string      `json:"quest_id,omitempty"`
}

func (n *Node) HasTag(tag string) bool {
	return slices.Contains(n.Tags, tag)
}

func (n *Node) response(id string) (Response, bool) {
	for _, r := range n.Responses {
		if r.ID == id {
			return r, true
		}
	}
	return Response{}, false
}

// Status is the lifecycle state of a conversation.
type Status int

const (
	StatusActive Status = iota
	StatusCompleted
	StatusInterrupted
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCompleted:
		return "completed"
	case StatusInterrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "active":
		*s = StatusActive
	case "completed":
		*s = StatusCompleted
	case "interrupted":
		*s = StatusInterrupted
	default:
		return fmt.Errorf("unknown conversation status %q", str)
	}
	return nil
}

// SkillCheckResult records one resolved skill check.
type SkillCheckResult struct {
	Ability  string `json:"ability"`
	Roll     int    `json:"roll"`
	Modifier int    `json:"modifier"`
	Total    int    `json:"total"`
	DC       int    `json:"dc"`
	Success  bool   `json:"success"`
	Critical bool   `json:"critical"`
}

// ConversationState is the cursor of an in-progress conversation.
type ConversationState struct {
	NPCID                string             `json:"npc_id"`
	CurrentNodeID        string             `json:"current_node_id"`
	History              []memory.Exchange  `json:"history"`
	TopicsDiscovered     []string           `json:"topics_discovered,omitempty"`
	SkillChecksAttempted []SkillCheckResult `json:"skill_checks_attempted,omitempty"`
	RelationshipChange   int                `json:"relationship_change"`
	Status               Status             `json:"status"`
	StartedAt            int64              `json:"started_at"`
}

func (c *ConversationState) clone() *ConversationState {
	out := *c
	out.History = slices.Clone(c.History)
	out.TopicsDiscovered = slices.Clone(c.TopicsDiscovered)
	out.SkillChecksAttempted = slices.Clone(c.SkillChecksAttempted)
	return &out
}

// Result is what the player sees after each step.
type Result struct {
	NodeID             string            `json:"node_id,omitempty"`
	Text               string            `json:"text"`
	AvailableResponses []Response        `json:"available_responses"`
	SkillCheck         *SkillCheck       `json:"skill_check,omitempty"`
	ConversationEnded  bool              `json:"conversation_ended"`
	RelationshipChange int               `json:"relationship_change"`
	QuestAccepted      bool              `json:"quest_accepted,omitempty"`
	QuestRefused       bool              `json:"quest_refused,omitempty"`
	QuestID            string            `json:"quest_id,omitempty"`
	SkillCheckResult   *SkillCheckResult `json:"skill_check_result,omitempty"`
}
