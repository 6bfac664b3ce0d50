package dialogue

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/conditionals"
	"github.com/jwebster45206/npc-engine/pkg/dice"
	"github.com/jwebster45206/npc-engine/pkg/memory"
)

var (
	ErrNoActiveConversation = errors.New("no active conversation")
	ErrNodeNotFound         = errors.New("dialogue node not found")
	ErrResponseNotFound     = errors.New("response not found")
	ErrResponseUnavailable  = errors.New("response requirements not met")
	ErrDuplicateNode        = errors.New("duplicate dialogue node id")
	ErrInvalidNPC           = errors.New("npc has no id")
)

// GenericGreetingID is the node synthesized for NPCs with no dialogue graph.
const GenericGreetingID = "generic_greeting"

var genericGreeting = Node{
	ID:   GenericGreetingID,
	Text: "Hello there.",
	Tags: []string{TagGreeting},
	Responses: []Response{
		{ID: "goodbye", Text: "Goodbye.", IsGoodbye: true},
	},
}

// Player is the inventory and ability view of the player character.
// *state.World and *actor.PC satisfy it.
type Player interface {
	ItemCount(item string) int
	AbilityScore(ability string) int
}

// QuestManager is an optional collaborator that tracks quests offered in
// dialogue.
type QuestManager interface {
	QuestAvailable(questID string) bool
	AcceptQuest(ctx context.Context, npcID, questID string) error
}

// Engine holds the dialogue graphs and the active conversations.
type Engine struct {
	memories *memory.Store
	player   Player
	rng      dice.Source
	quests   QuestManager
	now      func() int64
	logger   *slog.Logger

	graphs map[string][]Node
	active map[string]*ConversationState
}

func NewEngine(memories *memory.Store, player Player, rng dice.Source, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		memories: memories,
		player:   player,
		rng:      rng,
		now:      func() int64 { return 0 },
		logger:   logger,
		graphs:   make(map[string][]Node),
		active:   make(map[string]*ConversationState),
	}
}

// WithQuestManager wires an optional quest tracker.
// Returns the Engine for method chaining
func (e *Engine) WithQuestManager(qm QuestManager) *Engine {
	e.quests = qm
	return e
}

// WithClock sets the function used to timestamp history and events.
func (e *Engine) WithClock(now func() int64) *Engine {
	if now != nil {
		e.now = now
	}
	return e
}

// RegisterGraph sets the dialogue graph of an NPC, replacing any previous one.
func (e *Engine) RegisterGraph(npcID string, nodes []Node) error {
	seen := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		if seen[n.ID] {
			return fmt.Errorf("npc %s: %w: %s", npcID, ErrDuplicateNode, n.ID)
		}
		seen[n.ID] = true
	}
	e.graphs[npcID] = slices.Clone(nodes)
	return nil
}

// Graph returns the NPC's dialogue graph.
func (e *Engine) Graph(npcID string) []Node {
	return slices.Clone(e.graphs[npcID])
}

// ActiveConversation returns a copy of the NPC's conversation state.
func (e *Engine) ActiveConversation(npcID string) (*ConversationState, bool) {
	c, ok := e.active[npcID]
	if !ok {
		return nil, false
	}
	return c.clone(), true
}

// ActiveConversations lists NPCs currently in conversation.
func (e *Engine) ActiveConversations() []string {
	ids := make([]string, 0, len(e.active))
	for id := range e.active {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (e *Engine) node(npcID, nodeID string) (*Node, bool) {
	if nodeID == "" {
		return nil, false
	}
	for i := range e.graphs[npcID] {
		if e.graphs[npcID][i].ID == nodeID {
			return &e.graphs[npcID][i], true
		}
	}
	if nodeID == GenericGreetingID {
		n := genericGreeting
		return &n, true
	}
	return nil, false
}

// StartConversation opens a conversation with the NPC. An existing
// conversation with the same NPC is interrupted first.
func (e *Engine) StartConversation(npc *actor.NPC) (Result, error) {
	if npc == nil || npc.ID == "" {
		return Result{}, fmt.Errorf("start conversation: %w", ErrInvalidNPC)
	}
	if _, ok := e.active[npc.ID]; ok {
		e.finalize(npc.ID, StatusInterrupted)
	}

	mem := e.memories.GetOrCreate(npc.ID)
	mem.InteractionCount++
	start := e.openingNode(npc.ID, mem)

	now := e.now()
	conv := &ConversationState{
		NPCID:         npc.ID,
		CurrentNodeID: start.ID,
		Status:        StatusActive,
		StartedAt:     now,
	}
	e.active[npc.ID] = conv
	e.enter(conv, start, now)

	e.logger.Debug("Conversation started",
		"npc_id", npc.ID,
		"node_id", start.ID,
		"interaction_count", mem.InteractionCount)

	return e.result(conv, start), nil
}

// openingNode picks the first node of a conversation.
func (e *Engine) openingNode(npcID string, mem *memory.Memory) *Node {
	graph := e.graphs[npcID]
	if mem.InteractionCount == 1 {
		for i := range graph {
			if graph[i].HasTag(TagIntroduction) {
				return &graph[i]
			}
		}
	}

	var greetings []*Node
	for i := range graph {
		if graph[i].HasTag(TagGreeting) {
			greetings = append(greetings, &graph[i])
		}
	}
	if len(greetings) > 0 {
		mood := ""
		switch {
		case mem.Relationship > 5:
			mood = TagFriendly
		case mem.Relationship < -5:
			mood = TagHostile
		}
		if mood != "" {
			for _, n := range greetings {
				if n.HasTag(mood) {
					return n
				}
			}
		}
		return greetings[0]
	}

	if len(graph) > 0 {
		return &graph[0]
	}
	n := genericGreeting
	return &n
}

// enter appends the node to the conversation history and records its topic.
func (e *Engine) enter(conv *ConversationState, n *Node, now int64) {
	conv.CurrentNodeID = n.ID
	conv.History = append(conv.History, memory.Exchange{NodeID: n.ID, Text: n.Text, Time: now})
	if n.RevealsTopic != "" {
		e.memories.LearnTopic(conv.NPCID, n.RevealsTopic)
		if !slices.Contains(conv.TopicsDiscovered, n.RevealsTopic) {
			conv.TopicsDiscovered = append(conv.TopicsDiscovered, n.RevealsTopic)
		}
	}
}

func (e *Engine) result(conv *ConversationState, n *Node) Result {
	return Result{
		NodeID:             n.ID,
		Text:               n.Text,
		AvailableResponses: e.FilterAvailableResponses(conv.NPCID, n.Responses),
		SkillCheck:         n.SkillCheck,
		RelationshipChange: conv.RelationshipChange,
	}
}

// SelectResponse applies the player's choice and advances the conversation.
func (e *Engine) SelectResponse(ctx context.Context, npcID, responseID string) (Result, error) {
	conv, ok := e.active[npcID]
	if !ok {
		return Result{}, fmt.Errorf("npc %s: %w", npcID, ErrNoActiveConversation)
	}
	n, ok := e.node(npcID, conv.CurrentNodeID)
	if !ok {
		return Result{}, fmt.Errorf("npc %s node %s: %w", npcID, conv.CurrentNodeID, ErrNodeNotFound)
	}
	resp, ok := n.response(responseID)
	if !ok {
		return Result{}, fmt.Errorf("npc %s node %s response %s: %w", npcID, n.ID, responseID, ErrResponseNotFound)
	}
	if !conditionals.EvaluateAll(resp.Requirements, e.view(npcID)) {
		return Result{}, fmt.Errorf("npc %s response %s: %w", npcID, responseID, ErrResponseUnavailable)
	}

	now := e.now()
	if last := len(conv.History) - 1; last >= 0 {
		conv.History[last].ResponseID = resp.ID
		conv.History[last].Response = resp.Text
	}

	var out Result
	if resp.RelationshipEffect != 0 {
		e.memories.AdjustRelationship(npcID, resp.RelationshipEffect)
		conv.RelationshipChange += resp.RelationshipEffect
		if abs(resp.RelationshipEffect) >= 2 {
			e.memories.LogEvent(npcID, memory.Event{
				Time:        now,
				Description: fmt.Sprintf("Player said %q", resp.Text),
				Effect:      resp.RelationshipEffect,
			})
		}
	}

	switch {
	case resp.IsQuestAccept:
		out.QuestAccepted = true
		out.QuestID = n.QuestID
		if n.QuestID != "" {
			e.memories.RecordQuestGiven(npcID, n.QuestID)
			if e.quests != nil {
				if err := e.quests.AcceptQuest(ctx, npcID, n.QuestID); err != nil {
					e.logger.Warn("Quest manager rejected quest",
						"npc_id", npcID,
						"quest_id", n.QuestID,
						"error", err)
				}
			}
		}
	case resp.IsQuestRefuse:
		out.QuestRefused = true
		out.QuestID = n.QuestID
	}

	if resp.IsGoodbye {
		return e.ended(npcID, conv, out), nil
	}

	nextID := resp.NextNodeID
	if n.SkillCheck != nil {
		check := e.rollSkillCheck(n.SkillCheck, resp.SkillCheckModifier)
		conv.SkillChecksAttempted = append(conv.SkillChecksAttempted, check)
		out.SkillCheckResult = &check
		nextID = branch(n.SkillCheck, check)
	}

	next, ok := e.node(npcID, nextID)
	if !ok {
		return e.ended(npcID, conv, out), nil
	}

	e.enter(conv, next, now)
	r := e.result(conv, next)
	r.QuestAccepted, r.QuestRefused, r.QuestID = out.QuestAccepted, out.QuestRefused, out.QuestID
	r.SkillCheckResult = out.SkillCheckResult
	return r, nil
}

func (e *Engine) ended(npcID string, conv *ConversationState, out Result) Result {
	out.ConversationEnded = true
	out.RelationshipChange = conv.RelationshipChange
	out.AvailableResponses = []Response{}
	e.finalize(npcID, StatusCompleted)
	return out
}

// rollSkillCheck rolls d20 + ability modifier + response modifier against the DC.
// A natural 1 or 20 is critical; the total alone decides success.
func (e *Engine) rollSkillCheck(sc *SkillCheck, responseModifier int) SkillCheckResult {
	roll := dice.D20(e.rng)
	mod := e.abilityModifier(sc.Ability) + responseModifier
	total := roll + mod
	return SkillCheckResult{
		Ability:  sc.Ability,
		Roll:     roll,
		Modifier: mod,
		Total:    total,
		DC:       sc.DC,
		Success:  total >= sc.DC,
		Critical: roll == 1 || roll == 20,
	}
}

func (e *Engine) abilityModifier(ability string) int {
	if e.player == nil {
		return 0
	}
	score := e.player.AbilityScore(ability)
	if score == 0 {
		return 0
	}
	return actor.ModifierFor(score)
}

func branch(sc *SkillCheck, r SkillCheckResult) string {
	if r.Success {
		if r.Critical && sc.CriticalSuccessNodeID != "" {
			return sc.CriticalSuccessNodeID
		}
		return sc.SuccessNodeID
	}
	if r.Critical && sc.CriticalFailureNodeID != "" {
		return sc.CriticalFailureNodeID
	}
	return sc.FailureNodeID
}

// EndConversation ends the NPC's conversation at the player's request. It
// reports false if there was nothing to end.
func (e *Engine) EndConversation(npcID string) bool {
	return e.finalize(npcID, StatusInterrupted)
}

// finalize closes a conversation and copies its history into memory.
// Calling it again for the same NPC does nothing.
func (e *Engine) finalize(npcID string, status Status) bool {
	conv, ok := e.active[npcID]
	if !ok {
		return false
	}
	delete(e.active, npcID)
	conv.Status = status

	e.memories.AppendHistory(npcID, conv.History...)
	e.memories.GetOrCreate(npcID).LastConversation = e.now()

	e.logger.Debug("Conversation ended",
		"npc_id", npcID,
		"status", status.String(),
		"exchanges", len(conv.History),
		"relationship_change", conv.RelationshipChange)
	return true
}

// FilterAvailableResponses returns the responses whose requirements all hold.
func (e *Engine) FilterAvailableResponses(npcID string, responses []Response) []Response {
	v := e.view(npcID)
	out := make([]Response, 0, len(responses))
	for _, r := range responses {
		if conditionals.EvaluateAll(r.Requirements, v) {
			out = append(out, r)
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
