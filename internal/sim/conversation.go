package sim

import (
	"context"
	"fmt"

	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/memory"
)

// StartConversation opens a conversation between the player and an NPC.
func (s *Simulation) StartConversation(npcID string) (dialogue.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	npc, ok := s.world.GetNPC(npcID)
	if !ok {
		return dialogue.Result{}, fmt.Errorf("start conversation with %s: %w", npcID, ErrNPCNotFound)
	}
	return s.dialogue.StartConversation(npc)
}

// SelectResponse advances the NPC's active conversation.
func (s *Simulation) SelectResponse(ctx context.Context, npcID, responseID string) (dialogue.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialogue.SelectResponse(ctx, npcID, responseID)
}

// EndConversation interrupts the NPC's active conversation, if any.
func (s *Simulation) EndConversation(npcID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialogue.EndConversation(npcID)
}

// Conversation returns a copy of the NPC's active conversation.
func (s *Simulation) Conversation(npcID string) (*dialogue.ConversationState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dialogue.ActiveConversation(npcID)
}

// CompleteQuest closes an accepted quest and credits the NPC that gave it.
func (s *Simulation) CompleteQuest(questID string) (string, error) {
	npcID, ok := s.quests.Complete(questID)
	if !ok {
		return "", fmt.Errorf("complete quest %s: %w", questID, ErrQuestNotInProgress)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories.RecordQuestCompleted(npcID, questID)
	s.memories.LogEvent(npcID, memory.Event{
		Time:        s.world.Clock,
		Description: "Player completed quest " + questID,
	})
	return npcID, nil
}

func (s *Simulation) Quests() map[string]QuestEntry {
	return s.quests.Export()
}
