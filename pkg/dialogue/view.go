package dialogue

import "github.com/jwebster45206/npc-engine/pkg/conditionals"

// requirementView answers requirement checks for one NPC's conversation.
type requirementView struct {
	e     *Engine
	npcID string
}

var _ conditionals.View = requirementView{}

func (e *Engine) view(npcID string) conditionals.View {
	return requirementView{e: e, npcID: npcID}
}

func (v requirementView) ItemCount(item string) int {
	if v.e.player == nil {
		return 0
	}
	return v.e.player.ItemCount(item)
}

func (v requirementView) AbilityScore(ability string) int {
	if v.e.player == nil {
		return 0
	}
	return v.e.player.AbilityScore(ability)
}

func (v requirementView) TopicFamiliarity(topic string) int {
	return v.e.memories.TopicFamiliarity(v.npcID, topic)
}

// QuestAvailable defers to the quest manager when one is wired.
func (v requirementView) QuestAvailable(questID string) bool {
	if v.e.quests == nil {
		return true
	}
	return v.e.quests.QuestAvailable(questID)
}
