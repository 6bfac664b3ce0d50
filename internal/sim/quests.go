package sim

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"github.com/jwebster45206/npc-engine/pkg/storage"
)

// Quest statuses.
const (
	QuestAccepted  = "accepted"
	QuestCompleted = "completed"
)

// QuestEntry records who gave a quest and its status.
type QuestEntry = storage.QuestRecord

// QuestLog tracks the player's quests. A quest can be accepted once; after
// that dialogue options gated on it disappear.
type QuestLog struct {
	mu     sync.RWMutex
	quests map[string]QuestEntry
}

func NewQuestLog() *QuestLog {
	return &QuestLog{quests: make(map[string]QuestEntry)}
}

// QuestAvailable reports whether the quest has not been taken yet.
func (q *QuestLog) QuestAvailable(questID string) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	_, taken := q.quests[questID]
	return !taken
}

// AcceptQuest marks a quest as accepted from an NPC.
func (q *QuestLog) AcceptQuest(ctx context.Context, npcID, questID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if e, ok := q.quests[questID]; ok {
		return fmt.Errorf("quest %s already %s", questID, e.Status)
	}
	q.quests[questID] = QuestEntry{NPCID: npcID, Status: QuestAccepted}
	return nil
}

// Complete marks an accepted quest as done and returns the NPC that gave it.
func (q *QuestLog) Complete(questID string) (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.quests[questID]
	if !ok || e.Status != QuestAccepted {
		return "", false
	}
	e.Status = QuestCompleted
	q.quests[questID] = e
	return e.NPCID, true
}

func (q *QuestLog) Get(questID string) (QuestEntry, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	e, ok := q.quests[questID]
	return e, ok
}

func (q *QuestLog) Export() map[string]QuestEntry {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return maps.Clone(q.quests)
}

func (q *QuestLog) Import(quests map[string]QuestEntry) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.quests = make(map[string]QuestEntry, len(quests))
	maps.Copy(q.quests, quests)
}
