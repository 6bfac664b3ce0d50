// Package memory records what each NPC remembers about the player.
package memory

import (
	"slices"
)

// Bounds and defaults for NPC memory.
const (
	MinRelationship    = -10
	MaxRelationship    = 10
	MaxFamiliarity     = 5
	DefaultHistoryCap  = 10
	DefaultEventLogCap = 20
)

// Exchange is one step of a conversation: the line the NPC spoke and the
// response the player picked, if any.
type Exchange struct {
	NodeID     string `json:"node_id"`
	Text       string `json:"text"`
	ResponseID string `json:"response_id,omitempty"`
	Response   string `json:"response,omitempty"`
	Time       int64  `json:"time"`
}

// Event is a notable moment the NPC remembers.
type Event struct {
	Time        int64  `json:"time"`
	Description string `json:"description"`
	Effect      int    `json:"effect,omitempty"`
}

// Memory is one NPC's memory of the player.
type Memory struct {
	NPCID               string         `json:"npc_id"`
	InteractionCount    int            `json:"interaction_count"`
	Relationship        int            `json:"relationship"`
	KnownTopics         map[string]int `json:"known_topics,omitempty"`
	QuestsGiven         []string       `json:"quests_given,omitempty"`
	QuestsCompleted     []string       `json:"quests_completed,omitempty"`
	ConversationHistory []Exchange     `json:"conversation_history,omitempty"`
	Events              []Event        `json:"events,omitempty"`
	LastConversation    int64          `json:"last_conversation,omitempty"`
}

func newMemory(npcID string) *Memory {
	return &Memory{NPCID: npcID, KnownTopics: make(map[string]int)}
}

func (m *Memory) Clone() *Memory {
	c := *m
	c.KnownTopics = make(map[string]int, len(m.KnownTopics))
	for k, v := range m.KnownTopics {
		c.KnownTopics[k] = v
	}
	c.QuestsGiven = slices.Clone(m.QuestsGiven)
	c.QuestsCompleted = slices.Clone(m.QuestsCompleted)
	c.ConversationHistory = slices.Clone(m.ConversationHistory)
	c.Events = slices.Clone(m.Events)
	return &c
}

// Store holds the memories of every NPC the player has met.
type Store struct {
	memories   map[string]*Memory
	historyCap int
	eventCap   int
}

func NewStore() *Store {
	return &Store{
		memories:   make(map[string]*Memory),
		historyCap: DefaultHistoryCap,
		eventCap:   DefaultEventLogCap,
	}
}

// WithHistoryCap sets the conversation history limit. Non-positive values are ignored.
func (s *Store) WithHistoryCap(n int) *Store {
	if n > 0 {
		s.historyCap = n
	}
	return s
}

// WithEventCap sets the event log limit. Non-positive values are ignored.
func (s *Store) WithEventCap(n int) *Store {
	if n > 0 {
		s.eventCap = n
	}
	return s
}

// HistoryCap returns the conversation history limit.
func (s *Store) HistoryCap() int {
	return s.historyCap
}

// Get returns the NPC's memory, or nil if the player never met it.
func (s *Store) Get(npcID string) *Memory {
	return s.memories[npcID]
}

// GetOrCreate returns the NPC's memory, creating an empty one if needed.
func (s *Store) GetOrCreate(npcID string) *Memory {
	m, ok := s.memories[npcID]
	if !ok {
		m = newMemory(npcID)
		s.memories[npcID] = m
	}
	return m
}

// AdjustRelationship shifts the NPC's regard for the player and returns the
// clamped result.
func (s *Store) AdjustRelationship(npcID string, delta int) int {
	m := s.GetOrCreate(npcID)
	m.Relationship = max(MinRelationship, min(m.Relationship+delta, MaxRelationship))
	return m.Relationship
}

// LearnTopic raises the NPC's familiarity with a topic by one, up to MaxFamiliarity.
func (s *Store) LearnTopic(npcID, topic string) int {
	m := s.GetOrCreate(npcID)
	if m.KnownTopics == nil {
		m.KnownTopics = make(map[string]int)
	}
	m.KnownTopics[topic] = min(m.KnownTopics[topic]+1, MaxFamiliarity)
	return m.KnownTopics[topic]
}

// TopicFamiliarity returns 0 for unknown NPCs and topics.
func (s *Store) TopicFamiliarity(npcID, topic string) int {
	m := s.memories[npcID]
	if m == nil {
		return 0
	}
	return m.KnownTopics[topic]
}

// RecordQuestGiven notes that the NPC handed out a quest. Duplicates are ignored.
func (s *Store) RecordQuestGiven(npcID, questID string) {
	m := s.GetOrCreate(npcID)
	if !slices.Contains(m.QuestsGiven, questID) {
		m.QuestsGiven = append(m.QuestsGiven, questID)
	}
}

// RecordQuestCompleted notes that the player finished a quest for the NPC.
func (s *Store) RecordQuestCompleted(npcID, questID string) {
	m := s.GetOrCreate(npcID)
	if !slices.Contains(m.QuestsCompleted, questID) {
		m.QuestsCompleted = append(m.QuestsCompleted, questID)
	}
}

// AppendHistory adds exchanges to the NPC's conversation history, dropping
// the oldest entries beyond the cap.
func (s *Store) AppendHistory(npcID string, exchanges ...Exchange) {
	m := s.GetOrCreate(npcID)
	m.ConversationHistory = keepLast(append(m.ConversationHistory, exchanges...), s.historyCap)
}

// LogEvent appends to the NPC's event log, dropping the oldest beyond the cap.
func (s *Store) LogEvent(npcID string, e Event) {
	m := s.GetOrCreate(npcID)
	m.Events = keepLast(append(m.Events, e), s.eventCap)
}

// Export returns a deep copy of every memory.
func (s *Store) Export() map[string]*Memory {
	out := make(map[string]*Memory, len(s.memories))
	for id, m := range s.memories {
		out[id] = m.Clone()
	}
	return out
}

// Import replaces all memories, re-applying bounds.
func (s *Store) Import(memories map[string]*Memory) {
	s.memories = make(map[string]*Memory, len(memories))
	for id, m := range memories {
		if m == nil {
			continue
		}
		c := m.Clone()
		c.NPCID = id
		c.Relationship = max(MinRelationship, min(c.Relationship, MaxRelationship))
		for topic, f := range c.KnownTopics {
			c.KnownTopics[topic] = max(0, min(f, MaxFamiliarity))
		}
		c.ConversationHistory = keepLast(c.ConversationHistory, s.historyCap)
		c.Events = keepLast(c.Events, s.eventCap)
		s.memories[id] = c
	}
}

func keepLast[T any](items []T, n int) []T {
	if len(items) <= n {
		return items
	}
	return slices.Clone(items[len(items)-n:])
}
