package storage

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
)

// MockStorage is an in-memory Storage for tests.
type MockStorage struct {
	mu        sync.RWMutex
	snapshots map[uuid.UUID]*Snapshot
	npcs      map[string]*NPCDefinition
	dialogues map[string][]dialogue.Node
	pcSpecs   map[string]*actor.PCSpec
	pingError error

	SaveCalls int
}

// Ensure MockStorage implements Storage interface
var _ Storage = (*MockStorage)(nil)

func NewMockStorage() *MockStorage {
	return &MockStorage{
		snapshots: make(map[uuid.UUID]*Snapshot),
		npcs:      make(map[string]*NPCDefinition),
		dialogues: make(map[string][]dialogue.Node),
		pcSpecs:   make(map[string]*actor.PCSpec),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

func (m *MockStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStorage) Close() error {
	return nil
}

func (m *MockStorage) SaveSnapshot(ctx context.Context, id uuid.UUID, s *Snapshot) error {
	if s == nil {
		return errors.New("snapshot cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[id] = s
	m.SaveCalls++
	return nil
}

func (m *MockStorage) LoadSnapshot(ctx context.Context, id uuid.UUID) (*Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshots[id], nil
}

func (m *MockStorage) DeleteSnapshot(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.snapshots, id)
	return nil
}

// AddNPC adds an NPC definition to the mock.
func (m *MockStorage) AddNPC(def *NPCDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.npcs[def.ID] = def
}

func (m *MockStorage) ListNPCs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.npcs))
	for id := range m.npcs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *MockStorage) GetNPC(ctx context.Context, npcID string) (*NPCDefinition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	def, ok := m.npcs[npcID]
	if !ok {
		return nil, errors.New("npc not found: " + npcID)
	}
	return def, nil
}

// AddDialogue adds a dialogue graph to the mock.
func (m *MockStorage) AddDialogue(npcID string, nodes []dialogue.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialogues[npcID] = nodes
}

func (m *MockStorage) ListDialogues(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.dialogues))
	for id := range m.dialogues {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (m *MockStorage) GetDialogue(ctx context.Context, npcID string) ([]dialogue.Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	nodes, ok := m.dialogues[npcID]
	if !ok {
		return nil, nil
	}
	return nodes, nil
}

// AddPCSpec adds a PC spec to the mock.
func (m *MockStorage) AddPCSpec(spec *actor.PCSpec) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pcSpecs[spec.ID] = spec
}

func (m *MockStorage) GetPCSpec(ctx context.Context, pcID string) (*actor.PCSpec, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	spec, ok := m.pcSpecs[pcID]
	if !ok {
		return nil, errors.New("pc not found: " + pcID)
	}
	return spec, nil
}

func (m *MockStorage) ListPCs(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.pcSpecs))
	for id := range m.pcSpecs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}
