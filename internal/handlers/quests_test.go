package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/jwebster45206/npc-engine/internal/sim"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestHandler(t *testing.T) {
	s := newTestSim(t)
	require.NoError(t, s.RegisterDialogue("bram", []dialogue.Node{
		{
			ID:      "intro",
			Text:    "My hammer's gone missing.",
			Tags:    []string{dialogue.TagIntroduction},
			QuestID: "lost_hammer",
			Responses: []dialogue.Response{
				{ID: "accept", Text: "I'll find it.", IsQuestAccept: true, NextNodeID: "thanks"},
			},
		},
		{ID: "thanks", Text: "Much obliged."},
	}))
	h := NewQuestHandler(s, testLogger())

	rr := do(t, h, http.MethodGet, "/v1/quests", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var list QuestListResponse
	decode(t, rr, &list)
	assert.Empty(t, list.Quests)

	// nothing accepted yet
	rr = do(t, h, http.MethodPost, "/v1/quests/lost_hammer/complete", nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	_, err := s.StartConversation("bram")
	require.NoError(t, err)
	res, err := s.SelectResponse(context.Background(), "bram", "accept")
	require.NoError(t, err)
	require.True(t, res.QuestAccepted)

	rr = do(t, h, http.MethodPost, "/v1/quests/lost_hammer/complete", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var done QuestCompleteResponse
	decode(t, rr, &done)
	assert.Equal(t, QuestCompleteResponse{QuestID: "lost_hammer", NPCID: "bram", Status: sim.QuestCompleted}, done)

	mem, ok := s.Memory("bram")
	require.True(t, ok)
	assert.Contains(t, mem.QuestsCompleted, "lost_hammer")

	rr = do(t, h, http.MethodGet, "/v1/quests", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &list)
	assert.Equal(t, sim.QuestCompleted, list.Quests["lost_hammer"].Status)

	tests := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"complete twice", http.MethodPost, "/v1/quests/lost_hammer/complete", http.StatusConflict},
		{"get on complete", http.MethodGet, "/v1/quests/lost_hammer/complete", http.StatusMethodNotAllowed},
		{"post on list", http.MethodPost, "/v1/quests", http.StatusMethodNotAllowed},
		{"unknown path", http.MethodGet, "/v1/quests/lost_hammer", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.path, nil)
			assert.Equal(t, tt.expectedStatus, rr.Code)
		})
	}
}
