package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jwebster45206/npc-engine/internal/config"
	"github.com/jwebster45206/npc-engine/internal/sim"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/dice"
	"github.com/jwebster45206/npc-engine/pkg/storage"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSim(t *testing.T) *sim.Simulation {
	t.Helper()
	s := sim.New(nil, config.DefaultTuning(), dice.NewSource(3), nil)
	for _, id := range []string{"mira", "bram"} {
		require.NoError(t, s.AddNPC(&storage.NPCDefinition{NPC: actor.NPC{
			ID:         id,
			Name:       id,
			Occupation: "merchant",
			Home:       id + "_house",
			Workplace:  "market",
		}}))
	}
	require.NoError(t, s.RegisterDialogue("mira", []dialogue.Node{
		{
			ID:   "intro",
			Text: "Fresh apples, traveller.",
			Tags: []string{dialogue.TagIntroduction},
			Responses: []dialogue.Response{
				{ID: "buy", Text: "One please.", NextNodeID: "sold", RelationshipEffect: 5},
				{ID: "bye", Text: "Not today.", IsGoodbye: true},
			},
		},
		{ID: "sold", Text: "Enjoy!"},
	}))
	return s
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), v), rr.Body.String())
}
