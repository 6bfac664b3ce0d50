package handlers

import (
	"net/http"
	"testing"

	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialogueHandler_Flow(t *testing.T) {
	s := newTestSim(t)
	h := NewDialogueHandler(s, 0, testLogger())

	rr := do(t, h, http.MethodGet, "/v1/dialogue/mira", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, h, http.MethodPost, "/v1/dialogue/mira/start", nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var res dialogue.Result
	decode(t, rr, &res)
	assert.Equal(t, "intro", res.NodeID)
	assert.Len(t, res.AvailableResponses, 2)

	rr = do(t, h, http.MethodGet, "/v1/dialogue/mira", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var conv dialogue.ConversationState
	decode(t, rr, &conv)
	assert.Equal(t, "intro", conv.CurrentNodeID)

	rr = do(t, h, http.MethodPost, "/v1/dialogue/mira/select", SelectRequest{ResponseID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, h, http.MethodPost, "/v1/dialogue/mira/select", SelectRequest{ResponseID: "buy"})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	decode(t, rr, &res)
	assert.Equal(t, "sold", res.NodeID)
	assert.Equal(t, 5, res.RelationshipChange)
	assert.False(t, res.ConversationEnded)
	assert.Empty(t, res.AvailableResponses)

	rr = do(t, h, http.MethodPost, "/v1/dialogue/mira/end", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var end EndResponse
	decode(t, rr, &end)
	assert.True(t, end.Ended)

	rr = do(t, h, http.MethodPost, "/v1/dialogue/mira/end", nil)
	decode(t, rr, &end)
	assert.False(t, end.Ended)
}

func TestDialogueHandler_Errors(t *testing.T) {
	h := NewDialogueHandler(newTestSim(t), 0, testLogger())

	tests := []struct {
		name           string
		method         string
		path           string
		body           interface{}
		expectedStatus int
	}{
		{"unknown npc", http.MethodPost, "/v1/dialogue/nobody/start", nil, http.StatusNotFound},
		{"select without conversation", http.MethodPost, "/v1/dialogue/mira/select", SelectRequest{ResponseID: "buy"}, http.StatusConflict},
		{"missing response id", http.MethodPost, "/v1/dialogue/mira/select", map[string]string{}, http.StatusBadRequest},
		{"unknown action", http.MethodPost, "/v1/dialogue/mira/dance", nil, http.StatusNotFound},
		{"wrong method", http.MethodGet, "/v1/dialogue/mira/start", nil, http.StatusMethodNotAllowed},
		{"bad path", http.MethodPost, "/v1/dialogue", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
			var errResp ErrorResponse
			decode(t, rr, &errResp)
			assert.NotEmpty(t, errResp.Error)
		})
	}
}

func TestDialogueHandler_EndInterrupts(t *testing.T) {
	h := NewDialogueHandler(newTestSim(t), 0, testLogger())

	rr := do(t, h, http.MethodPost, "/v1/dialogue/bram/start", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, h, http.MethodPost, "/v1/dialogue/bram/end", nil)
	var end EndResponse
	decode(t, rr, &end)
	assert.True(t, end.Ended)
}
