package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jwebster45206/npc-engine/pkg/narrative"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAnthropicNarrator(t *testing.T) {
	n := NewAnthropicNarrator("test-api-key", "claude-test", nil)

	assert.Equal(t, "test-api-key", n.apiKey)
	assert.Equal(t, "claude-test", n.modelName)
	assert.Equal(t, anthropicBaseURL, n.baseURL)
	assert.NotNil(t, n.httpClient)
	assert.NotNil(t, n.logger)
}

func TestAnthropicNarrator_GenerateText(t *testing.T) {
	var got AnthropicChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		_ = json.NewEncoder(w).Encode(AnthropicChatResponse{
			Content: []AnthropicContentBlock{
				{Type: "text", Text: "Mira haggles with Old Tom. "},
				{Type: "tool_use", Text: "ignored"},
				{Type: "text", Text: "Both leave satisfied."},
			},
		})
	}))
	defer srv.Close()

	n := NewAnthropicNarrator("test-key", "claude-test", nil).WithBaseURL(srv.URL + "/")
	text, err := n.GenerateText(context.Background(), narrative.Prompt{System: "Be brief.", User: "Describe the trade."})
	require.NoError(t, err)

	assert.Equal(t, "Mira haggles with Old Tom. Both leave satisfied.", text)
	assert.Equal(t, "claude-test", got.Model)
	assert.Equal(t, "Be brief.", got.System)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "Describe the trade.", got.Messages[0].Content)
}

func TestAnthropicNarrator_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":{"message":"overloaded"}}`},
		{name: "malformed body", status: http.StatusOK, body: `{"content": [`},
		{name: "api error field", status: http.StatusOK, body: `{"error":{"type":"invalid","message":"bad model"}}`},
		{name: "empty content", status: http.StatusOK, body: `{"content":[{"type":"text","text":"   "}]}`, wantErr: narrative.ErrEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			n := NewAnthropicNarrator("k", "m", nil).WithBaseURL(srv.URL)
			_, err := n.GenerateText(context.Background(), narrative.Prompt{User: "x"})
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			}
		})
	}
}

func TestAnthropicNarrator_FallsBackThroughNarrator(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	scene := narrative.Scene{
		Kind:     "trade",
		Location: "market",
		First:    narrative.Participant{ID: "mira", Name: "Mira"},
		Second:   narrative.Participant{ID: "old_tom"},
	}
	narrator := narrative.NewNarrator(NewAnthropicNarrator("k", "m", nil).WithBaseURL(srv.URL), nil)

	assert.Equal(t, narrative.Fallback(scene), narrator.Describe(context.Background(), scene))
}
