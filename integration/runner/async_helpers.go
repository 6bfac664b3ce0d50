package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jwebster45206/npc-engine/internal/handlers"
	"github.com/jwebster45206/npc-engine/pkg/actor"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
	"github.com/jwebster45206/npc-engine/pkg/schedule"
)

const (
	// PollInterval is how often to check the clock for a queued advance
	PollInterval = 100 * time.Millisecond
	// AdvanceTimeout is max time to wait for the worker to apply an advance
	AdvanceTimeout = 30 * time.Second
)

// doJSON sends body (if any) as JSON and decodes a 2xx response into out.
// It returns the status code even when the call failed.
func doJSON(ctx context.Context, client *http.Client, method, url string, body, out interface{}) (int, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to send %s %s: %w", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("%s %s returned %d: %s", method, url, resp.StatusCode, string(raw))
	}
	if out == nil {
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}
	return resp.StatusCode, nil
}

// GetClock retrieves the current world time
func GetClock(ctx context.Context, client *http.Client, baseURL string) (*handlers.ClockResponse, error) {
	var c handlers.ClockResponse
	if _, err := doJSON(ctx, client, http.MethodGet, baseURL+"/v1/clock", nil, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// PostAdvance queues a clock advance and returns its request_id
func PostAdvance(ctx context.Context, client *http.Client, baseURL string, minutes int64) (string, error) {
	var resp handlers.AdvanceResponse
	if _, err := doJSON(ctx, client, http.MethodPost, baseURL+"/v1/clock/advance", handlers.AdvanceRequest{Minutes: minutes}, &resp); err != nil {
		return "", err
	}
	return resp.RequestID, nil
}

// PollForClock waits until the clock reaches target
func PollForClock(ctx context.Context, client *http.Client, baseURL string, target int64) (*handlers.ClockResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, AdvanceTimeout)
	defer cancel()

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		c, err := GetClock(ctx, client, baseURL)
		if err == nil && c.Clock >= target {
			return c, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timeout waiting for clock to reach %d", target)
		case <-ticker.C:
		}
	}
}

// GetNPC retrieves one NPC
func GetNPC(ctx context.Context, client *http.Client, baseURL, npcID string) (*actor.NPC, error) {
	var npc actor.NPC
	if _, err := doJSON(ctx, client, http.MethodGet, baseURL+"/v1/npcs/"+npcID, nil, &npc); err != nil {
		return nil, err
	}
	return &npc, nil
}

// GetActivity retrieves what an NPC is doing now
func GetActivity(ctx context.Context, client *http.Client, baseURL, npcID string) (*schedule.Slot, error) {
	var slot schedule.Slot
	if _, err := doJSON(ctx, client, http.MethodGet, baseURL+"/v1/npcs/"+npcID+"/activity", nil, &slot); err != nil {
		return nil, err
	}
	return &slot, nil
}

// GetRelationships retrieves an NPC's outgoing relationships
func GetRelationships(ctx context.Context, client *http.Client, baseURL, npcID string) ([]handlers.RelationshipView, error) {
	var rels []handlers.RelationshipView
	if _, err := doJSON(ctx, client, http.MethodGet, baseURL+"/v1/npcs/"+npcID+"/relationships", nil, &rels); err != nil {
		return nil, err
	}
	return rels, nil
}

// PostDialogue calls a dialogue action and returns the result and HTTP status
func PostDialogue(ctx context.Context, client *http.Client, baseURL, npcID, action string, body interface{}) (*dialogue.Result, int, error) {
	var res dialogue.Result
	status, err := doJSON(ctx, client, http.MethodPost, baseURL+"/v1/dialogue/"+npcID+"/"+action, body, &res)
	if err != nil {
		return nil, status, err
	}
	return &res, status, nil
}
