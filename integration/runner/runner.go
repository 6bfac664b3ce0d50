package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/jwebster45206/npc-engine/internal/handlers"
	"github.com/jwebster45206/npc-engine/pkg/dialogue"
)

type ErrorHandlingMode string

const ErrorHandlingExit ErrorHandlingMode = "exit"
const ErrorHandlingContinue ErrorHandlingMode = "continue"

// Runner executes integration tests against a running npc-engine API
type Runner struct {
	BaseURL           string
	Client            *http.Client
	Timeout           time.Duration
	Logger            func(format string, args ...interface{})
	ErrorHandlingMode ErrorHandlingMode
}

// NewRunner creates a new test runner
func NewRunner(baseURL string) *Runner {
	return &Runner{
		BaseURL:           strings.TrimSuffix(baseURL, "/"),
		Client:            &http.Client{Timeout: 60 * time.Second},
		Timeout:           30 * time.Second,
		Logger:            func(string, ...interface{}) {},
		ErrorHandlingMode: ErrorHandlingContinue,
	}
}

// LoadTestSuite loads a test suite from a JSON file
func LoadTestSuite(filename string) (TestSuite, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return TestSuite{}, fmt.Errorf("failed to read test file %s: %w", filename, err)
	}

	var suite TestSuite
	if err := json.Unmarshal(content, &suite); err != nil {
		return TestSuite{}, fmt.Errorf("failed to parse JSON in %s: %w", filename, err)
	}

	return suite, nil
}

// LoadTestSuiteWithExpansion loads a test suite and expands it if it's a sequence
// Returns a list of actual test suites (expanded from the sequence if needed)
func LoadTestSuiteWithExpansion(filename string, casesDir string) ([]TestJob, error) {
	suite, err := LoadTestSuite(filename)
	if err != nil {
		return nil, err
	}

	if !suite.IsSequence() {
		return []TestJob{{
			Name:     suite.Name,
			Suite:    suite,
			CaseFile: filename,
		}}, nil
	}

	var jobs []TestJob
	for _, caseFile := range suite.Cases {
		casePath := filepath.Join(casesDir, caseFile)

		// Recursively load (in case a sequence references another sequence)
		subJobs, err := LoadTestSuiteWithExpansion(casePath, casesDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load case '%s' referenced by sequence '%s': %w", caseFile, suite.Name, err)
		}

		jobs = append(jobs, subJobs...)
	}

	return jobs, nil
}

// RunSuite executes a complete test suite against the API's live world
func (r *Runner) RunSuite(ctx context.Context, suite TestSuite) (TestRunResult, error) {
	start := time.Now()
	result := TestRunResult{
		Job: TestJob{
			Name:  suite.Name,
			Suite: suite,
		},
		Results: make([]TestResult, 0, len(suite.Steps)),
	}

	for i, step := range suite.Steps {
		r.Logger("    [%d/%d] Running step: %s", i+1, len(suite.Steps), step.Name)
		stepResult := r.runStep(ctx, step)
		result.Results = append(result.Results, stepResult)

		if stepResult.Error != nil {
			r.Logger("    [%d/%d] ✗ %s: %v", i+1, len(suite.Steps), step.Name, stepResult.Error)
			if result.Error == nil {
				result.Error = fmt.Errorf("step %d (%s) failed: %w", i, step.Name, stepResult.Error)
			}
			if r.ErrorHandlingMode == ErrorHandlingExit {
				break
			}
			continue
		}

		r.Logger("    [%d/%d] ✓ %s (%v)", i+1, len(suite.Steps), step.Name, stepResult.Duration)
	}

	result.Duration = time.Since(start)
	return result, result.Error
}

// runStep performs one action and checks its expectations
func (r *Runner) runStep(ctx context.Context, step TestStep) TestResult {
	start := time.Now()
	result := TestResult{StepName: step.Name}
	fail := func(err error) TestResult {
		result.Error = err
		result.Duration = time.Since(start)
		return result
	}

	ctx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	var (
		res    *dialogue.Result
		status int
		err    error
	)
	switch step.Action {
	case ActionAdvance, ActionAdvanceToHour:
		result.RequestID, err = r.advance(ctx, step)
		status = http.StatusAccepted
	case ActionStart:
		res, status, err = PostDialogue(ctx, r.Client, r.BaseURL, step.NPC, "start", nil)
	case ActionSelect:
		res, status, err = PostDialogue(ctx, r.Client, r.BaseURL, step.NPC, "select", handlers.SelectRequest{ResponseID: step.ResponseID})
	case ActionEnd:
		var end handlers.EndResponse
		status, err = doJSON(ctx, r.Client, http.MethodPost, r.BaseURL+"/v1/dialogue/"+step.NPC+"/end", nil, &end)
	case ActionCheck:
		status = http.StatusOK
	default:
		return fail(fmt.Errorf("unknown action %q", step.Action))
	}

	exp := step.Expectations
	if exp.Status != nil {
		if status != *exp.Status {
			return fail(fmt.Errorf("expected status %d, got %d (%v)", *exp.Status, status, err))
		}
		// an expected error status is a pass
		err = nil
	}
	if err != nil {
		return fail(err)
	}
	if res != nil {
		result.ResponseText = res.Text
	}

	if err := r.checkExpectations(ctx, exp, res); err != nil {
		return fail(fmt.Errorf("expectation failed: %w", err))
	}

	result.Success = true
	result.Duration = time.Since(start)
	return result
}

// advance queues a clock advance and waits for the worker to apply it
func (r *Runner) advance(ctx context.Context, step TestStep) (string, error) {
	before, err := GetClock(ctx, r.Client, r.BaseURL)
	if err != nil {
		return "", err
	}

	minutes := step.Minutes
	if step.Action == ActionAdvanceToHour {
		// assumes a 60-minute, 24-hour clock
		hours := (step.Hour - before.Hour + 24) % 24
		if hours == 0 {
			hours = 24
		}
		minutes = int64(hours)*60 - before.Clock%60
	}

	requestID, err := PostAdvance(ctx, r.Client, r.BaseURL, minutes)
	if err != nil {
		return "", err
	}
	if _, err := PollForClock(ctx, r.Client, r.BaseURL, before.Clock+minutes); err != nil {
		return requestID, err
	}
	return requestID, nil
}

// checkExpectations validates the step's expectations against the API
func (r *Runner) checkExpectations(ctx context.Context, exp Expectations, res *dialogue.Result) error {
	if exp.Hour != nil {
		c, err := GetClock(ctx, r.Client, r.BaseURL)
		if err != nil {
			return err
		}
		if c.Hour != *exp.Hour {
			return fmt.Errorf("expected hour %d, got %d", *exp.Hour, c.Hour)
		}
	}

	for npcID, expectedLocation := range exp.NPCLocations {
		npc, err := GetNPC(ctx, r.Client, r.BaseURL, npcID)
		if err != nil {
			return fmt.Errorf("expected NPC %s to exist: %w", npcID, err)
		}
		if npc.Location != expectedLocation {
			return fmt.Errorf("expected NPC %s to be at %s, got %s", npcID, expectedLocation, npc.Location)
		}
	}

	for npcID, expectedActivity := range exp.NPCActivities {
		slot, err := GetActivity(ctx, r.Client, r.BaseURL, npcID)
		if err != nil {
			return err
		}
		if !strings.Contains(strings.ToLower(slot.Activity), strings.ToLower(expectedActivity)) {
			return fmt.Errorf("expected NPC %s activity to contain '%s', got '%s'", npcID, expectedActivity, slot.Activity)
		}
	}

	for npcID, others := range exp.KnowsNPCs {
		rels, err := GetRelationships(ctx, r.Client, r.BaseURL, npcID)
		if err != nil {
			return err
		}
		for _, other := range others {
			if !slices.ContainsFunc(rels, func(v handlers.RelationshipView) bool { return v.NPCID == other }) {
				return fmt.Errorf("expected NPC %s to know %s", npcID, other)
			}
		}
	}

	return checkDialogue(exp, res)
}

func checkDialogue(exp Expectations, res *dialogue.Result) error {
	needsResult := exp.NodeID != nil || exp.ResponseIDs != nil || exp.ConversationEnded != nil ||
		exp.QuestAccepted != nil || len(exp.ResponseContains) > 0
	if !needsResult {
		return nil
	}
	if res == nil {
		return errors.New("dialogue expectations on a step without a dialogue result")
	}

	if exp.NodeID != nil && res.NodeID != *exp.NodeID {
		return fmt.Errorf("expected node %s, got %s", *exp.NodeID, res.NodeID)
	}

	// Full response set check (order independent)
	if exp.ResponseIDs != nil {
		var actual []string
		for _, resp := range res.AvailableResponses {
			actual = append(actual, resp.ID)
		}
		expected := slices.Clone(exp.ResponseIDs)
		slices.Sort(expected)
		slices.Sort(actual)
		if !slices.Equal(expected, actual) {
			return fmt.Errorf("expected responses %v, got %v", exp.ResponseIDs, actual)
		}
	}

	if exp.ConversationEnded != nil && res.ConversationEnded != *exp.ConversationEnded {
		return fmt.Errorf("expected conversation_ended to be %t, got %t", *exp.ConversationEnded, res.ConversationEnded)
	}
	if exp.QuestAccepted != nil && res.QuestAccepted != *exp.QuestAccepted {
		return fmt.Errorf("expected quest_accepted to be %t, got %t", *exp.QuestAccepted, res.QuestAccepted)
	}

	lowerResponse := strings.ToLower(res.Text)
	for _, expectedText := range exp.ResponseContains {
		if !strings.Contains(lowerResponse, strings.ToLower(expectedText)) {
			return fmt.Errorf("expected response to contain '%s', but it didn't", expectedText)
		}
	}
	return nil
}
