package runner

import (
	"time"
)

// Step actions understood by the runner
const (
	ActionAdvance       = "advance"         // queue a clock advance of Minutes and wait for it
	ActionAdvanceToHour = "advance_to_hour" // advance until the clock next reads Hour:00
	ActionStart         = "start"           // open a conversation with NPC
	ActionSelect        = "select"          // pick ResponseID in NPC's conversation
	ActionEnd           = "end"             // interrupt NPC's conversation
	ActionCheck         = "check"           // only evaluate expectations
)

// TestSuite defines a complete integration test scenario
// Can either be a regular test with Steps, or a suite that references other Cases
type TestSuite struct {
	Name  string     `json:"name"`
	Steps []TestStep `json:"steps,omitempty"` // Used for regular tests
	Cases []string   `json:"cases,omitempty"` // Used for suite tests (list of case files)
}

// IsSequence returns true if this is a suite that sequences other cases
func (ts *TestSuite) IsSequence() bool {
	return len(ts.Cases) > 0
}

// TestStep defines a single API interaction and its expected outcomes
type TestStep struct {
	Name         string       `json:"name,omitempty"`
	Action       string       `json:"action"`
	NPC          string       `json:"npc,omitempty"`
	ResponseID   string       `json:"response_id,omitempty"`
	Minutes      int64        `json:"minutes,omitempty"`
	Hour         int          `json:"hour,omitempty"`
	Expectations Expectations `json:"expect"`
}

// Expectations defines what to check after a test step executes
type Expectations struct {
	// World
	Hour         *int              `json:"hour,omitempty"`
	NPCLocations map[string]string `json:"npc_locations,omitempty"`
	// NPCActivities maps NPC ID to a substring of its current activity
	NPCActivities map[string]string `json:"npc_activities,omitempty"`
	// KnowsNPCs maps NPC ID to NPC IDs it must have a relationship with
	KnowsNPCs map[string][]string `json:"knows_npcs,omitempty"`

	// Dialogue result of start/select steps
	NodeID            *string  `json:"node_id,omitempty"`
	ResponseIDs       []string `json:"response_ids,omitempty"` // exact set offered, order independent
	ConversationEnded *bool    `json:"conversation_ended,omitempty"`
	QuestAccepted     *bool    `json:"quest_accepted,omitempty"`
	ResponseContains  []string `json:"response_contains,omitempty"`
	Status            *int     `json:"status,omitempty"` // HTTP status of the step's call
}

// TestResult contains the outcome of running a test step
type TestResult struct {
	StepName     string
	Success      bool
	Error        error
	Duration     time.Duration
	RequestID    string
	ResponseText string
}

// TestJob represents a test suite to be executed
type TestJob struct {
	Name     string
	Suite    TestSuite
	CaseFile string
}

// TestRunResult contains the results of running an entire test suite
type TestRunResult struct {
	Job      TestJob
	Results  []TestResult
	Error    error
	Duration time.Duration
}
