package domain

import "time"

// Outcome classifies a single audit step.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
)

// Node labels that appear in audit steps but do not correspond to a graph
// node variant.
const (
	// NodeCircuitBreaker labels the synthetic final step appended when the
	// step budget is exhausted.
	NodeCircuitBreaker = "circuit_breaker"
)

// AuditStep is one immutable record of a single node invocation.
// It is produced once per executor tick and never modified after append.
type AuditStep struct {
	Step        int            `json:"step"`
	Node        string         `json:"node"`
	StateBefore map[string]any `json:"state_before"`
	StateDiff   StateDiff      `json:"state_diff"`
	RunMetadata map[string]any `json:"run_metadata"`
	Outcome     Outcome        `json:"outcome"`
	Error       string         `json:"error,omitempty"`
}

// Summary aggregates metering data over a whole run.
type Summary struct {
	TotalSteps            int `json:"total_steps"`
	TotalPromptTokens     int `json:"total_prompt_tokens"`
	TotalCompletionTokens int `json:"total_completion_tokens"`
	TotalTokens           int `json:"total_tokens"`
}

// RunLog is the full audit trail of one run. It is owned by the executor
// for the lifetime of the run, append-only, and persisted on every exit
// path, including forced termination.
type RunLog struct {
	RunID     string      `json:"run_id"`
	UserID    string      `json:"user_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Steps     []AuditStep `json:"steps"`
	Summary   Summary     `json:"summary"`
}

// FinalState replays every step diff on top of the initial snapshot,
// reconstructing the state the run ended with. This is the postmortem
// counterpart of the executor's live state.
func (l *RunLog) FinalState(initial map[string]any) map[string]any {
	state := initial
	if state == nil {
		state = map[string]any{}
	}
	for _, step := range l.Steps {
		state = Apply(state, step.StateDiff)
	}
	return state
}
