package domain

import (
	"context"
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventNodeEnter  EventType = "node_enter"
	EventNodeLeave  EventType = "node_leave"
	EventLLMCall    EventType = "llm_call"
	EventToolReturn EventType = "tool_return"
	EventRunEnd     EventType = "run_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// NodeEvent marks entry to or exit from a node during a run.
type NodeEvent struct {
	EventBase
	Step    int     `json:"step"`
	Node    string  `json:"node"`
	Outcome Outcome `json:"outcome,omitempty"` // set on leave only
}

// LLMEvent reports one completed model call with its metered usage,
// taken from the step's metering payload.
type LLMEvent struct {
	EventBase
	Step             int    `json:"step"`
	Model            string `json:"model"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
}

// ToolEvent reports a tool node's return, including failures the tool
// caught into the error key.
type ToolEvent struct {
	EventBase
	Step   int    `json:"step"`
	Failed bool   `json:"failed"`
	Error  string `json:"error,omitempty"`
}

// RunEvent marks the end of a run, on any exit path.
type RunEvent struct {
	EventBase
	Summary Summary `json:"summary"`
	Failed  bool    `json:"failed"`
}

// LifecycleHooks defines optional callbacks for executor observability.
// Nil callbacks are skipped. Hooks run synchronously on the pull loop,
// so they must be fast and must not mutate the state.
type LifecycleHooks struct {
	OnNodeEnter  func(context.Context, *NodeEvent)
	OnNodeLeave  func(context.Context, *NodeEvent)
	OnLLMCall    func(context.Context, *LLMEvent)
	OnToolReturn func(context.Context, *ToolEvent)
	OnRunEnd     func(context.Context, *RunEvent)
}
