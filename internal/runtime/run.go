package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/graph"
)

// Status describes where a run is in its lifecycle.
type Status string

const (
	// StatusRunning means more pulls may produce steps.
	StatusRunning Status = "running"
	// StatusTerminated means the run ended normally (terminal sentinel).
	StatusTerminated Status = "terminated"
	// StatusFailed means the run ended on a fatal node error or because
	// the step budget was exhausted.
	StatusFailed Status = "failed"
)

// Run is one execution of a graph: a pull-based cooperative sequence.
// Each Next call executes exactly one node to completion and yields one
// audit step; ceasing to pull is cancellation, and no node executes after
// the last pull. Callers that stop early must Close the run so the
// partial audit trail is persisted.
type Run struct {
	exec    *Executor
	state   *domain.State
	current graph.Node
	log     *domain.RunLog

	stepIndex        int
	promptTokens     int
	completionTokens int
	totalTokens      int

	status   Status
	finished bool
}

// Start positions a run at the start node with the caller-supplied initial
// state. Nothing executes until the first pull.
func (e *Executor) Start(start graph.Node, initial map[string]any) *Run {
	return &Run{
		exec:    e,
		state:   domain.NewState(initial),
		current: start,
		status:  StatusRunning,
		log: &domain.RunLog{
			RunID:     uuid.NewString(),
			UserID:    e.userID,
			Timestamp: time.Now().UTC(),
		},
	}
}

// Run executes a graph to completion and returns the full audit log.
func (e *Executor) Run(ctx context.Context, start graph.Node, initial map[string]any) (*domain.RunLog, error) {
	return e.Start(start, initial).Drain(ctx)
}

// Status returns the run's lifecycle state.
func (r *Run) Status() Status { return r.status }

// Log returns the audit log accumulated so far. It is append-only; steps
// already yielded never change.
func (r *Run) Log() *domain.RunLog { return r.log }

// Next advances the run by exactly one node. It returns the audit step
// for that node and true, or nil and false once the run is over (the
// final call also persists the run log; its error is the persistence
// error, if any). Node failures do not surface here: they are recorded
// in the step's outcome and end the run on the following pull.
func (r *Run) Next(ctx context.Context) (*domain.AuditStep, bool, error) {
	if r.finished {
		return nil, false, nil
	}
	if r.current == nil {
		if r.status == StatusRunning {
			r.status = StatusTerminated
		}
		return nil, false, r.finish(ctx)
	}
	if r.stepIndex >= r.exec.maxSteps {
		step := r.tripCircuitBreaker()
		return step, true, nil
	}

	step := r.tick(ctx)
	return step, true, nil
}

// Drain pulls until the run is over and returns the complete log.
func (r *Run) Drain(ctx context.Context) (*domain.RunLog, error) {
	for {
		_, ok, err := r.Next(ctx)
		if err != nil {
			return r.log, err
		}
		if !ok {
			return r.log, nil
		}
	}
}

// Close ends an abandoned run, persisting whatever steps were produced.
// It is safe to call after normal completion.
func (r *Run) Close(ctx context.Context) error {
	if r.finished {
		return nil
	}
	if r.status == StatusRunning {
		r.status = StatusTerminated
	}
	return r.finish(ctx)
}

// tick executes the current node and appends one audit step.
func (r *Run) tick(ctx context.Context) *domain.AuditStep {
	node := r.current
	label := node.Kind()
	before := r.state.Snapshot()

	r.emitNodeEnter(ctx, label)
	r.exec.logger.Debug("executing node", "run_id", r.log.RunID, "step", r.stepIndex, "node", label)

	next, execErr := node.Execute(ctx, r.state)

	step := domain.AuditStep{
		Step:        r.stepIndex,
		Node:        label,
		StateBefore: before,
		RunMetadata: map[string]any{},
		Outcome:     domain.OutcomeSuccess,
	}

	if execErr != nil {
		r.exec.logger.Error("fatal node error", "run_id", r.log.RunID, "node", label, "err", execErr)
		step.Outcome = domain.OutcomeError
		step.Error = execErr.Error()
		next = nil
		r.status = StatusFailed
	} else if msg, ok := r.state.Get(domain.KeyLastError).(string); ok && msg != "" {
		// A tool caught its own failure; the run continues down the error
		// branch, but the step is still flagged for the audit trail.
		step.Outcome = domain.OutcomeError
		step.Error = msg
	}

	after := r.state.Snapshot()

	// The metering key carries per-call usage out of the node for one step
	// only: fold it into the totals and clear it before diffing, so it
	// never appears in the durable diff.
	if meta, ok := after[domain.KeyRunMetadata].(map[string]any); ok {
		step.RunMetadata = meta
		delete(after, domain.KeyRunMetadata)
		r.promptTokens += toInt(meta["prompt_tokens"])
		r.completionTokens += toInt(meta["output_tokens"])
		r.totalTokens += toInt(meta["total_tokens"])
	}
	r.state.Delete(domain.KeyRunMetadata)

	step.StateDiff = domain.Diff(before, after)

	r.log.Steps = append(r.log.Steps, step)
	if label == graph.KindLLM && len(step.RunMetadata) > 0 {
		r.emitLLMCall(ctx, &step)
	}
	if label == graph.KindTool {
		r.emitToolReturn(ctx, &step)
	}
	r.emitNodeLeave(ctx, label, step.Outcome)

	r.current = next
	r.stepIndex++
	return &step
}

// tripCircuitBreaker appends the synthetic budget-exceeded step. This is
// the only way a cycle with no exit condition is forced to end.
func (r *Run) tripCircuitBreaker() *domain.AuditStep {
	r.exec.logger.Warn("circuit breaker tripped",
		"run_id", r.log.RunID, "max_steps", r.exec.maxSteps)

	step := domain.AuditStep{
		Step:        r.stepIndex,
		Node:        domain.NodeCircuitBreaker,
		StateBefore: map[string]any{},
		StateDiff:   domain.NewStateDiff(),
		RunMetadata: map[string]any{},
		Outcome:     domain.OutcomeError,
		Error:       fmt.Sprintf("maximum steps exceeded (%d), possible infinite loop", r.exec.maxSteps),
	}
	r.log.Steps = append(r.log.Steps, step)
	r.current = nil
	r.status = StatusFailed
	return &step
}

// finish seals the summary, persists the log and fires the run-end hook.
// Runs exactly once per run.
func (r *Run) finish(ctx context.Context) error {
	r.finished = true
	r.log.Summary = domain.Summary{
		TotalSteps:            r.stepIndex,
		TotalPromptTokens:     r.promptTokens,
		TotalCompletionTokens: r.completionTokens,
		TotalTokens:           r.totalTokens,
	}

	var saveErr error
	if r.exec.store != nil {
		if saveErr = r.exec.store.SaveRun(ctx, r.log); saveErr != nil {
			r.exec.logger.Error("failed to persist run log", "run_id", r.log.RunID, "err", saveErr)
			saveErr = fmt.Errorf("failed to persist run log: %w", saveErr)
		} else {
			r.exec.logger.Info("run log persisted",
				"run_id", r.log.RunID, "steps", len(r.log.Steps), "status", r.status)
		}
	}

	if r.exec.hooks.OnRunEnd != nil {
		r.exec.hooks.OnRunEnd(ctx, &domain.RunEvent{
			EventBase: domain.EventBase{
				Timestamp: time.Now().UTC(),
				Type:      domain.EventRunEnd,
				RunID:     r.log.RunID,
			},
			Summary: r.log.Summary,
			Failed:  r.status == StatusFailed,
		})
	}
	return saveErr
}

func (r *Run) emitNodeEnter(ctx context.Context, label string) {
	if r.exec.hooks.OnNodeEnter == nil {
		return
	}
	r.exec.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now().UTC(), Type: domain.EventNodeEnter, RunID: r.log.RunID},
		Step:      r.stepIndex,
		Node:      label,
	})
}

func (r *Run) emitNodeLeave(ctx context.Context, label string, outcome domain.Outcome) {
	if r.exec.hooks.OnNodeLeave == nil {
		return
	}
	r.exec.hooks.OnNodeLeave(ctx, &domain.NodeEvent{
		EventBase: domain.EventBase{Timestamp: time.Now().UTC(), Type: domain.EventNodeLeave, RunID: r.log.RunID},
		Step:      r.stepIndex,
		Node:      label,
		Outcome:   outcome,
	})
}

func (r *Run) emitLLMCall(ctx context.Context, step *domain.AuditStep) {
	if r.exec.hooks.OnLLMCall == nil {
		return
	}
	model, _ := step.RunMetadata["model"].(string)
	r.exec.hooks.OnLLMCall(ctx, &domain.LLMEvent{
		EventBase:        domain.EventBase{Timestamp: time.Now().UTC(), Type: domain.EventLLMCall, RunID: r.log.RunID},
		Step:             step.Step,
		Model:            model,
		PromptTokens:     toInt(step.RunMetadata["prompt_tokens"]),
		CompletionTokens: toInt(step.RunMetadata["output_tokens"]),
		TotalTokens:      toInt(step.RunMetadata["total_tokens"]),
	})
}

func (r *Run) emitToolReturn(ctx context.Context, step *domain.AuditStep) {
	if r.exec.hooks.OnToolReturn == nil {
		return
	}
	r.exec.hooks.OnToolReturn(ctx, &domain.ToolEvent{
		EventBase: domain.EventBase{Timestamp: time.Now().UTC(), Type: domain.EventToolReturn, RunID: r.log.RunID},
		Step:      step.Step,
		Failed:    step.Outcome == domain.OutcomeError,
		Error:     step.Error,
	})
}

// toInt coerces the numeric types a metering payload may carry after a
// JSON round-trip.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
