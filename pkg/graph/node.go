package graph

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/lattice/pkg/domain"
)

// Node is one unit of graph computation. Executing a node mutates the
// shared state and returns the next node to run, or nil as the terminal
// sentinel.
//
// The interface is sealed: exactly five variants exist (SetValueNode,
// ToolNode, LLMNode, RouterNode, ClearErrorNode). Dispatch sites that
// type-switch over them treat an unknown variant as a programming error,
// so adding a sixth variant is visible everywhere it matters.
type Node interface {
	// Execute runs the node's logic against the state and returns the next
	// node. A nil next node terminates the run. A non-nil error is fatal:
	// the executor records it and stops. Recoverable failures (ToolNode)
	// are routed through state instead and never surface here.
	Execute(ctx context.Context, state *domain.State) (Node, error)

	// Kind returns the stable variant label used in audit steps and
	// serialized documents.
	Kind() string

	sealed()
}

// Node kind labels. They double as the "type" discriminator in serialized
// graph documents.
const (
	KindSetValue   = "set_value"
	KindTool       = "tool"
	KindLLM        = "llm"
	KindRouter     = "router"
	KindClearError = "clear_error"
)

// ToolFunc is an injected callable invoked by a ToolNode. Arguments are
// resolved positionally from declared state keys; the full-state sentinel
// passes the *domain.State itself as the single argument. The result is
// either a scalar (written to the node's output key) or a map[string]any
// (merged into state key by key).
type ToolFunc func(ctx context.Context, args ...any) (any, error)

// DecisionFunc is an injected callable invoked by a RouterNode. It reads
// the state and returns the route key selecting the next branch.
type DecisionFunc func(state *domain.State) string

// nopLogger is the fallback for nodes constructed without a logger.
var nopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func orNop(l *slog.Logger) *slog.Logger {
	if l == nil {
		return nopLogger
	}
	return l
}
