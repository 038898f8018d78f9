package graph

import (
	"context"
	"log/slog"

	"github.com/aretw0/lattice/pkg/domain"
)

// ToolNode invokes an external side-effecting function with positional
// arguments resolved from the state.
//
// This is the graph's only source of recoverable, branch-able failure: an
// error from the tool is caught, its message is stored under the reserved
// last_error key, and execution continues down ErrNext (or terminates if
// no error branch is configured). The error never unwinds to the executor.
type ToolNode struct {
	// Name identifies the tool in registries and serialized documents.
	Name string
	// Tool is the resolved callable.
	Tool ToolFunc
	// InputKeys are resolved positionally from the state. The single entry
	// domain.KeyFullState passes the whole state instead.
	InputKeys []string
	// OutputKey receives the result. When empty and the result is a
	// map[string]any, the entries are merged into the state key by key.
	OutputKey string

	Next    Node
	ErrNext Node

	Logger *slog.Logger
}

// NewTool creates a ToolNode.
func NewTool(name string, fn ToolFunc, inputKeys []string, outputKey string, next Node) *ToolNode {
	return &ToolNode{Name: name, Tool: fn, InputKeys: inputKeys, OutputKey: outputKey, Next: next}
}

// OnError sets the error branch and returns the node for chaining.
func (n *ToolNode) OnError(errNext Node) *ToolNode {
	n.ErrNext = errNext
	return n
}

func (n *ToolNode) Execute(ctx context.Context, state *domain.State) (Node, error) {
	log := orNop(n.Logger)

	var args []any
	if len(n.InputKeys) == 1 && n.InputKeys[0] == domain.KeyFullState {
		args = []any{state}
	} else {
		args = make([]any, len(n.InputKeys))
		for i, key := range n.InputKeys {
			args[i] = state.Get(key)
		}
	}

	log.Debug("running tool", "tool", n.Name, "args", len(args))
	result, err := n.Tool(ctx, args...)
	if err != nil {
		log.Warn("tool failed", "tool", n.Name, "err", err)
		state.Set(domain.KeyLastError, err.Error())
		if n.ErrNext != nil {
			return n.ErrNext, nil
		}
		return nil, nil
	}

	if merged, ok := result.(map[string]any); ok && n.OutputKey == "" {
		for k, v := range merged {
			state.Set(k, v)
		}
		log.Debug("merged tool result into state", "tool", n.Name, "keys", len(merged))
	} else if n.OutputKey != "" {
		state.Set(n.OutputKey, result)
	}

	return n.Next, nil
}

func (n *ToolNode) Kind() string { return KindTool }
func (n *ToolNode) sealed()      {}
