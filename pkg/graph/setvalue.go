package graph

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
)

// SetValueNode writes a value into the state.
//
// If Value is a string wrapped in braces ("{other_key}"), the node copies
// the referenced key's current value instead of the literal. A missing
// referenced key is not an error: the node logs a warning and falls back
// to writing the literal form, so a misconfigured reference never fails
// the run.
type SetValueNode struct {
	Key   string
	Value any
	Next  Node

	Logger *slog.Logger
}

// NewSetValue creates a SetValueNode.
func NewSetValue(key string, value any, next Node) *SetValueNode {
	return &SetValueNode{Key: key, Value: value, Next: next}
}

func (n *SetValueNode) Execute(ctx context.Context, state *domain.State) (Node, error) {
	log := orNop(n.Logger)
	value := n.Value

	if ref, ok := stateReference(n.Value); ok {
		if refVal, present := state.Lookup(ref); present {
			log.Debug("copying state key", "from", ref, "to", n.Key)
			value = refVal
		} else {
			log.Warn("referenced key not in state, setting literal value", "key", ref)
		}
	}

	state.Set(n.Key, value)
	return n.Next, nil
}

func (n *SetValueNode) Kind() string { return KindSetValue }
func (n *SetValueNode) sealed()      {}

// stateReference recognizes the "{key}" copy syntax and returns the
// referenced key.
func stateReference(v any) (string, bool) {
	s, ok := v.(string)
	if !ok || len(s) < 3 {
		return "", false
	}
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return "", false
	}
	return s[1 : len(s)-1], true
}
