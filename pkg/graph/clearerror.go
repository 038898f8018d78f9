package graph

import (
	"context"
	"log/slog"

	"github.com/aretw0/lattice/pkg/domain"
)

// ClearErrorNode removes the reserved error key from the state, if set,
// and always proceeds to Next. Placing one after a tool's error branch
// lets a graph recover and continue with a clean slate.
type ClearErrorNode struct {
	Next Node

	Logger *slog.Logger
}

// NewClearError creates a ClearErrorNode.
func NewClearError(next Node) *ClearErrorNode {
	return &ClearErrorNode{Next: next}
}

func (n *ClearErrorNode) Execute(ctx context.Context, state *domain.State) (Node, error) {
	if state.Has(domain.KeyLastError) {
		orNop(n.Logger).Debug("clearing error key from state")
		state.Delete(domain.KeyLastError)
	}
	return n.Next, nil
}

func (n *ClearErrorNode) Kind() string { return KindClearError }
func (n *ClearErrorNode) sealed()      {}
