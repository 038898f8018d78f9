package graph

import (
	"context"
	"log/slog"

	"github.com/aretw0/lattice/pkg/domain"
)

// RouterNode selects the next node by invoking an external decision
// function and looking its result up in the route map.
//
// The chosen key is always recorded under the reserved routing-decision
// key so the choice is visible in the audit diff, even when the run
// terminates because the key is unmatched and no default is set.
type RouterNode struct {
	// Name identifies the decision function in registries and documents.
	Name string
	// Decide reads the state and returns a route key.
	Decide DecisionFunc
	// Routes maps route keys to branches.
	Routes map[string]Node
	// Default is the fallback branch for unmatched keys. Nil means an
	// unmatched key terminates the run.
	Default Node

	Logger *slog.Logger
}

// NewRouter creates a RouterNode.
func NewRouter(name string, decide DecisionFunc, routes map[string]Node) *RouterNode {
	return &RouterNode{Name: name, Decide: decide, Routes: routes}
}

// WithDefault sets the fallback branch and returns the node for chaining.
func (n *RouterNode) WithDefault(node Node) *RouterNode {
	n.Default = node
	return n
}

func (n *RouterNode) Execute(ctx context.Context, state *domain.State) (Node, error) {
	log := orNop(n.Logger)

	routeKey := n.Decide(state)
	state.Set(domain.KeyRouterDecision, routeKey)

	if next, ok := n.Routes[routeKey]; ok {
		log.Debug("routing", "decision", n.Name, "route", routeKey)
		return next, nil
	}
	if n.Default != nil {
		log.Debug("route not found, using default", "decision", n.Name, "route", routeKey)
		return n.Default, nil
	}

	log.Warn("route not found and no default set, terminating", "decision", n.Name, "route", routeKey)
	return nil, nil
}

func (n *RouterNode) Kind() string { return KindRouter }
func (n *RouterNode) sealed()      {}
