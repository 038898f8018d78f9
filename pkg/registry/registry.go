// Package registry provides the explicit lookup table for injected
// callables. Serialized graph documents store callables by name only;
// importing a document resolves each name against a Registry supplied by
// the host. There is no mechanism for shipping executable source text in
// a document.
package registry

import (
	"fmt"
	"sync"

	"github.com/aretw0/lattice/pkg/graph"
)

// Registry maps names to tool and decision functions. Safe for concurrent
// use; registrations are append-only (re-registering a name overwrites it,
// which is intended for tests).
type Registry struct {
	mu        sync.RWMutex
	tools     map[string]graph.ToolFunc
	decisions map[string]graph.DecisionFunc
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		tools:     make(map[string]graph.ToolFunc),
		decisions: make(map[string]graph.DecisionFunc),
	}
}

// RegisterTool adds a tool function under name.
func (r *Registry) RegisterTool(name string, fn graph.ToolFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = fn
}

// RegisterDecision adds a decision function under name.
func (r *Registry) RegisterDecision(name string, fn graph.DecisionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decisions[name] = fn
}

// Tool resolves a tool function by name.
func (r *Registry) Tool(name string) (graph.ToolFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("tool not registered: %s", name)
	}
	return fn, nil
}

// Decision resolves a decision function by name.
func (r *Registry) Decision(name string) (graph.DecisionFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.decisions[name]
	if !ok {
		return nil, fmt.Errorf("decision function not registered: %s", name)
	}
	return fn, nil
}

// ToolNames returns the registered tool names, for diagnostics.
func (r *Registry) ToolNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	return names
}
