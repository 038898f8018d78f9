package dsl

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/graph"
)

// Builder manages graph construction. Nodes are declared by id and may
// reference each other in any order; references are resolved at Build,
// so loops and forward links need no special handling.
type Builder struct {
	nodes map[string]*NodeBuilder
	order []string
	start string
}

// New creates a graph builder.
func New() *Builder {
	return &Builder{nodes: make(map[string]*NodeBuilder)}
}

// Node declares a node, or returns the existing declaration for the id.
// The first declared node is the default start.
func (b *Builder) Node(id string) *NodeBuilder {
	if nb, ok := b.nodes[id]; ok {
		return nb
	}
	nb := &NodeBuilder{id: id}
	b.nodes[id] = nb
	b.order = append(b.order, id)
	if b.start == "" {
		b.start = id
	}
	return nb
}

// Start overrides the entry node.
func (b *Builder) Start(id string) *Builder {
	b.start = id
	return b
}

// Build resolves all references and returns the start node of the live
// graph.
func (b *Builder) Build() (graph.Node, error) {
	if len(b.order) == 0 {
		return nil, fmt.Errorf("graph has no nodes")
	}
	if _, ok := b.nodes[b.start]; !ok {
		return nil, fmt.Errorf("start node %q is not declared", b.start)
	}

	built := make(map[string]graph.Node, len(b.order))
	for _, id := range b.order {
		node, err := b.nodes[id].construct()
		if err != nil {
			return nil, err
		}
		built[id] = node
	}

	resolve := func(from, to string) (graph.Node, error) {
		if to == "" {
			return nil, nil
		}
		node, ok := built[to]
		if !ok {
			return nil, fmt.Errorf("node %q references undeclared node %q", from, to)
		}
		return node, nil
	}

	for _, id := range b.order {
		if err := b.nodes[id].wire(built[id], resolve); err != nil {
			return nil, err
		}
	}

	return built[b.start], nil
}
