package dsl

import (
	"fmt"

	"github.com/aretw0/lattice/pkg/graph"
	"github.com/aretw0/lattice/pkg/ports"
)

// NodeBuilder provides a fluent API for configuring one node. Calling a
// kind method (Set, Call, Generate, Route, ClearError) fixes the node's
// variant; calling a second kind method is a Build error.
type NodeBuilder struct {
	id   string
	kind string

	// set_value
	key   string
	value any

	// tool
	toolName  string
	tool      graph.ToolFunc
	inputKeys []string
	outputKey string
	errTarget string

	// llm
	client  ports.CompletionClient
	model   string
	prompt  string
	system  string
	retries int

	// router
	decisionName string
	decide       graph.DecisionFunc
	routes       map[string]string
	defaultRoute string

	next string
}

func (n *NodeBuilder) setKind(kind string) *NodeBuilder {
	if n.kind != "" && n.kind != kind {
		// Remembered and surfaced at Build, keeping the fluent chain tidy.
		n.kind = "conflict:" + n.kind + "+" + kind
		return n
	}
	n.kind = kind
	return n
}

// Set makes this a set_value node writing value under key.
func (n *NodeBuilder) Set(key string, value any) *NodeBuilder {
	n.setKind(graph.KindSetValue)
	n.key = key
	n.value = value
	return n
}

// Call makes this a tool node invoking fn with the given state keys as
// positional arguments.
func (n *NodeBuilder) Call(name string, fn graph.ToolFunc, inputKeys ...string) *NodeBuilder {
	n.setKind(graph.KindTool)
	n.toolName = name
	n.tool = fn
	n.inputKeys = inputKeys
	return n
}

// Generate makes this an llm node completing the prompt template with
// the given model and writing the text to outputKey.
func (n *NodeBuilder) Generate(client ports.CompletionClient, model, prompt, outputKey string) *NodeBuilder {
	n.setKind(graph.KindLLM)
	n.client = client
	n.model = model
	n.prompt = prompt
	n.outputKey = outputKey
	return n
}

// Route makes this a router node using decide to pick a branch.
func (n *NodeBuilder) Route(name string, decide graph.DecisionFunc) *NodeBuilder {
	n.setKind(graph.KindRouter)
	n.decisionName = name
	n.decide = decide
	return n
}

// ClearError makes this a clear_error node.
func (n *NodeBuilder) ClearError() *NodeBuilder {
	n.setKind(graph.KindClearError)
	return n
}

// Output sets the state key receiving a tool's result.
func (n *NodeBuilder) Output(key string) *NodeBuilder {
	n.outputKey = key
	return n
}

// System sets an llm node's system prompt.
func (n *NodeBuilder) System(prompt string) *NodeBuilder {
	n.system = prompt
	return n
}

// Retries bounds an llm node's rate-limit retries.
func (n *NodeBuilder) Retries(count int) *NodeBuilder {
	n.retries = count
	return n
}

// Go sets the linear successor. Omitting it leaves the node terminal.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.next = target
	return n
}

// Error sets a tool node's error branch.
func (n *NodeBuilder) Error(target string) *NodeBuilder {
	n.errTarget = target
	return n
}

// Branch adds a router branch for the route key.
func (n *NodeBuilder) Branch(key, target string) *NodeBuilder {
	if n.routes == nil {
		n.routes = make(map[string]string)
	}
	n.routes[key] = target
	return n
}

// Default sets a router's fallback branch.
func (n *NodeBuilder) Default(target string) *NodeBuilder {
	n.defaultRoute = target
	return n
}

// construct builds the hollow node; successors attach in wire.
func (n *NodeBuilder) construct() (graph.Node, error) {
	switch n.kind {
	case graph.KindSetValue:
		return graph.NewSetValue(n.key, n.value, nil), nil
	case graph.KindTool:
		node := graph.NewTool(n.toolName, n.tool, n.inputKeys, n.outputKey, nil)
		return node, nil
	case graph.KindLLM:
		node := graph.NewLLM(n.client, n.model, n.prompt, n.outputKey, nil)
		node.SystemPrompt = n.system
		if n.retries > 0 {
			node.MaxRetries = n.retries
		}
		return node, nil
	case graph.KindRouter:
		return graph.NewRouter(n.decisionName, n.decide, nil), nil
	case graph.KindClearError:
		return graph.NewClearError(nil), nil
	case "":
		return nil, fmt.Errorf("node %q has no kind; call Set, Call, Generate, Route, or ClearError", n.id)
	default:
		return nil, fmt.Errorf("node %q declared with conflicting kinds (%s)", n.id, n.kind)
	}
}

type resolver func(from, to string) (graph.Node, error)

func (n *NodeBuilder) wire(node graph.Node, resolve resolver) error {
	next, err := resolve(n.id, n.next)
	if err != nil {
		return err
	}

	switch target := node.(type) {
	case *graph.SetValueNode:
		target.Next = next
	case *graph.ClearErrorNode:
		target.Next = next
	case *graph.LLMNode:
		target.Next = next
	case *graph.ToolNode:
		target.Next = next
		errNext, err := resolve(n.id, n.errTarget)
		if err != nil {
			return err
		}
		target.ErrNext = errNext
	case *graph.RouterNode:
		target.Routes = make(map[string]graph.Node, len(n.routes))
		for key, id := range n.routes {
			branch, err := resolve(n.id, id)
			if err != nil {
				return err
			}
			target.Routes[key] = branch
		}
		fallback, err := resolve(n.id, n.defaultRoute)
		if err != nil {
			return err
		}
		target.Default = fallback
	}
	return nil
}
