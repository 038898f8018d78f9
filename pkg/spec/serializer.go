package spec

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/aretw0/lattice/pkg/graph"
	"github.com/aretw0/lattice/pkg/llm"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/registry"
)

// Export walks a live graph breadth-first from start and produces its
// serialized form. Node identity is pointer identity: a node reachable
// through several paths (a diamond, a cycle back-edge) is emitted once
// and referenced by id everywhere else, so export terminates on cyclic
// graphs and re-exporting an imported document is stable.
//
// Ids are assigned in visit order (node_1, node_2, ...). Neighbor order
// is deterministic: the linear successor first, then router routes in
// sorted key order, then the default branch, then a tool's error branch.
func Export(start graph.Node) (Graph, error) {
	if start == nil {
		return Graph{}, ErrEmptyGraph
	}

	ids := map[graph.Node]string{}
	var order []graph.Node

	visit := func(n graph.Node) {
		if n == nil {
			return
		}
		if _, seen := ids[n]; seen {
			return
		}
		ids[n] = fmt.Sprintf("node_%d", len(ids)+1)
		order = append(order, n)
	}

	visit(start)
	for i := 0; i < len(order); i++ {
		for _, next := range neighbors(order[i]) {
			visit(next)
		}
	}

	g := Graph{StartNode: ids[start]}
	for _, n := range order {
		record, edges, err := exportNode(n, ids)
		if err != nil {
			return Graph{}, err
		}
		g.Nodes = append(g.Nodes, record)
		g.Edges = append(g.Edges, edges...)
	}
	return g, nil
}

// neighbors enumerates a node's successors in deterministic order.
func neighbors(n graph.Node) []graph.Node {
	switch node := n.(type) {
	case *graph.SetValueNode:
		return []graph.Node{node.Next}
	case *graph.ClearErrorNode:
		return []graph.Node{node.Next}
	case *graph.LLMNode:
		return []graph.Node{node.Next}
	case *graph.ToolNode:
		return []graph.Node{node.Next, node.ErrNext}
	case *graph.RouterNode:
		out := make([]graph.Node, 0, len(node.Routes)+1)
		for _, key := range sortedKeys(node.Routes) {
			out = append(out, node.Routes[key])
		}
		return append(out, node.Default)
	default:
		return nil
	}
}

func exportNode(n graph.Node, ids map[graph.Node]string) (NodeRecord, []EdgeRecord, error) {
	id := ids[n]
	record := NodeRecord{ID: id, Type: n.Kind()}
	var edges []EdgeRecord

	edge := func(target graph.Node, condition string) {
		if target == nil {
			return
		}
		edges = append(edges, EdgeRecord{Source: id, Target: ids[target], Condition: condition})
	}

	switch node := n.(type) {
	case *graph.SetValueNode:
		record.Config = map[string]any{"key": node.Key, "value": node.Value}
		edge(node.Next, "")

	case *graph.ClearErrorNode:
		edge(node.Next, "")

	case *graph.LLMNode:
		record.Config = map[string]any{
			"model":           node.Model,
			"prompt_template": node.PromptTemplate,
			"output_key":      node.OutputKey,
		}
		if node.SystemPrompt != "" {
			record.Config["system_instruction"] = node.SystemPrompt
		}
		if node.MaxRetries != graph.DefaultMaxRetries {
			record.Config["max_retries"] = node.MaxRetries
		}
		edge(node.Next, "")

	case *graph.ToolNode:
		record.Config = map[string]any{
			"tool_name":  node.Name,
			"input_keys": node.InputKeys,
		}
		if node.OutputKey != "" {
			record.Config["output_key"] = node.OutputKey
		}
		edge(node.Next, "")
		edge(node.ErrNext, ConditionError)

	case *graph.RouterNode:
		routes := make(map[string]string, len(node.Routes))
		for _, key := range sortedKeys(node.Routes) {
			routes[key] = ids[node.Routes[key]]
			edge(node.Routes[key], key)
		}
		record.Config = map[string]any{
			"decision": node.Name,
			"routes":   routes,
		}
		if node.Default != nil {
			record.Config["default_route"] = ids[node.Default]
			edge(node.Default, ConditionDefault)
		}

	default:
		return NodeRecord{}, nil, fmt.Errorf("cannot export node kind %q", n.Kind())
	}
	return record, edges, nil
}

func sortedKeys(m map[string]graph.Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ImportOptions supplies the host-side bindings a document cannot carry:
// the callable registry, the completion client factory, and a logger.
type ImportOptions struct {
	// Registry resolves tool and decision names. Required when the
	// document contains tool or router nodes.
	Registry *registry.Registry
	// Clients builds completion clients per model and system instruction.
	// Required when the document contains llm nodes.
	Clients *llm.ClientCache
	// Client, when set, is used for every llm node regardless of model,
	// bypassing Clients. Useful for tests.
	Client ports.CompletionClient
	Logger *slog.Logger
}

// Import reconstructs a live graph from a manifest and returns its start
// node. All references are resolved against the document's node ids; an
// edge or route naming an absent id fails with UnresolvedReferenceError.
// Tool names are resolved against the registry and checked against the
// manifest's policy allow list.
func Import(m *Manifest, opts ImportOptions) (graph.Node, error) {
	if len(m.Graph.Nodes) == 0 {
		return nil, ErrEmptyGraph
	}
	index := m.Graph.NodeIndex()
	if _, ok := index[m.Graph.StartNode]; !ok {
		return nil, &UnresolvedReferenceError{Source: "start_node", Target: m.Graph.StartNode}
	}

	allowed := map[string]bool{}
	for _, t := range m.Policy.AllowedTools {
		allowed[t] = true
	}

	// Build hollow nodes first so edges and routes can point at nodes
	// declared later in the document (and at cycle back-edges).
	nodes := make(map[string]graph.Node, len(m.Graph.Nodes))
	for _, record := range m.Graph.Nodes {
		node, err := buildNode(record, allowed, opts)
		if err != nil {
			return nil, err
		}
		nodes[record.ID] = node
	}

	resolve := func(source, target string) (graph.Node, error) {
		n, ok := nodes[target]
		if !ok {
			return nil, &UnresolvedReferenceError{Source: source, Target: target}
		}
		return n, nil
	}

	for _, e := range m.Graph.Edges {
		source, ok := nodes[e.Source]
		if !ok {
			return nil, &UnresolvedReferenceError{Source: e.Source, Target: e.Target}
		}
		target, err := resolve(e.Source, e.Target)
		if err != nil {
			return nil, err
		}
		if err := wireEdge(source, e, target); err != nil {
			return nil, err
		}
	}

	// Router branches come from config, which survives even when an edge
	// list was hand-edited.
	for _, record := range m.Graph.Nodes {
		router, ok := nodes[record.ID].(*graph.RouterNode)
		if !ok {
			continue
		}
		var cfg RouterConfig
		if err := DecodeConfig(record, &cfg); err != nil {
			return nil, err
		}
		router.Routes = make(map[string]graph.Node, len(cfg.Routes))
		for key, targetID := range cfg.Routes {
			target, err := resolve(record.ID, targetID)
			if err != nil {
				return nil, err
			}
			router.Routes[key] = target
		}
		if cfg.DefaultRoute != "" {
			target, err := resolve(record.ID, cfg.DefaultRoute)
			if err != nil {
				return nil, err
			}
			router.Default = target
		}
	}

	return nodes[m.Graph.StartNode], nil
}

func buildNode(record NodeRecord, allowed map[string]bool, opts ImportOptions) (graph.Node, error) {
	switch record.Type {
	case graph.KindSetValue:
		var cfg SetValueConfig
		if err := DecodeConfig(record, &cfg); err != nil {
			return nil, err
		}
		node := graph.NewSetValue(cfg.Key, cfg.Value, nil)
		node.Logger = opts.Logger
		return node, nil

	case graph.KindClearError:
		node := graph.NewClearError(nil)
		node.Logger = opts.Logger
		return node, nil

	case graph.KindTool:
		var cfg ToolConfig
		if err := DecodeConfig(record, &cfg); err != nil {
			return nil, err
		}
		if len(allowed) > 0 && !allowed[cfg.ToolName] {
			return nil, &UnknownToolError{Node: record.ID, Tool: cfg.ToolName, Denied: true}
		}
		if opts.Registry == nil {
			return nil, &UnknownToolError{Node: record.ID, Tool: cfg.ToolName}
		}
		fn, err := opts.Registry.Tool(cfg.ToolName)
		if err != nil {
			return nil, &UnknownToolError{Node: record.ID, Tool: cfg.ToolName}
		}
		node := graph.NewTool(cfg.ToolName, fn, cfg.InputKeys, cfg.OutputKey, nil)
		node.Logger = opts.Logger
		return node, nil

	case graph.KindLLM:
		var cfg LLMConfig
		if err := DecodeConfig(record, &cfg); err != nil {
			return nil, err
		}
		client := opts.Client
		if client == nil {
			if opts.Clients == nil {
				return nil, fmt.Errorf("node %s: no completion client configured", record.ID)
			}
			var err error
			client, err = opts.Clients.Get(cfg.Model, cfg.SystemInstruction)
			if err != nil {
				return nil, fmt.Errorf("node %s: %w", record.ID, err)
			}
		}
		node := graph.NewLLM(client, cfg.Model, cfg.PromptTemplate, cfg.OutputKey, nil)
		node.SystemPrompt = cfg.SystemInstruction
		if cfg.MaxRetries > 0 {
			node.MaxRetries = cfg.MaxRetries
		}
		node.Logger = opts.Logger
		return node, nil

	case graph.KindRouter:
		var cfg RouterConfig
		if err := DecodeConfig(record, &cfg); err != nil {
			return nil, err
		}
		if opts.Registry == nil {
			return nil, fmt.Errorf("node %s: no registry to resolve decision %q", record.ID, cfg.Decision)
		}
		decide, err := opts.Registry.Decision(cfg.Decision)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", record.ID, err)
		}
		node := graph.NewRouter(cfg.Decision, decide, nil)
		node.Logger = opts.Logger
		return node, nil

	default:
		return nil, fmt.Errorf("node %s: unknown node type %q", record.ID, record.Type)
	}
}

// wireEdge attaches a resolved target to its source node according to the
// edge's condition. Router branches are wired from config instead, so
// route-conditioned edges are accepted as annotations and skipped here.
func wireEdge(source graph.Node, e EdgeRecord, target graph.Node) error {
	switch node := source.(type) {
	case *graph.SetValueNode:
		node.Next = target
	case *graph.ClearErrorNode:
		node.Next = target
	case *graph.LLMNode:
		node.Next = target
	case *graph.ToolNode:
		if e.Condition == ConditionError {
			node.ErrNext = target
		} else {
			node.Next = target
		}
	case *graph.RouterNode:
		// config-driven
	default:
		return fmt.Errorf("cannot wire edge from node kind %q", source.Kind())
	}
	return nil
}
