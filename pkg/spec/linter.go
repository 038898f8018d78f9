package spec

import (
	"fmt"
	"sort"

	"github.com/aretw0/lattice/pkg/graph"
)

// Lint finding codes. E-codes are errors that make the document
// unrunnable; W-codes are suspicious but importable shapes.
const (
	CodeDanglingSource    = "E001"
	CodeDanglingTarget    = "E002"
	CodeMissingStart      = "E003"
	CodeRouteTarget       = "E004"
	CodeDefaultTarget     = "E005"
	CodeCycle             = "W001"
	CodeUnreachable       = "W002"
	CodeToolWithoutInputs = "W003"
)

// Severity classifies a finding. Critical findings abort the checks
// that depend on a traversal root.
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityError    Severity = "error"
	SeverityCritical Severity = "critical"
)

// Finding is one linter result.
type Finding struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	NodeID   string   `json:"node_id,omitempty"`
	Message  string   `json:"message"`
}

// Report is the outcome of linting one document.
type Report struct {
	Findings []Finding `json:"findings"`
}

// HasErrors reports whether any finding is an error or critical.
func (r *Report) HasErrors() bool {
	for _, f := range r.Findings {
		if f.Severity == SeverityError || f.Severity == SeverityCritical {
			return true
		}
	}
	return false
}

func (r *Report) add(code string, severity Severity, nodeID, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		Code:     code,
		Severity: severity,
		NodeID:   nodeID,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Lint statically checks a manifest's graph without importing it: no
// registry, no clients, no execution. Edge endpoints are checked first;
// a missing or unresolvable start node is then critical, and the checks
// that depend on a traversal root are skipped.
func Lint(m *Manifest) *Report {
	report := &Report{}
	g := &m.Graph
	index := g.NodeIndex()

	for _, e := range g.Edges {
		if _, ok := index[e.Source]; !ok {
			report.add(CodeDanglingSource, SeverityError, e.Source, "edge source %q is not declared", e.Source)
		}
		if _, ok := index[e.Target]; !ok {
			report.add(CodeDanglingTarget, SeverityError, e.Target, "edge %s -> %s targets an undeclared node", e.Source, e.Target)
		}
	}

	if g.StartNode == "" {
		report.add(CodeMissingStart, SeverityCritical, "", "graph has no start node")
		return report
	}
	if _, ok := index[g.StartNode]; !ok {
		report.add(CodeMissingStart, SeverityCritical, "", "start node %q is not declared", g.StartNode)
		return report
	}

	for _, record := range g.Nodes {
		lintNode(report, record, index)
	}

	adjacency := buildAdjacency(g, index)

	for _, cycle := range simpleCycles(adjacency) {
		report.add(CodeCycle, SeverityWarning, cycle[0], "cycle detected: %s", joinCycle(cycle))
	}

	reachable := map[string]bool{}
	var walk func(id string)
	walk = func(id string) {
		if reachable[id] {
			return
		}
		reachable[id] = true
		for _, next := range adjacency[id] {
			walk(next)
		}
	}
	walk(g.StartNode)

	for _, record := range g.Nodes {
		if !reachable[record.ID] {
			report.add(CodeUnreachable, SeverityWarning, record.ID, "node %q is unreachable from the start node", record.ID)
		}
	}

	return report
}

func lintNode(report *Report, record NodeRecord, index map[string]NodeRecord) {
	switch record.Type {
	case graph.KindTool:
		var cfg ToolConfig
		if err := DecodeConfig(record, &cfg); err == nil && len(cfg.InputKeys) == 0 {
			report.add(CodeToolWithoutInputs, SeverityWarning, record.ID, "tool node %q declares no input keys", record.ID)
		}
	case graph.KindRouter:
		var cfg RouterConfig
		if err := DecodeConfig(record, &cfg); err != nil {
			return
		}
		for _, key := range sortedStrings(cfg.Routes) {
			if _, ok := index[cfg.Routes[key]]; !ok {
				report.add(CodeRouteTarget, SeverityError, record.ID, "router %q route %q targets undeclared node %q", record.ID, key, cfg.Routes[key])
			}
		}
		if cfg.DefaultRoute != "" {
			if _, ok := index[cfg.DefaultRoute]; !ok {
				report.add(CodeDefaultTarget, SeverityError, record.ID, "router %q default route targets undeclared node %q", record.ID, cfg.DefaultRoute)
			}
		}
	}
}

// buildAdjacency merges edge targets with router config targets, since a
// hand-written document may declare branches only in config. Only targets
// that exist participate; dangling references are reported separately.
func buildAdjacency(g *Graph, index map[string]NodeRecord) map[string][]string {
	seen := map[string]map[string]bool{}
	adjacency := map[string][]string{}
	link := func(source, target string) {
		if _, ok := index[source]; !ok {
			return
		}
		if _, ok := index[target]; !ok {
			return
		}
		if seen[source] == nil {
			seen[source] = map[string]bool{}
		}
		if seen[source][target] {
			return
		}
		seen[source][target] = true
		adjacency[source] = append(adjacency[source], target)
	}

	for _, e := range g.Edges {
		link(e.Source, e.Target)
	}
	for _, record := range g.Nodes {
		if record.Type != graph.KindRouter {
			continue
		}
		var cfg RouterConfig
		if err := DecodeConfig(record, &cfg); err != nil {
			continue
		}
		for _, key := range sortedStrings(cfg.Routes) {
			link(record.ID, cfg.Routes[key])
		}
		if cfg.DefaultRoute != "" {
			link(record.ID, cfg.DefaultRoute)
		}
	}
	for id := range adjacency {
		sort.Strings(adjacency[id])
	}
	return adjacency
}

// simpleCycles enumerates elementary cycles deterministically: a DFS is
// rooted at each node in sorted order, and a cycle is reported only from
// the root that is its lexicographically smallest member, so each cycle
// appears exactly once.
func simpleCycles(adjacency map[string][]string) [][]string {
	roots := make([]string, 0, len(adjacency))
	for id := range adjacency {
		roots = append(roots, id)
	}
	sort.Strings(roots)

	var cycles [][]string
	for _, root := range roots {
		onPath := map[string]bool{}
		var path []string

		var dfs func(id string)
		dfs = func(id string) {
			path = append(path, id)
			onPath[id] = true
			for _, next := range adjacency[id] {
				if next == root {
					cycle := make([]string, len(path))
					copy(cycle, path)
					cycles = append(cycles, cycle)
					continue
				}
				if next < root || onPath[next] {
					continue
				}
				dfs(next)
			}
			onPath[id] = false
			path = path[:len(path)-1]
		}
		dfs(root)
	}
	return cycles
}

func joinCycle(cycle []string) string {
	out := ""
	for _, id := range cycle {
		out += id + " -> "
	}
	return out + cycle[0]
}

func sortedStrings(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
