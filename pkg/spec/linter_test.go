package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/graph"
)

func codes(r *Report) []string {
	out := make([]string, 0, len(r.Findings))
	for _, f := range r.Findings {
		out = append(out, f.Code)
	}
	return out
}

func TestLint_CleanGraph(t *testing.T) {
	m := &Manifest{Graph: Graph{
		StartNode: "node_1",
		Nodes: []NodeRecord{
			{ID: "node_1", Type: graph.KindSetValue, Config: map[string]any{"key": "k", "value": 1}},
			{ID: "node_2", Type: graph.KindSetValue, Config: map[string]any{"key": "j", "value": 2}},
		},
		Edges: []EdgeRecord{{Source: "node_1", Target: "node_2"}},
	}}

	report := Lint(m)
	assert.Empty(t, report.Findings)
	assert.False(t, report.HasErrors())
}

func TestLint_MissingStartIsCritical(t *testing.T) {
	m := &Manifest{Graph: Graph{
		StartNode: "ghost",
		Nodes: []NodeRecord{
			{ID: "node_1", Type: graph.KindSetValue},
		},
		Edges: []EdgeRecord{{Source: "node_1", Target: "also_ghost"}},
	}}

	report := Lint(m)
	// Edge checks still run; the unresolvable start is critical and
	// stops everything that depends on a traversal root.
	require.Len(t, report.Findings, 2)
	assert.Equal(t, CodeDanglingTarget, report.Findings[0].Code)
	assert.Equal(t, CodeMissingStart, report.Findings[1].Code)
	assert.Equal(t, SeverityCritical, report.Findings[1].Severity)
	assert.True(t, report.HasErrors())
}

func TestLint_EmptyStart(t *testing.T) {
	report := Lint(&Manifest{Graph: Graph{Nodes: []NodeRecord{{ID: "n", Type: graph.KindSetValue}}}})
	require.Len(t, report.Findings, 1)
	assert.Equal(t, CodeMissingStart, report.Findings[0].Code)
	assert.Equal(t, SeverityCritical, report.Findings[0].Severity)
}

func TestLint_DanglingEdges(t *testing.T) {
	m := &Manifest{Graph: Graph{
		StartNode: "node_1",
		Nodes: []NodeRecord{
			{ID: "node_1", Type: graph.KindSetValue},
		},
		Edges: []EdgeRecord{
			{Source: "ghost", Target: "node_1"},
			{Source: "node_1", Target: "ghost"},
		},
	}}

	report := Lint(m)
	assert.Contains(t, codes(report), CodeDanglingSource)
	assert.Contains(t, codes(report), CodeDanglingTarget)
}

func TestLint_RouterTargets(t *testing.T) {
	m := &Manifest{Graph: Graph{
		StartNode: "node_1",
		Nodes: []NodeRecord{
			{ID: "node_1", Type: graph.KindRouter, Config: map[string]any{
				"decision":      "pick",
				"routes":        map[string]string{"a": "ghost"},
				"default_route": "also_ghost",
			}},
		},
	}}

	report := Lint(m)
	assert.Contains(t, codes(report), CodeRouteTarget)
	assert.Contains(t, codes(report), CodeDefaultTarget)
}

func TestLint_CycleWarning(t *testing.T) {
	m := &Manifest{Graph: Graph{
		StartNode: "node_1",
		Nodes: []NodeRecord{
			{ID: "node_1", Type: graph.KindSetValue},
			{ID: "node_2", Type: graph.KindSetValue},
		},
		Edges: []EdgeRecord{
			{Source: "node_1", Target: "node_2"},
			{Source: "node_2", Target: "node_1"},
		},
	}}

	report := Lint(m)
	assert.Equal(t, []string{CodeCycle}, codes(report))
	assert.False(t, report.HasErrors(), "a cycle is a warning, not an error")
}

func TestLint_CycleReportedOnce(t *testing.T) {
	m := &Manifest{Graph: Graph{
		StartNode: "node_1",
		Nodes: []NodeRecord{
			{ID: "node_1", Type: graph.KindSetValue},
			{ID: "node_2", Type: graph.KindSetValue},
			{ID: "node_3", Type: graph.KindSetValue},
		},
		Edges: []EdgeRecord{
			{Source: "node_1", Target: "node_2"},
			{Source: "node_2", Target: "node_3"},
			{Source: "node_3", Target: "node_1"},
		},
	}}

	report := Lint(m)
	count := 0
	for _, f := range report.Findings {
		if f.Code == CodeCycle {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestLint_Unreachable(t *testing.T) {
	m := &Manifest{Graph: Graph{
		StartNode: "node_1",
		Nodes: []NodeRecord{
			{ID: "node_1", Type: graph.KindSetValue},
			{ID: "node_2", Type: graph.KindSetValue},
		},
	}}

	report := Lint(m)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, CodeUnreachable, report.Findings[0].Code)
	assert.Equal(t, "node_2", report.Findings[0].NodeID)
}

func TestLint_RouterRoutesCountAsReachability(t *testing.T) {
	// Branch declared only in router config, with no matching edge
	// record, still makes its target reachable.
	m := &Manifest{Graph: Graph{
		StartNode: "node_1",
		Nodes: []NodeRecord{
			{ID: "node_1", Type: graph.KindRouter, Config: map[string]any{
				"decision": "pick",
				"routes":   map[string]string{"a": "node_2"},
			}},
			{ID: "node_2", Type: graph.KindSetValue},
		},
	}}

	report := Lint(m)
	assert.Empty(t, report.Findings)
}

func TestLint_ToolWithoutInputs(t *testing.T) {
	m := &Manifest{Graph: Graph{
		StartNode: "node_1",
		Nodes: []NodeRecord{
			{ID: "node_1", Type: graph.KindTool, Config: map[string]any{"tool_name": "fetch"}},
		},
	}}

	report := Lint(m)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, CodeToolWithoutInputs, report.Findings[0].Code)
	assert.Equal(t, SeverityWarning, report.Findings[0].Severity)
}
