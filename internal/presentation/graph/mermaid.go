// Package graph renders agent manifests as Mermaid flowcharts for
// documentation and the inspect command.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/lattice/pkg/graph"
	"github.com/aretw0/lattice/pkg/spec"
)

// GenerateMermaid produces Mermaid flowchart syntax for a manifest's
// graph. Node shapes follow the node kind:
//   - start node: ((circle))
//   - tool: [[subroutine]]
//   - llm: [/parallelogram/]
//   - router: {diamond}
//   - others: [rectangle]
//
// Error branches render as dotted arrows; conditioned edges carry their
// route key as the arrow label.
func GenerateMermaid(m *spec.Manifest) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, node := range m.Graph.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.ID == m.Graph.StartNode:
			opener, closer = "((", "))"
		case node.Type == graph.KindTool:
			opener, closer = "[[", "]]"
		case node.Type == graph.KindLLM:
			opener, closer = "[/", "/]"
		case node.Type == graph.KindRouter:
			opener, closer = "{", "}"
		}

		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, nodeLabel(node), closer))

		for _, e := range edgesFrom(m, node.ID) {
			safeTo := sanitizeMermaidID(e.Target)
			arrow := "-->"
			switch e.Condition {
			case "":
				// plain successor
			case spec.ConditionError:
				arrow = "-. error .->"
			default:
				safeCondition := strings.ReplaceAll(e.Condition, "\"", "'")
				arrow = fmt.Sprintf("-- \"%s\" -->", safeCondition)
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", safeID, arrow, safeTo))
		}
	}

	return sb.String()
}

func nodeLabel(node spec.NodeRecord) string {
	if node.Label != "" {
		return fmt.Sprintf("%s <br/> %s", node.ID, node.Label)
	}
	return fmt.Sprintf("%s <br/> %s", node.ID, node.Type)
}

func edgesFrom(m *spec.Manifest, nodeID string) []spec.EdgeRecord {
	var out []spec.EdgeRecord
	for _, e := range m.Graph.Edges {
		if e.Source == nodeID {
			out = append(out, e)
		}
	}
	return out
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
