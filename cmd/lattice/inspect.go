package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	presentation "github.com/aretw0/lattice/internal/presentation/graph"
	"github.com/aretw0/lattice/internal/presentation/tui"
	"github.com/aretw0/lattice/pkg/spec"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <manifest>",
	Short: "Render an agent manifest as a readable summary",
	Long: `Prints the agent's metadata, policy, and topology as rendered
Markdown, including a Mermaid flowchart of the graph. Use --raw to get
the plain Markdown for embedding in documentation.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		raw, _ := cmd.Flags().GetBool("raw")

		m, err := spec.LoadFile(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		markdown := describeManifest(m)
		if raw {
			fmt.Println(markdown)
			return
		}

		render := tui.NewRenderer()
		out, err := render(markdown)
		if err != nil {
			fmt.Println(markdown)
			return
		}
		fmt.Println(out)
	},
}

func describeManifest(m *spec.Manifest) string {
	var sb strings.Builder

	name := m.Metadata.Name
	if name == "" {
		name = m.Metadata.ID
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", name))
	if m.Metadata.Description != "" {
		sb.WriteString(m.Metadata.Description + "\n\n")
	}

	sb.WriteString(fmt.Sprintf("- **ID**: %s\n", m.Metadata.ID))
	sb.WriteString(fmt.Sprintf("- **Version**: %s\n", m.Version.Version))
	sb.WriteString(fmt.Sprintf("- **Nodes**: %d\n", len(m.Graph.Nodes)))
	sb.WriteString(fmt.Sprintf("- **Start**: %s\n", m.Graph.StartNode))
	if len(m.Policy.AllowedTools) > 0 {
		sb.WriteString(fmt.Sprintf("- **Allowed tools**: %s\n", strings.Join(m.Policy.AllowedTools, ", ")))
	}
	if m.Policy.MaxSteps > 0 {
		sb.WriteString(fmt.Sprintf("- **Step budget**: %d\n", m.Policy.MaxSteps))
	}

	sb.WriteString("\n## Topology\n\n```mermaid\n")
	sb.WriteString(presentation.GenerateMermaid(m))
	sb.WriteString("```\n")

	if len(m.Version.Changelog) > 0 {
		sb.WriteString("\n## Changelog\n\n")
		for _, entry := range m.Version.Changelog {
			sb.WriteString(fmt.Sprintf("- **%s** (%s): %s\n",
				entry.Version, entry.Date.Format("2006-01-02"), entry.Description))
		}
	}

	return sb.String()
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("raw", false, "Print plain Markdown without terminal rendering")
}
