package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/lattice/internal/presentation/tui"
	"github.com/aretw0/lattice/pkg/spec"
)

var lintCmd = &cobra.Command{
	Use:   "lint <manifest>",
	Short: "Statically check an agent manifest",
	Long: `Checks a manifest for structural problems without importing or
running it: dangling references, missing start node, broken router
targets, cycles, and unreachable nodes. Exits non-zero when the
document has errors; warnings alone pass.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m, err := spec.LoadFile(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		report := spec.Lint(m)
		fmt.Print(tui.FormatLintReport(report))
		if report.HasErrors() {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(lintCmd)
}
