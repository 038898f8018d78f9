package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lattice",
	Short: "Lattice is a graph execution runtime for LLM agents",
	Long: `Lattice runs agents described as directed graphs of typed nodes.
Agent manifests are portable JSON or YAML documents; tools and routing
decisions are resolved against the host at import time. Every run
produces a complete audit log of per-step state diffs.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("runs-dir", "", "Directory for run logs (default .lattice/runs)")
	rootCmd.PersistentFlags().String("agents-dir", "", "Directory for stored agents (default .lattice/agents)")
}
