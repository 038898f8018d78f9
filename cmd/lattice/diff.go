package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/lattice/pkg/spec"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old-manifest> <new-manifest>",
	Short: "Compare two agent manifest versions",
	Long: `Computes the structural delta between two manifests: nodes added,
removed, and modified, plus metadata changes. Cosmetic attributes like
canvas positions are ignored.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		before, err := spec.LoadFile(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		after, err := spec.LoadFile(args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		delta := spec.DiffManifests(before, after)
		if delta.IsEmpty() {
			fmt.Println("no structural changes")
			return
		}

		out, err := json.MarshalIndent(delta, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(string(out))
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
