package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/lattice/pkg/ports"
)

var replayCmd = &cobra.Command{
	Use:   "replay <run-id>",
	Short: "Reconstruct a run's final state from its audit log",
	Long: `Loads a persisted run log and replays its per-step diffs over the
initial state, printing the reconstructed final state. With --steps,
prints each step's node, outcome, and diff along the way.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := replayRun(cmd, args[0]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func replayRun(cmd *cobra.Command, runID string) error {
	showSteps, _ := cmd.Flags().GetBool("steps")

	store, err := openRunStore(cmd)
	if err != nil {
		return err
	}
	lister, ok := store.(ports.RunLister)
	if !ok {
		return fmt.Errorf("run store does not support loading runs")
	}
	log, err := lister.LoadRun(cmd.Context(), runID)
	if err != nil {
		return err
	}

	if showSteps {
		for _, step := range log.Steps {
			diff, _ := json.Marshal(step.StateDiff)
			fmt.Printf("step %d  %-15s %-7s %s\n", step.Step, step.Node, step.Outcome, diff)
			if step.Error != "" {
				fmt.Printf("        error: %s\n", step.Error)
			}
		}
		fmt.Println()
	}

	final := log.FinalState(nil)
	out, err := json.MarshalIndent(map[string]any{
		"run_id":      log.RunID,
		"steps":       log.Summary.TotalSteps,
		"final_state": final,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func init() {
	rootCmd.AddCommand(replayCmd)
	replayCmd.Flags().Bool("steps", false, "Print each step's diff while replaying")
}
