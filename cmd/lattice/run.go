package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/adapters/process"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/spec"
)

var runCmd = &cobra.Command{
	Use:   "run <manifest>",
	Short: "Execute an agent manifest",
	Long: `Imports a manifest and runs it to completion, persisting the audit
log under the runs directory. Initial state values are passed with
repeated --set key=value flags. Tool nodes resolve against commands
declared in the --tools config file; llm nodes need host bindings and
cannot run from the bare CLI.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runManifest(cmd, args[0]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func runManifest(cmd *cobra.Command, path string) error {
	level, _ := cmd.Flags().GetString("log-level")
	sets, _ := cmd.Flags().GetStringArray("set")
	user, _ := cmd.Flags().GetString("user")
	toolsPath, _ := cmd.Flags().GetString("tools")

	runs, err := openRunStore(cmd)
	if err != nil {
		return err
	}

	reg := registry.New()
	if toolsPath != "" {
		specs, err := process.LoadTools(toolsPath)
		if err != nil {
			return err
		}
		process.NewRunner(process.WithSpecs(specs)).Bind(reg)
	}

	m, err := spec.LoadFile(path)
	if err != nil {
		return err
	}
	if report := spec.Lint(m); report.HasErrors() {
		return fmt.Errorf("manifest has lint errors, run 'lattice lint %s'", path)
	}

	initial, err := parseSetFlags(sets)
	if err != nil {
		return err
	}

	eng := lattice.New(
		lattice.WithRegistry(reg),
		lattice.WithRunStore(runs),
		lattice.WithLogger(logging.New(logging.ParseLevel(level))),
		lattice.WithUserID(user),
	)

	log, err := eng.RunManifest(cmd.Context(), m, initial)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// parseSetFlags turns --set key=value pairs into the initial state.
// Values that parse as JSON are used typed; everything else is a string.
func parseSetFlags(sets []string) (map[string]any, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	initial := make(map[string]any, len(sets))
	for _, pair := range sets {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --set %q, expected key=value", pair)
		}
		var typed any
		if err := json.Unmarshal([]byte(value), &typed); err == nil {
			initial[key] = typed
		} else {
			initial[key] = value
		}
	}
	return initial, nil
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringArray("set", nil, "Initial state entry as key=value (repeatable)")
	runCmd.Flags().String("user", "", "User id recorded in the audit log")
	runCmd.Flags().String("tools", "", "Tool config file mapping tool names to commands")
	addMaskFlag(runCmd)
}
