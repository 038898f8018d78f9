// Package process exposes external commands as tool functions. Commands
// come from an explicit allow-list; the runner never executes anything a
// document names unless the host registered it first.
//
// Node inputs reach the command as environment variables, never as
// command-line flags, so a hostile state value cannot inject options.
// Positional inputs become LATTICE_ARG_0, LATTICE_ARG_1, ...; a single
// map input is flattened to LATTICE_ARG_<KEY>. Stdout is the result,
// parsed as JSON when it looks like JSON.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/aretw0/lattice/pkg/graph"
	"github.com/aretw0/lattice/pkg/registry"
)

// envPrefix namespaces the variables handed to spawned commands.
const envPrefix = "LATTICE_ARG_"

// Runner turns registered commands into graph.ToolFunc values.
type Runner struct {
	specs   map[string]ToolSpec
	baseDir string
}

// Option configures the runner.
type Option func(*Runner)

// WithBaseDir sets the working directory for executed commands.
func WithBaseDir(dir string) Option {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithSpecs populates the allow-list from a loaded config.
func WithSpecs(specs map[string]ToolSpec) Option {
	return func(r *Runner) {
		for name, spec := range specs {
			r.specs[name] = spec
		}
	}
}

// NewRunner creates a process runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{specs: make(map[string]ToolSpec)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted command to the allow-list.
func (r *Runner) Register(name, command string, args ...string) {
	r.specs[name] = ToolSpec{Name: name, Command: command, Args: args}
}

// Bind registers every allow-listed command as a tool in reg.
func (r *Runner) Bind(reg *registry.Registry) {
	for name := range r.specs {
		reg.RegisterTool(name, r.Tool(name))
	}
}

// Tool returns the tool function for a registered command. The function
// reports an error at call time if the name was never registered, which
// surfaces in the run's audit log rather than at bind time.
func (r *Runner) Tool(name string) graph.ToolFunc {
	return func(ctx context.Context, args ...any) (any, error) {
		spec, ok := r.specs[name]
		if !ok {
			return nil, fmt.Errorf("process tool not registered: %s", name)
		}
		return r.execute(ctx, spec, args)
	}
}

func (r *Runner) execute(ctx context.Context, spec ToolSpec, args []any) (any, error) {
	cmd := exec.CommandContext(ctx, spec.Command, spec.Args...)
	cmd.Dir = r.baseDir

	env := cmd.Environ()
	for key, value := range spec.Environment {
		env = append(env, key+"="+value)
	}
	env = append(env, argEnv(args)...)
	cmd.Env = env

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("%s: %w", spec.Command, err)
		}
		return nil, fmt.Errorf("%s: %w: %s", spec.Command, err, msg)
	}

	trimmed := strings.TrimSpace(stdout.String())

	// JSON output becomes structured state; anything else stays a string.
	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		var structured any
		if err := json.Unmarshal([]byte(trimmed), &structured); err == nil {
			return structured, nil
		}
	}

	return trimmed, nil
}

// argEnv serializes tool inputs as environment variables.
func argEnv(args []any) []string {
	if len(args) == 1 {
		if state, ok := args[0].(map[string]any); ok {
			env := make([]string, 0, len(state))
			for key, value := range state {
				env = append(env, envPrefix+strings.ToUpper(key)+"="+envValue(value))
			}
			return env
		}
	}

	env := make([]string, 0, len(args))
	for i, value := range args {
		env = append(env, fmt.Sprintf("%s%d=%s", envPrefix, i, envValue(value)))
	}
	return env
}

func envValue(v any) string {
	switch v.(type) {
	case string, int, int64, float64, bool:
		return fmt.Sprintf("%v", v)
	case nil:
		return ""
	}
	if data, err := json.Marshal(v); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", v)
}
