package process

import (
	"context"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/registry"
)

// shellEcho builds a command that prints the given shell expression.
func shellEcho(expr string) (string, []string) {
	if runtime.GOOS == "windows" {
		return "cmd", []string{"/c", "echo " + expr}
	}
	return "sh", []string{"-c", "echo " + expr}
}

func TestRunner_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("Executes Registered Command", func(t *testing.T) {
		runner := NewRunner()
		cmd, args := shellEcho("hello")
		runner.Register("greet", cmd, args...)

		result, err := runner.Tool("greet")(ctx)
		require.NoError(t, err)
		assert.Equal(t, "hello", result)
	})

	t.Run("Fails For Unregistered Command", func(t *testing.T) {
		runner := NewRunner()

		_, err := runner.Tool("hacker_script")(ctx)
		assert.ErrorContains(t, err, "not registered")
	})

	t.Run("Passes Positional Args Via Env", func(t *testing.T) {
		runner := NewRunner()
		cmd, args := shellEcho("$LATTICE_ARG_0")
		if runtime.GOOS == "windows" {
			cmd, args = shellEcho("%LATTICE_ARG_0%")
		}
		runner.Register("echo_env", cmd, args...)

		result, err := runner.Tool("echo_env")(ctx, "SecretMessage")
		require.NoError(t, err)
		assert.Equal(t, "SecretMessage", result)
	})

	t.Run("Flattens Map Input Via Env", func(t *testing.T) {
		runner := NewRunner()
		cmd, args := shellEcho("$LATTICE_ARG_MSG")
		if runtime.GOOS == "windows" {
			cmd, args = shellEcho("%LATTICE_ARG_MSG%")
		}
		runner.Register("echo_state", cmd, args...)

		result, err := runner.Tool("echo_state")(ctx, map[string]any{"msg": "from-state"})
		require.NoError(t, err)
		assert.Equal(t, "from-state", result)
	})

	t.Run("Parses JSON Output", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("relies on sh quoting")
		}
		runner := NewRunner()
		cmd, args := shellEcho(`'{"count": 2}'`)
		runner.Register("emit_json", cmd, args...)

		result, err := runner.Tool("emit_json")(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"count": float64(2)}, result)
	})

	t.Run("Surfaces Stderr On Failure", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("relies on sh")
		}
		runner := NewRunner()
		runner.Register("explode", "sh", "-c", "echo boom >&2; exit 3")

		_, err := runner.Tool("explode")(ctx)
		require.Error(t, err)
		assert.ErrorContains(t, err, "boom")
	})
}

func TestRunner_Bind(t *testing.T) {
	runner := NewRunner()
	cmd, args := shellEcho("bound")
	runner.Register("bound_tool", cmd, args...)

	reg := registry.New()
	runner.Bind(reg)

	fn, err := reg.Tool("bound_tool")
	require.NoError(t, err)

	result, err := fn(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bound", result)
}
