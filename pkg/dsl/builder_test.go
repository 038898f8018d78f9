package dsl

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/internal/runtime"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/graph"
)

func TestBuilder_LinearFlow(t *testing.T) {
	b := New()

	b.Node("greet").
		Set("greeting", "hello").
		Go("shout")

	b.Node("shout").
		Call("upper", func(ctx context.Context, args ...any) (any, error) {
			return args[0].(string) + "!", nil
		}, "greeting").
		Output("loud")

	start, err := b.Build()
	require.NoError(t, err)

	log, err := runtime.NewExecutor().Run(context.Background(), start, nil)
	require.NoError(t, err)

	final := log.FinalState(nil)
	assert.Equal(t, "hello", final["greeting"])
	assert.Equal(t, "hello!", final["loud"])
}

func TestBuilder_ForwardReference(t *testing.T) {
	b := New()

	// "first" references "second" before it is declared.
	b.Node("first").Set("a", 1).Go("second")
	b.Node("second").Set("b", 2)

	start, err := b.Build()
	require.NoError(t, err)

	sv, ok := start.(*graph.SetValueNode)
	require.True(t, ok)
	require.NotNil(t, sv.Next)
}

func TestBuilder_RouterWiring(t *testing.T) {
	b := New()

	b.Node("check").
		Route("pick", func(state *domain.State) string {
			return "retry"
		}).
		Branch("retry", "check").
		Branch("done", "finish").
		Default("finish")

	b.Node("finish").Set("ok", true)

	start, err := b.Build()
	require.NoError(t, err)

	router, ok := start.(*graph.RouterNode)
	require.True(t, ok)

	// The retry branch loops back to the router itself.
	assert.Same(t, graph.Node(router), router.Routes["retry"])
	assert.Same(t, router.Routes["done"], router.Default)
}

func TestBuilder_ToolErrorBranch(t *testing.T) {
	b := New()

	b.Node("risky").
		Call("fail", func(ctx context.Context, args ...any) (any, error) {
			return nil, assert.AnError
		}).
		Go("never").
		Error("recover")

	b.Node("never").Set("reached", true)
	b.Node("recover").ClearError()

	start, err := b.Build()
	require.NoError(t, err)

	log, err := runtime.NewExecutor().Run(context.Background(), start, nil)
	require.NoError(t, err)

	final := log.FinalState(nil)
	assert.NotContains(t, final, "reached")
	assert.NotContains(t, final, domain.KeyLastError)
}

func TestBuilder_Errors(t *testing.T) {
	t.Run("Empty Graph", func(t *testing.T) {
		_, err := New().Build()
		assert.ErrorContains(t, err, "no nodes")
	})

	t.Run("Kindless Node", func(t *testing.T) {
		b := New()
		b.Node("blank")
		_, err := b.Build()
		assert.ErrorContains(t, err, "no kind")
	})

	t.Run("Undeclared Reference", func(t *testing.T) {
		b := New()
		b.Node("start").Set("a", 1).Go("ghost")
		_, err := b.Build()
		assert.ErrorContains(t, err, "undeclared")
	})

	t.Run("Undeclared Start Override", func(t *testing.T) {
		b := New()
		b.Node("start").Set("a", 1)
		b.Start("elsewhere")
		_, err := b.Build()
		assert.ErrorContains(t, err, "not declared")
	})

	t.Run("Conflicting Kinds", func(t *testing.T) {
		b := New()
		b.Node("both").Set("a", 1).ClearError()
		_, err := b.Build()
		assert.ErrorContains(t, err, "conflicting")
	})
}
