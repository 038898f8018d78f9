package observability

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/aretw0/lattice/pkg/domain"
)

func TestHooks_CountersFollowEvents(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	hooks := m.Hooks()
	ctx := context.Background()

	hooks.OnNodeLeave(ctx, &domain.NodeEvent{Node: "set_value"})
	hooks.OnNodeLeave(ctx, &domain.NodeEvent{Node: "llm"})
	hooks.OnNodeLeave(ctx, &domain.NodeEvent{Node: "llm"})
	hooks.OnLLMCall(ctx, &domain.LLMEvent{Model: "fake", PromptTokens: 6, CompletionTokens: 3})
	hooks.OnLLMCall(ctx, &domain.LLMEvent{Model: "fake", PromptTokens: 4, CompletionTokens: 1})
	hooks.OnRunEnd(ctx, &domain.RunEvent{
		Summary: domain.Summary{TotalSteps: 3, TotalPromptTokens: 10, TotalCompletionTokens: 4},
	})
	hooks.OnRunEnd(ctx, &domain.RunEvent{Failed: true})

	assert.Equal(t, float64(2), testutil.ToFloat64(m.StepsTotal.WithLabelValues("llm")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.StepsTotal.WithLabelValues("set_value")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RunsTotal.WithLabelValues("success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.RunsTotal.WithLabelValues("failed")))
	assert.Equal(t, float64(10), testutil.ToFloat64(m.TokensTotal.WithLabelValues("prompt")))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.TokensTotal.WithLabelValues("completion")))
}

func TestMerge_FiresAllSets(t *testing.T) {
	var order []string
	a := &domain.LifecycleHooks{OnRunEnd: func(ctx context.Context, e *domain.RunEvent) { order = append(order, "a") }}
	b := &domain.LifecycleHooks{OnRunEnd: func(ctx context.Context, e *domain.RunEvent) { order = append(order, "b") }}

	merged := Merge(a, nil, b)
	merged.OnRunEnd(context.Background(), &domain.RunEvent{})
	merged.OnNodeEnter(context.Background(), &domain.NodeEvent{})

	assert.Equal(t, []string{"a", "b"}, order)
}
