package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/lattice/pkg/domain"
)

// Metrics holds the Prometheus collectors for the executor.
type Metrics struct {
	RunsTotal   *prometheus.CounterVec
	StepsTotal  *prometheus.CounterVec
	TokensTotal *prometheus.CounterVec
	RunSteps    prometheus.Histogram
}

// NewMetrics creates and registers the collectors. Pass
// prometheus.DefaultRegisterer for the process-global registry, or a
// fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lattice",
			Name:      "runs_total",
			Help:      "Completed runs by outcome.",
		}, []string{"outcome"}),
		StepsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lattice",
			Name:      "steps_total",
			Help:      "Executed steps by node kind.",
		}, []string{"node"}),
		TokensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lattice",
			Name:      "llm_tokens_total",
			Help:      "LLM tokens consumed, by direction.",
		}, []string{"direction"}),
		RunSteps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "lattice",
			Name:      "run_steps",
			Help:      "Steps per run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}
	reg.MustRegister(m.RunsTotal, m.StepsTotal, m.TokensTotal, m.RunSteps)
	return m
}

// Hooks adapts the collectors to executor lifecycle hooks. Tokens are
// counted per model call, so a run abandoned mid-flight still meters
// the calls it made.
func (m *Metrics) Hooks() *domain.LifecycleHooks {
	return &domain.LifecycleHooks{
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			m.StepsTotal.WithLabelValues(e.Node).Inc()
		},
		OnLLMCall: func(ctx context.Context, e *domain.LLMEvent) {
			m.TokensTotal.WithLabelValues("prompt").Add(float64(e.PromptTokens))
			m.TokensTotal.WithLabelValues("completion").Add(float64(e.CompletionTokens))
		},
		OnRunEnd: func(ctx context.Context, e *domain.RunEvent) {
			outcome := "success"
			if e.Failed {
				outcome = "failed"
			}
			m.RunsTotal.WithLabelValues(outcome).Inc()
			m.RunSteps.Observe(float64(e.Summary.TotalSteps))
		},
	}
}

// Merge chains multiple hook sets into one; every non-nil callback in
// every set fires, in order.
func Merge(hooks ...*domain.LifecycleHooks) *domain.LifecycleHooks {
	merged := &domain.LifecycleHooks{}
	merged.OnNodeEnter = func(ctx context.Context, e *domain.NodeEvent) {
		for _, h := range hooks {
			if h != nil && h.OnNodeEnter != nil {
				h.OnNodeEnter(ctx, e)
			}
		}
	}
	merged.OnNodeLeave = func(ctx context.Context, e *domain.NodeEvent) {
		for _, h := range hooks {
			if h != nil && h.OnNodeLeave != nil {
				h.OnNodeLeave(ctx, e)
			}
		}
	}
	merged.OnLLMCall = func(ctx context.Context, e *domain.LLMEvent) {
		for _, h := range hooks {
			if h != nil && h.OnLLMCall != nil {
				h.OnLLMCall(ctx, e)
			}
		}
	}
	merged.OnToolReturn = func(ctx context.Context, e *domain.ToolEvent) {
		for _, h := range hooks {
			if h != nil && h.OnToolReturn != nil {
				h.OnToolReturn(ctx, e)
			}
		}
	}
	merged.OnRunEnd = func(ctx context.Context, e *domain.RunEvent) {
		for _, h := range hooks {
			if h != nil && h.OnRunEnd != nil {
				h.OnRunEnd(ctx, e)
			}
		}
	}
	return merged
}
