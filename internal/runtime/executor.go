// Package runtime contains the core graph executor: a pull-based,
// single-threaded cooperative loop that runs one node per pull, captures
// before/after snapshots, and builds the audit trail.
package runtime

import (
	"io"
	"log/slog"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

// DefaultMaxSteps is the step budget applied when the caller does not
// supply one. It is the designed defense against graphs containing a
// cycle with no true exit condition.
const DefaultMaxSteps = 100

// Executor drives graphs. It is stateless across runs and may be reused;
// each Start call produces an independent Run with its own state.
type Executor struct {
	store    ports.RunStore
	logger   *slog.Logger
	hooks    domain.LifecycleHooks
	maxSteps int
	userID   string
}

// Option configures an Executor.
type Option func(*Executor)

// WithRunStore sets the audit persistence target. Without one, run logs
// are still built and returned, just not persisted.
func WithRunStore(store ports.RunStore) Option {
	return func(e *Executor) { e.store = store }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Executor) { e.hooks = hooks }
}

// WithMaxSteps overrides the circuit-breaker step budget.
func WithMaxSteps(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.maxSteps = n
		}
	}
}

// WithUserID attributes persisted run logs to a user.
func WithUserID(id string) Option {
	return func(e *Executor) { e.userID = id }
}

// NewExecutor creates an executor with the given options.
func NewExecutor(opts ...Option) *Executor {
	e := &Executor{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
