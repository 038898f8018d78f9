package lattice

import (
	"context"
	"log/slog"

	"github.com/aretw0/lattice/internal/runtime"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/graph"
	"github.com/aretw0/lattice/pkg/llm"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/spec"
)

// Version is the library version reported by the CLI and the HTTP API.
const Version = "0.1.0"

// Engine is the high-level entry point for the Lattice library. It wraps
// the internal executor and binds the pieces a manifest cannot carry:
// the callable registry, the completion client source, and persistence.
type Engine struct {
	registry  *registry.Registry
	clients   *llm.ClientCache
	client    ports.CompletionClient
	store     ports.RunStore
	manifests spec.Store
	hooks     *domain.LifecycleHooks
	logger    *slog.Logger
	maxSteps  int
	userID    string
}

// Option configures the Engine.
type Option func(*Engine)

// WithRegistry sets the tool and decision registry used when importing
// manifests.
func WithRegistry(r *registry.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// WithClientCache sets the completion client source for llm nodes.
func WithClientCache(c *llm.ClientCache) Option {
	return func(e *Engine) { e.clients = c }
}

// WithCompletionClient pins a single client for every llm node,
// bypassing the cache. Useful for tests.
func WithCompletionClient(c ports.CompletionClient) Option {
	return func(e *Engine) { e.client = c }
}

// WithRunStore sets the audit log sink.
func WithRunStore(s ports.RunStore) Option {
	return func(e *Engine) { e.store = s }
}

// WithManifestStore sets the versioned agent catalog.
func WithManifestStore(s spec.Store) Option {
	return func(e *Engine) { e.manifests = s }
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks *domain.LifecycleHooks) Option {
	return func(e *Engine) { e.hooks = hooks }
}

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

// WithMaxSteps sets the default circuit breaker budget. A manifest
// policy with its own max_steps takes precedence for that run.
func WithMaxSteps(n int) Option {
	return func(e *Engine) { e.maxSteps = n }
}

// WithUserID attributes runs to a user in the audit log.
func WithUserID(id string) Option {
	return func(e *Engine) { e.userID = id }
}

// New creates an Engine.
func New(opts ...Option) *Engine {
	e := &Engine{registry: registry.New()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Registry returns the engine's callable registry, for host tool and
// decision registration.
func (e *Engine) Registry() *registry.Registry {
	return e.registry
}

// Manifests returns the configured manifest store, or nil.
func (e *Engine) Manifests() spec.Store {
	return e.manifests
}

// Runs returns the configured run store, or nil.
func (e *Engine) Runs() ports.RunStore {
	return e.store
}

func (e *Engine) executor(maxSteps int) *runtime.Executor {
	opts := []runtime.Option{
		runtime.WithRunStore(e.store),
		runtime.WithUserID(e.userID),
	}
	if e.logger != nil {
		opts = append(opts, runtime.WithLogger(e.logger))
	}
	if e.hooks != nil {
		opts = append(opts, runtime.WithLifecycleHooks(*e.hooks))
	}
	if maxSteps > 0 {
		opts = append(opts, runtime.WithMaxSteps(maxSteps))
	}
	return runtime.NewExecutor(opts...)
}

// Run executes a live graph to completion and returns its audit log.
func (e *Engine) Run(ctx context.Context, start graph.Node, initial map[string]any) (*domain.RunLog, error) {
	return e.executor(e.maxSteps).Run(ctx, start, initial)
}

// Start begins a pull-based run. The caller steps it with Next and must
// Close it if abandoning the run early.
func (e *Engine) Start(start graph.Node, initial map[string]any) *runtime.Run {
	return e.executor(e.maxSteps).Start(start, initial)
}

// importOptions binds the engine's host-side dependencies for import.
func (e *Engine) importOptions() spec.ImportOptions {
	return spec.ImportOptions{
		Registry: e.registry,
		Clients:  e.clients,
		Client:   e.client,
		Logger:   e.logger,
	}
}

// Import reconstructs a live graph from a manifest using the engine's
// registry and clients.
func (e *Engine) Import(m *spec.Manifest) (graph.Node, error) {
	return spec.Import(m, e.importOptions())
}

// RunManifest imports a manifest and executes it. The manifest's policy
// max_steps, when set, overrides the engine default.
func (e *Engine) RunManifest(ctx context.Context, m *spec.Manifest, initial map[string]any) (*domain.RunLog, error) {
	start, err := e.Import(m)
	if err != nil {
		return nil, err
	}
	maxSteps := e.maxSteps
	if m.Policy.MaxSteps > 0 {
		maxSteps = m.Policy.MaxSteps
	}
	return e.executor(maxSteps).Run(ctx, start, initial)
}

// RunAgent loads an agent version from the manifest store and executes
// it.
func (e *Engine) RunAgent(ctx context.Context, agentID, version string, initial map[string]any) (*domain.RunLog, error) {
	if e.manifests == nil {
		return nil, domain.ErrAgentNotFound
	}
	m, err := e.manifests.Load(ctx, agentID, version)
	if err != nil {
		return nil, err
	}
	return e.RunManifest(ctx, m, initial)
}
