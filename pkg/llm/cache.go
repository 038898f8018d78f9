package llm

import (
	"fmt"
	"sync"

	"github.com/aretw0/lattice/pkg/ports"
)

// ClientFactory constructs a completion client for a model configuration.
type ClientFactory func(model, systemInstruction string) (ports.CompletionClient, error)

// ClientCache is a keyed cache of completion clients, one per unique
// model + system-instruction pair. It is the only mutable resource shared
// across runs: append-only, safe for concurrent reads, never invalidated
// mid-run. It is constructed explicitly by the host and passed in; there
// is no package-level instance.
type ClientCache struct {
	mu      sync.RWMutex
	factory ClientFactory
	clients map[string]ports.CompletionClient
}

// NewClientCache creates a cache backed by the given factory.
func NewClientCache(factory ClientFactory) *ClientCache {
	return &ClientCache{
		factory: factory,
		clients: make(map[string]ports.CompletionClient),
	}
}

// Get returns the cached client for the configuration, constructing and
// caching it on first use.
func (c *ClientCache) Get(model, systemInstruction string) (ports.CompletionClient, error) {
	key := model + "\x00" + systemInstruction

	c.mu.RLock()
	client, ok := c.clients[key]
	c.mu.RUnlock()
	if ok {
		return client, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Re-check under the write lock; a concurrent caller may have won.
	if client, ok := c.clients[key]; ok {
		return client, nil
	}
	client, err := c.factory(model, systemInstruction)
	if err != nil {
		return nil, fmt.Errorf("failed to construct client for model %q: %w", model, err)
	}
	c.clients[key] = client
	return client, nil
}

// Len returns the number of cached configurations.
func (c *ClientCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.clients)
}

// Clear drops all cached clients. Intended for test isolation between runs;
// never call it while a run is in flight.
func (c *ClientCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients = make(map[string]ports.CompletionClient)
}
