package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/spec"
)

// ManifestStore implements spec.Store in memory, versioned per agent id.
type ManifestStore struct {
	mu     sync.RWMutex
	agents map[string]map[string]*spec.Manifest
}

// NewManifestStore creates an empty in-memory manifest store.
func NewManifestStore() *ManifestStore {
	return &ManifestStore{agents: make(map[string]map[string]*spec.Manifest)}
}

// Save stores the manifest under its id and version, overwriting any
// existing copy of that version.
func (s *ManifestStore) Save(ctx context.Context, m *spec.Manifest) error {
	data, err := spec.MarshalJSON(m)
	if err != nil {
		return err
	}
	copied, err := spec.UnmarshalJSON(data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	versions, ok := s.agents[m.Metadata.ID]
	if !ok {
		versions = make(map[string]*spec.Manifest)
		s.agents[m.Metadata.ID] = versions
	}
	versions[m.Version.Version] = copied
	return nil
}

// Load retrieves one version of an agent.
func (s *ManifestStore) Load(ctx context.Context, agentID, version string) (*spec.Manifest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions, ok := s.agents[agentID]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}
	m, ok := versions[version]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}

	data, err := spec.MarshalJSON(m)
	if err != nil {
		return nil, err
	}
	return spec.UnmarshalJSON(data)
}

// ListVersions returns an agent's stored versions, sorted.
func (s *ManifestStore) ListVersions(ctx context.Context, agentID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	versions, ok := s.agents[agentID]
	if !ok {
		return nil, domain.ErrAgentNotFound
	}
	out := make([]string, 0, len(versions))
	for v := range versions {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}
