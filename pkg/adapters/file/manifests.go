package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/spec"
)

// ManifestStore implements spec.Store on the local filesystem, one
// <agent-id>_v<version>.json file per stored version.
type ManifestStore struct {
	BasePath string
}

// NewManifestStore creates a ManifestStore. An empty basePath defaults
// to ".lattice/agents".
func NewManifestStore(basePath string) *ManifestStore {
	if basePath == "" {
		basePath = filepath.Join(".lattice", "agents")
	}
	return &ManifestStore{BasePath: basePath}
}

func (s *ManifestStore) path(agentID, version string) string {
	return filepath.Join(s.BasePath, fmt.Sprintf("%s_v%s.json", agentID, version))
}

// Save persists the manifest under its id and version.
func (s *ManifestStore) Save(ctx context.Context, m *spec.Manifest) error {
	if m.Metadata.ID == "" {
		return fmt.Errorf("agent id cannot be empty")
	}
	if m.Version.Version == "" {
		return fmt.Errorf("agent version cannot be empty")
	}
	data, err := spec.MarshalJSON(m)
	if err != nil {
		return err
	}
	return writeAtomic(s.BasePath, s.path(m.Metadata.ID, m.Version.Version), data)
}

// Load reads one version of an agent.
func (s *ManifestStore) Load(ctx context.Context, agentID, version string) (*spec.Manifest, error) {
	data, err := os.ReadFile(s.path(agentID, version))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return spec.UnmarshalJSON(data)
}

// ListVersions returns an agent's stored versions, sorted.
func (s *ManifestStore) ListVersions(ctx context.Context, agentID string) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrAgentNotFound
		}
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}

	prefix := agentID + "_v"
	var versions []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || filepath.Ext(name) != ".json" {
			continue
		}
		versions = append(versions, strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json"))
	}
	if len(versions) == 0 {
		return nil, domain.ErrAgentNotFound
	}
	sort.Strings(versions)
	return versions, nil
}
