package spec

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/graph"
)

func TestSaveLoadFile_ByExtension(t *testing.T) {
	dir := t.TempDir()
	m := manifestWith(NodeRecord{ID: "node_1", Type: graph.KindSetValue, Config: map[string]any{"key": "k", "value": "v"}})
	m.Version.Version = "1.2.0"

	for _, name := range []string{"agent.json", "agent.yaml"} {
		path := filepath.Join(dir, name)
		require.NoError(t, SaveFile(path, m))

		loaded, err := LoadFile(path)
		require.NoError(t, err, name)
		assert.Equal(t, "agent", loaded.Metadata.ID)
		assert.Equal(t, "1.2.0", loaded.Version.Version)
		require.Len(t, loaded.Graph.Nodes, 1)
		assert.Equal(t, "k", loaded.Graph.Nodes[0].Config["key"])
	}

	err := SaveFile(filepath.Join(dir, "agent.toml"), m)
	assert.Error(t, err)
}
