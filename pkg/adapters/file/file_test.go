package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/graph"
	"github.com/aretw0/lattice/pkg/spec"
)

func TestRunStore_RoundTrip(t *testing.T) {
	store := NewRunStore(t.TempDir())
	ctx := context.Background()

	log := &domain.RunLog{
		RunID:     "abc-123",
		UserID:    "tester",
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Steps: []domain.AuditStep{
			{Step: 0, Node: graph.KindSetValue, Outcome: domain.OutcomeSuccess, StateDiff: domain.StateDiff{
				Added:   map[string]any{"k": "v"},
				Removed: map[string]any{},
				Updated: map[string]any{},
			}},
		},
		Summary: domain.Summary{TotalSteps: 1},
	}
	require.NoError(t, store.SaveRun(ctx, log))

	// The file lands under the run_<id>.json convention.
	_, err := os.Stat(filepath.Join(store.BasePath, "run_abc-123.json"))
	require.NoError(t, err)

	loaded, err := store.LoadRun(ctx, "abc-123")
	require.NoError(t, err)
	assert.Equal(t, "tester", loaded.UserID)
	require.Len(t, loaded.Steps, 1)
	assert.Equal(t, "v", loaded.Steps[0].StateDiff.Added["k"])

	ids, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc-123"}, ids)
}

func TestRunStore_NotFound(t *testing.T) {
	store := NewRunStore(t.TempDir())
	_, err := store.LoadRun(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestRunStore_EmptyDirLists(t *testing.T) {
	store := NewRunStore(filepath.Join(t.TempDir(), "never-created"))
	ids, err := store.ListRuns(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestManifestStore_VersionedFiles(t *testing.T) {
	store := NewManifestStore(t.TempDir())
	ctx := context.Background()

	m := &spec.Manifest{
		Metadata: spec.Metadata{ID: "greeter", Name: "Greeter"},
		Version:  spec.VersionInfo{Version: "1.0.0"},
		Graph: spec.Graph{StartNode: "node_1", Nodes: []spec.NodeRecord{
			{ID: "node_1", Type: graph.KindSetValue, Config: map[string]any{"key": "k", "value": "v"}},
		}},
	}
	require.NoError(t, store.Save(ctx, m))

	m.Version.Version = "2.0.0"
	m.Metadata.Name = "Greeter v2"
	require.NoError(t, store.Save(ctx, m))

	_, err := os.Stat(filepath.Join(store.BasePath, "greeter_v1.0.0.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(store.BasePath, "greeter_v2.0.0.json"))
	require.NoError(t, err)

	versions, err := store.ListVersions(ctx, "greeter")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0.0", "2.0.0"}, versions)

	loaded, err := store.Load(ctx, "greeter", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "Greeter", loaded.Metadata.Name)

	_, err = store.Load(ctx, "greeter", "3.0.0")
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
	_, err = store.ListVersions(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}

func TestManifestStore_RejectsEmptyIdentity(t *testing.T) {
	store := NewManifestStore(t.TempDir())
	err := store.Save(context.Background(), &spec.Manifest{Version: spec.VersionInfo{Version: "1.0.0"}})
	assert.Error(t, err)
	err = store.Save(context.Background(), &spec.Manifest{Metadata: spec.Metadata{ID: "x"}})
	assert.Error(t, err)
}
