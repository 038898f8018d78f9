package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/graph"
	"github.com/aretw0/lattice/pkg/spec"
)

func TestRunStore_SaveIsolates(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()

	log := &domain.RunLog{
		RunID:     "run-1",
		Timestamp: time.Now().UTC(),
		Steps: []domain.AuditStep{
			{Step: 0, Node: graph.KindSetValue, Outcome: domain.OutcomeSuccess},
		},
	}
	require.NoError(t, store.SaveRun(ctx, log))

	// Mutating the original after save must not leak into the store.
	log.Steps[0].Node = "mutated"

	loaded, err := store.LoadRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, graph.KindSetValue, loaded.Steps[0].Node)
}

func TestRunStore_NotFound(t *testing.T) {
	_, err := NewRunStore().LoadRun(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestRunStore_ListInsertionOrder(t *testing.T) {
	store := NewRunStore()
	ctx := context.Background()
	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, store.SaveRun(ctx, &domain.RunLog{RunID: id}))
	}

	ids, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, ids)
}

func TestManifestStore_Versions(t *testing.T) {
	store := NewManifestStore()
	ctx := context.Background()

	m := &spec.Manifest{
		Metadata: spec.Metadata{ID: "greeter", Name: "Greeter"},
		Version:  spec.VersionInfo{Version: "1.0.0"},
		Graph: spec.Graph{StartNode: "node_1", Nodes: []spec.NodeRecord{
			{ID: "node_1", Type: graph.KindSetValue, Config: map[string]any{"key": "k", "value": 1}},
		}},
	}
	require.NoError(t, store.Save(ctx, m))

	m.Version.Version = "1.1.0"
	require.NoError(t, store.Save(ctx, m))

	versions, err := store.ListVersions(ctx, "greeter")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0.0", "1.1.0"}, versions)

	loaded, err := store.Load(ctx, "greeter", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", loaded.Version.Version)
	assert.Equal(t, "Greeter", loaded.Metadata.Name)

	_, err = store.Load(ctx, "greeter", "9.9.9")
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
	_, err = store.Load(ctx, "ghost", "1.0.0")
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}
