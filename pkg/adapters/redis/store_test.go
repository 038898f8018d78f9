package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/lattice/pkg/adapters/redis"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/graph"
	"github.com/aretw0/lattice/pkg/spec"
)

func newStore(t *testing.T, opts ...redis.Option) (*redis.ManifestStore, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return redis.NewFromClient(client, opts...), mr
}

func sampleManifest(version string) *spec.Manifest {
	return &spec.Manifest{
		Metadata: spec.Metadata{ID: "greeter", Name: "Greeter"},
		Version:  spec.VersionInfo{Version: version},
		Graph: spec.Graph{StartNode: "node_1", Nodes: []spec.NodeRecord{
			{ID: "node_1", Type: graph.KindSetValue, Config: map[string]any{"key": "k", "value": "v"}},
		}},
	}
}

func TestManifestStore_SaveLoad(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleManifest("1.0.0")))
	require.NoError(t, store.Save(ctx, sampleManifest("1.1.0")))

	loaded, err := store.Load(ctx, "greeter", "1.0.0")
	require.NoError(t, err)
	assert.Equal(t, "Greeter", loaded.Metadata.Name)
	assert.Equal(t, "1.0.0", loaded.Version.Version)

	versions, err := store.ListVersions(ctx, "greeter")
	require.NoError(t, err)
	assert.Equal(t, []string{"1.0.0", "1.1.0"}, versions)
}

func TestManifestStore_NotFound(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	_, err := store.Load(ctx, "ghost", "1.0.0")
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)

	_, err = store.ListVersions(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}

func TestManifestStore_Delete(t *testing.T) {
	store, _ := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleManifest("1.0.0")))
	require.NoError(t, store.Delete(ctx, "greeter", "1.0.0"))

	_, err := store.Load(ctx, "greeter", "1.0.0")
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
	_, err = store.ListVersions(ctx, "greeter")
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}

func TestManifestStore_TTLExpires(t *testing.T) {
	store, mr := newStore(t, redis.WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, sampleManifest("1.0.0")))

	mr.FastForward(2 * time.Minute)

	_, err := store.Load(ctx, "greeter", "1.0.0")
	assert.ErrorIs(t, err, domain.ErrAgentNotFound)
}
