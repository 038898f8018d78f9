package spec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/graph"
)

func manifestWith(nodes ...NodeRecord) *Manifest {
	return &Manifest{
		Metadata: Metadata{ID: "agent", Name: "Agent"},
		Graph:    Graph{StartNode: "node_1", Nodes: nodes},
	}
}

func TestDiffManifests_Identical(t *testing.T) {
	a := manifestWith(NodeRecord{ID: "node_1", Type: graph.KindSetValue, Config: map[string]any{"key": "k", "value": 1}})
	b := manifestWith(NodeRecord{ID: "node_1", Type: graph.KindSetValue, Config: map[string]any{"key": "k", "value": 1}})

	assert.True(t, DiffManifests(a, b).IsEmpty())
}

func TestDiffManifests_AddedAndRemoved(t *testing.T) {
	before := manifestWith(
		NodeRecord{ID: "node_1", Type: graph.KindSetValue},
		NodeRecord{ID: "node_2", Type: graph.KindSetValue},
	)
	after := manifestWith(
		NodeRecord{ID: "node_1", Type: graph.KindSetValue},
		NodeRecord{ID: "node_3", Type: graph.KindSetValue},
	)

	d := DiffManifests(before, after)
	assert.Equal(t, []string{"node_3"}, d.AddedNodes)
	assert.Equal(t, []string{"node_2"}, d.RemovedNodes)
	assert.Empty(t, d.ModifiedNodes)
}

func TestDiffManifests_ModifiedConfig(t *testing.T) {
	before := manifestWith(NodeRecord{ID: "node_1", Type: graph.KindLLM, Config: map[string]any{
		"model": "m1", "prompt_template": "{q}", "output_key": "a",
	}})
	after := manifestWith(NodeRecord{ID: "node_1", Type: graph.KindLLM, Config: map[string]any{
		"model": "m2", "prompt_template": "{q}", "output_key": "a",
	}})

	d := DiffManifests(before, after)
	require.Len(t, d.ModifiedNodes["node_1"], 1)
	change := d.ModifiedNodes["node_1"][0]
	assert.Equal(t, "config.model", change.Field)
	assert.Equal(t, "m1", change.Old)
	assert.Equal(t, "m2", change.New)
}

func TestDiffManifests_PositionIgnored(t *testing.T) {
	before := manifestWith(NodeRecord{ID: "node_1", Type: graph.KindSetValue, Config: map[string]any{
		"key": "k", "value": 1, "position": map[string]any{"x": 10, "y": 20},
	}})
	after := manifestWith(NodeRecord{ID: "node_1", Type: graph.KindSetValue, Config: map[string]any{
		"key": "k", "value": 1, "position": map[string]any{"x": 300, "y": 400},
	}})

	assert.True(t, DiffManifests(before, after).IsEmpty(), "moving a node on the canvas is not a structural change")
}

func TestDiffManifests_TypeChange(t *testing.T) {
	before := manifestWith(NodeRecord{ID: "node_1", Type: graph.KindSetValue})
	after := manifestWith(NodeRecord{ID: "node_1", Type: graph.KindClearError})

	d := DiffManifests(before, after)
	require.Len(t, d.ModifiedNodes["node_1"], 1)
	assert.Equal(t, "type", d.ModifiedNodes["node_1"][0].Field)
}

func TestDiffManifests_MetadataAndStart(t *testing.T) {
	before := manifestWith(NodeRecord{ID: "node_1", Type: graph.KindSetValue})
	after := manifestWith(NodeRecord{ID: "node_1", Type: graph.KindSetValue})
	after.Metadata.Name = "Renamed"
	after.Graph.StartNode = "node_1"
	before.Graph.StartNode = "node_1"

	d := DiffManifests(before, after)
	require.Len(t, d.MetadataChanges, 1)
	assert.Equal(t, "name", d.MetadataChanges[0].Field)
	assert.Nil(t, d.StartChanged)

	after.Graph.StartNode = "node_9"
	d = DiffManifests(before, after)
	require.NotNil(t, d.StartChanged)
	assert.Equal(t, "node_9", d.StartChanged.New)
}
