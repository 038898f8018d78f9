package spec

import (
	"fmt"
	"sort"

	"github.com/google/go-cmp/cmp"
)

// FieldChange records one field differing between two versions.
type FieldChange struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}

// Delta is the structural difference between two manifest versions.
// Cosmetic attributes (labels, editor positions) are excluded, so moving
// a node around a canvas produces an empty delta.
type Delta struct {
	AddedNodes      []string                 `json:"added_nodes"`
	RemovedNodes    []string                 `json:"removed_nodes"`
	ModifiedNodes   map[string][]FieldChange `json:"modified_nodes"`
	MetadataChanges []FieldChange            `json:"metadata_changes"`
	StartChanged    *FieldChange             `json:"start_changed,omitempty"`
}

// IsEmpty reports whether the two versions are structurally identical.
func (d *Delta) IsEmpty() bool {
	return len(d.AddedNodes) == 0 && len(d.RemovedNodes) == 0 &&
		len(d.ModifiedNodes) == 0 && len(d.MetadataChanges) == 0 &&
		d.StartChanged == nil
}

// cosmeticConfigKeys are stripped from node configs before comparison.
var cosmeticConfigKeys = map[string]bool{
	"position": true,
	"x":        true,
	"y":        true,
}

// DiffManifests computes the structural delta from an older to a newer
// manifest version. Node correspondence is by id.
func DiffManifests(before, after *Manifest) *Delta {
	d := &Delta{ModifiedNodes: map[string][]FieldChange{}}

	oldNodes := before.Graph.NodeIndex()
	newNodes := after.Graph.NodeIndex()

	for _, id := range sortedNodeIDs(newNodes) {
		if _, ok := oldNodes[id]; !ok {
			d.AddedNodes = append(d.AddedNodes, id)
		}
	}
	for _, id := range sortedNodeIDs(oldNodes) {
		if _, ok := newNodes[id]; !ok {
			d.RemovedNodes = append(d.RemovedNodes, id)
		}
	}

	for _, id := range sortedNodeIDs(oldNodes) {
		after, ok := newNodes[id]
		if !ok {
			continue
		}
		if changes := diffNode(oldNodes[id], after); len(changes) > 0 {
			d.ModifiedNodes[id] = changes
		}
	}

	if before.Graph.StartNode != after.Graph.StartNode {
		d.StartChanged = &FieldChange{Field: "start_node", Old: before.Graph.StartNode, New: after.Graph.StartNode}
	}

	d.MetadataChanges = diffMetadata(before.Metadata, after.Metadata)
	return d
}

func diffNode(before, after NodeRecord) []FieldChange {
	var changes []FieldChange
	if before.Type != after.Type {
		changes = append(changes, FieldChange{Field: "type", Old: before.Type, New: after.Type})
	}

	oldCfg := stripCosmetic(before.Config)
	newCfg := stripCosmetic(after.Config)

	keys := map[string]bool{}
	for k := range oldCfg {
		keys[k] = true
	}
	for k := range newCfg {
		keys[k] = true
	}
	for _, k := range sortedBoolKeys(keys) {
		oldVal, inOld := oldCfg[k]
		newVal, inNew := newCfg[k]
		if inOld && inNew && cmp.Equal(oldVal, newVal) {
			continue
		}
		changes = append(changes, FieldChange{Field: fmt.Sprintf("config.%s", k), Old: oldVal, New: newVal})
	}
	return changes
}

func diffMetadata(before, after Metadata) []FieldChange {
	var changes []FieldChange
	field := func(name string, oldVal, newVal any) {
		if !cmp.Equal(oldVal, newVal) {
			changes = append(changes, FieldChange{Field: name, Old: oldVal, New: newVal})
		}
	}
	field("name", before.Name, after.Name)
	field("description", before.Description, after.Description)
	field("author", before.Author, after.Author)
	field("tags", before.Tags, after.Tags)
	return changes
}

func stripCosmetic(cfg map[string]any) map[string]any {
	if cfg == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		if cosmeticConfigKeys[k] {
			continue
		}
		out[k] = v
	}
	return out
}

func sortedNodeIDs(m map[string]NodeRecord) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func sortedBoolKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
