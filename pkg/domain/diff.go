package domain

import (
	"encoding/json"
	"reflect"
)

// StateDiff captures the minimal structural difference between two state
// snapshots. Keys unchanged in value are omitted entirely.
type StateDiff struct {
	// Added holds keys absent before and present after, with their new values.
	Added map[string]any `json:"added"`
	// Removed holds keys present before and absent after, with their old values.
	Removed map[string]any `json:"removed"`
	// Updated holds keys present in both whose values differ, with their new values.
	Updated map[string]any `json:"updated"`
}

// NewStateDiff returns an empty diff with all three maps allocated.
func NewStateDiff() StateDiff {
	return StateDiff{
		Added:   make(map[string]any),
		Removed: make(map[string]any),
		Updated: make(map[string]any),
	}
}

// IsEmpty reports whether the diff contains no changes.
func (d StateDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Updated) == 0
}

// Diff computes the structural difference between two snapshots.
// For every key in the union of both maps: absent before means added,
// absent after means removed, differing value means updated.
//
// Law: for any before/after pair, Apply(before, Diff(before, after))
// reconstructs after, and Diff(a, a) is empty.
func Diff(before, after map[string]any) StateDiff {
	d := NewStateDiff()

	for key, afterVal := range after {
		beforeVal, ok := before[key]
		if !ok {
			d.Added[key] = afterVal
			continue
		}
		if !valuesEqual(beforeVal, afterVal) {
			d.Updated[key] = afterVal
		}
	}

	for key, beforeVal := range before {
		if _, ok := after[key]; !ok {
			d.Removed[key] = beforeVal
		}
	}

	return d
}

// Apply reconstructs the after-snapshot from a before-snapshot and a diff:
// removed keys are deleted, then added and updated pairs are written.
// The input map is not mutated.
func Apply(before map[string]any, d StateDiff) map[string]any {
	out := make(map[string]any, len(before)+len(d.Added))
	for k, v := range before {
		out[k] = v
	}
	for k := range d.Removed {
		delete(out, k)
	}
	for k, v := range d.Added {
		out[k] = v
	}
	for k, v := range d.Updated {
		out[k] = v
	}
	return out
}

// valuesEqual compares two values by content, not by reference.
// DeepEqual handles the common cases; the JSON canonical form is the
// tie-breaker for numerically equal values of different Go types
// (e.g. int 3 in the initial state vs float64 3 after a JSON round-trip).
func valuesEqual(a, b any) bool {
	if reflect.DeepEqual(a, b) {
		return true
	}
	aj, errA := json.Marshal(a)
	bj, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return string(aj) == string(bj)
}
