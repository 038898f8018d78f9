package domain

import (
	"reflect"
	"testing"
)

func TestDiff(t *testing.T) {
	tests := []struct {
		name   string
		before map[string]any
		after  map[string]any
		want   StateDiff
	}{
		{
			name:   "Identical States",
			before: map[string]any{"a": 1, "b": "x"},
			after:  map[string]any{"a": 1, "b": "x"},
			want:   NewStateDiff(),
		},
		{
			name:   "Added Key",
			before: map[string]any{"a": 1},
			after:  map[string]any{"a": 1, "b": "new"},
			want: StateDiff{
				Added:   map[string]any{"b": "new"},
				Removed: map[string]any{},
				Updated: map[string]any{},
			},
		},
		{
			name:   "Removed Key",
			before: map[string]any{"a": 1, "b": "old"},
			after:  map[string]any{"a": 1},
			want: StateDiff{
				Added:   map[string]any{},
				Removed: map[string]any{"b": "old"},
				Updated: map[string]any{},
			},
		},
		{
			name:   "Updated Key",
			before: map[string]any{"a": 1},
			after:  map[string]any{"a": 2},
			want: StateDiff{
				Added:   map[string]any{},
				Removed: map[string]any{},
				Updated: map[string]any{"a": 2},
			},
		},
		{
			name:   "Nested Structures Compared By Content",
			before: map[string]any{"cfg": map[string]any{"retries": 3, "tags": []any{"a"}}},
			after:  map[string]any{"cfg": map[string]any{"retries": 3, "tags": []any{"a"}}},
			want:   NewStateDiff(),
		},
		{
			name:   "Nested Update Detected",
			before: map[string]any{"cfg": map[string]any{"retries": 3}},
			after:  map[string]any{"cfg": map[string]any{"retries": 5}},
			want: StateDiff{
				Added:   map[string]any{},
				Removed: map[string]any{},
				Updated: map[string]any{"cfg": map[string]any{"retries": 5}},
			},
		},
		{
			name:   "Numeric Types Equal Under Canonical Form",
			before: map[string]any{"n": 3},
			after:  map[string]any{"n": float64(3)},
			want:   NewStateDiff(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.before, tt.after)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Diff() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDiff_Idempotence(t *testing.T) {
	state := map[string]any{
		"user":  "dev",
		"count": 7,
		"list":  []any{1, 2, 3},
	}

	d := Diff(state, state)
	if !d.IsEmpty() {
		t.Errorf("Diff(A, A) should be empty, got %+v", d)
	}
	if d.Added == nil || d.Removed == nil || d.Updated == nil {
		t.Error("empty diff must still carry allocated maps")
	}
}

func TestApply_RoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		before map[string]any
		after  map[string]any
	}{
		{
			name:   "Disjoint Keys",
			before: map[string]any{"a": 1, "b": 2},
			after:  map[string]any{"c": 3},
		},
		{
			name:   "Overlap With Updates",
			before: map[string]any{"a": 1, "b": "keep", "c": "drop"},
			after:  map[string]any{"a": 9, "b": "keep", "d": true},
		},
		{
			name:   "Empty Before",
			before: map[string]any{},
			after:  map[string]any{"x": nil, "y": []any{"z"}},
		},
		{
			name:   "Empty After",
			before: map[string]any{"x": 1},
			after:  map[string]any{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.before, Diff(tt.before, tt.after))
			if !reflect.DeepEqual(got, tt.after) {
				t.Errorf("Apply(before, Diff(before, after)) = %v, want %v", got, tt.after)
			}
		})
	}
}

func TestApply_DoesNotMutateInput(t *testing.T) {
	before := map[string]any{"a": 1, "b": 2}
	d := StateDiff{
		Added:   map[string]any{"c": 3},
		Removed: map[string]any{"a": 1},
		Updated: map[string]any{"b": 5},
	}

	_ = Apply(before, d)

	if !reflect.DeepEqual(before, map[string]any{"a": 1, "b": 2}) {
		t.Errorf("Apply mutated its input: %v", before)
	}
}
