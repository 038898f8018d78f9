package domain

// State is the mutable key-value store threaded through a single run.
// Values must be JSON-representable (strings, numbers, booleans, nil,
// []any and map[string]any, or values that marshal cleanly to those).
//
// A State is exclusively owned by the run that created it. Execution is
// strictly sequential, so no locking is needed.
type State struct {
	data map[string]any
}

// NewState creates a state pre-populated with initial data.
// The initial map is copied, never aliased.
func NewState(initial map[string]any) *State {
	s := &State{data: make(map[string]any, len(initial))}
	for k, v := range initial {
		s.data[k] = copyValue(v)
	}
	return s
}

// Set stores a value under key. The most recent write wins.
func (s *State) Set(key string, value any) {
	s.data[key] = value
}

// Get returns the value for key, or nil if absent.
func (s *State) Get(key string) any {
	return s.data[key]
}

// Lookup returns the value for key and whether it is present.
func (s *State) Lookup(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Delete removes key from the state. Deleting an absent key is a no-op.
func (s *State) Delete(key string) {
	delete(s.data, key)
}

// Has reports whether key is present.
func (s *State) Has(key string) bool {
	_, ok := s.data[key]
	return ok
}

// Len returns the number of keys currently set.
func (s *State) Len() int {
	return len(s.data)
}

// Snapshot returns a deep value copy of the state. Mutating the live state
// after taking a snapshot never changes the snapshot, so two snapshots can
// be diffed without observing in-place mutation artifacts.
func (s *State) Snapshot() map[string]any {
	out := make(map[string]any, len(s.data))
	for k, v := range s.data {
		out[k] = copyValue(v)
	}
	return out
}

// copyValue deep-copies the JSON-representable subset of Go values.
// Scalars are immutable and returned as-is.
func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[k] = copyValue(inner)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = copyValue(inner)
		}
		return out
	default:
		return v
	}
}
