// Package memory provides in-memory adapters for the runtime's run log
// and manifest ports. Safe for concurrent use; intended for tests and
// single-process deployments.
package memory

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aretw0/lattice/pkg/domain"
)

// RunStore implements ports.RunStore in memory.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*domain.RunLog
	ids  []string
}

// NewRunStore creates an empty in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{runs: make(map[string]*domain.RunLog)}
}

// SaveRun stores a deep copy of the log, so the caller cannot mutate a
// persisted record afterwards.
func (s *RunStore) SaveRun(ctx context.Context, log *domain.RunLog) error {
	copied, err := copyRunLog(log)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.runs[log.RunID]; !seen {
		s.ids = append(s.ids, log.RunID)
	}
	s.runs[log.RunID] = copied
	return nil
}

// ListRuns returns run ids in insertion order.
func (s *RunStore) ListRuns(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.ids))
	copy(out, s.ids)
	return out, nil
}

// LoadRun retrieves one run log by id.
func (s *RunStore) LoadRun(ctx context.Context, runID string) (*domain.RunLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log, ok := s.runs[runID]
	if !ok {
		return nil, domain.ErrRunNotFound
	}
	return copyRunLog(log)
}

// copyRunLog isolates stored logs via the JSON form, the same shape they
// take in durable stores.
func copyRunLog(log *domain.RunLog) (*domain.RunLog, error) {
	data, err := json.Marshal(log)
	if err != nil {
		return nil, err
	}
	var out domain.RunLog
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
