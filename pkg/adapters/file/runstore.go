// Package file provides filesystem adapters for the run log and
// manifest ports. Run logs are written one JSON file per run; manifests
// are stored one file per agent version.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
)

// RunStore implements ports.RunStore on the local filesystem, writing
// run_<id>.json files under BasePath.
type RunStore struct {
	BasePath string
}

// NewRunStore creates a RunStore. An empty basePath defaults to
// ".lattice/runs".
func NewRunStore(basePath string) *RunStore {
	if basePath == "" {
		basePath = filepath.Join(".lattice", "runs")
	}
	return &RunStore{BasePath: basePath}
}

func (s *RunStore) path(runID string) string {
	return filepath.Join(s.BasePath, "run_"+runID+".json")
}

// SaveRun persists the run log atomically: write to a temp file in the
// same directory, fsync, then rename over the destination.
func (s *RunStore) SaveRun(ctx context.Context, log *domain.RunLog) error {
	if log.RunID == "" {
		return fmt.Errorf("run id cannot be empty")
	}
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run log: %w", err)
	}
	return writeAtomic(s.BasePath, s.path(log.RunID), data)
}

// LoadRun reads one run log by id.
func (s *RunStore) LoadRun(ctx context.Context, runID string) (*domain.RunLog, error) {
	data, err := os.ReadFile(s.path(runID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrRunNotFound
		}
		return nil, fmt.Errorf("failed to read run log: %w", err)
	}
	var log domain.RunLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run log: %w", err)
	}
	return &log, nil
}

// ListRuns returns stored run ids, sorted.
func (s *RunStore) ListRuns(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "run_") || filepath.Ext(name) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, "run_"), ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}

// writeAtomic writes data to destPath via a temp file and rename, so a
// crash never leaves a partial file behind.
func writeAtomic(dir, destPath string, data []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to ensure directory: %w", err)
	}

	// Same directory keeps the rename on one filesystem.
	tmp, err := os.CreateTemp(dir, "tmp-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
