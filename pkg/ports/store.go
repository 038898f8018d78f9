package ports

import (
	"context"

	"github.com/aretw0/lattice/pkg/domain"
)

// RunStore persists completed (or force-terminated) run logs.
// The executor calls SaveRun exactly once per run, on every exit path.
type RunStore interface {
	SaveRun(ctx context.Context, log *domain.RunLog) error
}

// RunLister is an optional extension for stores that can enumerate and
// reload persisted runs, used by postmortem tooling.
type RunLister interface {
	ListRuns(ctx context.Context) ([]string, error)
	LoadRun(ctx context.Context, runID string) (*domain.RunLog, error)
}
