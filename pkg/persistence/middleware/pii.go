package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

type piiMiddleware struct {
	next     ports.RunStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks state values of keys
// matching the patterns before the run log is persisted. Masking is
// permanent: loads return the masked log.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.RunStore) ports.RunStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) SaveRun(ctx context.Context, log *domain.RunLog) error {
	// Deep clone to avoid side effects on the log held by the caller.
	cloned := *log
	cloned.Steps = make([]domain.AuditStep, len(log.Steps))
	for i, step := range log.Steps {
		step.StateBefore = deepCopyMap(step.StateBefore)
		step.StateDiff = domain.StateDiff{
			Added:   deepCopyMap(step.StateDiff.Added),
			Removed: deepCopyMap(step.StateDiff.Removed),
			Updated: deepCopyMap(step.StateDiff.Updated),
		}

		maskMap(step.StateBefore, m.patterns)
		maskMap(step.StateDiff.Added, m.patterns)
		maskMap(step.StateDiff.Removed, m.patterns)
		maskMap(step.StateDiff.Updated, m.patterns)

		cloned.Steps[i] = step
	}

	return m.next.SaveRun(ctx, &cloned)
}

func (m *piiMiddleware) ListRuns(ctx context.Context) ([]string, error) {
	return listRuns(ctx, m.next)
}

func (m *piiMiddleware) LoadRun(ctx context.Context, runID string) (*domain.RunLog, error) {
	return loadRun(ctx, m.next, runID)
}

// Helpers

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		for _, p := range patterns {
			if p.MatchString(k) {
				m[k] = "***"
				break
			}
		}

		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}
