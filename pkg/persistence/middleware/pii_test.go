package middleware_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/lattice/pkg/adapters/memory"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/persistence/middleware"
)

func sampleRunLog() *domain.RunLog {
	return &domain.RunLog{
		RunID:     "run-1",
		Timestamp: time.Now().UTC(),
		Steps: []domain.AuditStep{
			{
				Step: 1,
				Node: "fetch_user",
				StateBefore: map[string]any{
					"user_email": "alice@example.com",
					"topic":      "billing",
				},
				StateDiff: domain.StateDiff{
					Added: map[string]any{
						"api_key": "sk-123",
						"profile": map[string]any{"password": "hunter2", "city": "Lisbon"},
					},
					Removed: map[string]any{},
					Updated: map[string]any{},
				},
				Outcome: domain.OutcomeSuccess,
			},
		},
		Summary: domain.Summary{TotalSteps: 1},
	}
}

func TestPIIMiddleware_MasksMatchingKeys(t *testing.T) {
	underlying := memory.NewRunStore()
	store := middleware.NewPIIMiddleware([]string{"email", "password", "api_key"})(underlying)

	ctx := context.Background()
	original := sampleRunLog()
	require.NoError(t, store.SaveRun(ctx, original))

	stored, err := underlying.LoadRun(ctx, "run-1")
	require.NoError(t, err)

	step := stored.Steps[0]
	assert.Equal(t, "***", step.StateBefore["user_email"])
	assert.Equal(t, "billing", step.StateBefore["topic"])
	assert.Equal(t, "***", step.StateDiff.Added["api_key"])

	profile := step.StateDiff.Added["profile"].(map[string]any)
	assert.Equal(t, "***", profile["password"])
	assert.Equal(t, "Lisbon", profile["city"])
}

func TestPIIMiddleware_DoesNotMutateCaller(t *testing.T) {
	store := middleware.NewPIIMiddleware([]string{"email"})(memory.NewRunStore())

	original := sampleRunLog()
	require.NoError(t, store.SaveRun(context.Background(), original))

	assert.Equal(t, "alice@example.com", original.Steps[0].StateBefore["user_email"])
}

func TestPIIMiddleware_ForwardsReads(t *testing.T) {
	underlying := memory.NewRunStore()
	store := middleware.NewPIIMiddleware(nil)(underlying)

	ctx := context.Background()
	require.NoError(t, store.SaveRun(ctx, sampleRunLog()))

	lister, ok := store.(interface {
		ListRuns(ctx context.Context) ([]string, error)
	})
	require.True(t, ok)

	ids, err := lister.ListRuns(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"run-1"}, ids)
}
