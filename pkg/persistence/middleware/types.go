package middleware

import (
	"context"
	"errors"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/ports"
)

// Middleware allows wrapping a RunStore to add behavior.
type Middleware func(ports.RunStore) ports.RunStore

// Wrap applies middlewares to a store, outermost first. The run log
// passes through each middleware's SaveRun before reaching the store.
func Wrap(store ports.RunStore, mws ...Middleware) ports.RunStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}

// ErrListingUnsupported is returned when a middleware forwards a read
// to a store that only implements SaveRun.
var ErrListingUnsupported = errors.New("underlying store does not support listing runs")

func listRuns(ctx context.Context, next ports.RunStore) ([]string, error) {
	lister, ok := next.(ports.RunLister)
	if !ok {
		return nil, ErrListingUnsupported
	}
	return lister.ListRuns(ctx)
}

func loadRun(ctx context.Context, next ports.RunStore, runID string) (*domain.RunLog, error) {
	lister, ok := next.(ports.RunLister)
	if !ok {
		return nil, ErrListingUnsupported
	}
	return lister.LoadRun(ctx, runID)
}
