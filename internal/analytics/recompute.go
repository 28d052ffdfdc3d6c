package analytics

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"trade-journal/internal/filter"
	"trade-journal/internal/types"
)

// Recompute filters trades and derives the full dashboard. Metrics and
// aggregations read the same filtered slice and run side by side; neither
// writes to it, so the result is identical to a sequential pass. The
// computation is not cancellable; a done ctx does not discard a result.
func Recompute(_ context.Context, trades []types.Trade, f types.FilterCriteria, loc *time.Location) (types.Dashboard, error) {
	subset := filter.Apply(trades, f)
	d := types.Dashboard{Filter: f}

	var (
		snap types.MetricsSnapshot
		ok   bool
		agg  types.Aggregations
	)
	var g errgroup.Group
	g.Go(func() error {
		snap, ok = Compute(subset)
		return nil
	})
	g.Go(func() error {
		agg = Aggregate(subset, loc)
		return nil
	})
	if err := g.Wait(); err != nil {
		return types.Dashboard{}, err
	}

	d.Available = ok
	if ok {
		d.Metrics = &snap
	}
	d.Aggregations = agg
	return d, nil
}
