package interfaces

import (
	"context"
	"io"
	"time"

	"trade-journal/internal/types"
)

// Journal owns the canonical trade set. Load and Clear are the only writers;
// every read works on a consistent snapshot.
type Journal interface {
	// Restore replaces the trade set with the persisted one, if any.
	Restore(ctx context.Context) (restored int, err error)

	// Load parses a broker export and replaces the trade set on success.
	// A failed load leaves the previous set in place.
	Load(ctx context.Context, r io.Reader) (types.LoadReport, error)

	// Clear drops every trade.
	Clear(ctx context.Context) error

	// Dashboard filters the trade set and computes metrics and aggregations.
	Dashboard(ctx context.Context, f types.FilterCriteria) (types.Dashboard, error)

	// LogView filters, searches and sorts the trade set for display.
	LogView(ctx context.Context, f types.FilterCriteria, q types.LogQuery) ([]types.Trade, error)

	// Export renders the LogView result as CSV.
	Export(ctx context.Context, f types.FilterCriteria, q types.LogQuery) (string, error)

	// Instruments lists the distinct instruments of the full trade set.
	Instruments(ctx context.Context) []string

	// Location is the zone used for date bounds and time-bucketed views.
	Location() *time.Location
}
