package journalobs

import (
	"context"
	"errors"
	"io"
	"time"

	"trade-journal/internal/ingest"
	"trade-journal/internal/interfaces"
	"trade-journal/internal/logger"
	"trade-journal/internal/telemetry"
	"trade-journal/internal/trace"
	"trade-journal/internal/types"
)

type observableJournal struct {
	journal interfaces.Journal
}

var _ interfaces.Journal = (*observableJournal)(nil)

func Wrap(journal interfaces.Journal) interfaces.Journal {
	return &observableJournal{
		journal: journal,
	}
}

// loadResult labels a load outcome for the loads counter.
func loadResult(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ingest.ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ingest.ErrMissingColumns):
		return "missing_columns"
	case errors.Is(err, ingest.ErrNoCompletedTrades):
		return "no_completed_trades"
	case errors.Is(err, ingest.ErrReadFailure):
		return "read_failure"
	default:
		return "error"
	}
}

func filterFields(f types.FilterCriteria) []any {
	fields := []any{"direction", f.Direction, "instrument", f.Instrument}
	if f.Start != nil {
		fields = append(fields, "start", f.Start.Format(time.RFC3339))
	}
	if f.End != nil {
		fields = append(fields, "end", f.End.Format(time.RFC3339))
	}
	return fields
}

func (oj *observableJournal) Restore(ctx context.Context) (int, error) {
	ctx, span := trace.StartSpan(ctx, "journal.Restore")
	defer span.End()

	n, err := oj.journal.Restore(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Restoring persisted trades failed, starting empty", err)
		return 0, err
	}

	logger.InfoSkip(ctx, 1, "Persisted trades restored",
		"trades", n,
	)
	return n, nil
}

func (oj *observableJournal) Load(ctx context.Context, r io.Reader) (types.LoadReport, error) {
	ctx, span := trace.StartSpan(ctx, "journal.Load")
	defer span.End()

	start := time.Now()
	report, err := oj.journal.Load(ctx, r)
	telemetry.LoadsTotal.WithLabelValues(loadResult(err)).Inc()
	if err != nil {
		fields := []any{"result", loadResult(err), "duration_ms", time.Since(start).Milliseconds()}
		var missing *ingest.MissingColumnsError
		if errors.As(err, &missing) {
			fields = append(fields, "missing_columns", missing.Columns)
		}
		var none *ingest.NoCompletedTradesError
		if errors.As(err, &none) {
			fields = append(fields, "pending", none.Pending, "skipped", none.Skipped)
		}
		logger.ErrorWithErrSkip(ctx, 1, "Trade file load rejected", err, fields...)
		return report, err
	}

	telemetry.ObserveRows(report.Accepted, report.Skipped, report.Pending)
	span.SetAttributes(trace.Attrs(
		"load_id", report.LoadID,
		"accepted", report.Accepted,
		"skipped", report.Skipped,
	)...)
	logger.Ingest(ctx, report, "duration_ms", time.Since(start).Milliseconds())
	return report, nil
}

func (oj *observableJournal) Clear(ctx context.Context) error {
	ctx, span := trace.StartSpan(ctx, "journal.Clear")
	defer span.End()

	if err := oj.journal.Clear(ctx); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Clearing trades failed", err)
		return err
	}
	logger.InfoSkip(ctx, 1, "Trades cleared")
	return nil
}

func (oj *observableJournal) Dashboard(ctx context.Context, f types.FilterCriteria) (types.Dashboard, error) {
	op := logger.StartOperation(ctx, "journal.Dashboard", filterFields(f)...)
	ctx = op.GetContext()

	start := time.Now()
	d, err := oj.journal.Dashboard(ctx, f)
	telemetry.RecomputeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		op.EndWithError(err)
		return d, err
	}

	trades := 0
	if d.Metrics != nil {
		trades = d.Metrics.TotalTrades
	}
	op.End("available", d.Available, "trades", trades)
	return d, nil
}

func (oj *observableJournal) LogView(ctx context.Context, f types.FilterCriteria, q types.LogQuery) ([]types.Trade, error) {
	ctx, span := trace.StartSpan(ctx, "journal.LogView")
	defer span.End()

	rows, err := oj.journal.LogView(ctx, f, q)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Building trade log failed", err, filterFields(f)...)
		return nil, err
	}
	logger.DebugSkip(ctx, 1, "Trade log built",
		"rows", len(rows),
		"search", q.Search,
		"sort_key", string(q.Sort.Key),
		"sort_order", string(q.Sort.Order),
	)
	return rows, nil
}

func (oj *observableJournal) Export(ctx context.Context, f types.FilterCriteria, q types.LogQuery) (string, error) {
	ctx, span := trace.StartSpan(ctx, "journal.Export")
	defer span.End()

	out, err := oj.journal.Export(ctx, f, q)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Trade export failed", err, filterFields(f)...)
		return "", err
	}
	logger.InfoSkip(ctx, 1, "Trades exported",
		"bytes", len(out),
	)
	return out, nil
}

func (oj *observableJournal) Instruments(ctx context.Context) []string {
	return oj.journal.Instruments(ctx)
}

func (oj *observableJournal) Location() *time.Location {
	return oj.journal.Location()
}
