// Package journal owns the canonical trade set and serves every view of it.
package journal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"trade-journal/internal/analytics"
	"trade-journal/internal/export"
	"trade-journal/internal/filter"
	"trade-journal/internal/ingest"
	"trade-journal/internal/interfaces"
	"trade-journal/internal/logger"
	"trade-journal/internal/store"
	"trade-journal/internal/telemetry"
	"trade-journal/internal/tradeview"
	"trade-journal/internal/types"
)

const defaultKey = "trades"

type journal struct {
	// mu guards trades. The slice is replaced on load and never mutated, so
	// readers may keep using a snapshot after releasing the lock.
	mu     sync.RWMutex
	trades []types.Trade

	// wmu serializes writers across the swap and the store write, so the
	// persisted set always matches the last one served. Readers never take it.
	wmu sync.Mutex

	parser *ingest.Parser
	store  interfaces.TradeStore
	key    string
	loc    *time.Location
}

var _ interfaces.Journal = (*journal)(nil)

func newJournal(opts Options) *journal {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	key := opts.Key
	if key == "" {
		key = defaultKey
	}
	return &journal{
		parser: ingest.NewParser(loc),
		store:  opts.Store,
		key:    key,
		loc:    loc,
	}
}

func (j *journal) snapshot() []types.Trade {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.trades
}

func (j *journal) replace(trades []types.Trade) {
	j.mu.Lock()
	j.trades = trades
	j.mu.Unlock()
	telemetry.TradesLoaded.Set(float64(len(trades)))
}

func (j *journal) Location() *time.Location {
	return j.loc
}

func (j *journal) Restore(ctx context.Context) (int, error) {
	if j.store == nil {
		return 0, nil
	}
	j.wmu.Lock()
	defer j.wmu.Unlock()

	b, err := j.store.Get(ctx, j.key)
	if errors.Is(err, store.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		telemetry.PersistenceFailures.WithLabelValues("restore").Inc()
		return 0, fmt.Errorf("restore %s: %w", j.key, err)
	}
	trades, dropped, err := store.DecodeTrades(b)
	if err != nil {
		telemetry.PersistenceFailures.WithLabelValues("restore").Inc()
		return 0, fmt.Errorf("restore %s: %w", j.key, err)
	}
	if dropped > 0 {
		logger.Warn(ctx, "Dropped invalid persisted trades", "key", j.key, "dropped", dropped)
	}
	j.replace(trades)
	return len(trades), nil
}

func (j *journal) Load(ctx context.Context, r io.Reader) (types.LoadReport, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return types.LoadReport{}, ingest.ReadFailure(err)
	}
	if err := ctx.Err(); err != nil {
		return types.LoadReport{}, err
	}

	res, err := j.parser.Parse(string(b))
	if err != nil {
		return types.LoadReport{}, err
	}

	j.wmu.Lock()
	j.replace(res.Trades)
	j.persist(ctx, res.Trades)
	j.wmu.Unlock()

	return types.LoadReport{
		LoadID:   uuid.NewString(),
		Rows:     res.Rows,
		Accepted: len(res.Trades),
		Skipped:  res.Skipped,
		Pending:  res.Pending,
	}, nil
}

func (j *journal) Clear(ctx context.Context) error {
	j.wmu.Lock()
	defer j.wmu.Unlock()

	j.replace(nil)
	if j.store == nil {
		return nil
	}
	if err := j.store.Delete(ctx, j.key); err != nil {
		telemetry.PersistenceFailures.WithLabelValues("delete").Inc()
		logger.Persistence(ctx, "delete", j.key, err)
	}
	return nil
}

// persist saves the trade set. Failures are logged and counted; the journal
// keeps working from memory.
func (j *journal) persist(ctx context.Context, trades []types.Trade) {
	if j.store == nil {
		return
	}
	b, err := store.EncodeTrades(trades)
	if err == nil {
		err = j.store.Set(ctx, j.key, b)
	}
	if err != nil {
		telemetry.PersistenceFailures.WithLabelValues("save").Inc()
		logger.Persistence(ctx, "save", j.key, err, "trades", len(trades))
	}
}

func (j *journal) Dashboard(ctx context.Context, f types.FilterCriteria) (types.Dashboard, error) {
	return analytics.Recompute(ctx, j.snapshot(), f, j.loc)
}

func (j *journal) LogView(ctx context.Context, f types.FilterCriteria, q types.LogQuery) ([]types.Trade, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	subset := filter.Apply(j.snapshot(), f)
	return tradeview.Build(subset, q.Search, q.Sort), nil
}

func (j *journal) Export(ctx context.Context, f types.FilterCriteria, q types.LogQuery) (string, error) {
	view, err := j.LogView(ctx, f, q)
	if err != nil {
		return "", err
	}
	return export.CSV(view, j.loc)
}

func (j *journal) Instruments(_ context.Context) []string {
	return filter.Instruments(j.snapshot())
}
