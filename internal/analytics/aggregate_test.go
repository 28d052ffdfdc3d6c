package analytics

import (
	"context"
	"testing"
	"time"

	"trade-journal/internal/types"
)

func at(y int, m time.Month, d, h int, instrument string, dir types.Direction, net float64) types.Trade {
	return types.Trade{
		Instrument: instrument,
		Direction:  dir,
		NetPnl:     net,
		Timestamp:  time.Date(y, m, d, h, 0, 0, 0, time.UTC),
	}
}

func aggSample() []types.Trade {
	return []types.Trade{
		// 2024-03-04 is a Monday
		at(2024, 3, 4, 9, "EURUSD", types.Long, 10),
		at(2024, 3, 4, 14, "EURUSD", types.Long, -4),
		at(2024, 3, 10, 9, "XAUUSD", types.Long, 6),
		at(2024, 2, 28, 2, "GBPUSD", types.Long, 0),
		at(2025, 1, 3, 14, "XAUUSD", types.Long, 20),
	}
}

func TestMonthly(t *testing.T) {
	got := Monthly(aggSample(), time.UTC)
	want := []types.MonthlyStat{
		{Month: "2024-02", Pnl: 0, Trades: 1, Wins: 0, WinRate: 0},
		{Month: "2024-03", Pnl: 12, Trades: 3, Wins: 2, WinRate: 200.0 / 3},
		{Month: "2025-01", Pnl: 20, Trades: 1, Wins: 1, WinRate: 100},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d months, got %d", len(want), len(got))
	}
	for i := range want {
		g, w := got[i], want[i]
		if g.Month != w.Month || g.Trades != w.Trades || g.Wins != w.Wins || !approx(g.Pnl, w.Pnl) || !approx(g.WinRate, w.WinRate) {
			t.Errorf("month %d: expected %+v, got %+v", i, w, g)
		}
	}
}

func TestWeekday_FixedOrderOnlyActive(t *testing.T) {
	got := Weekday(aggSample(), time.UTC)
	// Feb 28 2024 is a Wednesday, Jan 3 2025 a Friday, Mar 10 2024 a Sunday.
	wantDays := []string{"Mon", "Wed", "Fri", "Sun"}
	if len(got) != len(wantDays) {
		t.Fatalf("expected %v, got %+v", wantDays, got)
	}
	for i, d := range wantDays {
		if got[i].Day != d {
			t.Errorf("position %d: expected %s, got %s", i, d, got[i].Day)
		}
	}
	if got[0].Trades != 2 || got[0].Pnl != 6 {
		t.Errorf("unexpected Monday stats: %+v", got[0])
	}
}

func TestWeekday_UsesLocation(t *testing.T) {
	// Monday 01:00 UTC is still Sunday in New York.
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tz database unavailable: %v", err)
	}
	trades := []types.Trade{at(2024, 3, 4, 1, "X", types.Long, 1)}
	got := Weekday(trades, ny)
	if len(got) != 1 || got[0].Day != "Sun" {
		t.Errorf("expected Sun, got %+v", got)
	}
}

func TestHourly_NumericOrder(t *testing.T) {
	trades := []types.Trade{
		at(2024, 3, 4, 14, "X", types.Long, 1),
		at(2024, 3, 4, 2, "X", types.Long, 2),
		at(2024, 3, 4, 9, "X", types.Long, 3),
		at(2024, 3, 5, 14, "X", types.Long, 4),
	}
	got := Hourly(trades, time.UTC)
	wantHours := []int{2, 9, 14}
	if len(got) != len(wantHours) {
		t.Fatalf("expected hours %v, got %+v", wantHours, got)
	}
	for i, h := range wantHours {
		if got[i].Hour != h {
			t.Errorf("position %d: expected hour %d, got %d", i, h, got[i].Hour)
		}
	}
	if got[2].Trades != 2 || got[2].Pnl != 5 {
		t.Errorf("unexpected 14h stats: %+v", got[2])
	}
}

func TestByDirection_AlwaysBothSides(t *testing.T) {
	got := ByDirection(aggSample())
	if len(got) != 2 || got[0].Direction != types.Long || got[1].Direction != types.Short {
		t.Fatalf("expected Long and Short entries, got %+v", got)
	}
	if got[1].Trades != 0 || got[1].WinRate != 0 || got[1].Pnl != 0 {
		t.Errorf("expected empty Short entry, got %+v", got[1])
	}
	if got[0].Trades != 5 || !approx(got[0].WinRate, 60) {
		t.Errorf("unexpected Long entry: %+v", got[0])
	}
}

func TestByInstrument(t *testing.T) {
	got := ByInstrument(aggSample())
	if len(got) != 3 {
		t.Fatalf("expected 3 instruments, got %+v", got)
	}
	if got[0].Instrument != "XAUUSD" || got[0].Pnl != 26 || got[0].Wins != 2 {
		t.Errorf("unexpected top instrument: %+v", got[0])
	}
	if got[1].Instrument != "EURUSD" || got[1].Wins != 1 || got[1].Losses != 1 || got[1].WinRate != 50 {
		t.Errorf("unexpected EURUSD entry: %+v", got[1])
	}
	if got[2].Instrument != "GBPUSD" || got[2].Wins != 0 || got[2].Losses != 0 {
		t.Errorf("unexpected GBPUSD entry: %+v", got[2])
	}
}

func TestRecompute(t *testing.T) {
	trades := aggSample()
	d, err := Recompute(context.Background(), trades, types.FilterCriteria{Instrument: "EURUSD"}, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.Available || d.Metrics == nil {
		t.Fatal("expected metrics to be available")
	}
	if d.Metrics.TotalTrades != 2 || d.Metrics.TotalPnl != 6 {
		t.Errorf("unexpected metrics: trades=%d pnl=%v", d.Metrics.TotalTrades, d.Metrics.TotalPnl)
	}
	if len(d.Aggregations.Instruments) != 1 {
		t.Errorf("aggregations must use the filtered subset, got %+v", d.Aggregations.Instruments)
	}

	empty, err := Recompute(context.Background(), trades, types.FilterCriteria{Instrument: "NOPE"}, time.UTC)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty.Available || empty.Metrics != nil {
		t.Error("expected unavailable metrics for an empty subset")
	}
	if len(empty.Aggregations.Direction) != 2 {
		t.Error("direction view must still report both sides")
	}
}

func TestRecompute_IgnoresCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, err := Recompute(ctx, aggSample(), types.FilterCriteria{}, time.UTC)
	if err != nil {
		t.Fatalf("Expected a full dashboard after cancel, got error: %v", err)
	}
	if !d.Available || d.Metrics.TotalTrades != 5 {
		t.Errorf("unexpected dashboard: available=%v metrics=%+v", d.Available, d.Metrics)
	}
}
