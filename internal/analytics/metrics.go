// Package analytics computes the performance metrics and grouped views over a
// filtered trade sequence. Every function is a pure full pass over its input.
package analytics

import (
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"trade-journal/internal/types"
)

// Sentinel is reported for ratios whose denominator is zero while the
// numerator is positive.
const Sentinel = 999

// RankingSize is the length of the best and worst trade lists.
const RankingSize = 5

// maxDurationGap excludes gaps that span trading sessions.
const maxDurationGap = 24 * time.Hour

// Compute builds the MetricsSnapshot for trades. ok is false when trades is
// empty; the snapshot is then unavailable rather than zero.
func Compute(trades []types.Trade) (snap types.MetricsSnapshot, ok bool) {
	if len(trades) == 0 {
		return types.MetricsSnapshot{}, false
	}

	var (
		nets   = make([]float64, 0, len(trades))
		fees   = make([]float64, 0, len(trades))
		swaps  = make([]float64, 0, len(trades))
		wins   []float64
		losses []float64
	)
	for _, t := range trades {
		nets = append(nets, t.NetPnl)
		fees = append(fees, t.Fee)
		swaps = append(swaps, t.Swap)
		switch {
		case t.NetPnl > 0:
			wins = append(wins, t.NetPnl)
		case t.NetPnl < 0:
			losses = append(losses, math.Abs(t.NetPnl))
		}
	}

	n := float64(len(trades))
	snap.TotalTrades = len(trades)
	snap.Winners = len(wins)
	snap.Losers = len(losses)
	snap.TotalPnl = floats.Sum(nets)
	snap.TotalFees = floats.Sum(fees)
	snap.TotalSwap = floats.Sum(swaps)
	snap.WinRate = float64(len(wins)) / n * 100
	snap.LossRate = float64(len(losses)) / n * 100
	snap.GrossProfit = floats.Sum(wins)
	snap.GrossLoss = floats.Sum(losses)
	if len(wins) > 0 {
		snap.AvgWin = stat.Mean(wins, nil)
		snap.LargestWin = floats.Max(wins)
	}
	if len(losses) > 0 {
		snap.AvgLoss = stat.Mean(losses, nil)
		snap.LargestLoss = floats.Max(losses)
	}

	snap.ProfitFactor = ratio(snap.GrossProfit, snap.GrossLoss)
	snap.RiskReward = ratio(snap.AvgWin, snap.AvgLoss)
	snap.Expectancy = snap.AvgWin*(snap.WinRate/100) - snap.AvgLoss*(snap.LossRate/100)

	chrono := Chronological(trades)
	snap.EquityCurve, snap.MaxDrawdown, snap.MaxDrawdownPercent = equityCurve(chrono)
	switch {
	case snap.MaxDrawdown > 0:
		snap.RecoveryFactor = snap.TotalPnl / snap.MaxDrawdown
	case snap.TotalPnl > 0:
		snap.RecoveryFactor = Sentinel
	}
	snap.AvgTradeDurationMinutes = averageGapMinutes(chrono)
	snap.BestTrades, snap.WorstTrades = rankings(trades)
	snap.MaxWinStreak, snap.MaxLossStreak, snap.CurrentStreak = streaks(chrono)

	return snap, true
}

// ratio divides num by den, falling back to Sentinel when only the numerator
// is positive and to 0 when neither is.
func ratio(num, den float64) float64 {
	if den > 0 {
		return num / den
	}
	if num > 0 {
		return Sentinel
	}
	return 0
}

// Chronological returns a copy of trades stably sorted by timestamp; equal
// timestamps keep their input order.
func Chronological(trades []types.Trade) []types.Trade {
	out := make([]types.Trade, len(trades))
	copy(out, trades)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

// equityCurve accumulates net P&L in time order. The peak starts at zero, the
// account's starting equity. maxPct is the drawdown percent observed at the
// point of maximum drawdown, not the maximum percent.
func equityCurve(chrono []types.Trade) (curve []types.EquityPoint, maxDD, maxPct float64) {
	curve = make([]types.EquityPoint, 0, len(chrono))
	var equity, peak float64
	for _, t := range chrono {
		equity += t.NetPnl
		if equity > peak {
			peak = equity
		}
		dd := peak - equity
		var pct float64
		if peak > 0 {
			pct = dd / peak * 100
		}
		if dd > maxDD {
			maxDD = dd
			maxPct = pct
		}
		curve = append(curve, types.EquityPoint{
			Time:            t.Timestamp,
			TradeID:         t.ID,
			Equity:          equity,
			Peak:            peak,
			Drawdown:        dd,
			DrawdownPercent: pct,
		})
	}
	return curve, maxDD, maxPct
}

// averageGapMinutes averages the gaps between consecutive trades across all
// instruments, keeping only gaps in (0, 24h).
func averageGapMinutes(chrono []types.Trade) float64 {
	var gaps []float64
	for i := 1; i < len(chrono); i++ {
		gap := chrono[i].Timestamp.Sub(chrono[i-1].Timestamp)
		if gap > 0 && gap < maxDurationGap {
			gaps = append(gaps, gap.Minutes())
		}
	}
	if len(gaps) == 0 {
		return 0
	}
	return stat.Mean(gaps, nil)
}

// rankings sorts by net P&L descending. Worst is the tail of that same order,
// reversed so the most negative trade comes first.
func rankings(trades []types.Trade) (best, worst []types.Trade) {
	sorted := make([]types.Trade, len(trades))
	copy(sorted, trades)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].NetPnl > sorted[j].NetPnl
	})

	k := min(RankingSize, len(sorted))
	best = append([]types.Trade(nil), sorted[:k]...)
	tail := sorted[len(sorted)-k:]
	worst = make([]types.Trade, 0, k)
	for i := len(tail) - 1; i >= 0; i-- {
		worst = append(worst, tail[i])
	}
	return best, worst
}

// streaks walks trades in time order with a signed run counter. A net P&L of
// zero or below extends a losing run, unlike the win/loss rate partition where
// zero counts as neither.
func streaks(chrono []types.Trade) (maxWin, maxLoss, current int) {
	for _, t := range chrono {
		if t.NetPnl > 0 {
			if current > 0 {
				current++
			} else {
				current = 1
			}
			maxWin = max(maxWin, current)
			continue
		}
		if current < 0 {
			current--
		} else {
			current = -1
		}
		maxLoss = max(maxLoss, -current)
	}
	return maxWin, maxLoss, current
}
