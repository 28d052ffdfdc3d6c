package analytics

import (
	"fmt"
	"sort"
	"time"

	"trade-journal/internal/types"
)

// weekdayOrder is the fixed Monday-first display order.
var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// Aggregate computes every grouped view over trades. Calendar fields (month,
// weekday, hour) are taken in loc; nil means time.Local.
func Aggregate(trades []types.Trade, loc *time.Location) types.Aggregations {
	if loc == nil {
		loc = time.Local
	}
	return types.Aggregations{
		Monthly:     Monthly(trades, loc),
		Weekday:     Weekday(trades, loc),
		Hourly:      Hourly(trades, loc),
		Direction:   ByDirection(trades),
		Instruments: ByInstrument(trades),
	}
}

func winRate(wins, count int) float64 {
	if count == 0 {
		return 0
	}
	return float64(wins) / float64(count) * 100
}

// Monthly groups by YYYY-MM, oldest month first.
func Monthly(trades []types.Trade, loc *time.Location) []types.MonthlyStat {
	groups := map[string]*types.MonthlyStat{}
	for _, t := range trades {
		ts := t.Timestamp.In(loc)
		key := fmt.Sprintf("%04d-%02d", ts.Year(), int(ts.Month()))
		g := groups[key]
		if g == nil {
			g = &types.MonthlyStat{Month: key}
			groups[key] = g
		}
		g.Pnl += t.NetPnl
		g.Trades++
		if t.NetPnl > 0 {
			g.Wins++
		}
	}
	out := make([]types.MonthlyStat, 0, len(groups))
	for _, g := range groups {
		g.WinRate = winRate(g.Wins, g.Trades)
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// Weekday emits only days with trades, Monday through Sunday.
func Weekday(trades []types.Trade, loc *time.Location) []types.WeekdayStat {
	var pnl [7]float64
	var count [7]int
	for _, t := range trades {
		d := t.Timestamp.In(loc).Weekday()
		pnl[d] += t.NetPnl
		count[d]++
	}
	out := []types.WeekdayStat{}
	for _, d := range weekdayOrder {
		if count[d] == 0 {
			continue
		}
		out = append(out, types.WeekdayStat{Day: d.String()[:3], Pnl: pnl[d], Trades: count[d]})
	}
	return out
}

// Hourly emits only active hours in numeric order.
func Hourly(trades []types.Trade, loc *time.Location) []types.HourlyStat {
	var pnl [24]float64
	var count [24]int
	for _, t := range trades {
		h := t.Timestamp.In(loc).Hour()
		pnl[h] += t.NetPnl
		count[h]++
	}
	out := []types.HourlyStat{}
	for h := 0; h < 24; h++ {
		if count[h] == 0 {
			continue
		}
		out = append(out, types.HourlyStat{Hour: h, Pnl: pnl[h], Trades: count[h]})
	}
	return out
}

// ByDirection always returns Long then Short, even when one side is empty.
func ByDirection(trades []types.Trade) []types.DirectionStat {
	out := []types.DirectionStat{{Direction: types.Long}, {Direction: types.Short}}
	var wins [2]int
	for _, t := range trades {
		i := 0
		if t.Direction == types.Short {
			i = 1
		}
		out[i].Pnl += t.NetPnl
		out[i].Trades++
		if t.NetPnl > 0 {
			wins[i]++
		}
	}
	for i := range out {
		out[i].WinRate = winRate(wins[i], out[i].Trades)
	}
	return out
}

// ByInstrument returns one entry per instrument, highest P&L first. Ties keep
// the order in which instruments first appear.
func ByInstrument(trades []types.Trade) []types.InstrumentStat {
	index := map[string]int{}
	out := []types.InstrumentStat{}
	for _, t := range trades {
		i, ok := index[t.Instrument]
		if !ok {
			i = len(out)
			index[t.Instrument] = i
			out = append(out, types.InstrumentStat{Instrument: t.Instrument})
		}
		s := &out[i]
		s.Pnl += t.NetPnl
		s.Trades++
		switch {
		case t.NetPnl > 0:
			s.Wins++
		case t.NetPnl < 0:
			s.Losses++
		}
	}
	for i := range out {
		out[i].WinRate = winRate(out[i].Wins, out[i].Trades)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Pnl > out[j].Pnl })
	return out
}
