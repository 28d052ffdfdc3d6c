// Package tradeview builds the ordered, searchable trade log table.
package tradeview

import (
	"fmt"
	"sort"
	"strings"

	"trade-journal/internal/types"
)

// Build returns trades matching search, stably sorted by cfg. The input slice
// is not modified.
func Build(trades []types.Trade, search string, cfg types.SortConfig) []types.Trade {
	out := Search(trades, search)
	Sort(out, cfg)
	return out
}

// Search keeps trades whose instrument, id or direction contains q, ignoring
// case. An empty query keeps everything.
func Search(trades []types.Trade, q string) []types.Trade {
	q = strings.ToLower(strings.TrimSpace(q))
	out := make([]types.Trade, 0, len(trades))
	for _, t := range trades {
		if q == "" ||
			strings.Contains(strings.ToLower(t.Instrument), q) ||
			strings.Contains(strings.ToLower(t.ID), q) ||
			strings.Contains(strings.ToLower(string(t.Direction)), q) {
			out = append(out, t)
		}
	}
	return out
}

// Sort orders trades in place. Equal keys keep their relative order in both
// directions.
func Sort(trades []types.Trade, cfg types.SortConfig) {
	cmp := comparator(cfg.Key)
	desc := cfg.Order == types.Descending
	sort.SliceStable(trades, func(i, j int) bool {
		if desc {
			return cmp(trades[j], trades[i]) < 0
		}
		return cmp(trades[i], trades[j]) < 0
	})
}

// Query builds a LogQuery from presentation-layer strings. An empty key means
// the default ordering and an empty order means descending.
func Query(search, key, order string) (types.LogQuery, error) {
	q := types.LogQuery{Search: search, Sort: types.DefaultSort()}
	if key != "" {
		k, err := ParseSortKey(key)
		if err != nil {
			return types.LogQuery{}, err
		}
		q.Sort = types.SortConfig{Key: k, Order: types.Descending}
	}
	if order != "" {
		o, err := ParseSortOrder(order)
		if err != nil {
			return types.LogQuery{}, err
		}
		q.Sort.Order = o
	}
	return q, nil
}

// ParseSortKey validates a key received from the presentation layer.
func ParseSortKey(s string) (types.SortKey, error) {
	k := types.SortKey(s)
	switch k {
	case types.SortTimestamp, types.SortNetPnl, types.SortGrossPnl, types.SortFee,
		types.SortQuantity, types.SortPrice, types.SortInstrument, types.SortDirection:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

func ParseSortOrder(s string) (types.SortOrder, error) {
	switch types.SortOrder(strings.ToLower(s)) {
	case types.Ascending:
		return types.Ascending, nil
	case types.Descending:
		return types.Descending, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

func comparator(key types.SortKey) func(a, b types.Trade) int {
	switch key {
	case types.SortNetPnl:
		return byFloat(func(t types.Trade) float64 { return t.NetPnl })
	case types.SortGrossPnl:
		return byFloat(func(t types.Trade) float64 { return t.GrossPnl })
	case types.SortFee:
		return byFloat(func(t types.Trade) float64 { return t.Fee })
	case types.SortQuantity:
		return byFloat(func(t types.Trade) float64 { return t.Quantity })
	case types.SortPrice:
		return byFloat(func(t types.Trade) float64 { return t.Price })
	case types.SortInstrument:
		return byText(func(t types.Trade) string { return t.Instrument })
	case types.SortDirection:
		return byText(func(t types.Trade) string { return string(t.Direction) })
	default:
		return func(a, b types.Trade) int { return a.Timestamp.Compare(b.Timestamp) }
	}
}

func byFloat(f func(types.Trade) float64) func(a, b types.Trade) int {
	return func(a, b types.Trade) int {
		x, y := f(a), f(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	}
}

func byText(f func(types.Trade) string) func(a, b types.Trade) int {
	return func(a, b types.Trade) int {
		return strings.Compare(strings.ToLower(f(a)), strings.ToLower(f(b)))
	}
}
