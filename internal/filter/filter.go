// Package filter derives the working subset of trades from FilterCriteria.
package filter

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"trade-journal/internal/types"
)

// Apply returns the trades matching f in their original order. Date bounds are
// inclusive.
func Apply(trades []types.Trade, f types.FilterCriteria) []types.Trade {
	out := make([]types.Trade, 0, len(trades))
	for _, t := range trades {
		if Match(t, f) {
			out = append(out, t)
		}
	}
	return out
}

func Match(t types.Trade, f types.FilterCriteria) bool {
	if f.Start != nil && t.Timestamp.Before(*f.Start) {
		return false
	}
	if f.End != nil && t.Timestamp.After(*f.End) {
		return false
	}
	if !isAll(f.Direction) && !strings.EqualFold(string(t.Direction), f.Direction) {
		return false
	}
	if !isAll(f.Instrument) && t.Instrument != f.Instrument {
		return false
	}
	return true
}

func isAll(v string) bool {
	return v == "" || strings.EqualFold(v, types.All)
}

// DateRange converts YYYY-MM-DD bounds into inclusive instants in loc: from
// starts at midnight, to runs until the last nanosecond of that day. Empty
// strings leave that side open.
func DateRange(from, to string, loc *time.Location) (start, end *time.Time, err error) {
	if loc == nil {
		loc = time.Local
	}
	if from != "" {
		d, err := time.ParseInLocation("2006-01-02", from, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid start date %q: %w", from, err)
		}
		start = &d
	}
	if to != "" {
		d, err := time.ParseInLocation("2006-01-02", to, loc)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid end date %q: %w", to, err)
		}
		e := d.AddDate(0, 0, 1).Add(-time.Nanosecond)
		end = &e
	}
	return start, end, nil
}

// Criteria builds FilterCriteria from presentation-layer strings.
func Criteria(from, to, direction, instrument string, loc *time.Location) (types.FilterCriteria, error) {
	start, end, err := DateRange(from, to, loc)
	if err != nil {
		return types.FilterCriteria{}, err
	}
	if !isAll(direction) && !strings.EqualFold(direction, string(types.Long)) && !strings.EqualFold(direction, string(types.Short)) {
		return types.FilterCriteria{}, fmt.Errorf("invalid direction %q: must be all, Long or Short", direction)
	}
	return types.FilterCriteria{Start: start, End: end, Direction: direction, Instrument: instrument}, nil
}

// Instruments lists the distinct instruments in trades, sorted.
func Instruments(trades []types.Trade) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, t := range trades {
		if _, ok := seen[t.Instrument]; ok {
			continue
		}
		seen[t.Instrument] = struct{}{}
		out = append(out, t.Instrument)
	}
	sort.Strings(out)
	return out
}
