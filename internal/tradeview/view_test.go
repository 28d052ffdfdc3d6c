package tradeview

import (
	"testing"
	"time"

	"trade-journal/internal/types"
)

func logSample() []types.Trade {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []types.Trade{
		{ID: "A1", Instrument: "eurusd", Direction: types.Long, NetPnl: 5, Price: 1.1, Timestamp: t0.Add(2 * time.Hour)},
		{ID: "B2", Instrument: "XAUUSD", Direction: types.Short, NetPnl: -3, Price: 2000, Timestamp: t0},
		{ID: "C3", Instrument: "EURUSD", Direction: types.Short, NetPnl: 5, Price: 1.2, Timestamp: t0.Add(time.Hour)},
		{ID: "D4", Instrument: "GBPUSD", Direction: types.Long, NetPnl: 10, Price: 1.3, Timestamp: t0.Add(3 * time.Hour)},
	}
}

func order(trades []types.Trade) string {
	s := ""
	for _, t := range trades {
		s += t.ID[:1]
	}
	return s
}

func TestBuild_Sorting(t *testing.T) {
	tests := []struct {
		name string
		cfg  types.SortConfig
		want string
	}{
		{"timestamp desc", types.DefaultSort(), "DACB"},
		{"timestamp asc", types.SortConfig{Key: types.SortTimestamp, Order: types.Ascending}, "BCAD"},
		{"net asc keeps ties stable", types.SortConfig{Key: types.SortNetPnl, Order: types.Ascending}, "BACD"},
		{"net desc keeps ties stable", types.SortConfig{Key: types.SortNetPnl, Order: types.Descending}, "DACB"},
		{"instrument case-insensitive", types.SortConfig{Key: types.SortInstrument, Order: types.Ascending}, "ACDB"},
		{"price desc", types.SortConfig{Key: types.SortPrice, Order: types.Descending}, "BDCA"},
		{"direction asc", types.SortConfig{Key: types.SortDirection, Order: types.Ascending}, "ADBC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := order(Build(logSample(), "", tt.cfg)); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		q    string
		want string
	}{
		{"", "ABCD"},
		{"EUR", "AC"},
		{"b2", "B"},
		{"short", "BC"},
		{"  long ", "AD"},
		{"zzz", ""},
	}
	for _, tt := range tests {
		if got := order(Search(logSample(), tt.q)); got != tt.want {
			t.Errorf("Search(%q): expected %s, got %s", tt.q, tt.want, got)
		}
	}
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	in := logSample()
	Build(in, "", types.SortConfig{Key: types.SortNetPnl, Order: types.Descending})
	if order(in) != "ABCD" {
		t.Errorf("input reordered: %s", order(in))
	}
}

func TestSortConfig_Select(t *testing.T) {
	cfg := types.SortConfig{Key: types.SortNetPnl, Order: types.Ascending}
	once := cfg.Select(types.SortNetPnl)
	if once.Order != types.Descending {
		t.Errorf("expected flip to desc, got %s", once.Order)
	}
	twice := once.Select(types.SortNetPnl)
	if twice != cfg {
		t.Errorf("expected toggle twice to restore %+v, got %+v", cfg, twice)
	}
	other := twice.Select(types.SortPrice)
	if other.Key != types.SortPrice || other.Order != types.Descending {
		t.Errorf("new key must reset to desc, got %+v", other)
	}
}

func TestParseSortKey(t *testing.T) {
	if _, err := ParseSortKey("netPnl"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := ParseSortKey("colour"); err == nil {
		t.Error("expected error for unknown key")
	}
	if o, err := ParseSortOrder("ASC"); err != nil || o != types.Ascending {
		t.Errorf("expected asc, got %v %v", o, err)
	}
}

func TestQuery(t *testing.T) {
	q, err := Query("eur", "", "")
	if err != nil || q.Sort != types.DefaultSort() || q.Search != "eur" {
		t.Errorf("unexpected default query %+v %v", q, err)
	}
	q, err = Query("", "netPnl", "")
	if err != nil || q.Sort.Key != types.SortNetPnl || q.Sort.Order != types.Descending {
		t.Errorf("new key should default to descending, got %+v %v", q, err)
	}
	q, err = Query("", "price", "ASC")
	if err != nil || q.Sort.Order != types.Ascending {
		t.Errorf("expected ascending, got %+v %v", q, err)
	}
	if _, err := Query("", "volume", ""); err == nil {
		t.Error("expected error for unknown key")
	}
	if _, err := Query("", "", "sideways"); err == nil {
		t.Error("expected error for unknown order")
	}
}
