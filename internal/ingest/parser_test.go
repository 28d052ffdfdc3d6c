package ingest

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"
	"time"

	"trade-journal/internal/types"
)

const scenarioA = `Trade Id,Instrument Symbol,Quantity,Price,Rpl Converted,Fee,Swap Converted,Timestamp
T1,EURUSD,-2,100,50,5,1,2024-03-04 10:00:00
T2,EURUSD,3,90,-20,2,0,2024-03-04 11:30:00
`

func TestParse_ScenarioA(t *testing.T) {
	res, err := NewParser(time.UTC).Parse(scenarioA)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Trades) != 2 {
		t.Fatalf("expected 2 trades, got %d", len(res.Trades))
	}

	t1, t2 := res.Trades[0], res.Trades[1]
	if t1.Direction != types.Short || t1.Quantity != 2 || t1.NetPnl != 46 {
		t.Errorf("trade1: got direction=%s qty=%v net=%v", t1.Direction, t1.Quantity, t1.NetPnl)
	}
	if t2.Direction != types.Long || t2.Quantity != 3 || t2.NetPnl != -22 {
		t.Errorf("trade2: got direction=%s qty=%v net=%v", t2.Direction, t2.Quantity, t2.NetPnl)
	}
	if t1.TimestampText != "2024-03-04 10:00:00" {
		t.Errorf("expected original timestamp text, got %q", t1.TimestampText)
	}
	want := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	if !t1.Timestamp.Equal(want) {
		t.Errorf("expected %v, got %v", want, t1.Timestamp)
	}
	if res.Skipped != 0 || res.Pending != 0 || res.Rows != 2 {
		t.Errorf("unexpected counts: %+v", res)
	}
}

func TestParse_MissingPriceColumn(t *testing.T) {
	text := "Trade Id,Quantity,Timestamp\nT1,1,2024-01-01 00:00:00\n"
	_, err := NewParser(time.UTC).Parse(text)
	if !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("expected ErrMissingColumns, got %v", err)
	}
	var mc *MissingColumnsError
	if !errors.As(err, &mc) {
		t.Fatalf("expected *MissingColumnsError, got %T", err)
	}
	if !reflect.DeepEqual(mc.Columns, []string{"Price"}) {
		t.Errorf("expected [Price], got %v", mc.Columns)
	}
}

func TestParse_MissingColumnsOrder(t *testing.T) {
	text := "Instrument Symbol,Price\nX,1\n"
	_, err := NewParser(time.UTC).Parse(text)
	var mc *MissingColumnsError
	if !errors.As(err, &mc) {
		t.Fatalf("expected *MissingColumnsError, got %v", err)
	}
	want := []string{"Trade Id", "Quantity", "Timestamp"}
	if !reflect.DeepEqual(mc.Columns, want) {
		t.Errorf("expected %v, got %v", want, mc.Columns)
	}
}

func TestParse_PendingOnly(t *testing.T) {
	text := `Trade Id,Quantity,Price,Rpl Converted,Timestamp
T1,1,10,0,2024-01-01 09:00:00
T2,-1,11,,2024-01-01 10:00:00
`
	_, err := NewParser(time.UTC).Parse(text)
	if !errors.Is(err, ErrNoCompletedTrades) {
		t.Fatalf("expected ErrNoCompletedTrades, got %v", err)
	}
	var nc *NoCompletedTradesError
	if !errors.As(err, &nc) {
		t.Fatalf("expected *NoCompletedTradesError, got %T", err)
	}
	if nc.Pending != 2 {
		t.Errorf("expected 2 pending rows, got %d", nc.Pending)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	tests := []string{
		"",
		"\n\n   \n",
		"Trade Id,Quantity,Price,Timestamp\n",
		"Trade Id,Quantity,Price,Timestamp\n\n\r\n",
	}
	for _, text := range tests {
		if _, err := NewParser(time.UTC).Parse(text); !errors.Is(err, ErrEmptyInput) {
			t.Errorf("input %q: expected ErrEmptyInput, got %v", text, err)
		}
	}
}

func TestParse_SkipsInvalidRows(t *testing.T) {
	text := `Trade Id,Quantity,Price,Rpl Converted,Timestamp
T1,abc,10,5,2024-01-01 09:00:00
T2,1,,5,2024-01-01 09:00:00
T3,0,10,5,2024-01-01 09:00:00
T4,1,10,5,not a date
T5,1,10,5,2024-01-01 09:00:00
`
	res, err := NewParser(time.UTC).Parse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Skipped != 4 {
		t.Errorf("expected 4 skipped rows, got %d", res.Skipped)
	}
	if len(res.Trades) != 1 || res.Trades[0].ID != "T5" {
		t.Fatalf("expected only T5, got %+v", res.Trades)
	}
}

func TestParse_OptionalColumnsAndFallbacks(t *testing.T) {
	text := `Trade Id,Instrument Symbol,Instrument Name,Quantity,Price,Rpl Converted,Fee,Swap Converted,Take Profit,Stop Loss,Execution Type,Status,Timestamp
T1,,"Gold, spot",1.5,1900.5,12.5,oops,-0.5,1950,1880,Market,Filled,2024-02-01T08:15:00Z
T2,XAUUSD,Gold,2,1901,-3
`
	res, err := NewParser(time.UTC).Parse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// T2 is short a timestamp and must be skipped.
	if len(res.Trades) != 1 || res.Skipped != 1 {
		t.Fatalf("expected 1 trade and 1 skipped row, got %d and %d", len(res.Trades), res.Skipped)
	}
	tr := res.Trades[0]
	if tr.Instrument != "Gold, spot" {
		t.Errorf("expected instrument name fallback, got %q", tr.Instrument)
	}
	if tr.Fee != 0 {
		t.Errorf("unparsable fee should default to 0, got %v", tr.Fee)
	}
	if math.Abs(tr.NetPnl-12.0) > 1e-9 {
		t.Errorf("expected net 12, got %v", tr.NetPnl)
	}
	if tr.TakeProfit != 1950 || tr.StopLoss != 1880 {
		t.Errorf("unexpected TP/SL: %v/%v", tr.TakeProfit, tr.StopLoss)
	}
	if tr.ExecutionType != "Market" || tr.Status != "Filled" {
		t.Errorf("unexpected execution type/status: %q/%q", tr.ExecutionType, tr.Status)
	}
}

func TestParse_PreservesRowOrder(t *testing.T) {
	text := `Trade Id,Quantity,Price,Rpl Converted,Timestamp
B,1,1,1,2024-01-02 00:00:00
A,1,1,1,2024-01-01 00:00:00
`
	res, err := NewParser(time.UTC).Parse(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Trades[0].ID != "B" || res.Trades[1].ID != "A" {
		t.Errorf("expected input order B,A, got %s,%s", res.Trades[0].ID, res.Trades[1].ID)
	}
}

func TestSplitLine(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a,b,c", []string{"a", "b", "c"}},
		{`"a,b",c`, []string{"a,b", "c"}},
		{`a,,`, []string{"a", "", ""}},
		{`"x""y",z`, []string{"xy", "z"}},
		{"", []string{""}},
	}
	for _, tt := range tests {
		if got := SplitLine(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitLine(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLines_CRLF(t *testing.T) {
	got := Lines("h1,h2\r\n\r\n1,2\r\n")
	if len(got) != 2 || strings.HasSuffix(got[1], "\r") {
		t.Errorf("unexpected lines: %q", got)
	}
}
