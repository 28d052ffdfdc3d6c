// Package ingest turns a broker CSV export into validated trade records.
package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"trade-journal/internal/types"
)

// Column names recognized in the broker export.
const (
	ColTradeID          = "Trade Id"
	ColQuantity         = "Quantity"
	ColPrice            = "Price"
	ColTimestamp        = "Timestamp"
	ColInstrumentSymbol = "Instrument Symbol"
	ColInstrumentName   = "Instrument Name"
	ColRplConverted     = "Rpl Converted"
	ColFee              = "Fee"
	ColSwapConverted    = "Swap Converted"
	ColTakeProfit       = "Take Profit"
	ColStopLoss         = "Stop Loss"
	ColExecutionType    = "Execution Type"
	ColStatus           = "Status"
)

// RequiredColumns is checked in this order; MissingColumnsError preserves it.
var RequiredColumns = []string{ColTradeID, ColQuantity, ColPrice, ColTimestamp}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	time.RFC1123Z,
	time.RFC1123,
	"2006-01-02",
}

// Result is a successful parse. Trades keep input row order.
type Result struct {
	Trades  []types.Trade
	Rows    int
	Skipped int
	Pending int
}

// Parser validates broker exports. Timestamps without an explicit offset are
// read in Location (time.Local when nil).
type Parser struct {
	Location *time.Location
}

func NewParser(loc *time.Location) *Parser {
	return &Parser{Location: loc}
}

func (p *Parser) location() *time.Location {
	if p == nil || p.Location == nil {
		return time.Local
	}
	return p.Location
}

// Parse validates text and returns the completed trades. Invalid rows are
// skipped and only counted.
func (p *Parser) Parse(text string) (Result, error) {
	if len(Lines(text)) < 2 {
		return Result{}, ErrEmptyInput
	}
	headers, rows := Records(text)

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	var missing []string
	for _, c := range RequiredColumns {
		if _, ok := index[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return Result{}, &MissingColumnsError{Columns: missing}
	}

	res := Result{Rows: len(rows)}
	for _, fields := range rows {
		get := func(col string) string {
			i, ok := index[col]
			if !ok || i >= len(fields) {
				return ""
			}
			return strings.TrimSpace(fields[i])
		}

		rawQty, okQty := parseNumber(get(ColQuantity))
		price, okPrice := parseNumber(get(ColPrice))
		if !okQty || !okPrice || rawQty == 0 {
			res.Skipped++
			continue
		}
		tsText := get(ColTimestamp)
		ts, err := p.parseTimestamp(tsText)
		if err != nil {
			res.Skipped++
			continue
		}

		gross := numberOrZero(get(ColRplConverted))
		if gross == 0 {
			res.Pending++
			continue
		}

		dir := types.Short
		if rawQty > 0 {
			dir = types.Long
		}
		instrument := get(ColInstrumentSymbol)
		if instrument == "" {
			instrument = get(ColInstrumentName)
		}
		fee := numberOrZero(get(ColFee))
		swap := numberOrZero(get(ColSwapConverted))

		res.Trades = append(res.Trades, types.Trade{
			ID:            get(ColTradeID),
			Instrument:    instrument,
			Direction:     dir,
			Quantity:      math.Abs(rawQty),
			Price:         price,
			TakeProfit:    numberOrZero(get(ColTakeProfit)),
			StopLoss:      numberOrZero(get(ColStopLoss)),
			GrossPnl:      gross,
			Fee:           fee,
			Swap:          swap,
			NetPnl:        types.NetOf(gross, fee, swap),
			Timestamp:     ts,
			TimestampText: tsText,
			ExecutionType: get(ColExecutionType),
			Status:        get(ColStatus),
		})
	}

	if len(res.Trades) == 0 {
		return Result{}, &NoCompletedTradesError{Pending: res.Pending, Skipped: res.Skipped}
	}
	return res, nil
}

func (p *Parser) parseTimestamp(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, p.location())
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func numberOrZero(s string) float64 {
	v, ok := parseNumber(s)
	if !ok {
		return 0
	}
	return v
}
