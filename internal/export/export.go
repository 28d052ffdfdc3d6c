// Package export serializes the trade log view as CSV.
package export

import (
	"fmt"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"trade-journal/internal/types"
)

const Header = "Date,Instrument,Direction,Quantity,Price,P&L,Fees,Net P&L"

// DateLayout carries the UTC offset so exported rows parse back to the same
// instant regardless of the reader's locale.
const DateLayout = time.RFC3339

type row struct {
	Date       string `csv:"Date"`
	Instrument string `csv:"Instrument"`
	Direction  string `csv:"Direction"`
	Quantity   string `csv:"Quantity"`
	Price      string `csv:"Price"`
	Pnl        string `csv:"P&L"`
	Fees       string `csv:"Fees"`
	NetPnl     string `csv:"Net P&L"`
}

// CSV renders trades in the given order. Money columns are fixed to two
// decimals; fields containing a comma or quote are wrapped in quotes.
// Timestamps are written in loc (time.Local when nil).
func CSV(trades []types.Trade, loc *time.Location) (string, error) {
	if len(trades) == 0 {
		return Header + "\n", nil
	}
	if loc == nil {
		loc = time.Local
	}
	rows := make([]*row, 0, len(trades))
	for _, t := range trades {
		rows = append(rows, &row{
			Date:       t.Timestamp.In(loc).Format(DateLayout),
			Instrument: t.Instrument,
			Direction:  string(t.Direction),
			Quantity:   decimal.NewFromFloat(t.Quantity).String(),
			Price:      decimal.NewFromFloat(t.Price).String(),
			Pnl:        Money(t.GrossPnl),
			Fees:       Money(t.Fee),
			NetPnl:     Money(t.NetPnl),
		})
	}
	out, err := gocsv.MarshalString(&rows)
	if err != nil {
		return "", fmt.Errorf("export: marshal %d rows: %w", len(rows), err)
	}
	return out, nil
}

// Money formats v with exactly two decimals, rounding half away from zero.
func Money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
