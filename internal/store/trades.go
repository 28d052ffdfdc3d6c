// Package store holds the service configuration and the key/value backends
// that persist the serialized trade list.
package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"trade-journal/internal/types"
)

var ErrNotFound = errors.New("not found")

// EncodeTrades serializes the trade list for a TradeStore.
func EncodeTrades(trades []types.Trade) ([]byte, error) {
	if trades == nil {
		trades = []types.Trade{}
	}
	b, err := json.Marshal(trades)
	if err != nil {
		return nil, fmt.Errorf("encode trades: %w", err)
	}
	return b, nil
}

// DecodeTrades restores a trade list. Net P&L is recomputed from its parts and
// entries that could not have come out of the parser are dropped, so a stale
// or edited payload cannot break the Trade invariants. dropped counts them.
func DecodeTrades(b []byte) (trades []types.Trade, dropped int, err error) {
	var raw []types.Trade
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode trades: %w", err)
	}
	trades = make([]types.Trade, 0, len(raw))
	for _, t := range raw {
		if t.Quantity <= 0 || t.GrossPnl == 0 || t.Timestamp.IsZero() ||
			(t.Direction != types.Long && t.Direction != types.Short) {
			dropped++
			continue
		}
		t.NetPnl = types.NetOf(t.GrossPnl, t.Fee, t.Swap)
		trades = append(trades, t)
	}
	return trades, dropped, nil
}
