package interfaces

import "context"

// TradeStore persists opaque payloads. Get returns store.ErrNotFound for a
// missing key.
type TradeStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
