package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"trade-journal/internal/types"
)

type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

func exerciseStore(t *testing.T, s kv) {
	t.Helper()
	ctx := context.Background()

	if _, err := s.Get(ctx, "trades"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty store, got %v", err)
	}

	payload := []byte(`[{"id":"1"}]`)
	if err := s.Set(ctx, "trades", payload); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := s.Get(ctx, "trades")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("Expected %s, got %s", payload, got)
	}

	if err := s.Set(ctx, "trades", []byte("[]")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, _ = s.Get(ctx, "trades")
	if string(got) != "[]" {
		t.Errorf("Expected overwrite, got %s", got)
	}

	if err := s.Delete(ctx, "trades"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "trades"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "trades"); err != nil {
		t.Errorf("delete of missing key should succeed, got %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	v := []byte("abc")
	_ = s.Set(ctx, "k", v)
	v[0] = 'z'
	got, _ := s.Get(ctx, "k")
	if string(got) != "abc" {
		t.Errorf("store aliased caller slice: %s", got)
	}
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	exerciseStore(t, s)
}

func TestFileStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	s, _ := NewFileStore(dir)
	if err := s.Set(ctx, "desk/a", []byte("payload")); err != nil {
		t.Fatalf("set: %v", err)
	}
	reopened, _ := NewFileStore(dir)
	got, err := reopened.Get(ctx, "desk/a")
	if err != nil || string(got) != "payload" {
		t.Errorf("Expected payload after reopen, got %q %v", got, err)
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("JOURNAL_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("JOURNAL_TEST_REDIS_ADDR not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s, err := NewRedisStore(ctx, RedisConfig{Addr: addr, TTL: time.Minute})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()
	_ = s.Delete(ctx, "trades")
	exerciseStore(t, s)
}

func TestTradesCodec(t *testing.T) {
	ts := time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)
	in := []types.Trade{
		{ID: "1", Instrument: "EURUSD", Direction: types.Long, Quantity: 1, Price: 1.1, GrossPnl: 10, Fee: 1, Swap: 0.5, NetPnl: 9.5, Timestamp: ts},
		{ID: "2", Instrument: "XAUUSD", Direction: types.Short, Quantity: 2, Price: 2000, GrossPnl: -4, Fee: 0, NetPnl: -4, Timestamp: ts.Add(time.Hour)},
	}
	b, err := EncodeTrades(in)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, dropped, err := DecodeTrades(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dropped != 0 || len(out) != 2 {
		t.Fatalf("Expected 2 trades and 0 dropped, got %d and %d", len(out), dropped)
	}
	for i := range in {
		if out[i].ID != in[i].ID || out[i].NetPnl != in[i].NetPnl || !out[i].Timestamp.Equal(in[i].Timestamp) {
			t.Errorf("trade %d mismatch: %+v vs %+v", i, out[i], in[i])
		}
	}
}

func TestDecodeTrades_RepairsAndDrops(t *testing.T) {
	payload := `[
		{"id":"ok","instrument":"A","direction":"Long","quantity":1,"grossPnl":10,"fee":1,"swap":2,"netPnl":999,"timestamp":"2024-01-02T09:00:00Z"},
		{"id":"pending","instrument":"A","direction":"Long","quantity":1,"grossPnl":0,"timestamp":"2024-01-02T09:00:00Z"},
		{"id":"noqty","instrument":"A","direction":"Long","quantity":0,"grossPnl":5,"timestamp":"2024-01-02T09:00:00Z"},
		{"id":"nodir","instrument":"A","direction":"Flat","quantity":1,"grossPnl":5,"timestamp":"2024-01-02T09:00:00Z"},
		{"id":"notime","instrument":"A","direction":"Short","quantity":1,"grossPnl":5}
	]`
	out, dropped, err := DecodeTrades([]byte(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || dropped != 4 {
		t.Fatalf("Expected 1 kept and 4 dropped, got %d and %d", len(out), dropped)
	}
	if out[0].NetPnl != 11 {
		t.Errorf("Expected recomputed net 11, got %v", out[0].NetPnl)
	}
}

func TestDecodeTrades_Malformed(t *testing.T) {
	if _, _, err := DecodeTrades([]byte("{not json")); err == nil {
		t.Error("expected error for malformed payload")
	}
}
