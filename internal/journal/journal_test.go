package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	store, err := Open(filepath.Join(dir, "journal.db"), filepath.Join(dir, "journal.lock"))
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndList(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := Entry{
		Network:   "mainnet",
		TokenIn:   "0.0.456858",
		TokenOut:  "HBAR",
		AmountIn:  "5",
		AmountOut: "2.5",
		Fee:       1500,
		TxHash:    "0xabc",
		Success:   true,
		CreatedAt: time.Unix(1_750_000_000, 0),
	}
	second := Entry{
		Network:   "mainnet",
		TokenIn:   "HBAR",
		TokenOut:  "0.0.456858",
		AmountIn:  "10",
		Fee:       1500,
		Success:   false,
		Error:     "quote reverted",
		CreatedAt: time.Unix(1_750_000_100, 0),
	}
	if err := store.Record(ctx, first); err != nil {
		t.Fatalf("record first: %v", err)
	}
	if err := store.Record(ctx, second); err != nil {
		t.Fatalf("record second: %v", err)
	}

	entries, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	// Most recent first.
	if entries[0].TokenIn != "HBAR" || entries[0].Success {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[0].Error != "quote reverted" {
		t.Fatalf("expected recorded error, got %q", entries[0].Error)
	}
	if entries[1].TxHash != "0xabc" || !entries[1].Success {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestListHonorsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		entry := Entry{
			Network:   "testnet",
			TokenIn:   "HBAR",
			TokenOut:  "0.0.429274",
			AmountIn:  "1",
			Success:   true,
			CreatedAt: time.Unix(int64(1_750_000_000+i), 0),
		}
		if err := store.Record(ctx, entry); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	entries, err := store.List(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if !entries[0].CreatedAt.After(entries[2].CreatedAt) {
		t.Fatal("entries not ordered newest first")
	}
}

func TestListEmptyJournal(t *testing.T) {
	store := openTestStore(t)
	entries, err := store.List(context.Background(), 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}
