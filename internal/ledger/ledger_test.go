package ledger

import (
	"context"
	"errors"
	"testing"
)

var errShort = errors.New("insufficient_funds")

type entry struct {
	account   string
	amount    int64
	entryType string
	refID     string
}

type memBook struct {
	balances map[string]int64
	entries  []entry
}

func (b *memBook) Debit(_ context.Context, id string, amount int64, entryType, _, refID string) (int64, error) {
	if b.balances[id] < amount {
		return 0, errShort
	}
	b.balances[id] -= amount
	b.entries = append(b.entries, entry{id, -amount, entryType, refID})
	return b.balances[id], nil
}

func (b *memBook) Credit(_ context.Context, id string, amount int64, entryType, _, refID string) (int64, error) {
	b.balances[id] += amount
	b.entries = append(b.entries, entry{id, amount, entryType, refID})
	return b.balances[id], nil
}

func TestEscrowAndPayout(t *testing.T) {
	book := &memBook{balances: map[string]int64{"alice": 100, "bob": 100}}
	l := New(book, "pool")
	ctx := context.Background()

	if err := l.Escrow(ctx, "alice", 7, 60, "bet_escrow"); err != nil {
		t.Fatalf("escrow alice: %v", err)
	}
	if err := l.Escrow(ctx, "bob", 7, 60, "bet_escrow"); err != nil {
		t.Fatalf("escrow bob: %v", err)
	}
	if err := l.Payout(ctx, "alice", 7, 120, "pot_payout"); err != nil {
		t.Fatalf("payout: %v", err)
	}
	if book.balances["alice"] != 160 || book.balances["bob"] != 40 || book.balances["pool"] != 0 {
		t.Fatalf("unexpected balances: %+v", book.balances)
	}
	if len(book.entries) != 6 {
		t.Fatalf("entries = %d, want 6", len(book.entries))
	}
	if book.entries[0].refID != "7" || book.entries[0].entryType != "bet_escrow" {
		t.Fatalf("unexpected first entry: %+v", book.entries[0])
	}
}

func TestPayoutNeverExceedsPool(t *testing.T) {
	book := &memBook{balances: map[string]int64{"alice": 10}}
	l := New(book, "pool")
	ctx := context.Background()
	if err := l.Escrow(ctx, "alice", 1, 10, "bet_escrow"); err != nil {
		t.Fatalf("escrow: %v", err)
	}
	if err := l.Payout(ctx, "alice", 1, 11, "pot_payout"); !errors.Is(err, errShort) {
		t.Fatalf("payout err = %v, want insufficient funds", err)
	}
	if book.balances["pool"] != 10 {
		t.Fatalf("pool = %d, want 10", book.balances["pool"])
	}
}

func TestRejectsNonPositiveAmounts(t *testing.T) {
	l := New(&memBook{balances: map[string]int64{}}, "pool")
	if err := l.Escrow(context.Background(), "a", 1, 0, "bet_escrow"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("escrow 0 err = %v", err)
	}
	if err := l.Payout(context.Background(), "a", 1, -5, "pot_payout"); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("payout -5 err = %v", err)
	}
}
