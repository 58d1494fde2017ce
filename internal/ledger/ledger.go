// Package ledger moves room stakes between player accounts and the escrow
// pool account. Stakes only ever enter the pool through Escrow, so payouts
// can never exceed what was escrowed: the pool debit fails first.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

var ErrInvalidAmount = errors.New("invalid_amount")

const refTypeRoom = "room"

// Book is the balance store a Ledger writes through, usually the accounts
// of one registry transaction.
type Book interface {
	Debit(ctx context.Context, accountID string, amount int64, entryType, refType, refID string) (int64, error)
	Credit(ctx context.Context, accountID string, amount int64, entryType, refType, refID string) (int64, error)
}

type Ledger struct {
	book Book
	pool string
}

func New(book Book, pool string) *Ledger {
	return &Ledger{book: book, pool: pool}
}

func (l *Ledger) Pool() string {
	return l.pool
}

// Escrow takes amount from player into the pool.
func (l *Ledger) Escrow(ctx context.Context, player string, roomID uint64, amount int64, entryType string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	ref := strconv.FormatUint(roomID, 10)
	if _, err := l.book.Debit(ctx, player, amount, entryType, refTypeRoom, ref); err != nil {
		return fmt.Errorf("escrow from %s: %w", player, err)
	}
	if _, err := l.book.Credit(ctx, l.pool, amount, entryType, refTypeRoom, ref); err != nil {
		return fmt.Errorf("escrow into pool: %w", err)
	}
	return nil
}

// Payout moves amount from the pool to player.
func (l *Ledger) Payout(ctx context.Context, player string, roomID uint64, amount int64, entryType string) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	ref := strconv.FormatUint(roomID, 10)
	if _, err := l.book.Debit(ctx, l.pool, amount, entryType, refTypeRoom, ref); err != nil {
		return fmt.Errorf("payout from pool: %w", err)
	}
	if _, err := l.book.Credit(ctx, player, amount, entryType, refTypeRoom, ref); err != nil {
		return fmt.Errorf("payout to %s: %w", player, err)
	}
	return nil
}
