package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"zk-porrinha/internal/game"
)

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (s *Store) GetAccountBalance(ctx context.Context, accountID string) (int64, error) {
	var bal int64
	err := s.Pool.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1`, accountID).Scan(&bal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, game.ErrAccountNotFound
		}
		return 0, err
	}
	return bal, nil
}

func (s *Store) EnsureAccount(ctx context.Context, accountID string, initial int64) error {
	return ensureAccount(ctx, s.Pool, accountID, initial)
}

// TopUp credits an existing account outside any room.
func (s *Store) TopUp(ctx context.Context, accountID string, amount int64, refID string) (int64, error) {
	if amount <= 0 {
		return 0, game.ErrInvalidBet
	}
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)
	bal, err := credit(ctx, tx, accountID, amount, EntryTopUp, "admin", refID)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return bal, nil
}

func ensureAccount(ctx context.Context, q querier, accountID string, initial int64) error {
	_, err := q.Exec(ctx, `INSERT INTO accounts (id, balance) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`, accountID, initial)
	return err
}

func debit(ctx context.Context, q querier, accountID string, amount int64, entryType, refType, refID string) (int64, error) {
	if amount < 0 {
		return 0, errors.New("amount must be positive")
	}
	var bal int64
	err := q.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, accountID).Scan(&bal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, game.ErrAccountNotFound
		}
		return 0, err
	}
	if bal < amount {
		return 0, game.ErrInsufficientFunds
	}
	newBal := bal - amount
	if err := setBalance(ctx, q, accountID, newBal); err != nil {
		return 0, err
	}
	if err := insertLedgerEntry(ctx, q, accountID, entryType, -amount, refType, refID); err != nil {
		return 0, err
	}
	return newBal, nil
}

func credit(ctx context.Context, q querier, accountID string, amount int64, entryType, refType, refID string) (int64, error) {
	if amount < 0 {
		return 0, errors.New("amount must be positive")
	}
	var bal int64
	err := q.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, accountID).Scan(&bal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, game.ErrAccountNotFound
		}
		return 0, err
	}
	if bal > maxBalance-amount {
		return 0, game.ErrAmountOverflow
	}
	newBal := bal + amount
	if err := setBalance(ctx, q, accountID, newBal); err != nil {
		return 0, err
	}
	if err := insertLedgerEntry(ctx, q, accountID, entryType, amount, refType, refID); err != nil {
		return 0, err
	}
	return newBal, nil
}

const maxBalance = int64(^uint64(0) >> 1)

func setBalance(ctx context.Context, q querier, accountID string, bal int64) error {
	_, err := q.Exec(ctx, `UPDATE accounts SET balance = $1, updated_at = now() WHERE id = $2`, bal, accountID)
	return err
}
