package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"zk-porrinha/internal/game"
)

// Update runs fn in one transaction. Rooms are locked FOR UPDATE as fn reads
// them, so concurrent updates of the same room serialise on the row.
func (s *Store) Update(ctx context.Context, fn func(tx game.RoomTx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) GetRoom(ctx context.Context, id uint64) (*game.Room, error) {
	var body []byte
	err := s.Pool.QueryRow(ctx, `SELECT body FROM rooms WHERE id = $1`, int64(id)).Scan(&body)
	if err != nil {
		return nil, mapRoomNotFound(err)
	}
	return decodeRoom(body)
}

func (s *Store) RoomCount(ctx context.Context) (uint64, error) {
	var n int64
	err := s.Pool.QueryRow(ctx, `SELECT value FROM room_counter WHERE id = 1`).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

func (s *Store) Settings(ctx context.Context) (game.Settings, error) {
	return readSettings(ctx, s.Pool.QueryRow(ctx, `SELECT body FROM settings WHERE id = 1`))
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) GetRoom(ctx context.Context, id uint64) (*game.Room, error) {
	var body []byte
	err := t.tx.QueryRow(ctx, `SELECT body FROM rooms WHERE id = $1 FOR UPDATE`, int64(id)).Scan(&body)
	if err != nil {
		return nil, mapRoomNotFound(err)
	}
	return decodeRoom(body)
}

func (t *pgTx) PutRoom(ctx context.Context, room *game.Room) error {
	body, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("encode room %d: %w", room.ID, err)
	}
	_, err = t.tx.Exec(ctx, `
INSERT INTO rooms (id, status, body, updated_at) VALUES ($1, $2, $3, now())
ON CONFLICT (id) DO UPDATE SET status = EXCLUDED.status, body = EXCLUDED.body, updated_at = now()`,
		int64(room.ID), string(room.Status), body)
	return err
}

func (t *pgTx) NextRoomID(ctx context.Context) (uint64, error) {
	var n int64
	err := t.tx.QueryRow(ctx, `
INSERT INTO room_counter (id, value) VALUES (1, 1)
ON CONFLICT (id) DO UPDATE SET value = room_counter.value + 1
RETURNING value`).Scan(&n)
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

func (t *pgTx) Settings(ctx context.Context) (game.Settings, error) {
	return readSettings(ctx, t.tx.QueryRow(ctx, `SELECT body FROM settings WHERE id = 1 FOR SHARE`))
}

func (t *pgTx) PutSettings(ctx context.Context, st game.Settings) error {
	body, err := json.Marshal(st)
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `
INSERT INTO settings (id, body, updated_at) VALUES (1, $1, now())
ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body, updated_at = now()`, body)
	return err
}

// InitSettings inserts the settings row only if none exists. A concurrent
// initializer blocks on the primary key until the first commits, then
// inserts nothing.
func (t *pgTx) InitSettings(ctx context.Context, st game.Settings) error {
	body, err := json.Marshal(st)
	if err != nil {
		return err
	}
	tag, err := t.tx.Exec(ctx, `
INSERT INTO settings (id, body, updated_at) VALUES (1, $1, now())
ON CONFLICT (id) DO NOTHING`, body)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return game.ErrAlreadyInitialized
	}
	return nil
}

func (t *pgTx) EnsureAccount(ctx context.Context, accountID string, initial int64) error {
	return ensureAccount(ctx, t.tx, accountID, initial)
}

func (t *pgTx) Debit(ctx context.Context, accountID string, amount int64, entryType, refType, refID string) (int64, error) {
	return debit(ctx, t.tx, accountID, amount, entryType, refType, refID)
}

func (t *pgTx) Credit(ctx context.Context, accountID string, amount int64, entryType, refType, refID string) (int64, error) {
	return credit(ctx, t.tx, accountID, amount, entryType, refType, refID)
}

func readSettings(_ context.Context, row pgx.Row) (game.Settings, error) {
	var body []byte
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return game.Settings{}, nil
		}
		return game.Settings{}, err
	}
	var st game.Settings
	if err := json.Unmarshal(body, &st); err != nil {
		return game.Settings{}, fmt.Errorf("decode settings: %w", err)
	}
	return st, nil
}

func decodeRoom(body []byte) (*game.Room, error) {
	var room game.Room
	if err := json.Unmarshal(body, &room); err != nil {
		return nil, fmt.Errorf("decode room: %w", err)
	}
	return &room, nil
}

func mapRoomNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return game.ErrRoomNotFound
	}
	return err
}
