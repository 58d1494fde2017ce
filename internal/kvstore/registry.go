package kvstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"

	"zk-porrinha/internal/game"
	"zk-porrinha/internal/store"
)

type account struct {
	Balance   int64     `json:"balance"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Update runs fn inside a leveldb transaction. Only one transaction is open
// at a time, so updates are fully serialised.
func (d *DB) Update(ctx context.Context, fn func(tx game.RoomTx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tr, err := d.db.OpenTransaction()
	if err != nil {
		return errors.Wrap(err, "open transaction")
	}
	if err := fn(&kvTx{tr: tr}); err != nil {
		tr.Discard()
		return err
	}
	return errors.Wrap(tr.Commit(), "commit transaction")
}

func (d *DB) GetRoom(_ context.Context, id uint64) (*game.Room, error) {
	return getRoom(d.db, id)
}

func (d *DB) RoomCount(context.Context) (uint64, error) {
	return getCounter(d.db)
}

func (d *DB) Settings(context.Context) (game.Settings, error) {
	var s game.Settings
	_, err := getJSON(d.db, []byte(keySettings), &s)
	return s, err
}

type kvTx struct {
	tr *leveldb.Transaction
}

func (t *kvTx) GetRoom(_ context.Context, id uint64) (*game.Room, error) {
	return getRoom(t.tr, id)
}

func (t *kvTx) PutRoom(_ context.Context, room *game.Room) error {
	return putJSON(t.tr, roomKey(room.ID), room)
}

func (t *kvTx) NextRoomID(context.Context) (uint64, error) {
	n, err := getCounter(t.tr)
	if err != nil {
		return 0, err
	}
	n++
	if err := putJSON(t.tr, []byte(keyRoomCounter), n); err != nil {
		return 0, err
	}
	return n, nil
}

func (t *kvTx) Settings(context.Context) (game.Settings, error) {
	var s game.Settings
	_, err := getJSON(t.tr, []byte(keySettings), &s)
	return s, err
}

func (t *kvTx) PutSettings(_ context.Context, s game.Settings) error {
	return putJSON(t.tr, []byte(keySettings), s)
}

// InitSettings relies on leveldb transactions being exclusive: nothing can
// write settings between the check and the put.
func (t *kvTx) InitSettings(_ context.Context, s game.Settings) error {
	ok, err := t.tr.Has([]byte(keySettings), nil)
	if err != nil {
		return err
	}
	if ok {
		return game.ErrAlreadyInitialized
	}
	return putJSON(t.tr, []byte(keySettings), s)
}

func (t *kvTx) EnsureAccount(_ context.Context, accountID string, initial int64) error {
	return ensureAccount(t.tr, accountID, initial)
}

func (t *kvTx) Debit(_ context.Context, accountID string, amount int64, entryType, refType, refID string) (int64, error) {
	return move(t.tr, accountID, -amount, entryType, refType, refID)
}

func (t *kvTx) Credit(_ context.Context, accountID string, amount int64, entryType, refType, refID string) (int64, error) {
	return move(t.tr, accountID, amount, entryType, refType, refID)
}

func getRoom(g getter, id uint64) (*game.Room, error) {
	var room game.Room
	found, err := getJSON(g, roomKey(id), &room)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, game.ErrRoomNotFound
	}
	return &room, nil
}

func getCounter(g getter) (uint64, error) {
	var n uint64
	_, err := getJSON(g, []byte(keyRoomCounter), &n)
	return n, err
}

type readWriter interface {
	getter
	putter
}

func ensureAccount(rw readWriter, accountID string, initial int64) error {
	var a account
	found, err := getJSON(rw, accountKey(accountID), &a)
	if err != nil || found {
		return err
	}
	return putJSON(rw, accountKey(accountID), account{Balance: initial, UpdatedAt: time.Now().UTC()})
}

// move applies a signed delta to an account and appends its ledger entry.
func move(rw readWriter, accountID string, delta int64, entryType, refType, refID string) (int64, error) {
	var a account
	found, err := getJSON(rw, accountKey(accountID), &a)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, game.ErrAccountNotFound
	}
	switch {
	case delta < 0 && a.Balance < -delta:
		return 0, game.ErrInsufficientFunds
	case delta > 0 && a.Balance > maxBalance-delta:
		return 0, game.ErrAmountOverflow
	}
	a.Balance += delta
	a.UpdatedAt = time.Now().UTC()
	if err := putJSON(rw, accountKey(accountID), a); err != nil {
		return 0, err
	}
	entry := store.LedgerEntry{
		ID:        store.NewID(),
		AccountID: accountID,
		Type:      entryType,
		Amount:    delta,
		RefType:   refType,
		RefID:     refID,
		CreatedAt: a.UpdatedAt,
	}
	if err := putJSON(rw, ledgerKey(entry.ID), entry); err != nil {
		return 0, err
	}
	return a.Balance, nil
}

const maxBalance = int64(^uint64(0) >> 1)
