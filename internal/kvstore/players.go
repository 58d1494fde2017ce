package kvstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/util"

	"zk-porrinha/internal/game"
	"zk-porrinha/internal/store"
)

func (d *DB) CreatePlayer(_ context.Context, name, apiKeyHash string, initial int64) (*store.Player, error) {
	tr, err := d.db.OpenTransaction()
	if err != nil {
		return nil, errors.Wrap(err, "open transaction")
	}
	defer tr.Discard()

	if ok, err := tr.Has(apiKeyKey(apiKeyHash), nil); err != nil {
		return nil, errors.Wrap(err, "check api key")
	} else if ok {
		return nil, errors.New("api key already registered")
	}
	p := &store.Player{ID: store.NewPlayerID(), Name: name, APIKeyHash: apiKeyHash, CreatedAt: time.Now().UTC()}
	if err := putJSON(tr, playerKey(p.ID), p); err != nil {
		return nil, err
	}
	if err := tr.Put(apiKeyKey(apiKeyHash), []byte(p.ID), nil); err != nil {
		return nil, errors.Wrap(err, "put api key")
	}
	if err := ensureAccount(tr, p.ID, 0); err != nil {
		return nil, err
	}
	if initial > 0 {
		if _, err := move(tr, p.ID, initial, store.EntryStartingCredit, "player", p.ID); err != nil {
			return nil, err
		}
	}
	if err := tr.Commit(); err != nil {
		return nil, errors.Wrap(err, "commit player")
	}
	return p, nil
}

func (d *DB) GetPlayerByAPIKey(ctx context.Context, apiKey string) (*store.Player, error) {
	id, err := d.db.Get(apiKeyKey(store.HashAPIKey(apiKey)), nil)
	if err != nil {
		if err == leveldb.ErrNotFound {
			return nil, store.ErrNotFound
		}
		return nil, errors.Wrap(err, "get api key")
	}
	return d.GetPlayer(ctx, string(id))
}

func (d *DB) GetPlayer(_ context.Context, id string) (*store.Player, error) {
	var p store.Player
	found, err := getJSON(d.db, playerKey(id), &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (d *DB) GetAccountBalance(_ context.Context, accountID string) (int64, error) {
	var a account
	found, err := getJSON(d.db, accountKey(accountID), &a)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, game.ErrAccountNotFound
	}
	return a.Balance, nil
}

func (d *DB) EnsureAccount(_ context.Context, accountID string, initial int64) error {
	tr, err := d.db.OpenTransaction()
	if err != nil {
		return errors.Wrap(err, "open transaction")
	}
	if err := ensureAccount(tr, accountID, initial); err != nil {
		tr.Discard()
		return err
	}
	return errors.Wrap(tr.Commit(), "commit account")
}

func (d *DB) TopUp(_ context.Context, accountID string, amount int64, refID string) (int64, error) {
	if amount <= 0 {
		return 0, game.ErrInvalidBet
	}
	tr, err := d.db.OpenTransaction()
	if err != nil {
		return 0, errors.Wrap(err, "open transaction")
	}
	bal, err := move(tr, accountID, amount, store.EntryTopUp, "admin", refID)
	if err != nil {
		tr.Discard()
		return 0, err
	}
	if err := tr.Commit(); err != nil {
		return 0, errors.Wrap(err, "commit topup")
	}
	return bal, nil
}

// ListLedgerEntries walks ledger keys newest first; ULID keys sort by time.
func (d *DB) ListLedgerEntries(_ context.Context, f store.LedgerFilter, limit int) ([]store.LedgerEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	it := d.db.NewIterator(util.BytesPrefix([]byte(prefixLedger)), nil)
	defer it.Release()
	out := make([]store.LedgerEntry, 0, limit)
	for ok := it.Last(); ok && len(out) < limit; ok = it.Prev() {
		var e store.LedgerEntry
		if err := json.Unmarshal(it.Value(), &e); err != nil {
			return nil, errors.Wrapf(err, "decode %s", it.Key())
		}
		if f.AccountID != "" && e.AccountID != f.AccountID {
			continue
		}
		if f.RefID != "" && e.RefID != f.RefID {
			continue
		}
		out = append(out, e)
	}
	return out, errors.Wrap(it.Error(), "iterate ledger")
}
