// Package kvstore is the embedded backend: rooms, settings, accounts,
// players and ledger entries in a single goleveldb database, either on disk
// or in memory.
package kvstore

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"
	lerrors "github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

const (
	prefixRoom    = "room:"
	prefixAccount = "acct:"
	prefixPlayer  = "player:"
	prefixAPIKey  = "apikey:"
	prefixLedger  = "ledger:"

	keyRoomCounter = "meta:room_counter"
	keySettings    = "meta:settings"
)

type DB struct {
	db *leveldb.DB
}

// Open opens (or creates) the database at path, recovering a corrupted
// manifest when possible.
func Open(path string) (*DB, error) {
	cache := 32
	db, err := leveldb.OpenFile(path, &opt.Options{
		OpenFilesCacheCapacity: 64,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB,
		Filter:                 filter.NewBloomFilter(10),
	})
	if _, corrupted := err.(*lerrors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(path, nil)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "open leveldb %s", path)
	}
	return &DB{db: db}, nil
}

// OpenMemory returns a database backed by memory; its contents die with it.
func OpenMemory() (*DB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "open memory leveldb")
	}
	return &DB{db: db}, nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

func roomKey(id uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", prefixRoom, id))
}

func accountKey(id string) []byte { return []byte(prefixAccount + id) }
func playerKey(id string) []byte  { return []byte(prefixPlayer + id) }
func apiKeyKey(hash string) []byte { return []byte(prefixAPIKey + hash) }
func ledgerKey(id string) []byte  { return []byte(prefixLedger + id) }

// getter is implemented by both *leveldb.DB and *leveldb.Transaction.
type getter interface {
	Get(key []byte, ro *opt.ReadOptions) ([]byte, error)
}

// putter is implemented by *leveldb.Transaction and *leveldb.Batch wrappers.
type putter interface {
	Put(key, value []byte, wo *opt.WriteOptions) error
}

// getJSON decodes the value at key into v. found is false when the key is
// absent.
func getJSON(g getter, key []byte, v any) (found bool, err error) {
	b, err := g.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "get %s", key)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, errors.Wrapf(err, "decode %s", key)
	}
	return true, nil
}

func putJSON(p putter, key []byte, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", key)
	}
	return errors.Wrapf(p.Put(key, b, nil), "put %s", key)
}
