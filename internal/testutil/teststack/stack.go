// Package teststack wires an engine over in-memory leveldb storage for
// service and handler tests.
package teststack

import (
	"context"
	"testing"

	"zk-porrinha/internal/events"
	"zk-porrinha/internal/game"
	"zk-porrinha/internal/kvstore"
	"zk-porrinha/internal/ledger"
	"zk-porrinha/internal/store"
	"zk-porrinha/internal/testutil"
)

const (
	Admin = "admin"
	Hub   = "hub"
	Pool  = "pool"
)

type Stack struct {
	DB     *kvstore.DB
	Engine *game.Engine
	Events *events.Buffer
	Clock  *game.ManualClock
}

// New returns an initialized engine using the stub verifier. rakeBps is
// passed through unchanged.
func New(t *testing.T, rakeBps int64) *Stack {
	t.Helper()
	return NewWrapped(t, rakeBps, nil)
}

// NewWrapped is New with the engine reading through wrap(DB), letting a test
// interpose on registry reads. A nil wrap uses DB directly.
func NewWrapped(t *testing.T, rakeBps int64, wrap func(game.Registry) game.Registry) *Stack {
	t.Helper()
	db, err := kvstore.OpenMemory()
	if err != nil {
		t.Fatalf("open memory store: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	buf := events.NewBuffer(256)
	t.Cleanup(buf.Close)
	var reg game.Registry = db
	if wrap != nil {
		reg = wrap(db)
	}
	clock := game.NewManualClock(1000)
	eng, err := game.NewEngine(game.Options{
		Registry:  reg,
		Ledger:    func(acc game.Accounts, pool string) game.Ledger { return ledger.New(acc, pool) },
		Verifiers: map[string]game.Verifier{testutil.StubVerifierName: testutil.StubVerifier{}},
		Clock:     clock,
		Publisher: buf,
		RakeBps:   rakeBps,
	})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	err = eng.Initialize(context.Background(), game.Settings{
		Admin: Admin, Verifier: testutil.StubVerifierName, Hub: Hub, Token: Pool,
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return &Stack{DB: db, Engine: eng, Events: buf, Clock: clock}
}

// Player registers a funded player under apiKey and returns its id.
func (s *Stack) Player(t *testing.T, name, apiKey string, balance int64) string {
	t.Helper()
	p, err := s.DB.CreatePlayer(context.Background(), name, store.HashAPIKey(apiKey), balance)
	if err != nil {
		t.Fatalf("create player %s: %v", name, err)
	}
	return p.ID
}
