package store

import (
	"context"
	"testing"

	"zk-porrinha/internal/testutil/pgtest"
)

func openStore(t *testing.T) (*Store, context.Context, func()) {
	t.Helper()
	schema := pgtest.New(t)
	st, err := New(schema.DSN)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st, context.Background(), st.Close
}

func mustCreatePlayer(t *testing.T, st *Store, ctx context.Context, name, apiKey string, initial int64) string {
	t.Helper()
	p, err := st.CreatePlayer(ctx, name, HashAPIKey(apiKey), initial)
	if err != nil {
		t.Fatalf("create player: %v", err)
	}
	return p.ID
}
