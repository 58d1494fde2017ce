package config

import (
	"errors"
	"testing"
)

func TestLoadServerDefaults(t *testing.T) {
	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q, want :8080", cfg.HTTPAddr)
	}
	if cfg.StoreBackend != BackendLevelDB {
		t.Fatalf("StoreBackend = %q, want leveldb", cfg.StoreBackend)
	}
	if cfg.RoomCacheSize != 1024 {
		t.Fatalf("RoomCacheSize = %d, want 1024", cfg.RoomCacheSize)
	}
}

func TestLoadServerPostgresRequiresDSN(t *testing.T) {
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("POSTGRES_DSN", "")

	_, err := LoadServer()
	if err == nil {
		t.Fatal("LoadServer() expected error, got nil")
	}
}

func TestLoadServerRejectsUnknownBackend(t *testing.T) {
	t.Setenv("STORE_BACKEND", "bolt")

	_, err := LoadServer()
	if !errors.Is(err, ErrUnknownBackend) {
		t.Fatalf("LoadServer() error = %v, want ErrUnknownBackend", err)
	}
}

func TestLoadServerParseTypes(t *testing.T) {
	t.Setenv("STORE_BACKEND", " Postgres ")
	t.Setenv("POSTGRES_DSN", "postgres://localhost:5432/porrinha?sslmode=disable")
	t.Setenv("STARTING_BALANCE", "5000000")
	t.Setenv("EVENT_BUFFER_SIZE", "64")

	cfg, err := LoadServer()
	if err != nil {
		t.Fatalf("LoadServer() error = %v", err)
	}
	if cfg.StoreBackend != BackendPostgres {
		t.Fatalf("StoreBackend = %q, want postgres", cfg.StoreBackend)
	}
	if cfg.StartingBalance != 5000000 || cfg.EventBufferSize != 64 {
		t.Fatalf("unexpected server config: %+v", cfg)
	}
}
