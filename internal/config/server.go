package config

import (
	"errors"
	"strings"

	"github.com/caarlos0/env/v11"
)

const (
	BackendPostgres = "postgres"
	BackendLevelDB  = "leveldb"
	BackendMemory   = "memory"
)

var ErrUnknownBackend = errors.New("unknown_store_backend")

type ServerConfig struct {
	HTTPAddr     string `env:"HTTP_ADDR" envDefault:":8080"`
	StoreBackend string `env:"STORE_BACKEND" envDefault:"leveldb"`
	PostgresDSN  string `env:"POSTGRES_DSN"`
	LevelDBPath  string `env:"LEVELDB_PATH" envDefault:"data/porrinha.db"`

	AdminAPIKey string `env:"ADMIN_API_KEY"`

	RoomCacheSize   int   `env:"ROOM_CACHE_SIZE" envDefault:"1024"`
	EventBufferSize int   `env:"EVENT_BUFFER_SIZE" envDefault:"1000"`
	StartingBalance int64 `env:"STARTING_BALANCE" envDefault:"0"`
}

func LoadServer() (ServerConfig, error) {
	var cfg ServerConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	switch cfg.StoreBackend {
	case BackendPostgres:
		if strings.TrimSpace(cfg.PostgresDSN) == "" {
			return cfg, errors.New(`required environment variable "POSTGRES_DSN" is not set`)
		}
	case BackendLevelDB, BackendMemory:
	default:
		return cfg, ErrUnknownBackend
	}
	return cfg, nil
}
