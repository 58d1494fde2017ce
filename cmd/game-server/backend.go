package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"zk-porrinha/internal/app/players"
	"zk-porrinha/internal/config"
	"zk-porrinha/internal/game"
	"zk-porrinha/internal/kvstore"
	"zk-porrinha/internal/store"
	httptransport "zk-porrinha/internal/transport/http"
)

type backend struct {
	name     string
	registry game.Registry
	accounts players.Store
	health   httptransport.HealthFunc
	close    func()
}

func openBackend(ctx context.Context, cfg config.ServerConfig) (*backend, error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		st, err := store.New(cfg.PostgresDSN)
		if err != nil {
			return nil, errors.Wrap(err, "open postgres store")
		}
		if err := st.Ping(ctx); err != nil {
			st.Close()
			return nil, errors.Wrap(err, "ping postgres")
		}
		log.Info().Str("backend", cfg.StoreBackend).Msg("store opened")
		return &backend{name: cfg.StoreBackend, registry: st, accounts: st, health: st.Ping, close: st.Close}, nil
	case config.BackendLevelDB, config.BackendMemory:
		var (
			db  *kvstore.DB
			err error
		)
		if cfg.StoreBackend == config.BackendMemory {
			db, err = kvstore.OpenMemory()
		} else {
			db, err = kvstore.Open(cfg.LevelDBPath)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "open %s store", cfg.StoreBackend)
		}
		log.Info().Str("backend", cfg.StoreBackend).Str("path", cfg.LevelDBPath).Msg("store opened")
		health := func(ctx context.Context) error {
			_, err := db.RoomCount(ctx)
			return err
		}
		closeDB := func() {
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("close leveldb failed")
			}
		}
		return &backend{name: cfg.StoreBackend, registry: db, accounts: db, health: health, close: closeDB}, nil
	default:
		return nil, config.ErrUnknownBackend
	}
}
