package main

import (
	"context"
	"errors"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"zk-porrinha/internal/app/players"
	"zk-porrinha/internal/app/rooms"
	"zk-porrinha/internal/config"
	"zk-porrinha/internal/events"
	"zk-porrinha/internal/game"
	"zk-porrinha/internal/hub"
	"zk-porrinha/internal/ledger"
	"zk-porrinha/internal/mcpserver"
	httptransport "zk-porrinha/internal/transport/http"
	"zk-porrinha/internal/ws"
)

type app struct {
	backend *backend
	engine  *game.Engine
	events  *events.Buffer
	rooms   *rooms.Service
	players *players.Service
	hub     *hub.Notifier
	router  *chi.Mux
}

// newApp wires storage, the engine and every surface. Background workers
// (janitor, hub notifier) stop when ctx is cancelled.
func newApp(ctx context.Context, cfg config.AppConfig, verifiers map[string]game.Verifier) (*app, error) {
	be, err := openBackend(ctx, cfg.Server)
	if err != nil {
		return nil, err
	}
	buf := events.NewBuffer(cfg.Server.EventBufferSize)

	engine, err := game.NewEngine(game.Options{
		Registry:       be.registry,
		Ledger:         func(acc game.Accounts, pool string) game.Ledger { return ledger.New(acc, pool) },
		Verifiers:      verifiers,
		Clock:          game.NewLedgerClock(cfg.Game.LedgerGenesis, cfg.Game.LedgerInterval),
		Publisher:      buf,
		TimeoutLedgers: cfg.Game.TimeoutLedgers,
		RakeBps:        cfg.Game.JackpotRakeBps,
	})
	if err != nil {
		buf.Close()
		be.close()
		return nil, err
	}
	if err := bootstrap(ctx, engine, cfg.Game); err != nil {
		buf.Close()
		be.close()
		return nil, err
	}
	if err := engine.RestoreLedgerTime(ctx); err != nil {
		buf.Close()
		be.close()
		return nil, err
	}

	roomsSvc, err := rooms.NewService(engine, buf, cfg.Server.RoomCacheSize)
	if err != nil {
		buf.Close()
		be.close()
		return nil, err
	}
	playersSvc := players.NewService(be.accounts, cfg.Server.StartingBalance)

	notifier := hub.NewNotifier(hub.FromConfig(cfg.Hub))
	buf.AddSink(notifier.Sink)
	if err := notifier.Start(ctx); err != nil {
		buf.Close()
		be.close()
		return nil, err
	}
	roomsSvc.StartJanitor(ctx, cfg.Game.JanitorInterval, cfg.Game.RecentRoomsLimit)

	wsSrv := ws.NewServer(roomsSvc, playersSvc, buf)
	mcpSrv := mcpserver.New(roomsSvc, playersSvc)
	router := httptransport.NewRouter(httptransport.Deps{
		Engine:   engine,
		Rooms:    roomsSvc,
		Players:  playersSvc,
		Events:   buf,
		Health:   be.health,
		AdminKey: cfg.Server.AdminAPIKey,
		MCP:      mcpSrv.Handler(),
		WS:       wsSrv.HandleWS,
	})

	return &app{
		backend: be,
		engine:  engine,
		events:  buf,
		rooms:   roomsSvc,
		players: playersSvc,
		hub:     notifier,
		router:  router,
	}, nil
}

func (a *app) Close() {
	a.events.Close()
	a.backend.close()
}

// bootstrap initializes contract settings from config on first start. A
// store that already holds settings keeps them.
func bootstrap(ctx context.Context, engine *game.Engine, cfg config.GameConfig) error {
	if cfg.Admin == "" {
		log.Warn().Msg("GAME_ADMIN not set, skipping initialize; use POST /api/admin/initialize")
		return nil
	}
	err := engine.Initialize(ctx, game.Settings{
		Admin:    cfg.Admin,
		Verifier: cfg.Verifier,
		Hub:      cfg.Hub,
		Token:    cfg.Token,
	})
	if errors.Is(err, game.ErrAlreadyInitialized) {
		log.Info().Msg("game settings already initialized")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info().Str("admin", cfg.Admin).Str("verifier", cfg.Verifier).Msg("game settings initialized")
	return nil
}
