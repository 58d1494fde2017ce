package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"zk-porrinha/internal/apiclient"
	"zk-porrinha/internal/config"
	"zk-porrinha/internal/logging"
	"zk-porrinha/internal/zk"
)

func main() {
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	logging.Init(logCfg)
	cfg, err := config.LoadBot()
	if err != nil {
		log.Fatal().Err(err).Msg("load bot config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pc, err := zk.LoadContext(cfg.KeysDir)
	if err != nil {
		log.Fatal().Err(err).Str("keys_dir", cfg.KeysDir).Msg("load proving keys failed")
	}
	prover, err := zk.NewProver(pc)
	if err != nil {
		log.Fatal().Err(err).Msg("prover init failed")
	}

	client := apiclient.New(cfg.BaseURL, cfg.APIKey)
	apiKey := cfg.APIKey
	if apiKey == "" {
		reg, err := client.Register(ctx, cfg.Name)
		if err != nil {
			log.Fatal().Err(err).Msg("register failed")
		}
		apiKey = reg.APIKey
		client = client.WithAPIKey(apiKey)
		log.Info().Str("player_id", reg.PlayerID).Int64("balance", reg.Balance).Msg("registered")
	}
	me, err := client.Me(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("fetch player failed")
	}

	roomID := cfg.RoomID
	if roomID != 0 {
		if _, err := client.JoinRoom(ctx, roomID, cfg.Bet); err != nil {
			log.Fatal().Err(err).Uint64("room_id", roomID).Msg("join failed")
		}
	} else {
		room, err := client.CreateRoom(ctx, cfg.Bet)
		if err != nil {
			log.Fatal().Err(err).Msg("create room failed")
		}
		roomID = room.ID
		log.Info().Uint64("room_id", roomID).Int64("bet", cfg.Bet).Msg("room created, waiting for opponent")
	}

	conn, err := dialRoom(ctx, cfg.WSURL, apiKey, roomID)
	if err != nil {
		log.Fatal().Err(err).Msg("websocket dial failed")
	}
	defer conn.Close()

	b := newBot(client, prover, me.PlayerID, cfg.Bet)
	if err := b.run(ctx, conn); err != nil {
		log.Error().Err(err).Msg("room stream ended")
	}
}
