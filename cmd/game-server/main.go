package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"zk-porrinha/internal/config"
	"zk-porrinha/internal/game"
	"zk-porrinha/internal/logging"
	httptransport "zk-porrinha/internal/transport/http"
	"zk-porrinha/internal/zk"
)

func main() {
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	verifier, err := loadVerifier(cfg.ZK)
	if err != nil {
		log.Fatal().Err(err).Str("keys_dir", cfg.ZK.KeysDir).Msg("zk verifier init failed")
	}

	a, err := newApp(ctx, cfg, map[string]game.Verifier{zk.VerifierName: verifier})
	if err != nil {
		log.Fatal().Err(err).Msg("app init failed")
	}
	defer a.Close()
	httptransport.LogRoutes(a.router)

	if err := serve(ctx, cfg.Server.HTTPAddr, a.router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}

func loadVerifier(cfg config.ZKConfig) (*zk.Verifier, error) {
	var (
		pc  *zk.ProofContext
		err error
	)
	if cfg.AutoSetup {
		pc, err = zk.LoadOrSetup(cfg.KeysDir, true)
	} else {
		pc, err = zk.LoadVerifyingContext(cfg.KeysDir)
	}
	if err != nil {
		return nil, err
	}
	return zk.NewVerifier(pc)
}

// serve runs the HTTP server until ctx is cancelled, then drains it.
func serve(ctx context.Context, addr string, handler http.Handler) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
