package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/zhouzirui/canyon-webchat/internal/config"
	"github.com/zhouzirui/canyon-webchat/internal/handler"
	"github.com/zhouzirui/canyon-webchat/internal/logging"
	"github.com/zhouzirui/canyon-webchat/internal/model/venue"
	"github.com/zhouzirui/canyon-webchat/internal/service/session"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dotEnvErr := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	closer, err := logging.Setup(logging.Settings{
		Level:    cfg.Log.Level,
		File:     cfg.Log.File,
		Fallback: os.Stderr,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up logging")
	}
	defer closer.Close()

	if dotEnvErr != nil {
		log.Warn().Err(dotEnvErr).Msg("failed to load .env file, continuing with system environment variables only")
	}

	venues := venue.NewMemoryStore(venue.Seed())
	sessions := session.NewService()
	router := handler.NewRouter(log.Logger, sessions, venues)

	if err := startServer(ctx, cfg.Server, router); err != nil {
		log.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) error {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Info().Str("addr", srv.Addr).Msg("Canyon Concierge stub listening")
	return runServer(ctx, srv)
}

// runServer serves until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, srv *http.Server) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrapf(err, "listen on %s", srv.Addr)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info().Msg("shutting down")
		return errors.Wrap(srv.Shutdown(shutdownCtx), "shutdown")
	})

	return g.Wait()
}
