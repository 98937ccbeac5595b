package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hackgods/care-wallet-scheduling/internal/app"
	"github.com/hackgods/care-wallet-scheduling/internal/booking"
	"github.com/hackgods/care-wallet-scheduling/internal/config"
	"github.com/hackgods/care-wallet-scheduling/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}
	logging.Setup(cfg.Env, cfg.LogLevel)

	log.Info().
		Str("env", cfg.Env).
		Dur("interval", cfg.WorkerInterval).
		Dur("grace", cfg.CompletionGrace).
		Msg("completion-worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(rootCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	runOnce(rootCtx, a.Bookings, cfg.CompletionGrace)

	ticker := time.NewTicker(cfg.WorkerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			log.Info().Msg("shutdown signal received, stopping completion worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, a.Bookings, cfg.CompletionGrace)
		}
	}
}

func runOnce(ctx context.Context, svc *booking.Service, grace time.Duration) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	n, err := svc.CompleteElapsed(runCtx, grace)
	if err != nil {
		log.Error().Err(err).Int("completed", n).Msg("completion run failed")
		return
	}
	log.Info().Int("completed", n).Dur("took", time.Since(start)).Msg("completion run complete")
}
