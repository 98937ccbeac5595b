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
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/hackgods/care-wallet-scheduling/internal/api"
	"github.com/hackgods/care-wallet-scheduling/internal/app"
	"github.com/hackgods/care-wallet-scheduling/internal/auth"
	"github.com/hackgods/care-wallet-scheduling/internal/config"
	"github.com/hackgods/care-wallet-scheduling/internal/logging"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}
	logging.Setup(cfg.Env, cfg.LogLevel)

	log.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Str("version", version).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(rootCtx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()
	log.Info().Stringer("backends", a).Msg("backends ready")

	if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.MediaDir).Msg("media dir")
	}

	routerCfg := api.RouterConfig{
		Wallet:         a.Wallets,
		Approvals:      a.Approvals,
		Bookings:       a.Bookings,
		Plans:          a.Plans,
		Verifier:       auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		IdempotencyTTL: cfg.IdempotencyTTL,
		Checks:         healthChecks(a),
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		CORSOrigins:    cfg.CORSOrigins,
		MediaDir:       a.Media.Dir(),
		Env:            cfg.Env,
		Version:        version,
	}
	if a.Idempotency != nil {
		routerCfg.Idempotency = a.Idempotency
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.NewRouter(routerCfg),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(rootCtx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down api-server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("api-server stopped with error")
		return
	}
	log.Info().Msg("api-server stopped")
}

// healthChecks reports the stores as critical. Redis only degrades readiness
// since a lost lock store fails mutations with a retryable error anyway.
func healthChecks(a *app.App) []api.HealthCheck {
	var checks []api.HealthCheck
	if a.Pg != nil {
		checks = append(checks, api.HealthCheck{Name: "postgres", Critical: true, Ping: a.Pg.Ping})
	}
	if a.Mongo != nil {
		checks = append(checks, api.HealthCheck{Name: "mongo", Critical: true, Ping: func(ctx context.Context) error {
			return a.Mongo.Ping(ctx, readpref.Primary())
		}})
	}
	if a.Redis != nil {
		checks = append(checks, api.HealthCheck{Name: "redis", Ping: func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		}})
	}
	return checks
}
