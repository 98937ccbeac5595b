// Package app wires configuration into backends and services. Every binary
// under cmd/ builds its dependencies through Build.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/hackgods/care-wallet-scheduling/internal/approval"
	"github.com/hackgods/care-wallet-scheduling/internal/booking"
	"github.com/hackgods/care-wallet-scheduling/internal/config"
	"github.com/hackgods/care-wallet-scheduling/internal/db"
	"github.com/hackgods/care-wallet-scheduling/internal/events"
	"github.com/hackgods/care-wallet-scheduling/internal/lock"
	"github.com/hackgods/care-wallet-scheduling/internal/media"
	redisclient "github.com/hackgods/care-wallet-scheduling/internal/redis"
	"github.com/hackgods/care-wallet-scheduling/internal/subscription"
	"github.com/hackgods/care-wallet-scheduling/internal/wallet"
)

type App struct {
	Config config.Config

	Pg    *pgxpool.Pool // nil unless a store uses postgres
	Mongo *mongo.Client // nil unless WALLET_STORE=mongo
	Redis *redis.Client // nil for fully in-memory deployments
	Media *media.LocalStore

	WalletRepo  wallet.Repository
	Wallets     *wallet.Service
	Approvals   *approval.Workflow
	Bookings    *booking.Service
	Plans       *subscription.Service
	Idempotency *redisclient.IdempotencyStore // nil without Redis

	closers []func()
}

// Build connects every backend the configuration names and constructs the
// services on top of them. On error everything opened so far is closed.
func Build(ctx context.Context, cfg config.Config) (_ *App, err error) {
	a := &App{Config: cfg}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if cfg.StoreBackend == config.BackendPostgres || cfg.WalletStore == config.BackendPostgres {
		pgCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		a.Pg, err = db.ConnectPostgres(pgCtx, cfg.PostgresDSN)
		cancel()
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, a.Pg.Close)
		log.Info().Msg("connected to Postgres")

		if err = db.EnsureSchema(ctx, a.Pg); err != nil {
			return nil, err
		}
	}

	switch cfg.WalletStore {
	case config.BackendPostgres:
		a.WalletRepo = wallet.NewPgRepository(a.Pg)
	case config.BackendMongo:
		a.Mongo, err = db.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			dctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.Mongo.Disconnect(dctx); err != nil {
				log.Warn().Err(err).Msg("error closing mongo")
			}
		})
		log.Info().Msg("connected to MongoDB")

		repo := wallet.NewMongoRepository(a.Mongo, cfg.MongoDB)
		if err = repo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		a.WalletRepo = repo
	default:
		a.WalletRepo = wallet.NewMemoryRepository()
	}

	var locker lock.Locker
	if cfg.UsesRedis() {
		a.Redis, err = redisclient.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := a.Redis.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing redis")
			}
		})
		log.Info().Msg("connected to Redis")

		locker = redisclient.NewRedisLocker(a.Redis, cfg.LockTTL, cfg.LockWait)
		a.Idempotency = redisclient.NewIdempotencyStore(a.Redis)
	} else {
		locker = lock.NewLocal()
	}

	var publisher events.Publisher = events.LogPublisher{}
	if cfg.AMQPURL != "" {
		var rmq *events.RabbitMQPublisher
		rmq, err = events.DialRabbitMQ(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() {
			if err := rmq.Close(); err != nil {
				log.Warn().Err(err).Msg("error closing rabbitmq")
			}
		})
		publisher = rmq
		log.Info().Str("exchange", cfg.AMQPExchange).Msg("connected to RabbitMQ")
	}

	var (
		bookingRepo booking.Repository
		planRepo    subscription.Repository
	)
	if cfg.StoreBackend == config.BackendPostgres {
		bookingRepo = booking.NewPgRepository(a.Pg)
		planRepo = subscription.NewPgRepository(a.Pg)
	} else {
		bookingRepo = booking.NewMemoryRepository()
		planRepo = subscription.NewMemoryRepository()
	}

	a.Media = media.NewLocalStore(cfg.MediaDir, cfg.MediaBaseURL)

	a.Wallets = wallet.NewService(a.WalletRepo, locker, publisher, cfg.StoreTimeout)
	a.Approvals = approval.NewWorkflow(a.Wallets)
	a.Bookings = booking.NewService(bookingRepo, a.Wallets, booking.NewStaticPricer(cfg.Pricing), locker, cfg.StoreTimeout)
	a.Plans = subscription.NewService(planRepo, a.Media, a.Wallets, cfg.PaymentQRBaseURL, cfg.StoreTimeout)

	return a, nil
}

// Close releases backends in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) String() string {
	return fmt.Sprintf("store=%s wallet_store=%s redis=%t amqp=%t",
		a.Config.StoreBackend, a.Config.WalletStore, a.Redis != nil, a.Config.AMQPURL != "")
}
