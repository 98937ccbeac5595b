package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/hackgods/care-wallet-scheduling/internal/approval"
	"github.com/hackgods/care-wallet-scheduling/internal/auth"
	"github.com/hackgods/care-wallet-scheduling/internal/booking"
	redisclient "github.com/hackgods/care-wallet-scheduling/internal/redis"
	"github.com/hackgods/care-wallet-scheduling/internal/subscription"
	"github.com/hackgods/care-wallet-scheduling/internal/wallet"
)

// IdempotencyStore caches responses by Idempotency-Key. redisclient.IdempotencyStore
// satisfies it.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*redisclient.CachedResponse, error)
	Save(ctx context.Context, key string, resp redisclient.CachedResponse, ttl time.Duration) error
}

type RouterConfig struct {
	Wallet    *wallet.Service
	Approvals *approval.Workflow
	Bookings  *booking.Service
	Plans     *subscription.Service
	Verifier  *auth.Verifier

	// Idempotency is optional. Without it replays are not cached.
	Idempotency    IdempotencyStore
	IdempotencyTTL time.Duration

	Checks         []HealthCheck
	RateLimitRPS   float64
	RateLimitBurst int
	CORSOrigins    []string
	MediaDir       string // served under /media when set

	Env     string
	Version string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "X-Idempotency-Hit"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	health := NewHealthHandler(cfg.Checks, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	if cfg.MediaDir != "" {
		r.Handle("/media/*", http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaDir))))
	}

	limiter := newRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(cfg.Verifier))
		r.Use(limiter.Middleware)

		r.Get("/wallet", getWalletHandler(cfg.Wallet))
		r.Get("/wallet/transactions/{txID}", getTransactionHandler(cfg.Wallet))

		r.Post("/bookings", createBookingHandler(cfg.Bookings))
		r.Get("/bookings", listBookingsHandler(cfg.Bookings))
		r.Get("/bookings/{id}", getBookingHandler(cfg.Bookings))
		r.Post("/bookings/{id}/status", transitionBookingHandler(cfg.Bookings))
		r.Post("/bookings/{id}/reschedule", rescheduleBookingHandler(cfg.Bookings))

		r.Get("/plans", listPlansHandler(cfg.Plans))
		r.Post("/plans/{id}/purchase", purchasePlanHandler(cfg.Plans))

		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireRole(auth.RoleAdmin))

			r.Get("/debits/pending", listPendingDebitsHandler(cfg.Approvals))
			r.With(Idempotency(cfg.Idempotency, cfg.IdempotencyTTL)).
				Post("/debits/process", processDebitHandler(cfg.Approvals))

			r.Post("/wallets/{userID}/credits", creditWalletHandler(cfg.Wallet))
			r.Get("/wallets/{userID}/reconcile", reconcileWalletHandler(cfg.Wallet))

			r.Post("/bookings/{id}/payment", recordPaymentHandler(cfg.Bookings))

			r.Post("/plans", createPlanHandler(cfg.Plans))
			r.Patch("/plans/{id}", updatePlanHandler(cfg.Plans))
		})
	})

	return r
}
