package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/hackgods/care-wallet-scheduling/internal/app"
	"github.com/hackgods/care-wallet-scheduling/internal/auth"
	"github.com/hackgods/care-wallet-scheduling/internal/config"
	"github.com/hackgods/care-wallet-scheduling/internal/logging"
	"github.com/hackgods/care-wallet-scheduling/internal/subscription"
	"github.com/hackgods/care-wallet-scheduling/internal/wallet"
)

const roleDoctor = "doctor"

func main() {
	patients := flag.Int("patients", 200, "patients to create, each with a funded wallet")
	doctors := flag.Int("doctors", 20, "doctors to create")
	admins := flag.Int("admins", 2, "admins to create")
	plans := flag.Int("plans", 4, "subscription plans to create")
	maxBalance := flag.Int("max-balance", 500, "upper bound of the opening wallet credit")
	tokens := flag.Int("tokens", 3, "print bearer tokens for this many patients")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load error")
	}
	logging.Setup(cfg.Env, cfg.LogLevel)
	log.Info().Msg("seed starting")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	a, err := app.Build(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
	defer a.Close()

	gofakeit.Seed(time.Now().UnixNano())

	adminIDs, err := seedUsers(ctx, a, *admins, auth.RoleAdmin)
	if err != nil {
		log.Fatal().Err(err).Msg("seed admins")
	}
	if _, err := seedUsers(ctx, a, *doctors, roleDoctor); err != nil {
		log.Fatal().Err(err).Msg("seed doctors")
	}
	patientIDs, err := seedUsers(ctx, a, *patients)
	if err != nil {
		log.Fatal().Err(err).Msg("seed patients")
	}
	if err := fundWallets(ctx, a, patientIDs, *maxBalance); err != nil {
		log.Fatal().Err(err).Msg("fund wallets")
	}
	if err := seedPlans(ctx, a, *plans); err != nil {
		log.Fatal().Err(err).Msg("seed plans")
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTIssuer, 24*time.Hour)
	for _, id := range adminIDs {
		printToken(issuer, "admin", id, auth.RoleAdmin)
	}
	for i := 0; i < *tokens && i < len(patientIDs); i++ {
		printToken(issuer, "patient", patientIDs[i])
	}

	log.Info().Msg("seed complete")
}

func seedUsers(ctx context.Context, a *app.App, count int, roles ...string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		u := wallet.User{
			ID:    uuid.New(),
			Name:  gofakeit.Name(),
			Email: fmt.Sprintf("%d.%s", i, gofakeit.Email()),
			Phone: gofakeit.Phone(),
			Roles: roles,
		}
		if err := a.WalletRepo.CreateUser(ctx, u); err != nil {
			return ids, fmt.Errorf("create user %s: %w", u.Email, err)
		}
		ids = append(ids, u.ID)
	}
	log.Info().Int("count", count).Strs("roles", roles).Msg("users seeded")
	return ids, nil
}

func fundWallets(ctx context.Context, a *app.App, ids []uuid.UUID, maxBalance int) error {
	if maxBalance < 1 {
		return nil
	}
	for i, id := range ids {
		amount := decimal.NewFromInt(int64(gofakeit.Number(1, maxBalance)))
		_, err := a.Wallets.Credit(ctx, wallet.CreditRequest{
			UserID:      id,
			Amount:      amount,
			Description: "opening balance",
			ReferenceID: fmt.Sprintf("seed-%d", i),
		})
		if err != nil {
			return fmt.Errorf("credit %s: %w", id, err)
		}
	}
	log.Info().Int("count", len(ids)).Msg("wallets funded")
	return nil
}

func seedPlans(ctx context.Context, a *app.App, count int) error {
	durations := []subscription.Duration{
		subscription.DurationMonthly,
		subscription.DurationQuarterly,
		subscription.DurationHalfYearly,
		subscription.DurationYearly,
	}

	for i := 0; i < count; i++ {
		d := durations[i%len(durations)]
		name := gofakeit.ProductName()
		p, err := a.Plans.CreatePlan(ctx, subscription.CreatePlanRequest{
			Name:        name,
			Description: fmt.Sprintf("%s care plan billed %s", name, d),
			Price:       decimal.NewFromFloat(gofakeit.Price(10, 200)).Round(2),
			Features:    []string{gofakeit.Word() + " consultations", gofakeit.Word() + " support"},
			Duration:    d,
		})
		if err != nil {
			return fmt.Errorf("create plan %q: %w", name, err)
		}
		log.Info().Str("plan_id", p.ID.String()).Str("name", p.Name).Str("price", p.Price.StringFixed(2)).Msg("plan seeded")
	}
	return nil
}

func printToken(issuer *auth.Issuer, label string, id uuid.UUID, roles ...string) {
	tok, err := issuer.Issue(id, roles...)
	if err != nil {
		log.Error().Err(err).Str("user_id", id.String()).Msg("issue token")
		return
	}
	fmt.Printf("%s %s %s\n", label, id, tok)
}
