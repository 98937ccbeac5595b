// Package subscription is the admin-managed catalogue of subscription plans
// and the purchase path that turns a plan into a pending wallet debit.
package subscription

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/hackgods/care-wallet-scheduling/internal/apperr"
	"github.com/hackgods/care-wallet-scheduling/internal/media"
	"github.com/hackgods/care-wallet-scheduling/internal/wallet"
)

// Ledger opens the pending debit a purchase waits on.
type Ledger interface {
	OpenPendingDebit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*wallet.Transaction, error)
}

type Service struct {
	repo         Repository
	media        media.Store
	ledger       Ledger
	qrBaseURL    string
	storeTimeout time.Duration
	now          func() time.Time
}

func NewService(repo Repository, store media.Store, ledger Ledger, qrBaseURL string, storeTimeout time.Duration) *Service {
	return &Service{
		repo:         repo,
		media:        store,
		ledger:       ledger,
		qrBaseURL:    qrBaseURL,
		storeTimeout: storeTimeout,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type CreatePlanRequest struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Features    []string
	Duration    Duration
	IsActive    *bool
}

// CreatePlan validates the plan, renders its payment QR and stores both.
func (s *Service) CreatePlan(ctx context.Context, req CreatePlanRequest) (*Plan, error) {
	fe := fieldErrors{}
	fe.text("name", req.Name)
	fe.text("description", req.Description)
	fe.price(req.Price)
	fe.features(req.Features)
	fe.duration(req.Duration)
	if err := fe.err(); err != nil {
		return nil, err
	}

	now := s.now()
	p := &Plan{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Price:       req.Price,
		Features:    trimAll(req.Features),
		Duration:    req.Duration,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	ref, err := s.renderQR(storeCtx, p.ID, p.Price)
	if err != nil {
		return nil, apperr.Store("qr artifact unavailable", err)
	}
	p.QRCodeImage = ref

	if err := s.repo.Create(storeCtx, p); err != nil {
		return nil, apperr.Store("plan store unavailable", fmt.Errorf("create plan: %w", err))
	}

	log.Info().Str("plan_id", p.ID.String()).Str("name", p.Name).Msg("plan created")
	return p, nil
}

// UpdatePlan applies only the supplied fields. Every invalid field is
// reported in one error and nothing is written. A price change re-renders
// the payment QR.
func (s *Service) UpdatePlan(ctx context.Context, id uuid.UUID, patch PlanPatch) (*Plan, error) {
	fe := fieldErrors{}
	if patch.Name != nil {
		fe.text("name", *patch.Name)
	}
	if patch.Description != nil {
		fe.text("description", *patch.Description)
	}
	if patch.Price != nil {
		fe.price(*patch.Price)
	}
	if patch.Features != nil {
		fe.features(*patch.Features)
	}
	if patch.Duration != nil {
		fe.duration(*patch.Duration)
	}
	if err := fe.err(); err != nil {
		return nil, err
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	p, err := s.repo.Get(storeCtx, id)
	if err != nil {
		return nil, apperr.Store("plan store unavailable", err)
	}

	priceChanged := patch.Price != nil && !patch.Price.Equal(p.Price)
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Features != nil {
		p.Features = trimAll(*patch.Features)
	}
	if patch.Duration != nil {
		p.Duration = *patch.Duration
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}

	if priceChanged {
		ref, err := s.renderQR(storeCtx, p.ID, p.Price)
		if err != nil {
			return nil, apperr.Store("qr artifact unavailable", err)
		}
		p.QRCodeImage = ref
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Update(storeCtx, p); err != nil {
		return nil, apperr.Store("plan store unavailable", fmt.Errorf("update plan: %w", err))
	}
	return p, nil
}

func (s *Service) GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	p, err := s.repo.Get(storeCtx, id)
	if err != nil {
		return nil, apperr.Store("plan store unavailable", err)
	}
	return p, nil
}

// ListActivePlans returns active plans. No active plans is an empty list, not an error.
func (s *Service) ListActivePlans(ctx context.Context) ([]Plan, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	plans, err := s.repo.ListActive(storeCtx)
	if err != nil {
		return nil, apperr.Store("plan store unavailable", fmt.Errorf("list active plans: %w", err))
	}
	if plans == nil {
		plans = []Plan{}
	}
	return plans, nil
}

// Purchase opens a pending debit for the plan price on the buyer's wallet.
// The debit takes effect once an admin approves it.
func (s *Service) Purchase(ctx context.Context, userID, planID uuid.UUID) (*wallet.Transaction, error) {
	p, err := s.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, ErrPlanInactive
	}
	if !p.Price.IsPositive() {
		return nil, ErrPlanNotPriced
	}

	desc := fmt.Sprintf("subscription:%s (%s)", p.Name, p.Duration)
	tx, err := s.ledger.OpenPendingDebit(ctx, userID, p.Price, desc)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("plan_id", p.ID.String()).
		Str("transaction_id", tx.ID).
		Msg("plan purchase awaiting approval")
	return tx, nil
}
