package wallet

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/hackgods/care-wallet-scheduling/internal/apperr"
	"github.com/hackgods/care-wallet-scheduling/internal/events"
	"github.com/hackgods/care-wallet-scheduling/internal/lock"
)

type Service struct {
	repo         Repository
	locker       lock.Locker
	publisher    events.Publisher
	storeTimeout time.Duration
	now          func() time.Time
}

func NewService(repo Repository, locker lock.Locker, publisher events.Publisher, storeTimeout time.Duration) *Service {
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &Service{
		repo:         repo,
		locker:       locker,
		publisher:    publisher,
		storeTimeout: storeTimeout,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type CreditRequest struct {
	UserID      uuid.UUID
	Amount      decimal.Decimal
	Description string
	ReferenceID string
}

type ResolveRequest struct {
	UserID        uuid.UUID
	TransactionID string
	Decision      Decision
	Description   *string
	ReferenceID   *string
	ResolvedBy    string
}

type Reconciliation struct {
	UserID     uuid.UUID       `json:"user_id"`
	Balance    decimal.Decimal `json:"balance"`
	Replayed   decimal.Decimal `json:"replayed"`
	Consistent bool            `json:"consistent"`
}

func (s *Service) GetWallet(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	w, err := s.repo.GetWallet(storeCtx, userID)
	if err != nil {
		return nil, apperr.Store("wallet store unavailable", err)
	}
	return w, nil
}

func (s *Service) GetTransaction(ctx context.Context, userID uuid.UUID, txID string) (*Transaction, error) {
	w, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}
	tx, ok := w.Find(txID)
	if !ok {
		return nil, ErrTransactionNotFound
	}
	return &tx, nil
}

// Credit appends a completed credit and raises the balance in one save.
func (s *Service) Credit(ctx context.Context, req CreditRequest) (*Transaction, error) {
	if !validAmount(req.Amount) {
		return nil, ErrInvalidAmount
	}

	tx, err := s.mutate(ctx, req.UserID, func(w *Wallet, now time.Time) (Transaction, error) {
		return w.Credit(newTransactionID(), req.Amount, req.Description, req.ReferenceID, now)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.WalletCreditCompleted, req.UserID, tx)
	return tx, nil
}

// OpenPendingDebit records a debit awaiting approval. The balance is not touched.
func (s *Service) OpenPendingDebit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*Transaction, error) {
	if !validAmount(amount) {
		return nil, ErrInvalidAmount
	}

	tx, err := s.mutate(ctx, userID, func(w *Wallet, now time.Time) (Transaction, error) {
		return w.OpenDebit(newTransactionID(), amount, description, now)
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.WalletDebitOpened, userID, tx)
	return tx, nil
}

// ResolveDebit is the only place a debit reaches the balance. On approve the
// balance decrement and the completed status are saved together; on reject
// only the status changes. A debit that already left pending fails with
// ErrInvalidState, so a repeated call never applies twice.
func (s *Service) ResolveDebit(ctx context.Context, req ResolveRequest) (*Transaction, error) {
	if !req.Decision.Valid() {
		return nil, ErrInvalidDecision
	}
	if req.TransactionID == "" {
		return nil, ErrTransactionNotFound
	}

	tx, err := s.mutate(ctx, req.UserID, func(w *Wallet, now time.Time) (Transaction, error) {
		return w.Resolve(Resolution{
			TransactionID: req.TransactionID,
			Decision:      req.Decision,
			Description:   req.Description,
			ReferenceID:   req.ReferenceID,
			ResolvedBy:    req.ResolvedBy,
		}, now)
	})
	if err != nil {
		return nil, err
	}

	routingKey := events.WalletDebitCompleted
	if tx.Status == StatusFailed {
		routingKey = events.WalletDebitFailed
	}
	s.publish(ctx, routingKey, req.UserID, tx)
	return tx, nil
}

// ListPendingDebits returns every pending debit across users, oldest first.
func (s *Service) ListPendingDebits(ctx context.Context) ([]PendingDebit, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	pending, err := s.repo.ListPendingDebits(storeCtx)
	if err != nil {
		return nil, apperr.Store("wallet store unavailable", err)
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Transaction.CreatedAt.Before(pending[j].Transaction.CreatedAt)
	})
	if pending == nil {
		pending = []PendingDebit{}
	}
	return pending, nil
}

func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (*User, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	u, err := s.repo.GetUser(storeCtx, userID)
	if err != nil {
		return nil, apperr.Store("wallet store unavailable", err)
	}
	return u, nil
}

// Reconcile replays the completed history and compares it with the stored balance.
func (s *Service) Reconcile(ctx context.Context, userID uuid.UUID) (*Reconciliation, error) {
	w, err := s.GetWallet(ctx, userID)
	if err != nil {
		return nil, err
	}

	replayed := w.ReplayBalance()
	rec := &Reconciliation{
		UserID:     userID,
		Balance:    w.Balance,
		Replayed:   replayed,
		Consistent: replayed.Equal(w.Balance),
	}
	if !rec.Consistent {
		log.Error().
			Str("user_id", userID.String()).
			Str("balance", w.Balance.String()).
			Str("replayed", replayed.String()).
			Msg("wallet balance diverges from history")
	}
	return rec, nil
}

// mutate runs one read-modify-write on a user's wallet under the per-user
// lock. The aggregate is changed on a private copy and persisted with a
// version check; if apply fails nothing is written.
func (s *Service) mutate(ctx context.Context, userID uuid.UUID, apply func(w *Wallet, now time.Time) (Transaction, error)) (*Transaction, error) {
	var result Transaction

	err := s.locker.WithLock(ctx, lock.WalletKey(userID.String()), func(lockCtx context.Context) error {
		storeCtx, cancel := context.WithTimeout(lockCtx, s.storeTimeout)
		defer cancel()

		stored, err := s.repo.GetWallet(storeCtx, userID)
		if err != nil {
			return apperr.Store("wallet store unavailable", err)
		}

		w := stored.Clone()
		tx, err := apply(w, s.now())
		if err != nil {
			return err
		}

		if err := s.repo.SaveWallet(storeCtx, w); err != nil {
			return apperr.Store("wallet store unavailable", fmt.Errorf("save wallet %s: %w", userID, err))
		}

		result = tx
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *Service) publish(ctx context.Context, routingKey string, userID uuid.UUID, tx *Transaction) {
	event := map[string]any{
		"user_id":        userID.String(),
		"transaction_id": tx.ID,
		"type":           tx.Type,
		"amount":         tx.Amount.String(),
		"status":         tx.Status,
		"reference_id":   tx.ReferenceID,
	}
	if err := s.publisher.Publish(ctx, routingKey, event); err != nil {
		log.Warn().Err(err).
			Str("routing_key", routingKey).
			Str("transaction_id", tx.ID).
			Msg("failed to publish wallet event")
	}
}

func newTransactionID() string {
	return ulid.Make().String()
}
