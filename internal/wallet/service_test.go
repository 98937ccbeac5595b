package wallet

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/care-wallet-scheduling/internal/apperr"
	"github.com/hackgods/care-wallet-scheduling/internal/lock"
)

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, routingKey string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, routingKey)
	return nil
}

type failingSaveRepo struct {
	*MemoryRepository
	err error
}

func (r *failingSaveRepo) SaveWallet(context.Context, *Wallet) error { return r.err }

func newTestService(t *testing.T) (*Service, *MemoryRepository, *recordingPublisher) {
	t.Helper()
	repo := NewMemoryRepository()
	pub := &recordingPublisher{}
	return NewService(repo, lock.NewLocal(), pub, time.Second), repo, pub
}

func newFundedUser(t *testing.T, svc *Service, repo *MemoryRepository, balance string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	require.NoError(t, repo.CreateUser(context.Background(), User{ID: id, Name: "Ada Obi", Email: id.String() + "@example.com"}))
	if balance != "0" {
		_, err := svc.Credit(context.Background(), CreditRequest{UserID: id, Amount: dec(balance), Description: "top up"})
		require.NoError(t, err)
	}
	return id
}

func assertReconciled(t *testing.T, svc *Service, userID uuid.UUID) {
	t.Helper()
	rec, err := svc.Reconcile(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, rec.Consistent, "balance %s replayed %s", rec.Balance, rec.Replayed)
}

func TestCreditRejectsInvalidAmount(t *testing.T) {
	svc, repo, _ := newTestService(t)
	userID := newFundedUser(t, svc, repo, "0")

	_, err := svc.Credit(context.Background(), CreditRequest{UserID: userID, Amount: dec("-5")})

	assert.ErrorIs(t, err, ErrInvalidAmount)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCreditUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Credit(context.Background(), CreditRequest{UserID: uuid.New(), Amount: dec("5")})

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestOpenPendingDebitLeavesBalance(t *testing.T) {
	svc, repo, pub := newTestService(t)
	userID := newFundedUser(t, svc, repo, "40.00")

	tx, err := svc.OpenPendingDebit(context.Background(), userID, dec("60.00"), "Gold plan")
	require.NoError(t, err)

	w, err := svc.GetWallet(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, tx.Status)
	assert.True(t, w.Balance.Equal(dec("40.00")))
	assert.Len(t, w.Transactions, 2)
	assert.Contains(t, pub.keys, "wallet.debit.opened")
}

func TestResolveDebitScenarios(t *testing.T) {
	t.Run("insufficient balance keeps everything", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		userID := newFundedUser(t, svc, repo, "100.00")
		debit, err := svc.OpenPendingDebit(context.Background(), userID, dec("150.00"), "")
		require.NoError(t, err)

		_, err = svc.ResolveDebit(context.Background(), ResolveRequest{UserID: userID, TransactionID: debit.ID, Decision: DecisionApprove})

		assert.ErrorIs(t, err, ErrInsufficientBalance)
		got, err := svc.GetTransaction(context.Background(), userID, debit.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusPending, got.Status)
		w, _ := svc.GetWallet(context.Background(), userID)
		assert.True(t, w.Balance.Equal(dec("100.00")))
	})

	t.Run("approve deducts once", func(t *testing.T) {
		svc, repo, pub := newTestService(t)
		userID := newFundedUser(t, svc, repo, "100.00")
		debit, err := svc.OpenPendingDebit(context.Background(), userID, dec("80.00"), "")
		require.NoError(t, err)

		tx, err := svc.ResolveDebit(context.Background(), ResolveRequest{UserID: userID, TransactionID: debit.ID, Decision: DecisionApprove})
		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, tx.Status)

		_, err = svc.ResolveDebit(context.Background(), ResolveRequest{UserID: userID, TransactionID: debit.ID, Decision: DecisionApprove})
		assert.ErrorIs(t, err, ErrInvalidState)

		w, _ := svc.GetWallet(context.Background(), userID)
		assert.True(t, w.Balance.Equal(dec("20.00")))
		assert.Contains(t, pub.keys, "wallet.debit.completed")
		assertReconciled(t, svc, userID)
	})

	t.Run("reject marks failed", func(t *testing.T) {
		svc, repo, pub := newTestService(t)
		userID := newFundedUser(t, svc, repo, "100.00")
		debit, err := svc.OpenPendingDebit(context.Background(), userID, dec("10.00"), "")
		require.NoError(t, err)

		tx, err := svc.ResolveDebit(context.Background(), ResolveRequest{
			UserID:        userID,
			TransactionID: debit.ID,
			Decision:      DecisionReject,
			ReferenceID:   strPtr("gw-77"),
		})
		require.NoError(t, err)

		assert.Equal(t, StatusFailed, tx.Status)
		assert.Equal(t, "gw-77", tx.ReferenceID)
		w, _ := svc.GetWallet(context.Background(), userID)
		assert.True(t, w.Balance.Equal(dec("100.00")))
		assert.Contains(t, pub.keys, "wallet.debit.failed")
	})

	t.Run("transaction of another user is not found", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		owner := newFundedUser(t, svc, repo, "100.00")
		other := newFundedUser(t, svc, repo, "100.00")
		debit, err := svc.OpenPendingDebit(context.Background(), owner, dec("10.00"), "")
		require.NoError(t, err)

		_, err = svc.ResolveDebit(context.Background(), ResolveRequest{UserID: other, TransactionID: debit.ID, Decision: DecisionApprove})

		assert.ErrorIs(t, err, ErrTransactionNotFound)
	})
}

func TestResolveDebitStoreFailureLeavesNoPartialState(t *testing.T) {
	mem := NewMemoryRepository()
	seed := NewService(mem, lock.NewLocal(), &recordingPublisher{}, time.Second)
	userID := newFundedUser(t, seed, mem, "50.00")
	debit, err := seed.OpenPendingDebit(context.Background(), userID, dec("20.00"), "")
	require.NoError(t, err)

	broken := &failingSaveRepo{MemoryRepository: mem, err: errors.New("connection reset by peer")}
	svc := NewService(broken, lock.NewLocal(), &recordingPublisher{}, time.Second)

	_, err = svc.ResolveDebit(context.Background(), ResolveRequest{UserID: userID, TransactionID: debit.ID, Decision: DecisionApprove})

	assert.Equal(t, apperr.KindTransient, apperr.KindOf(err))
	assert.NotContains(t, apperr.PublicMessage(err), "connection reset")
	w, _ := mem.GetWallet(context.Background(), userID)
	assert.True(t, w.Balance.Equal(dec("50.00")))
	got, _ := w.Find(debit.ID)
	assert.Equal(t, StatusPending, got.Status)
}

func TestConcurrentApprovalsSpendOnce(t *testing.T) {
	svc, repo, _ := newTestService(t)
	userID := newFundedUser(t, svc, repo, "30.00")

	const n = 12
	ids := make([]string, n)
	for i := range ids {
		tx, err := svc.OpenPendingDebit(context.Background(), userID, dec("30.00"), "")
		require.NoError(t, err)
		ids[i] = tx.ID
	}

	var (
		wg           sync.WaitGroup
		mu           sync.Mutex
		completed    int
		insufficient int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.ResolveDebit(context.Background(), ResolveRequest{UserID: userID, TransactionID: id, Decision: DecisionApprove})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				completed++
			case errors.Is(err, ErrInsufficientBalance):
				insufficient++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, 1, completed)
	assert.Equal(t, n-1, insufficient)
	w, _ := svc.GetWallet(context.Background(), userID)
	assert.True(t, w.Balance.IsZero())
	assertReconciled(t, svc, userID)
}

func TestConcurrentCreditsAndDebitsReconcile(t *testing.T) {
	svc, repo, _ := newTestService(t)
	userID := newFundedUser(t, svc, repo, "0")

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.Credit(context.Background(), CreditRequest{UserID: userID, Amount: dec("4.00")})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			tx, err := svc.OpenPendingDebit(context.Background(), userID, dec("3.00"), "")
			if !assert.NoError(t, err) {
				return
			}
			_, _ = svc.ResolveDebit(context.Background(), ResolveRequest{UserID: userID, TransactionID: tx.ID, Decision: DecisionApprove})
		}()
	}
	wg.Wait()

	w, err := svc.GetWallet(context.Background(), userID)
	require.NoError(t, err)
	assert.False(t, w.Balance.IsNegative())
	assertReconciled(t, svc, userID)
}

func TestListPendingDebitsOrdered(t *testing.T) {
	svc, repo, _ := newTestService(t)
	clock := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	a := newFundedUser(t, svc, repo, "10.00")
	b := newFundedUser(t, svc, repo, "10.00")

	first, err := svc.OpenPendingDebit(context.Background(), b, dec("1.00"), "")
	require.NoError(t, err)
	second, err := svc.OpenPendingDebit(context.Background(), a, dec("2.00"), "")
	require.NoError(t, err)
	resolved, err := svc.OpenPendingDebit(context.Background(), a, dec("3.00"), "")
	require.NoError(t, err)
	_, err = svc.ResolveDebit(context.Background(), ResolveRequest{UserID: a, TransactionID: resolved.ID, Decision: DecisionReject})
	require.NoError(t, err)

	pending, err := svc.ListPendingDebits(context.Background())
	require.NoError(t, err)

	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].Transaction.ID)
	assert.Equal(t, b, pending[0].User.ID)
	assert.Equal(t, second.ID, pending[1].Transaction.ID)
	assert.True(t, pending[1].Transaction.Amount.Equal(decimal.NewFromInt(2)))
}
