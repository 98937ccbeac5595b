package wallet

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func strPtr(s string) *string { return &s }

func TestWalletCredit(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		amount  decimal.Decimal
		wantErr error
	}{
		{name: "positive amount", amount: dec("25.50")},
		{name: "zero", amount: decimal.Zero, wantErr: ErrInvalidAmount},
		{name: "negative", amount: dec("-1"), wantErr: ErrInvalidAmount},
		{name: "sub-cent precision", amount: dec("1.005"), wantErr: ErrInvalidAmount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &Wallet{UserID: uuid.New()}
			tx, err := w.Credit("tx-1", tt.amount, "top up", "gw-1", now)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, w.Balance.IsZero())
				assert.Empty(t, w.Transactions)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, StatusCompleted, tx.Status)
			assert.Equal(t, TypeCredit, tx.Type)
			assert.True(t, w.Balance.Equal(tt.amount))
			assert.True(t, w.ReplayBalance().Equal(w.Balance))
		})
	}
}

func TestWalletResolve(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	newWallet := func(balance, debit string) *Wallet {
		w := &Wallet{UserID: uuid.New()}
		_, err := w.Credit("credit-1", dec(balance), "", "", now)
		require.NoError(t, err)
		_, err = w.OpenDebit("debit-1", dec(debit), "plan purchase", now)
		require.NoError(t, err)
		return w
	}

	t.Run("approve with enough balance", func(t *testing.T) {
		w := newWallet("100.00", "80.00")

		tx, err := w.Resolve(Resolution{TransactionID: "debit-1", Decision: DecisionApprove, ResolvedBy: "admin"}, now)

		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, tx.Status)
		assert.True(t, w.Balance.Equal(dec("20.00")))
		assert.True(t, w.ReplayBalance().Equal(w.Balance))
		assert.Equal(t, "admin", tx.ResolvedBy)
	})

	t.Run("approve exact balance leaves zero", func(t *testing.T) {
		w := newWallet("80.00", "80.00")

		_, err := w.Resolve(Resolution{TransactionID: "debit-1", Decision: DecisionApprove}, now)

		require.NoError(t, err)
		assert.True(t, w.Balance.IsZero())
	})

	t.Run("approve with insufficient balance changes nothing", func(t *testing.T) {
		w := newWallet("100.00", "150.00")
		before := w.Clone()

		_, err := w.Resolve(Resolution{
			TransactionID: "debit-1",
			Decision:      DecisionApprove,
			Description:   strPtr("overwritten"),
		}, now)

		assert.ErrorIs(t, err, ErrInsufficientBalance)
		assert.Equal(t, before, w)
	})

	t.Run("reject keeps balance and overwrites fields", func(t *testing.T) {
		w := newWallet("100.00", "30.00")

		tx, err := w.Resolve(Resolution{
			TransactionID: "debit-1",
			Decision:      DecisionReject,
			Description:   strPtr("receipt unreadable"),
			ReferenceID:   strPtr("ref-9"),
		}, now)

		require.NoError(t, err)
		assert.Equal(t, StatusFailed, tx.Status)
		assert.Equal(t, "receipt unreadable", tx.Description)
		assert.Equal(t, "ref-9", tx.ReferenceID)
		assert.True(t, w.Balance.Equal(dec("100.00")))
	})

	t.Run("terminal transaction cannot be resolved again", func(t *testing.T) {
		w := newWallet("100.00", "30.00")
		_, err := w.Resolve(Resolution{TransactionID: "debit-1", Decision: DecisionApprove}, now)
		require.NoError(t, err)

		_, err = w.Resolve(Resolution{TransactionID: "debit-1", Decision: DecisionApprove}, now)

		assert.ErrorIs(t, err, ErrInvalidState)
		assert.True(t, w.Balance.Equal(dec("70.00")))
	})

	t.Run("credits are not resolvable", func(t *testing.T) {
		w := newWallet("100.00", "30.00")

		_, err := w.Resolve(Resolution{TransactionID: "credit-1", Decision: DecisionReject}, now)

		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("unknown transaction", func(t *testing.T) {
		w := newWallet("100.00", "30.00")

		_, err := w.Resolve(Resolution{TransactionID: "nope", Decision: DecisionApprove}, now)

		assert.ErrorIs(t, err, ErrTransactionNotFound)
	})

	t.Run("unknown decision", func(t *testing.T) {
		w := newWallet("100.00", "30.00")

		_, err := w.Resolve(Resolution{TransactionID: "debit-1", Decision: "maybe"}, now)

		assert.ErrorIs(t, err, ErrInvalidDecision)
	})
}
