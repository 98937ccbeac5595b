package app

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/care-wallet-scheduling/internal/config"
	"github.com/hackgods/care-wallet-scheduling/internal/wallet"
)

func TestBuildInMemory(t *testing.T) {
	cfg := config.Config{
		StoreBackend:     config.BackendMemory,
		WalletStore:      config.BackendMemory,
		StoreTimeout:     time.Second,
		MediaDir:         t.TempDir(),
		MediaBaseURL:     "http://localhost/media",
		PaymentQRBaseURL: "https://pay.test/checkout",
		Pricing:          config.Pricing{Emergency: decimal.NewFromInt(100)},
	}

	a, err := Build(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.Pg)
	assert.Nil(t, a.Redis)
	assert.Nil(t, a.Idempotency)
	assert.Equal(t, "store=memory wallet_store=memory redis=false amqp=false", a.String())

	userID := uuid.New()
	require.NoError(t, a.WalletRepo.CreateUser(context.Background(), wallet.User{ID: userID, Name: "Ada", Email: "ada@example.com"}))
	_, err = a.Wallets.Credit(context.Background(), wallet.CreditRequest{UserID: userID, Amount: decimal.NewFromInt(5)})
	require.NoError(t, err)

	w, err := a.Wallets.GetWallet(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, w.Balance.Equal(decimal.NewFromInt(5)))
}
