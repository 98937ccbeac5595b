package wallet

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/care-wallet-scheduling/internal/apperr"
)

var (
	ErrInvalidAmount       = apperr.New(apperr.KindValidation, "amount must be a positive value with at most two decimals")
	ErrInvalidDecision     = apperr.New(apperr.KindValidation, "decision must be approve or reject")
	ErrUserNotFound        = apperr.New(apperr.KindNotFound, "user not found")
	ErrUserExists          = apperr.New(apperr.KindInvalidState, "user already exists")
	ErrTransactionNotFound = apperr.New(apperr.KindNotFound, "transaction not found")
	ErrInvalidState        = apperr.New(apperr.KindInvalidState, "transaction is not a pending debit")
	ErrInsufficientBalance = apperr.New(apperr.KindInsufficientBalance, "insufficient balance")
	ErrConcurrentUpdate    = apperr.New(apperr.KindTransient, "wallet was modified concurrently, please retry")
)

// Repository persists the user aggregate that embeds the wallet.
type Repository interface {
	// CreateUser registers a user with an empty wallet. Used by provisioning and seeding.
	CreateUser(ctx context.Context, u User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)

	GetWallet(ctx context.Context, userID uuid.UUID) (*Wallet, error)

	// SaveWallet writes balance and history atomically if the stored version
	// still equals w.Version, then bumps w.Version. Otherwise ErrConcurrentUpdate.
	SaveWallet(ctx context.Context, w *Wallet) error

	ListPendingDebits(ctx context.Context) ([]PendingDebit, error)
}
