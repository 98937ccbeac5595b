// Package approval is the admin review of pending wallet debits. It never
// touches balances itself; every decision goes through the ledger.
package approval

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hackgods/care-wallet-scheduling/internal/apperr"
	"github.com/hackgods/care-wallet-scheduling/internal/wallet"
)

var (
	ErrInvalidAction = apperr.New(apperr.KindValidation, "action must be approve or reject")
	ErrMissingTarget = apperr.New(apperr.KindValidation, "userId and transactionId are required")
	ErrSelfApproval  = apperr.New(apperr.KindInvalidState, "admins cannot process debits on their own wallet")
)

// Ledger is the subset of the wallet service the workflow drives.
type Ledger interface {
	ListPendingDebits(ctx context.Context) ([]wallet.PendingDebit, error)
	ResolveDebit(ctx context.Context, req wallet.ResolveRequest) (*wallet.Transaction, error)
}

type Workflow struct {
	ledger Ledger
}

func NewWorkflow(ledger Ledger) *Workflow {
	return &Workflow{ledger: ledger}
}

type ProcessRequest struct {
	UserID        uuid.UUID
	TransactionID string
	Action        string
	Description   *string
	ReferenceID   *string
	AdminID       uuid.UUID
}

// ListPending returns every pending debit across users, oldest first.
func (w *Workflow) ListPending(ctx context.Context) ([]wallet.PendingDebit, error) {
	return w.ledger.ListPendingDebits(ctx)
}

// Process approves or rejects one pending debit. A debit that already reached
// completed or failed is reported as invalid_state, so a duplicate
// submission never applies twice.
func (w *Workflow) Process(ctx context.Context, req ProcessRequest) (*wallet.Transaction, error) {
	decision := wallet.Decision(req.Action)
	if !decision.Valid() {
		return nil, ErrInvalidAction
	}
	if req.UserID == uuid.Nil || req.TransactionID == "" {
		return nil, ErrMissingTarget
	}
	if req.AdminID != uuid.Nil && req.AdminID == req.UserID {
		return nil, ErrSelfApproval
	}

	resolve := wallet.ResolveRequest{
		UserID:        req.UserID,
		TransactionID: req.TransactionID,
		Decision:      decision,
		Description:   req.Description,
		ReferenceID:   req.ReferenceID,
	}
	if req.AdminID != uuid.Nil {
		resolve.ResolvedBy = req.AdminID.String()
	}
	tx, err := w.ledger.ResolveDebit(ctx, resolve)
	if err != nil {
		log.Info().Err(err).
			Str("user_id", req.UserID.String()).
			Str("transaction_id", req.TransactionID).
			Str("action", req.Action).
			Msg("debit not processed")
		return nil, err
	}

	log.Info().
		Str("user_id", req.UserID.String()).
		Str("transaction_id", tx.ID).
		Str("status", string(tx.Status)).
		Str("admin_id", req.AdminID.String()).
		Msg("debit processed")
	return tx, nil
}
