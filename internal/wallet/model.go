package wallet

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TypeCredit TransactionType = "credit"
	TypeDebit  TransactionType = "debit"
)

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusFailed    TransactionStatus = "failed"
)

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

// Transaction is one entry of a wallet's history. It is addressed only
// through its owning user.
type Transaction struct {
	ID          string            `json:"id"`
	Type        TransactionType   `json:"type"`
	Amount      decimal.Decimal   `json:"amount"`
	Status      TransactionStatus `json:"status"`
	Description string            `json:"description,omitempty"`
	ReferenceID string            `json:"reference_id,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	ResolvedAt  *time.Time        `json:"resolved_at,omitempty"`
	ResolvedBy  string            `json:"resolved_by,omitempty"`
}

// User is the identity projection of the user aggregate. Stored credentials
// never leave the repository.
type User struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Phone string    `json:"phone,omitempty"`
	Roles []string  `json:"roles,omitempty"`
}

// Wallet is the ledger aggregate: balance plus append-only history.
type Wallet struct {
	UserID       uuid.UUID       `json:"user_id"`
	Balance      decimal.Decimal `json:"balance"`
	Transactions []Transaction   `json:"transactions"`
	Version      int64           `json:"-"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type PendingDebit struct {
	User        User        `json:"user"`
	Transaction Transaction `json:"transaction"`
}

func (w *Wallet) Clone() *Wallet {
	c := *w
	c.Transactions = make([]Transaction, len(w.Transactions))
	copy(c.Transactions, w.Transactions)
	return &c
}

func (w *Wallet) indexOf(txID string) int {
	for i := range w.Transactions {
		if w.Transactions[i].ID == txID {
			return i
		}
	}
	return -1
}

// Find returns a copy of the transaction with the given id.
func (w *Wallet) Find(txID string) (Transaction, bool) {
	i := w.indexOf(txID)
	if i < 0 {
		return Transaction{}, false
	}
	return w.Transactions[i], true
}

// validAmount accepts positive amounts in whole cents.
func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Round(2))
}

// Credit appends a completed credit and raises the balance.
func (w *Wallet) Credit(id string, amount decimal.Decimal, description, referenceID string, now time.Time) (Transaction, error) {
	if !validAmount(amount) {
		return Transaction{}, ErrInvalidAmount
	}

	tx := Transaction{
		ID:          id,
		Type:        TypeCredit,
		Amount:      amount,
		Status:      StatusCompleted,
		Description: description,
		ReferenceID: referenceID,
		CreatedAt:   now,
		ResolvedAt:  &now,
	}
	w.Transactions = append(w.Transactions, tx)
	w.Balance = w.Balance.Add(amount)
	w.UpdatedAt = now
	return tx, nil
}

// OpenDebit appends a pending debit. The balance is untouched until the debit is resolved.
func (w *Wallet) OpenDebit(id string, amount decimal.Decimal, description string, now time.Time) (Transaction, error) {
	if !validAmount(amount) {
		return Transaction{}, ErrInvalidAmount
	}

	tx := Transaction{
		ID:          id,
		Type:        TypeDebit,
		Amount:      amount,
		Status:      StatusPending,
		Description: description,
		CreatedAt:   now,
	}
	w.Transactions = append(w.Transactions, tx)
	w.UpdatedAt = now
	return tx, nil
}

type Resolution struct {
	TransactionID string
	Decision      Decision
	Description   *string
	ReferenceID   *string
	ResolvedBy    string
}

// Resolve moves a pending debit to completed or failed. Every precondition is
// checked before anything changes, so a failed call leaves w untouched.
func (w *Wallet) Resolve(r Resolution, now time.Time) (Transaction, error) {
	if !r.Decision.Valid() {
		return Transaction{}, ErrInvalidDecision
	}

	i := w.indexOf(r.TransactionID)
	if i < 0 {
		return Transaction{}, ErrTransactionNotFound
	}
	tx := w.Transactions[i]
	if tx.Type != TypeDebit || tx.Status != StatusPending {
		return Transaction{}, ErrInvalidState
	}

	newBalance := w.Balance
	if r.Decision == DecisionApprove {
		if w.Balance.LessThan(tx.Amount) {
			return Transaction{}, ErrInsufficientBalance
		}
		newBalance = w.Balance.Sub(tx.Amount)
		tx.Status = StatusCompleted
	} else {
		tx.Status = StatusFailed
	}

	if r.Description != nil {
		tx.Description = *r.Description
	}
	if r.ReferenceID != nil {
		tx.ReferenceID = *r.ReferenceID
	}
	tx.ResolvedAt = &now
	tx.ResolvedBy = r.ResolvedBy

	w.Transactions[i] = tx
	w.Balance = newBalance
	w.UpdatedAt = now
	return tx, nil
}

// ReplayBalance recomputes the balance from completed history entries.
func (w *Wallet) ReplayBalance() decimal.Decimal {
	sum := decimal.Zero
	for _, tx := range w.Transactions {
		if tx.Status != StatusCompleted {
			continue
		}
		switch tx.Type {
		case TypeCredit:
			sum = sum.Add(tx.Amount)
		case TypeDebit:
			sum = sum.Sub(tx.Amount)
		}
	}
	return sum
}

// PendingDebits returns the wallet's debits awaiting review, oldest first.
func (w *Wallet) PendingDebits() []Transaction {
	var out []Transaction
	for _, tx := range w.Transactions {
		if tx.Type == TypeDebit && tx.Status == StatusPending {
			out = append(out, tx)
		}
	}
	return out
}
