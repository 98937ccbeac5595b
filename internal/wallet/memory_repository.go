package wallet

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryRepository keeps user aggregates in process. Every read returns a
// copy so callers never alias stored state.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*memoryUser
}

type memoryUser struct {
	user   User
	wallet *Wallet
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[uuid.UUID]*memoryUser)}
}

func (r *MemoryRepository) CreateUser(ctx context.Context, u User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[u.ID]; ok {
		return ErrUserExists
	}
	u.Roles = append([]string(nil), u.Roles...)
	r.users[u.ID] = &memoryUser{
		user:   u,
		wallet: &Wallet{UserID: u.ID, Transactions: []Transaction{}},
	}
	return nil
}

func (r *MemoryRepository) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	u := rec.user
	u.Roles = append([]string(nil), rec.user.Roles...)
	return &u, nil
}

func (r *MemoryRepository) GetWallet(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return rec.wallet.Clone(), nil
}

func (r *MemoryRepository) SaveWallet(ctx context.Context, w *Wallet) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.users[w.UserID]
	if !ok {
		return ErrUserNotFound
	}
	if rec.wallet.Version != w.Version {
		return ErrConcurrentUpdate
	}

	w.Version++
	rec.wallet = w.Clone()
	return nil
}

func (r *MemoryRepository) ListPendingDebits(ctx context.Context) ([]PendingDebit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []PendingDebit
	for _, rec := range r.users {
		for _, tx := range rec.wallet.PendingDebits() {
			u := rec.user
			u.Roles = append([]string(nil), rec.user.Roles...)
			out = append(out, PendingDebit{User: u, Transaction: tx})
		}
	}
	return out, nil
}
