package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const pgUniqueViolation = "23505"

// PgRepository stores the wallet on the users row: balance as NUMERIC and
// the whole history as one JSONB array.
type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Roles)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func scanWallet(row pgx.Row, userID uuid.UUID) (*Wallet, error) {
	var (
		balance string
		history []byte
		w       = Wallet{UserID: userID}
	)

	err := row.Scan(&balance, &history, &w.Version, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if w.Balance, err = decimal.NewFromString(balance); err != nil {
		return nil, fmt.Errorf("parse balance %q: %w", balance, err)
	}
	if err := json.Unmarshal(history, &w.Transactions); err != nil {
		return nil, fmt.Errorf("decode transaction history: %w", err)
	}
	if w.Transactions == nil {
		w.Transactions = []Transaction{}
	}
	return &w, nil
}

func (r *PgRepository) CreateUser(ctx context.Context, u User) error {
	roles := u.Roles
	if roles == nil {
		roles = []string{}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, name, email, phone, roles, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
	`, u.ID, u.Name, u.Email, u.Phone, roles)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *PgRepository) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, roles
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row)
}

func (r *PgRepository) GetWallet(ctx context.Context, userID uuid.UUID) (*Wallet, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT balance::text, transaction_history, version, updated_at
		FROM users
		WHERE id = $1
	`, userID)
	return scanWallet(row, userID)
}

// SaveWallet locks the row, checks the version and rewrites balance and
// history in the same database transaction.
func (r *PgRepository) SaveWallet(ctx context.Context, w *Wallet) error {
	history, err := json.Marshal(w.Transactions)
	if err != nil {
		return fmt.Errorf("encode transaction history: %w", err)
	}
	updatedAt := w.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin wallet transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var current int64
	err = tx.QueryRow(ctx, `SELECT version FROM users WHERE id = $1 FOR UPDATE`, w.UserID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("lock wallet row: %w", err)
	}
	if current != w.Version {
		return ErrConcurrentUpdate
	}

	_, err = tx.Exec(ctx, `
		UPDATE users
		SET balance = $2::numeric,
		    transaction_history = $3::jsonb,
		    version = version + 1,
		    updated_at = $4
		WHERE id = $1
	`, w.UserID, w.Balance.StringFixed(2), string(history), updatedAt)
	if err != nil {
		return fmt.Errorf("update wallet: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit wallet: %w", err)
	}

	w.Version = current + 1
	return nil
}

func (r *PgRepository) ListPendingDebits(ctx context.Context) ([]PendingDebit, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT u.id, u.name, u.email, u.phone, u.roles, t.elem
		FROM users u
		CROSS JOIN LATERAL jsonb_array_elements(u.transaction_history) AS t(elem)
		WHERE t.elem->>'type' = 'debit'
		  AND t.elem->>'status' = 'pending'
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PendingDebit
	for rows.Next() {
		var (
			p    PendingDebit
			elem []byte
		)
		if err := rows.Scan(&p.User.ID, &p.User.Name, &p.User.Email, &p.User.Phone, &p.User.Roles, &elem); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(elem, &p.Transaction); err != nil {
			return nil, fmt.Errorf("decode pending debit: %w", err)
		}
		result = append(result, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
