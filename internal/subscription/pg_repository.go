package subscription

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const planColumns = `id, name, description, price::text, features, duration, is_active, qr_code_image, created_at, updated_at`

func scanPlan(row pgx.Row) (*Plan, error) {
	var (
		p     Plan
		price string
	)

	err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&price,
		&p.Features,
		&p.Duration,
		&p.IsActive,
		&p.QRCodeImage,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	if p.Features == nil {
		p.Features = []string{}
	}
	return &p, nil
}

func (r *PgRepository) Create(ctx context.Context, p *Plan) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO subscription_plans (id, name, description, price, features, duration, is_active, qr_code_image, created_at, updated_at)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8, $9, $10)
	`, p.ID, p.Name, p.Description, p.Price.StringFixed(2), p.Features, p.Duration, p.IsActive, p.QRCodeImage, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

func (r *PgRepository) Get(ctx context.Context, id uuid.UUID) (*Plan, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+planColumns+` FROM subscription_plans WHERE id = $1`, id)
	return scanPlan(row)
}

func (r *PgRepository) Update(ctx context.Context, p *Plan) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE subscription_plans
		SET name = $2,
		    description = $3,
		    price = $4::numeric,
		    features = $5,
		    duration = $6,
		    is_active = $7,
		    qr_code_image = $8,
		    updated_at = $9
		WHERE id = $1
	`, p.ID, p.Name, p.Description, p.Price.StringFixed(2), p.Features, p.Duration, p.IsActive, p.QRCodeImage, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func (r *PgRepository) ListActive(ctx context.Context) ([]Plan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+planColumns+`
		FROM subscription_plans
		WHERE is_active
		ORDER BY price, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
