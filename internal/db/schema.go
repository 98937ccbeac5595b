package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Transactions live inside users.transaction_history; they are never rows of their own.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id                  UUID PRIMARY KEY,
	name                TEXT NOT NULL,
	email               TEXT NOT NULL UNIQUE,
	phone               TEXT NOT NULL DEFAULT '',
	roles               TEXT[] NOT NULL DEFAULT '{}',
	password_hash       TEXT NOT NULL DEFAULT '',
	balance             NUMERIC(14,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
	transaction_history JSONB NOT NULL DEFAULT '[]'::jsonb,
	version             BIGINT NOT NULL DEFAULT 0,
	created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS bookings (
	id                    UUID PRIMARY KEY,
	patient_id            UUID NOT NULL,
	doctor_id             UUID NOT NULL,
	appointment_type      TEXT NOT NULL,
	appointment_date      DATE NOT NULL,
	appointment_time      TEXT NOT NULL,
	patient_address       TEXT,
	distance_km           NUMERIC(8,2),
	clinic_id             UUID,
	selected_duration     INT,
	amount                NUMERIC(14,2) NOT NULL CHECK (amount > 0),
	payment_status        TEXT NOT NULL,
	payment_method        TEXT,
	payment_transaction   TEXT,
	payment_date          TIMESTAMPTZ,
	wallet_transaction_id TEXT,
	status                TEXT NOT NULL,
	notes                 TEXT NOT NULL DEFAULT '',
	rescheduled_from      UUID REFERENCES bookings(id),
	version               BIGINT NOT NULL DEFAULT 0,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS bookings_patient_idx ON bookings (patient_id, appointment_date DESC);
CREATE INDEX IF NOT EXISTS bookings_booked_idx ON bookings (appointment_date) WHERE status = 'booked';

CREATE TABLE IF NOT EXISTS booking_events (
	id         BIGSERIAL PRIMARY KEY,
	event_type TEXT NOT NULL,
	booking_id UUID,
	payload    JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS subscription_plans (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL,
	description   TEXT NOT NULL,
	price         NUMERIC(14,2) NOT NULL CHECK (price >= 0),
	features      TEXT[] NOT NULL DEFAULT '{}',
	duration      TEXT NOT NULL,
	is_active     BOOLEAN NOT NULL DEFAULT true,
	qr_code_image TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the tables this service owns if they are missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
