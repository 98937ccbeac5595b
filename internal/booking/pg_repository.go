package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

const bookingColumns = `
	id, patient_id, doctor_id, appointment_type, appointment_date, appointment_time,
	patient_address, distance_km::text, clinic_id, selected_duration,
	amount::text, payment_status, payment_method, payment_transaction, payment_date,
	wallet_transaction_id, status, notes, rescheduled_from, version, created_at, updated_at`

// Helpers

func scanBooking(row pgx.Row) (*Booking, error) {
	var (
		b             Booking
		address       *string
		distance      *string
		duration      *int
		amount        string
		paymentMethod *string
		paymentTx     *string
		paymentDate   *time.Time
		walletTx      *string
	)

	err := row.Scan(
		&b.ID,
		&b.PatientID,
		&b.DoctorID,
		&b.AppointmentType,
		&b.AppointmentDate,
		&b.AppointmentTime,
		&address,
		&distance,
		&b.ClinicID,
		&duration,
		&amount,
		&b.PaymentStatus,
		&paymentMethod,
		&paymentTx,
		&paymentDate,
		&walletTx,
		&b.Status,
		&b.Notes,
		&b.RescheduledFrom,
		&b.Version,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}

	if b.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, fmt.Errorf("parse amount %q: %w", amount, err)
	}
	if distance != nil {
		d, err := decimal.NewFromString(*distance)
		if err != nil {
			return nil, fmt.Errorf("parse distance %q: %w", *distance, err)
		}
		b.DistanceInKm = &d
	}
	if address != nil {
		b.PatientAddress = *address
	}
	if duration != nil {
		b.SelectedDuration = *duration
	}
	if walletTx != nil {
		b.WalletTransactionID = *walletTx
	}
	if paymentMethod != nil {
		b.PaymentDetails = &PaymentDetails{Method: *paymentMethod, PaymentDate: paymentDate}
		if paymentTx != nil {
			b.PaymentDetails.TransactionID = *paymentTx
		}
	}
	return &b, nil
}

func scanBookings(rows pgx.Rows) ([]Booking, error) {
	defer rows.Close()

	var result []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// execer is satisfied by both the pool and a pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Interface methods

func (r *PgRepository) Create(ctx context.Context, b *Booking) error {
	return insertBooking(ctx, r.pool, b)
}

func insertBooking(ctx context.Context, db execer, b *Booking) error {
	var distance *string
	if b.DistanceInKm != nil {
		s := b.DistanceInKm.StringFixed(2)
		distance = &s
	}
	var duration *int
	if b.SelectedDuration != 0 {
		duration = &b.SelectedDuration
	}
	method, txID, paidAt := paymentColumns(b)

	_, err := db.Exec(ctx, `
		INSERT INTO bookings (
			id, patient_id, doctor_id, appointment_type, appointment_date, appointment_time,
			patient_address, distance_km, clinic_id, selected_duration,
			amount, payment_status, payment_method, payment_transaction, payment_date,
			wallet_transaction_id, status, notes, rescheduled_from, version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10, $11::numeric, $12, $13, $14, $15,
		        $16, $17, $18, $19, 0, $20, $21)
	`,
		b.ID, b.PatientID, b.DoctorID, b.AppointmentType, b.AppointmentDate, b.AppointmentTime,
		nullString(b.PatientAddress), distance, b.ClinicID, duration,
		b.Amount.StringFixed(2), b.PaymentStatus, method, txID, paidAt,
		nullString(b.WalletTransactionID), b.Status, b.Notes, b.RescheduledFrom, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	b.Version = 0
	return nil
}

func updateBooking(ctx context.Context, db execer, b *Booking) (pgconn.CommandTag, error) {
	method, txID, paidAt := paymentColumns(b)

	tag, err := db.Exec(ctx, `
		UPDATE bookings
		SET payment_status = $2,
		    payment_method = $3,
		    payment_transaction = $4,
		    payment_date = $5,
		    status = $6,
		    notes = $7,
		    version = version + 1,
		    updated_at = $8
		WHERE id = $1
		  AND version = $9
	`, b.ID, b.PaymentStatus, method, txID, paidAt, b.Status, b.Notes, b.UpdatedAt, b.Version)
	if err != nil {
		return tag, fmt.Errorf("update booking: %w", err)
	}
	return tag, nil
}

func (r *PgRepository) Get(ctx context.Context, id uuid.UUID) (*Booking, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

func (r *PgRepository) Update(ctx context.Context, b *Booking) error {
	tag, err := updateBooking(ctx, r.pool, b)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.missOrConflict(ctx, b.ID)
	}
	b.Version++
	return nil
}

func (r *PgRepository) Supersede(ctx context.Context, old, replacement *Booking) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reschedule: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	tag, err := updateBooking(ctx, tx, old)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.missOrConflict(ctx, old.ID)
	}
	if err := insertBooking(ctx, tx, replacement); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reschedule: %w", err)
	}
	old.Version++
	return nil
}

func (r *PgRepository) missOrConflict(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check booking: %w", err)
	}
	if !exists {
		return ErrBookingNotFound
	}
	return ErrConcurrentUpdate
}

func (r *PgRepository) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE patient_id = $1
		ORDER BY appointment_date DESC, appointment_time DESC
		LIMIT $2 OFFSET $3
	`, patientID, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

func (r *PgRepository) FindElapsed(ctx context.Context, cutoff time.Time) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+bookingColumns+`
		FROM bookings
		WHERE status = 'booked'
		  AND appointment_date + appointment_time::time < $1::timestamp
		ORDER BY appointment_date, appointment_time
		LIMIT 500
	`, cutoff.UTC())
	if err != nil {
		return nil, err
	}
	return scanBookings(rows)
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO booking_events (event_type, booking_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.BookingID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert booking event: %w", err)
	}

	return nil
}

func paymentColumns(b *Booking) (method, txID *string, paidAt *time.Time) {
	if b.PaymentDetails == nil {
		return nil, nil, nil
	}
	return nullString(b.PaymentDetails.Method), nullString(b.PaymentDetails.TransactionID), b.PaymentDetails.PaymentDate
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
