package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/care-wallet-scheduling/internal/apperr"
)

var (
	ErrValidation            = apperr.New(apperr.KindValidation, "invalid booking request")
	ErrInvalidModalityFields = apperr.New(apperr.KindValidation, "invalid modality fields")
	ErrInvalidAmount         = apperr.New(apperr.KindValidation, "booking amount must be positive")
	ErrBookingNotFound       = apperr.New(apperr.KindNotFound, "booking not found")
	ErrInvalidState          = apperr.New(apperr.KindInvalidState, "booking does not accept this change in its current state")
	ErrInvalidTransition     = apperr.New(apperr.KindInvalidTransition, "invalid status transition")
	ErrPaymentNotSettled     = apperr.New(apperr.KindInvalidState, "wallet transaction is not completed")
	ErrConcurrentUpdate      = apperr.New(apperr.KindTransient, "booking was modified concurrently, please retry")
)

// Repository contains all storage interactions the booking service needs.
type Repository interface {
	Create(ctx context.Context, b *Booking) error
	Get(ctx context.Context, id uuid.UUID) (*Booking, error)

	// Update persists payment, status and notes if b.Version still matches,
	// then bumps b.Version. Otherwise ErrConcurrentUpdate.
	Update(ctx context.Context, b *Booking) error

	// Supersede updates old and inserts its replacement in one transaction.
	Supersede(ctx context.Context, old, replacement *Booking) error

	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Booking, error)

	// Completion worker
	FindElapsed(ctx context.Context, cutoff time.Time) ([]Booking, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
