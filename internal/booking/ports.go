package booking

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hackgods/care-wallet-scheduling/internal/wallet"
)

//go:generate mockgen -destination=mocks/mock_booking.go -package=mocks . Ledger,Pricer

// Ledger is the part of the wallet service bookings pay through.
type Ledger interface {
	OpenPendingDebit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*wallet.Transaction, error)
	GetTransaction(ctx context.Context, userID uuid.UUID, txID string) (*wallet.Transaction, error)
	ResolveDebit(ctx context.Context, req wallet.ResolveRequest) (*wallet.Transaction, error)
	Credit(ctx context.Context, req wallet.CreditRequest) (*wallet.Transaction, error)
}

// Pricer supplies the amount charged for a booking.
type Pricer interface {
	Quote(ctx context.Context, req PriceRequest) (decimal.Decimal, error)
}

type PriceRequest struct {
	AppointmentType  AppointmentType
	DoctorID         uuid.UUID
	DistanceInKm     decimal.Decimal
	SelectedDuration int
}
