package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/hackgods/care-wallet-scheduling/internal/apperr"
	"github.com/hackgods/care-wallet-scheduling/internal/lock"
	"github.com/hackgods/care-wallet-scheduling/internal/wallet"
)

type Service struct {
	repo         Repository
	ledger       Ledger
	pricer       Pricer
	locker       lock.Locker
	storeTimeout time.Duration
	now          func() time.Time
}

func NewService(repo Repository, ledger Ledger, pricer Pricer, locker lock.Locker, storeTimeout time.Duration) *Service {
	return &Service{
		repo:         repo,
		ledger:       ledger,
		pricer:       pricer,
		locker:       locker,
		storeTimeout: storeTimeout,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type CreateRequest struct {
	PatientID       uuid.UUID
	DoctorID        uuid.UUID
	AppointmentType AppointmentType
	AppointmentDate string
	AppointmentTime string

	PatientAddress   string
	DistanceInKm     *decimal.Decimal
	ClinicID         *uuid.UUID
	SelectedDuration int

	Notes         string
	PaymentMethod string
}

type RecordPaymentRequest struct {
	BookingID     uuid.UUID
	Method        string
	TransactionID string
	Outcome       PaymentStatus
}

// CreateBooking validates the modality fields, prices the booking and stores
// it as booked with a pending payment. With the wallet payment method a
// pending debit is opened first; if the booking cannot be stored that debit
// is rejected again.
func (s *Service) CreateBooking(ctx context.Context, req CreateRequest) (*Booking, error) {
	if req.PatientID == uuid.Nil || req.DoctorID == uuid.Nil {
		return nil, apperr.Wrap(apperr.KindValidation, "patient_id and doctor_id are required", ErrValidation)
	}
	if !req.AppointmentType.valid() {
		return nil, modalityError(fmt.Sprintf("unknown appointment_type %q", req.AppointmentType))
	}
	date, clock, err := parseSchedule(req.AppointmentDate, req.AppointmentTime)
	if err != nil {
		return nil, err
	}
	if err := validateModality(req); err != nil {
		return nil, err
	}

	amount, err := s.quote(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.now()
	b := &Booking{
		ID:               uuid.New(),
		PatientID:        req.PatientID,
		DoctorID:         req.DoctorID,
		AppointmentType:  req.AppointmentType,
		AppointmentDate:  date,
		AppointmentTime:  clock,
		SelectedDuration: req.SelectedDuration,
		Amount:           amount,
		PaymentStatus:    PaymentPending,
		Status:           StatusBooked,
		Notes:            strings.TrimSpace(req.Notes),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	switch req.AppointmentType {
	case TypeHomeVisit:
		b.PatientAddress = strings.TrimSpace(req.PatientAddress)
		d := *req.DistanceInKm
		b.DistanceInKm = &d
	case TypeClinicVisit:
		id := *req.ClinicID
		b.ClinicID = &id
	}
	if req.AppointmentType != TypeOnlineVisit {
		b.SelectedDuration = 0
	}

	if req.PaymentMethod == MethodWallet {
		desc := fmt.Sprintf("booking:%s %s", b.ID, b.AppointmentType)
		tx, err := s.ledger.OpenPendingDebit(ctx, b.PatientID, amount, desc)
		if err != nil {
			return nil, err
		}
		b.WalletTransactionID = tx.ID
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	if err := s.repo.Create(storeCtx, b); err != nil {
		if b.WalletTransactionID != "" {
			s.releaseDebit(ctx, b, "booking could not be stored")
		}
		return nil, apperr.Store("booking store unavailable", fmt.Errorf("create booking: %w", err))
	}

	s.logEvent(ctx, b.ID, EventBookingCreated, map[string]any{
		"patient_id":            b.PatientID.String(),
		"doctor_id":             b.DoctorID.String(),
		"appointment_type":      b.AppointmentType,
		"amount":                b.Amount.String(),
		"wallet_transaction_id": b.WalletTransactionID,
	})

	return b, nil
}

func (s *Service) quote(ctx context.Context, req CreateRequest) (decimal.Decimal, error) {
	pr := PriceRequest{
		AppointmentType:  req.AppointmentType,
		DoctorID:         req.DoctorID,
		SelectedDuration: req.SelectedDuration,
		DistanceInKm:     decimal.Zero,
	}
	if req.DistanceInKm != nil {
		pr.DistanceInKm = *req.DistanceInKm
	}

	amount, err := s.pricer.Quote(ctx, pr)
	if err != nil {
		return decimal.Zero, apperr.Store("pricing unavailable", fmt.Errorf("quote booking: %w", err))
	}
	if !validAmount(amount) {
		return decimal.Zero, ErrInvalidAmount
	}
	return amount, nil
}

// RecordPayment stores the payment outcome reported by the gateway or the
// ledger. Cancelled bookings accept no payment changes and a paid booking
// stays paid. A booking that opened a wallet debit is settled only through
// that debit, and counts as paid once it completed for the booking amount.
func (s *Service) RecordPayment(ctx context.Context, req RecordPaymentRequest) (*Booking, error) {
	if req.Outcome != PaymentPaid && req.Outcome != PaymentFailed {
		return nil, apperr.Wrap(apperr.KindValidation, "outcome must be paid or failed", ErrValidation)
	}
	method := strings.TrimSpace(req.Method)
	if method == "" {
		return nil, apperr.Wrap(apperr.KindValidation, "payment method is required", ErrValidation)
	}

	var updated *Booking
	err := s.withBooking(ctx, req.BookingID, func(storeCtx context.Context, b *Booking) error {
		switch {
		case b.Status == StatusCancelled:
			return apperr.Wrap(apperr.KindInvalidState, "booking is cancelled", ErrInvalidState)
		case b.Status == StatusRescheduled:
			return apperr.Wrap(apperr.KindInvalidState, "booking was rescheduled", ErrInvalidState)
		case b.PaymentStatus == PaymentPaid:
			return apperr.Wrap(apperr.KindInvalidState, "booking is already paid", ErrInvalidState)
		}

		txID := strings.TrimSpace(req.TransactionID)
		switch {
		case b.WalletTransactionID != "":
			if method != MethodWallet {
				return apperr.Wrap(apperr.KindInvalidState, "booking is settled through its wallet debit", ErrInvalidState)
			}
			if txID == "" {
				txID = b.WalletTransactionID
			}
			if txID != b.WalletTransactionID {
				return apperr.Wrap(apperr.KindValidation, "transaction does not belong to this booking", ErrValidation)
			}
			if req.Outcome == PaymentPaid {
				if err := s.requireCompleted(storeCtx, b, txID); err != nil {
					return err
				}
			}
		case method == MethodWallet:
			return apperr.Wrap(apperr.KindInvalidState, "booking has no wallet debit", ErrInvalidState)
		}

		now := s.now()
		b.PaymentStatus = req.Outcome
		b.PaymentDetails = &PaymentDetails{Method: method, TransactionID: txID, PaymentDate: &now}
		b.UpdatedAt = now
		if err := s.repo.Update(storeCtx, b); err != nil {
			return apperr.Store("booking store unavailable", fmt.Errorf("record payment: %w", err))
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, updated.ID, EventBookingPaymentRecorded, map[string]any{
		"outcome":        updated.PaymentStatus,
		"method":         method,
		"transaction_id": updated.PaymentDetails.TransactionID,
	})
	return updated, nil
}

func (s *Service) requireCompleted(ctx context.Context, b *Booking, txID string) error {
	tx, err := s.ledger.GetTransaction(ctx, b.PatientID, txID)
	if err != nil {
		return err
	}
	if tx.Type != wallet.TypeDebit || tx.Status != wallet.StatusCompleted {
		return ErrPaymentNotSettled
	}
	if !tx.Amount.Equal(b.Amount) {
		return apperr.Wrap(apperr.KindInvalidState,
			fmt.Sprintf("debit of %s does not cover booking amount %s", tx.Amount.StringFixed(2), b.Amount.StringFixed(2)),
			ErrPaymentNotSettled)
	}
	return nil
}

// TransitionStatus moves a booked booking to completed, cancelled or
// rescheduled. Everything else is an invalid transition. Cancelling releases
// a still-pending wallet debit and refunds one that already completed.
func (s *Service) TransitionStatus(ctx context.Context, id uuid.UUID, to Status) (*Booking, error) {
	if !to.valid() {
		return nil, apperr.Wrap(apperr.KindValidation, fmt.Sprintf("unknown status %q", to), ErrValidation)
	}

	var (
		updated *Booking
		from    Status
	)
	err := s.withBooking(ctx, id, func(storeCtx context.Context, b *Booking) error {
		if !canTransition(b.Status, to) {
			return apperr.Wrap(apperr.KindInvalidTransition,
				fmt.Sprintf("cannot move booking from %s to %s", b.Status, to), ErrInvalidTransition)
		}
		from = b.Status
		b.Status = to
		b.UpdatedAt = s.now()
		if err := s.repo.Update(storeCtx, b); err != nil {
			return apperr.Store("booking store unavailable", fmt.Errorf("transition booking: %w", err))
		}
		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	if to == StatusCancelled && updated.WalletTransactionID != "" {
		s.unwindDebit(ctx, updated)
	}

	s.logEvent(ctx, updated.ID, EventBookingStatusChanged, map[string]any{
		"from": from,
		"to":   to,
	})
	return updated, nil
}

// Reschedule retires a booked booking and stores its replacement at the new
// date and time. Both writes land in one store transaction.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, date, clock string) (*Booking, error) {
	newDate, newClock, err := parseSchedule(date, clock)
	if err != nil {
		return nil, err
	}

	var replacement *Booking
	err = s.withBooking(ctx, id, func(storeCtx context.Context, b *Booking) error {
		if !canTransition(b.Status, StatusRescheduled) {
			return apperr.Wrap(apperr.KindInvalidTransition,
				fmt.Sprintf("cannot reschedule a %s booking", b.Status), ErrInvalidTransition)
		}

		now := s.now()
		next := b.clone()
		next.ID = uuid.New()
		next.AppointmentDate = newDate
		next.AppointmentTime = newClock
		next.Status = StatusBooked
		prev := b.ID
		next.RescheduledFrom = &prev
		next.Version = 0
		next.CreatedAt = now
		next.UpdatedAt = now

		b.Status = StatusRescheduled
		b.UpdatedAt = now

		if err := s.repo.Supersede(storeCtx, b, next); err != nil {
			return apperr.Store("booking store unavailable", fmt.Errorf("reschedule booking: %w", err))
		}
		replacement = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logEvent(ctx, id, EventBookingRescheduled, map[string]any{
		"replacement_id":   replacement.ID.String(),
		"appointment_date": replacement.Date(),
		"appointment_time": replacement.AppointmentTime,
	})
	return replacement, nil
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	b, err := s.repo.Get(storeCtx, id)
	if err != nil {
		return nil, apperr.Store("booking store unavailable", err)
	}
	return b, nil
}

// ListByPatient retrieves bookings for a specific patient, newest appointment first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]Booking, error) {
	if limit <= 0 {
		limit = 20 // default
	}
	if limit > 100 {
		limit = 100 // max
	}
	if offset < 0 {
		offset = 0
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	bookings, err := s.repo.ListByPatient(storeCtx, patientID, limit, offset)
	if err != nil {
		return nil, apperr.Store("booking store unavailable", fmt.Errorf("list bookings by patient: %w", err))
	}
	if bookings == nil {
		bookings = []Booking{}
	}
	return bookings, nil
}

// CompleteElapsed marks booked bookings that started more than grace ago as
// completed. It is intended to be called by the worker periodically.
func (s *Service) CompleteElapsed(ctx context.Context, grace time.Duration) (int, error) {
	cutoff := s.now().Add(-grace)

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	candidates, err := s.repo.FindElapsed(storeCtx, cutoff)
	cancel()
	if err != nil {
		return 0, apperr.Store("booking store unavailable", fmt.Errorf("find elapsed bookings: %w", err))
	}

	completed := 0
	for _, c := range candidates {
		_, err := s.TransitionStatus(ctx, c.ID, StatusCompleted)
		if err != nil {
			if errors.Is(err, ErrInvalidTransition) {
				continue
			}
			log.Warn().Err(err).Str("booking_id", c.ID.String()).Msg("failed to complete booking")
			continue
		}
		completed++
	}
	return completed, nil
}

// withBooking runs fn on a fresh copy of the booking under the per-booking lock.
func (s *Service) withBooking(ctx context.Context, id uuid.UUID, fn func(storeCtx context.Context, b *Booking) error) error {
	return s.locker.WithLock(ctx, lock.BookingKey(id.String()), func(lockCtx context.Context) error {
		storeCtx, cancel := context.WithTimeout(lockCtx, s.storeTimeout)
		defer cancel()

		b, err := s.repo.Get(storeCtx, id)
		if err != nil {
			return apperr.Store("booking store unavailable", err)
		}
		return fn(storeCtx, b)
	})
}

func (s *Service) releaseDebit(ctx context.Context, b *Booking, reason string) {
	ctx = context.WithoutCancel(ctx)
	_, err := s.ledger.ResolveDebit(ctx, wallet.ResolveRequest{
		UserID:        b.PatientID,
		TransactionID: b.WalletTransactionID,
		Decision:      wallet.DecisionReject,
		Description:   &reason,
		ResolvedBy:    "system",
	})
	if err != nil && !errors.Is(err, wallet.ErrInvalidState) {
		log.Error().Err(err).
			Str("booking_id", b.ID.String()).
			Str("transaction_id", b.WalletTransactionID).
			Msg("failed to release wallet debit")
	}
}

// unwindDebit returns a cancelled booking's money. A pending debit is
// rejected; a completed one is refunded by a credit that references it.
func (s *Service) unwindDebit(ctx context.Context, b *Booking) {
	ctx = context.WithoutCancel(ctx)
	reason := "booking cancelled"
	_, err := s.ledger.ResolveDebit(ctx, wallet.ResolveRequest{
		UserID:        b.PatientID,
		TransactionID: b.WalletTransactionID,
		Decision:      wallet.DecisionReject,
		Description:   &reason,
		ResolvedBy:    "system",
	})
	if err == nil {
		return
	}
	logger := log.With().
		Str("booking_id", b.ID.String()).
		Str("transaction_id", b.WalletTransactionID).
		Logger()
	if !errors.Is(err, wallet.ErrInvalidState) {
		logger.Error().Err(err).Msg("failed to release wallet debit")
		return
	}

	debit, err := s.ledger.GetTransaction(ctx, b.PatientID, b.WalletTransactionID)
	if err != nil {
		logger.Error().Err(err).Msg("failed to load wallet debit for refund")
		return
	}
	if debit.Status != wallet.StatusCompleted {
		return
	}

	refund, err := s.ledger.Credit(ctx, wallet.CreditRequest{
		UserID:      b.PatientID,
		Amount:      debit.Amount,
		Description: fmt.Sprintf("refund: booking %s cancelled", b.ID),
		ReferenceID: debit.ID,
	})
	if err != nil {
		logger.Error().Err(err).Str("amount", debit.Amount.StringFixed(2)).Msg("failed to refund wallet debit")
		return
	}
	logger.Info().Str("refund_id", refund.ID).Str("amount", refund.Amount.StringFixed(2)).Msg("wallet debit refunded")
}

func (s *Service) logEvent(ctx context.Context, bookingID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		data = nil
	}

	id := bookingID
	ev := EventLog{
		EventType: eventType,
		BookingID: &id,
		Payload:   data,
		CreatedAt: s.now(),
	}

	evCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.storeTimeout)
	defer cancel()

	if err := s.repo.InsertEvent(evCtx, ev); err != nil {
		log.Warn().Err(err).
			Str("event_type", eventType).
			Str("booking_id", bookingID.String()).
			Msg("failed to insert booking event")
	}
}
