package booking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/care-wallet-scheduling/internal/apperr"
	"github.com/hackgods/care-wallet-scheduling/internal/booking"
	"github.com/hackgods/care-wallet-scheduling/internal/booking/mocks"
	"github.com/hackgods/care-wallet-scheduling/internal/lock"
	"github.com/hackgods/care-wallet-scheduling/internal/wallet"
)

type harness struct {
	svc    *booking.Service
	repo   *booking.MemoryRepository
	ledger *mocks.MockLedger
	pricer *mocks.MockPricer
}

func newHarness(t *testing.T) harness {
	t.Helper()
	ctrl := gomock.NewController(t)
	h := harness{
		repo:   booking.NewMemoryRepository(),
		ledger: mocks.NewMockLedger(ctrl),
		pricer: mocks.NewMockPricer(ctrl),
	}
	h.svc = booking.NewService(h.repo, h.ledger, h.pricer, lock.NewLocal(), time.Second)
	return h
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func emergencyRequest() booking.CreateRequest {
	return booking.CreateRequest{
		PatientID:       uuid.New(),
		DoctorID:        uuid.New(),
		AppointmentType: booking.TypeEmergency,
		AppointmentDate: "2031-04-12",
		AppointmentTime: "09:30",
	}
}

func (h harness) createBooked(t *testing.T) *booking.Booking {
	t.Helper()
	h.pricer.EXPECT().Quote(gomock.Any(), gomock.Any()).Return(dec("120.00"), nil)
	b, err := h.svc.CreateBooking(context.Background(), emergencyRequest())
	require.NoError(t, err)
	return b
}

type decisionMatcher struct{ want wallet.Decision }

func (m decisionMatcher) Matches(x interface{}) bool {
	req, ok := x.(wallet.ResolveRequest)
	return ok && req.Decision == m.want
}

func (m decisionMatcher) String() string { return "resolve request with decision " + string(m.want) }

func TestCreateBookingRejectsMissingModalityFields(t *testing.T) {
	negative := dec("-3")
	distance := dec("4.5")

	tests := []struct {
		name    string
		mutate  func(r *booking.CreateRequest)
		wantErr error
	}{
		{
			name: "home visit without address",
			mutate: func(r *booking.CreateRequest) {
				r.AppointmentType = booking.TypeHomeVisit
				r.DistanceInKm = &distance
			},
			wantErr: booking.ErrInvalidModalityFields,
		},
		{
			name: "home visit with negative distance",
			mutate: func(r *booking.CreateRequest) {
				r.AppointmentType = booking.TypeHomeVisit
				r.PatientAddress = "12 Allen Avenue"
				r.DistanceInKm = &negative
			},
			wantErr: booking.ErrInvalidModalityFields,
		},
		{
			name: "online visit with unsupported duration",
			mutate: func(r *booking.CreateRequest) {
				r.AppointmentType = booking.TypeOnlineVisit
				r.SelectedDuration = 20
			},
			wantErr: booking.ErrInvalidModalityFields,
		},
		{
			name: "clinic visit without clinic",
			mutate: func(r *booking.CreateRequest) {
				r.AppointmentType = booking.TypeClinicVisit
			},
			wantErr: booking.ErrInvalidModalityFields,
		},
		{
			name:    "unknown type",
			mutate:  func(r *booking.CreateRequest) { r.AppointmentType = "Teleport" },
			wantErr: booking.ErrInvalidModalityFields,
		},
		{
			name:    "bad date",
			mutate:  func(r *booking.CreateRequest) { r.AppointmentDate = "12/04/2031" },
			wantErr: booking.ErrValidation,
		},
		{
			name:    "bad time",
			mutate:  func(r *booking.CreateRequest) { r.AppointmentTime = "9.30am" },
			wantErr: booking.ErrValidation,
		},
		{
			name:    "missing doctor",
			mutate:  func(r *booking.CreateRequest) { r.DoctorID = uuid.Nil },
			wantErr: booking.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			req := emergencyRequest()
			tt.mutate(&req)

			_, err := h.svc.CreateBooking(context.Background(), req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestCreateBookingStoresPricedBooking(t *testing.T) {
	h := newHarness(t)
	clinic := uuid.New()
	req := emergencyRequest()
	req.AppointmentType = booking.TypeClinicVisit
	req.ClinicID = &clinic
	req.Notes = "  first visit "

	h.pricer.EXPECT().
		Quote(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, pr booking.PriceRequest) (decimal.Decimal, error) {
			assert.Equal(t, booking.TypeClinicVisit, pr.AppointmentType)
			return dec("50.00"), nil
		})

	b, err := h.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, booking.StatusBooked, b.Status)
	assert.Equal(t, booking.PaymentPending, b.PaymentStatus)
	assert.True(t, b.Amount.Equal(dec("50")))
	assert.Equal(t, "first visit", b.Notes)
	assert.Equal(t, "2031-04-12", b.Date())
	assert.Empty(t, b.WalletTransactionID)

	stored, err := h.svc.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, clinic, *stored.ClinicID)

	events := h.repo.Events()
	require.Len(t, events, 1)
	assert.Equal(t, booking.EventBookingCreated, events[0].EventType)
}

func TestCreateBookingRejectsNonPositivePrice(t *testing.T) {
	h := newHarness(t)
	h.pricer.EXPECT().Quote(gomock.Any(), gomock.Any()).Return(decimal.Zero, nil)

	_, err := h.svc.CreateBooking(context.Background(), emergencyRequest())

	assert.ErrorIs(t, err, booking.ErrInvalidAmount)
}

func TestCreateBookingPricingFailureIsTransient(t *testing.T) {
	h := newHarness(t)
	h.pricer.EXPECT().Quote(gomock.Any(), gomock.Any()).Return(decimal.Zero, errors.New("tariff service timeout"))

	_, err := h.svc.CreateBooking(context.Background(), emergencyRequest())

	assert.Equal(t, apperr.KindTransient, apperr.KindOf(err))
}

func TestCreateBookingWithWalletOpensDebit(t *testing.T) {
	h := newHarness(t)
	req := emergencyRequest()
	req.PaymentMethod = booking.MethodWallet

	h.pricer.EXPECT().Quote(gomock.Any(), gomock.Any()).Return(dec("120.00"), nil)
	h.ledger.EXPECT().
		OpenPendingDebit(gomock.Any(), req.PatientID, gomock.Any(), gomock.Any()).
		Return(&wallet.Transaction{ID: "01J0WALLETDEBIT", Type: wallet.TypeDebit, Status: wallet.StatusPending}, nil)

	b, err := h.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "01J0WALLETDEBIT", b.WalletTransactionID)
	assert.Equal(t, booking.PaymentPending, b.PaymentStatus)
}

type failingCreateRepo struct {
	*booking.MemoryRepository
}

func (failingCreateRepo) Create(context.Context, *booking.Booking) error {
	return errors.New("pq: connection refused")
}

func TestCreateBookingReleasesDebitWhenStoreFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	ledger := mocks.NewMockLedger(ctrl)
	pricer := mocks.NewMockPricer(ctrl)
	svc := booking.NewService(failingCreateRepo{booking.NewMemoryRepository()}, ledger, pricer, lock.NewLocal(), time.Second)

	req := emergencyRequest()
	req.PaymentMethod = booking.MethodWallet
	pricer.EXPECT().Quote(gomock.Any(), gomock.Any()).Return(dec("120.00"), nil)
	ledger.EXPECT().OpenPendingDebit(gomock.Any(), req.PatientID, gomock.Any(), gomock.Any()).
		Return(&wallet.Transaction{ID: "01J0DEBIT"}, nil)
	ledger.EXPECT().ResolveDebit(gomock.Any(), decisionMatcher{want: wallet.DecisionReject}).
		Return(&wallet.Transaction{ID: "01J0DEBIT", Status: wallet.StatusFailed}, nil)

	_, err := svc.CreateBooking(context.Background(), req)

	assert.Equal(t, apperr.KindTransient, apperr.KindOf(err))
	assert.NotContains(t, apperr.PublicMessage(err), "pq:")
}

func TestRecordPaymentOnCancelledBooking(t *testing.T) {
	h := newHarness(t)
	b := h.createBooked(t)
	_, err := h.svc.TransitionStatus(context.Background(), b.ID, booking.StatusCancelled)
	require.NoError(t, err)

	_, err = h.svc.RecordPayment(context.Background(), booking.RecordPaymentRequest{
		BookingID:     b.ID,
		Method:        "card",
		TransactionID: "ch_123",
		Outcome:       booking.PaymentPaid,
	})

	assert.ErrorIs(t, err, booking.ErrInvalidState)
	stored, _ := h.svc.GetBooking(context.Background(), b.ID)
	assert.Equal(t, booking.PaymentPending, stored.PaymentStatus)
	assert.Nil(t, stored.PaymentDetails)
}

func TestRecordPaymentGateway(t *testing.T) {
	h := newHarness(t)
	b := h.createBooked(t)

	failed, err := h.svc.RecordPayment(context.Background(), booking.RecordPaymentRequest{
		BookingID: b.ID, Method: "card", TransactionID: "ch_1", Outcome: booking.PaymentFailed,
	})
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentFailed, failed.PaymentStatus)

	paid, err := h.svc.RecordPayment(context.Background(), booking.RecordPaymentRequest{
		BookingID: b.ID, Method: "card", TransactionID: "ch_2", Outcome: booking.PaymentPaid,
	})
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, "ch_2", paid.PaymentDetails.TransactionID)
	assert.NotNil(t, paid.PaymentDetails.PaymentDate)

	_, err = h.svc.RecordPayment(context.Background(), booking.RecordPaymentRequest{
		BookingID: b.ID, Method: "card", TransactionID: "ch_3", Outcome: booking.PaymentFailed,
	})
	assert.ErrorIs(t, err, booking.ErrInvalidState)
}

func TestRecordPaymentWalletNeedsCompletedDebit(t *testing.T) {
	h := newHarness(t)
	req := emergencyRequest()
	req.PaymentMethod = booking.MethodWallet
	h.pricer.EXPECT().Quote(gomock.Any(), gomock.Any()).Return(dec("120.00"), nil)
	h.ledger.EXPECT().OpenPendingDebit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(&wallet.Transaction{ID: "01J0DEBIT"}, nil)
	b, err := h.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)

	gomock.InOrder(
		h.ledger.EXPECT().GetTransaction(gomock.Any(), req.PatientID, "01J0DEBIT").
			Return(&wallet.Transaction{ID: "01J0DEBIT", Type: wallet.TypeDebit, Amount: dec("120.00"), Status: wallet.StatusPending}, nil),
		h.ledger.EXPECT().GetTransaction(gomock.Any(), req.PatientID, "01J0DEBIT").
			Return(&wallet.Transaction{ID: "01J0DEBIT", Type: wallet.TypeDebit, Amount: dec("120.00"), Status: wallet.StatusCompleted}, nil),
	)

	payment := booking.RecordPaymentRequest{BookingID: b.ID, Method: booking.MethodWallet, Outcome: booking.PaymentPaid}

	_, err = h.svc.RecordPayment(context.Background(), payment)
	assert.ErrorIs(t, err, booking.ErrPaymentNotSettled)

	paid, err := h.svc.RecordPayment(context.Background(), payment)
	require.NoError(t, err)
	assert.Equal(t, booking.PaymentPaid, paid.PaymentStatus)
	assert.Equal(t, "01J0DEBIT", paid.PaymentDetails.TransactionID)
}

func (h harness) createWalletBooked(t *testing.T, debitID string) *booking.Booking {
	t.Helper()
	req := emergencyRequest()
	req.PaymentMethod = booking.MethodWallet
	h.pricer.EXPECT().Quote(gomock.Any(), gomock.Any()).Return(dec("120.00"), nil)
	h.ledger.EXPECT().OpenPendingDebit(gomock.Any(), req.PatientID, gomock.Any(), gomock.Any()).
		Return(&wallet.Transaction{ID: debitID, Type: wallet.TypeDebit, Amount: dec("120.00"), Status: wallet.StatusPending}, nil)
	b, err := h.svc.CreateBooking(context.Background(), req)
	require.NoError(t, err)
	return b
}

func TestRecordPaymentWalletOnlyAcceptsOwnDebit(t *testing.T) {
	h := newHarness(t)
	first := h.createWalletBooked(t, "01J0FIRST")
	second := h.createWalletBooked(t, "01J0SECOND")

	// A completed debit of the patient that belongs to another booking.
	_, err := h.svc.RecordPayment(context.Background(), booking.RecordPaymentRequest{
		BookingID: first.ID, Method: booking.MethodWallet, TransactionID: "01J0SECOND", Outcome: booking.PaymentPaid,
	})
	assert.ErrorIs(t, err, booking.ErrValidation)

	_, err = h.svc.RecordPayment(context.Background(), booking.RecordPaymentRequest{
		BookingID: second.ID, Method: booking.MethodWallet, TransactionID: "01J0OTHER", Outcome: booking.PaymentPaid,
	})
	assert.ErrorIs(t, err, booking.ErrValidation)

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		stored, _ := h.svc.GetBooking(context.Background(), id)
		assert.Equal(t, booking.PaymentPending, stored.PaymentStatus)
		assert.Nil(t, stored.PaymentDetails)
	}
}

func TestRecordPaymentWalletRejectsShortDebit(t *testing.T) {
	h := newHarness(t)
	b := h.createWalletBooked(t, "01J0DEBIT")

	h.ledger.EXPECT().GetTransaction(gomock.Any(), b.PatientID, "01J0DEBIT").
		Return(&wallet.Transaction{ID: "01J0DEBIT", Type: wallet.TypeDebit, Amount: dec("1.00"), Status: wallet.StatusCompleted}, nil)

	_, err := h.svc.RecordPayment(context.Background(), booking.RecordPaymentRequest{
		BookingID: b.ID, Method: booking.MethodWallet, Outcome: booking.PaymentPaid,
	})

	assert.ErrorIs(t, err, booking.ErrPaymentNotSettled)
	assert.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestRecordPaymentWalletNeedsWalletBooking(t *testing.T) {
	h := newHarness(t)
	b := h.createBooked(t)

	_, err := h.svc.RecordPayment(context.Background(), booking.RecordPaymentRequest{
		BookingID: b.ID, Method: booking.MethodWallet, TransactionID: "01J0UNRELATED", Outcome: booking.PaymentPaid,
	})

	assert.ErrorIs(t, err, booking.ErrInvalidState)
	stored, _ := h.svc.GetBooking(context.Background(), b.ID)
	assert.Equal(t, booking.PaymentPending, stored.PaymentStatus)
}

func TestRecordPaymentGatewayRefusedForWalletBooking(t *testing.T) {
	h := newHarness(t)
	b := h.createWalletBooked(t, "01J0DEBIT")

	for _, outcome := range []booking.PaymentStatus{booking.PaymentPaid, booking.PaymentFailed} {
		_, err := h.svc.RecordPayment(context.Background(), booking.RecordPaymentRequest{
			BookingID: b.ID, Method: "card", TransactionID: "ch_1", Outcome: outcome,
		})
		assert.ErrorIs(t, err, booking.ErrInvalidState)
	}

	stored, _ := h.svc.GetBooking(context.Background(), b.ID)
	assert.Equal(t, booking.PaymentPending, stored.PaymentStatus)
	assert.Nil(t, stored.PaymentDetails)
}

func TestRecordPaymentUnknownBooking(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.RecordPayment(context.Background(), booking.RecordPaymentRequest{
		BookingID: uuid.New(), Method: "card", Outcome: booking.PaymentPaid,
	})

	assert.ErrorIs(t, err, booking.ErrBookingNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestTransitionStatus(t *testing.T) {
	tests := []struct {
		name    string
		path    []booking.Status
		wantErr error
	}{
		{name: "booked to completed", path: []booking.Status{booking.StatusCompleted}},
		{name: "booked to cancelled", path: []booking.Status{booking.StatusCancelled}},
		{name: "booked to rescheduled", path: []booking.Status{booking.StatusRescheduled}},
		{name: "booked to booked", path: []booking.Status{booking.StatusBooked}, wantErr: booking.ErrInvalidTransition},
		{name: "completed is terminal", path: []booking.Status{booking.StatusCompleted, booking.StatusCancelled}, wantErr: booking.ErrInvalidTransition},
		{name: "cancelled is terminal", path: []booking.Status{booking.StatusCancelled, booking.StatusBooked}, wantErr: booking.ErrInvalidTransition},
		{name: "unknown status", path: []booking.Status{"archived"}, wantErr: booking.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			b := h.createBooked(t)

			var err error
			for _, next := range tt.path {
				_, err = h.svc.TransitionStatus(context.Background(), b.ID, next)
			}

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			stored, _ := h.svc.GetBooking(context.Background(), b.ID)
			assert.Equal(t, tt.path[len(tt.path)-1], stored.Status)
		})
	}
}

func TestCancelReleasesPendingWalletDebit(t *testing.T) {
	h := newHarness(t)
	b := h.createWalletBooked(t, "01J0DEBIT")

	h.ledger.EXPECT().ResolveDebit(gomock.Any(), decisionMatcher{want: wallet.DecisionReject}).
		Return(&wallet.Transaction{ID: "01J0DEBIT", Status: wallet.StatusFailed}, nil)

	cancelled, err := h.svc.TransitionStatus(context.Background(), b.ID, booking.StatusCancelled)

	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, cancelled.Status)
}

func TestCancelRefundsCompletedWalletDebit(t *testing.T) {
	h := newHarness(t)
	b := h.createWalletBooked(t, "01J0DEBIT")

	gomock.InOrder(
		h.ledger.EXPECT().ResolveDebit(gomock.Any(), decisionMatcher{want: wallet.DecisionReject}).
			Return(nil, apperr.Wrap(apperr.KindInvalidState, "transaction is completed", wallet.ErrInvalidState)),
		h.ledger.EXPECT().GetTransaction(gomock.Any(), b.PatientID, "01J0DEBIT").
			Return(&wallet.Transaction{ID: "01J0DEBIT", Type: wallet.TypeDebit, Amount: dec("120.00"), Status: wallet.StatusCompleted}, nil),
		h.ledger.EXPECT().Credit(gomock.Any(), wallet.CreditRequest{
			UserID:      b.PatientID,
			Amount:      dec("120.00"),
			Description: "refund: booking " + b.ID.String() + " cancelled",
			ReferenceID: "01J0DEBIT",
		}).Return(&wallet.Transaction{ID: "01J0REFUND", Type: wallet.TypeCredit, Amount: dec("120.00"), Status: wallet.StatusCompleted}, nil),
	)

	cancelled, err := h.svc.TransitionStatus(context.Background(), b.ID, booking.StatusCancelled)

	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, cancelled.Status)
}

func TestCancelSkipsRefundForRejectedDebit(t *testing.T) {
	h := newHarness(t)
	b := h.createWalletBooked(t, "01J0DEBIT")

	h.ledger.EXPECT().ResolveDebit(gomock.Any(), decisionMatcher{want: wallet.DecisionReject}).
		Return(nil, wallet.ErrInvalidState)
	h.ledger.EXPECT().GetTransaction(gomock.Any(), b.PatientID, "01J0DEBIT").
		Return(&wallet.Transaction{ID: "01J0DEBIT", Type: wallet.TypeDebit, Amount: dec("120.00"), Status: wallet.StatusFailed}, nil)

	_, err := h.svc.TransitionStatus(context.Background(), b.ID, booking.StatusCancelled)

	require.NoError(t, err)
}

func TestConcurrentTransitionsApplyOnce(t *testing.T) {
	h := newHarness(t)
	b := h.createBooked(t)

	targets := []booking.Status{booking.StatusCompleted, booking.StatusCancelled, booking.StatusRescheduled, booking.StatusCompleted, booking.StatusCancelled}
	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for _, to := range targets {
		wg.Add(1)
		go func(to booking.Status) {
			defer wg.Done()
			_, err := h.svc.TransitionStatus(context.Background(), b.ID, to)
			if err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, booking.ErrInvalidTransition)
		}(to)
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
}

func TestReschedule(t *testing.T) {
	h := newHarness(t)
	b := h.createBooked(t)

	next, err := h.svc.Reschedule(context.Background(), b.ID, "2031-05-01", "14:00")
	require.NoError(t, err)

	assert.NotEqual(t, b.ID, next.ID)
	assert.Equal(t, booking.StatusBooked, next.Status)
	assert.Equal(t, "2031-05-01", next.Date())
	assert.Equal(t, "14:00", next.AppointmentTime)
	require.NotNil(t, next.RescheduledFrom)
	assert.Equal(t, b.ID, *next.RescheduledFrom)
	assert.True(t, next.Amount.Equal(b.Amount))

	old, err := h.svc.GetBooking(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, booking.StatusRescheduled, old.Status)

	_, err = h.svc.Reschedule(context.Background(), b.ID, "2031-06-01", "10:00")
	assert.ErrorIs(t, err, booking.ErrInvalidTransition)

	_, err = h.svc.Reschedule(context.Background(), next.ID, "2031-06-01", "25:00")
	assert.ErrorIs(t, err, booking.ErrValidation)
}

func TestCompleteElapsed(t *testing.T) {
	h := newHarness(t)
	h.pricer.EXPECT().Quote(gomock.Any(), gomock.Any()).Return(dec("120.00"), nil).Times(3)

	past := emergencyRequest()
	past.AppointmentDate = "2020-01-06"
	elapsed, err := h.svc.CreateBooking(context.Background(), past)
	require.NoError(t, err)

	cancelledPast := emergencyRequest()
	cancelledPast.AppointmentDate = "2020-01-07"
	cancelled, err := h.svc.CreateBooking(context.Background(), cancelledPast)
	require.NoError(t, err)
	_, err = h.svc.TransitionStatus(context.Background(), cancelled.ID, booking.StatusCancelled)
	require.NoError(t, err)

	upcoming, err := h.svc.CreateBooking(context.Background(), emergencyRequest())
	require.NoError(t, err)

	n, err := h.svc.CompleteElapsed(context.Background(), 2*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, _ := h.svc.GetBooking(context.Background(), elapsed.ID)
	assert.Equal(t, booking.StatusCompleted, got.Status)
	got, _ = h.svc.GetBooking(context.Background(), cancelled.ID)
	assert.Equal(t, booking.StatusCancelled, got.Status)
	got, _ = h.svc.GetBooking(context.Background(), upcoming.ID)
	assert.Equal(t, booking.StatusBooked, got.Status)
}

func TestListByPatientPaginates(t *testing.T) {
	h := newHarness(t)
	patient := uuid.New()
	h.pricer.EXPECT().Quote(gomock.Any(), gomock.Any()).Return(dec("120.00"), nil).Times(3)

	for _, date := range []string{"2031-01-01", "2031-03-01", "2031-02-01"} {
		req := emergencyRequest()
		req.PatientID = patient
		req.AppointmentDate = date
		_, err := h.svc.CreateBooking(context.Background(), req)
		require.NoError(t, err)
	}
	h.createBooked(t)

	page, err := h.svc.ListByPatient(context.Background(), patient, 2, 0)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "2031-03-01", page[0].Date())
	assert.Equal(t, "2031-02-01", page[1].Date())

	rest, err := h.svc.ListByPatient(context.Background(), patient, 0, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "2031-01-01", rest[0].Date())

	none, err := h.svc.ListByPatient(context.Background(), uuid.New(), 10, 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
