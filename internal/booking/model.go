package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AppointmentType string

const (
	TypeEmergency   AppointmentType = "Emergency"
	TypeHomeVisit   AppointmentType = "HomeVisit"
	TypeOnlineVisit AppointmentType = "OnlineVisit"
	TypeClinicVisit AppointmentType = "ClinicVisit"
)

type Status string

const (
	StatusBooked      Status = "booked"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// MethodWallet settles a booking through a debit on the patient's wallet.
const MethodWallet = "wallet"

const (
	EventBookingCreated         = "BOOKING_CREATED"
	EventBookingPaymentRecorded = "BOOKING_PAYMENT_RECORDED"
	EventBookingStatusChanged   = "BOOKING_STATUS_CHANGED"
	EventBookingRescheduled     = "BOOKING_RESCHEDULED"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

type PaymentDetails struct {
	Method        string     `json:"method"`
	TransactionID string     `json:"transaction_id,omitempty"`
	PaymentDate   *time.Time `json:"payment_date,omitempty"`
}

type Booking struct {
	ID              uuid.UUID       `json:"id"`
	PatientID       uuid.UUID       `json:"patient_id"`
	DoctorID        uuid.UUID       `json:"doctor_id"`
	AppointmentType AppointmentType `json:"appointment_type"`
	AppointmentDate time.Time       `json:"-"`
	AppointmentTime string          `json:"appointment_time"`

	PatientAddress   string           `json:"patient_address,omitempty"`
	DistanceInKm     *decimal.Decimal `json:"distance_in_km,omitempty"`
	ClinicID         *uuid.UUID       `json:"clinic_id,omitempty"`
	SelectedDuration int              `json:"selected_duration,omitempty"`

	Amount              decimal.Decimal `json:"amount"`
	PaymentStatus       PaymentStatus   `json:"payment_status"`
	PaymentDetails      *PaymentDetails `json:"payment_details,omitempty"`
	WalletTransactionID string          `json:"wallet_transaction_id,omitempty"`

	Status          Status     `json:"status"`
	Notes           string     `json:"notes,omitempty"`
	RescheduledFrom *uuid.UUID `json:"rescheduled_from,omitempty"`

	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Date renders AppointmentDate as a calendar date.
func (b *Booking) Date() string {
	return b.AppointmentDate.Format(dateLayout)
}

// StartsAt combines date and time. Appointment times are wall-clock UTC.
func (b *Booking) StartsAt() time.Time {
	t, err := time.Parse(timeLayout, b.AppointmentTime)
	if err != nil {
		return b.AppointmentDate
	}
	y, m, d := b.AppointmentDate.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, time.UTC)
}

func (b *Booking) clone() *Booking {
	c := *b
	if b.DistanceInKm != nil {
		d := *b.DistanceInKm
		c.DistanceInKm = &d
	}
	if b.ClinicID != nil {
		id := *b.ClinicID
		c.ClinicID = &id
	}
	if b.PaymentDetails != nil {
		pd := *b.PaymentDetails
		c.PaymentDetails = &pd
	}
	if b.RescheduledFrom != nil {
		id := *b.RescheduledFrom
		c.RescheduledFrom = &id
	}
	return &c
}

type EventLog struct {
	ID        int64
	EventType string
	BookingID *uuid.UUID
	Payload   []byte
	CreatedAt time.Time
}
