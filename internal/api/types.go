package api

import (
	"github.com/shopspring/decimal"

	"github.com/hackgods/care-wallet-scheduling/internal/booking"
	"github.com/hackgods/care-wallet-scheduling/internal/wallet"
)

type CreditWalletRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	ReferenceID string          `json:"reference_id"`
}

type ProcessDebitRequest struct {
	UserID        string  `json:"user_id"`
	TransactionID string  `json:"transaction_id"`
	Action        string  `json:"action"`
	Description   *string `json:"description,omitempty"`
	ReferenceID   *string `json:"reference_id,omitempty"`
}

type PendingDebitsResponse struct {
	Debits []wallet.PendingDebit `json:"debits"`
	Count  int                   `json:"count"`
}

type CreateBookingRequest struct {
	// PatientID is honoured for admins booking on a patient's behalf.
	PatientID        string           `json:"patient_id,omitempty"`
	DoctorID         string           `json:"doctor_id"`
	AppointmentType  string           `json:"appointment_type"`
	AppointmentDate  string           `json:"appointment_date"`
	AppointmentTime  string           `json:"appointment_time"`
	PatientAddress   string           `json:"patient_address,omitempty"`
	DistanceInKm     *decimal.Decimal `json:"distance_in_km,omitempty"`
	ClinicID         string           `json:"clinic_id,omitempty"`
	SelectedDuration int              `json:"selected_duration,omitempty"`
	Notes            string           `json:"notes,omitempty"`
	PaymentMethod    string           `json:"payment_method,omitempty"`
}

type TransitionBookingRequest struct {
	Status string `json:"status"`
}

type RescheduleBookingRequest struct {
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
}

type RecordPaymentRequest struct {
	Method        string `json:"method"`
	TransactionID string `json:"transaction_id"`
	Outcome       string `json:"outcome"`
}

type BookingResponse struct {
	*booking.Booking
	AppointmentDate string `json:"appointment_date"`
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	return BookingResponse{Booking: b, AppointmentDate: b.Date()}
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Count    int               `json:"count"`
	Offset   int               `json:"offset"`
}

type CreatePlanRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Features    []string        `json:"features"`
	Duration    string          `json:"duration"`
	IsActive    *bool           `json:"is_active,omitempty"`
}

type UpdatePlanRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	Features    *[]string        `json:"features,omitempty"`
	Duration    *string          `json:"duration,omitempty"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
