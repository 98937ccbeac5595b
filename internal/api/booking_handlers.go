package api

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/hackgods/care-wallet-scheduling/internal/auth"
	"github.com/hackgods/care-wallet-scheduling/internal/booking"
)

func createBookingHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateBookingRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		p := principal(r)

		patientID := p.UserID
		if req.PatientID != "" && p.HasRole(auth.RoleAdmin) {
			id, err := uuid.Parse(req.PatientID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
				return
			}
			patientID = id
		}
		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}
		var clinicID *uuid.UUID
		if req.ClinicID != "" {
			id, err := uuid.Parse(req.ClinicID)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_clinic_id", "clinic_id must be a valid UUID")
				return
			}
			clinicID = &id
		}

		b, err := svc.CreateBooking(r.Context(), booking.CreateRequest{
			PatientID:        patientID,
			DoctorID:         doctorID,
			AppointmentType:  booking.AppointmentType(req.AppointmentType),
			AppointmentDate:  req.AppointmentDate,
			AppointmentTime:  req.AppointmentTime,
			PatientAddress:   req.PatientAddress,
			DistanceInKm:     req.DistanceInKm,
			ClinicID:         clinicID,
			SelectedDuration: req.SelectedDuration,
			Notes:            req.Notes,
			PaymentMethod:    req.PaymentMethod,
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toBookingResponse(b))
	}
}

func listBookingsHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := principal(r)
		patientID := p.UserID
		if raw := r.URL.Query().Get("patient_id"); raw != "" && p.HasRole(auth.RoleAdmin) {
			id, err := uuid.Parse(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
				return
			}
			patientID = id
		}
		limit, ok := intQuery(r, "limit", 0)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_limit", "limit must be a non-negative integer")
			return
		}
		offset, ok := intQuery(r, "offset", 0)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid_offset", "offset must be a non-negative integer")
			return
		}

		list, err := svc.ListByPatient(r.Context(), patientID, limit, offset)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		resp := BookingListResponse{Bookings: make([]BookingResponse, 0, len(list)), Count: len(list), Offset: offset}
		for i := range list {
			resp.Bookings = append(resp.Bookings, toBookingResponse(&list[i]))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// ownedBooking loads the booking and hides it from callers who neither own it
// nor administer bookings.
func ownedBooking(w http.ResponseWriter, r *http.Request, svc *booking.Service) (*booking.Booking, bool) {
	id, ok := uuidParam(w, r, "id")
	if !ok {
		return nil, false
	}
	b, err := svc.GetBooking(r.Context(), id)
	if err == nil && !canAccess(principal(r), b.PatientID) {
		err = booking.ErrBookingNotFound
	}
	if err != nil {
		writeServiceError(w, r, err)
		return nil, false
	}
	return b, true
}

func getBookingHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, ok := ownedBooking(w, r, svc)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, toBookingResponse(b))
	}
}

func transitionBookingHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TransitionBookingRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		b, ok := ownedBooking(w, r, svc)
		if !ok {
			return
		}
		to := booking.Status(req.Status)
		if to != booking.StatusCancelled && !principal(r).HasRole(auth.RoleAdmin) {
			writeError(w, http.StatusForbidden, "forbidden", "patients may only cancel a booking")
			return
		}

		updated, err := svc.TransitionStatus(r.Context(), b.ID, to)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toBookingResponse(updated))
	}
}

func rescheduleBookingHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RescheduleBookingRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		b, ok := ownedBooking(w, r, svc)
		if !ok {
			return
		}

		replacement, err := svc.Reschedule(r.Context(), b.ID, req.AppointmentDate, req.AppointmentTime)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toBookingResponse(replacement))
	}
}

func recordPaymentHandler(svc *booking.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := uuidParam(w, r, "id")
		if !ok {
			return
		}
		var req RecordPaymentRequest
		if !decodeJSON(w, r, &req) {
			return
		}

		b, err := svc.RecordPayment(r.Context(), booking.RecordPaymentRequest{
			BookingID:     id,
			Method:        req.Method,
			TransactionID: req.TransactionID,
			Outcome:       booking.PaymentStatus(req.Outcome),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toBookingResponse(b))
	}
}
