package booking

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hackgods/care-wallet-scheduling/internal/apperr"
)

var onlineDurations = map[int]bool{15: true, 30: true, 45: true, 60: true}

var allowedTransitions = map[Status]map[Status]bool{
	StatusBooked: {
		StatusCompleted:   true,
		StatusCancelled:   true,
		StatusRescheduled: true,
	},
}

func canTransition(from, to Status) bool {
	return allowedTransitions[from][to]
}

func (s Status) valid() bool {
	switch s {
	case StatusBooked, StatusCompleted, StatusCancelled, StatusRescheduled:
		return true
	}
	return false
}

func (t AppointmentType) valid() bool {
	switch t {
	case TypeEmergency, TypeHomeVisit, TypeOnlineVisit, TypeClinicVisit:
		return true
	}
	return false
}

func modalityError(msg string) error {
	return apperr.Wrap(apperr.KindValidation, msg, ErrInvalidModalityFields)
}

// validateModality checks the fields each appointment type requires.
func validateModality(req CreateRequest) error {
	switch req.AppointmentType {
	case TypeEmergency:
		return nil
	case TypeHomeVisit:
		if strings.TrimSpace(req.PatientAddress) == "" {
			return modalityError("HomeVisit requires patient_address")
		}
		if req.DistanceInKm == nil {
			return modalityError("HomeVisit requires distance_in_km")
		}
		if req.DistanceInKm.IsNegative() {
			return modalityError("distance_in_km must not be negative")
		}
	case TypeClinicVisit:
		if req.ClinicID == nil || *req.ClinicID == uuid.Nil {
			return modalityError("ClinicVisit requires clinic_id")
		}
	case TypeOnlineVisit:
		if !onlineDurations[req.SelectedDuration] {
			return modalityError(fmt.Sprintf("selected_duration %d must be one of 15, 30, 45, 60", req.SelectedDuration))
		}
	default:
		return modalityError(fmt.Sprintf("unknown appointment_type %q", req.AppointmentType))
	}
	return nil
}

func parseSchedule(date, clock string) (time.Time, string, error) {
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return time.Time{}, "", apperr.Wrap(apperr.KindValidation, "appointment_date must be YYYY-MM-DD", ErrValidation)
	}
	t, err := time.Parse(timeLayout, clock)
	if err != nil {
		return time.Time{}, "", apperr.Wrap(apperr.KindValidation, "appointment_time must be HH:MM", ErrValidation)
	}
	return d, t.Format(timeLayout), nil
}

func validAmount(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.Equal(amount.Round(2))
}
