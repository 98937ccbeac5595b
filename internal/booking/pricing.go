package booking

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/hackgods/care-wallet-scheduling/internal/config"
)

// StaticPricer prices bookings from a fixed tariff.
type StaticPricer struct {
	tariff config.Pricing
}

func NewStaticPricer(tariff config.Pricing) *StaticPricer {
	return &StaticPricer{tariff: tariff}
}

func (p *StaticPricer) Quote(_ context.Context, req PriceRequest) (decimal.Decimal, error) {
	var amount decimal.Decimal

	switch req.AppointmentType {
	case TypeEmergency:
		amount = p.tariff.Emergency
	case TypeClinicVisit:
		amount = p.tariff.ClinicVisit
	case TypeHomeVisit:
		amount = p.tariff.HomeVisitBase.Add(p.tariff.HomeVisitPerKm.Mul(req.DistanceInKm))
	case TypeOnlineVisit:
		amount = p.tariff.OnlinePerMinute.Mul(decimal.NewFromInt(int64(req.SelectedDuration)))
	default:
		return decimal.Zero, fmt.Errorf("no tariff for appointment type %q", req.AppointmentType)
	}

	return amount.Round(2), nil
}
