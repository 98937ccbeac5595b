package booking

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/care-wallet-scheduling/internal/config"
)

func TestStaticPricerQuote(t *testing.T) {
	pricer := NewStaticPricer(config.Pricing{
		Emergency:       decimal.NewFromInt(120),
		ClinicVisit:     decimal.NewFromInt(50),
		HomeVisitBase:   decimal.NewFromInt(80),
		HomeVisitPerKm:  decimal.RequireFromString("2.5"),
		OnlinePerMinute: decimal.RequireFromString("1.2"),
	})

	tests := []struct {
		name string
		req  PriceRequest
		want string
	}{
		{name: "emergency", req: PriceRequest{AppointmentType: TypeEmergency}, want: "120"},
		{name: "clinic", req: PriceRequest{AppointmentType: TypeClinicVisit}, want: "50"},
		{name: "home visit", req: PriceRequest{AppointmentType: TypeHomeVisit, DistanceInKm: decimal.RequireFromString("4.2")}, want: "90.5"},
		{name: "online", req: PriceRequest{AppointmentType: TypeOnlineVisit, SelectedDuration: 45}, want: "54"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pricer.Quote(context.Background(), tt.req)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s", got)
		})
	}

	_, err := pricer.Quote(context.Background(), PriceRequest{AppointmentType: "Teleport"})
	assert.Error(t, err)
}

func TestBookingStartsAt(t *testing.T) {
	b := Booking{AppointmentTime: "16:45"}
	b.AppointmentDate, _, _ = parseSchedule("2031-04-12", "16:45")

	assert.Equal(t, "2031-04-12T16:45:00Z", b.StartsAt().Format("2006-01-02T15:04:05Z07:00"))
}
