package subscription

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Duration string

const (
	DurationMonthly    Duration = "monthly"
	DurationQuarterly  Duration = "quarterly"
	DurationHalfYearly Duration = "half_yearly"
	DurationYearly     Duration = "yearly"
)

func (d Duration) Valid() bool {
	switch d {
	case DurationMonthly, DurationQuarterly, DurationHalfYearly, DurationYearly:
		return true
	}
	return false
}

type Plan struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Features    []string        `json:"features"`
	Duration    Duration        `json:"duration"`
	IsActive    bool            `json:"is_active"`
	QRCodeImage string          `json:"qr_code_image"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *Plan) clone() *Plan {
	c := *p
	c.Features = append([]string(nil), p.Features...)
	return &c
}

// PlanPatch carries the fields an update supplies. Nil means unchanged.
type PlanPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Features    *[]string
	Duration    *Duration
	IsActive    *bool
}
