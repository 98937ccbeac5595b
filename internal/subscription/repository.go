package subscription

import (
	"context"

	"github.com/google/uuid"

	"github.com/hackgods/care-wallet-scheduling/internal/apperr"
)

var (
	ErrPlanNotFound     = apperr.New(apperr.KindNotFound, "plan not found")
	ErrValidationFailed = apperr.New(apperr.KindValidation, "validation failed")
	ErrPlanInactive     = apperr.New(apperr.KindInvalidState, "plan is not active")
	ErrPlanNotPriced    = apperr.New(apperr.KindInvalidState, "plan has no price to charge")
)

type Repository interface {
	Create(ctx context.Context, p *Plan) error
	Get(ctx context.Context, id uuid.UUID) (*Plan, error)
	Update(ctx context.Context, p *Plan) error
	ListActive(ctx context.Context) ([]Plan, error)
}
