package contract

import (
	"context"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/repository/specification"
)

type ExtraChargeRepository interface {
	CreateCharges(ctx context.Context, charges []*entity.ExtraCharge) error
	CreateLinks(ctx context.Context, links []*entity.ExtraChargeLink) error
	FindCharges(ctx context.Context, specs ...specification.Specification) ([]*entity.ExtraCharge, error)
	FindLinks(ctx context.Context, specs ...specification.Specification) ([]*entity.ExtraChargeLink, error)
}
