package contract

import (
	"context"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/repository/specification"
)

// StatusLogRepository is append-only.
type StatusLogRepository interface {
	Append(ctx context.Context, logs ...*entity.StatusLog) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.StatusLog, error)
}
