package contract

import (
	"context"
	"time"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/repository/specification"

	"github.com/google/uuid"
)

type OutboxRepository interface {
	Create(ctx context.Context, msgs ...*entity.OutboxMessage) error
	// ClaimPending locks up to limit due rows, skipping rows another dispatcher holds.
	ClaimPending(ctx context.Context, now time.Time, limit int) ([]*entity.OutboxMessage, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	MarkRetry(ctx context.Context, id uuid.UUID, attempts int, availableAt time.Time, lastErr string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.OutboxMessage, error)
}
