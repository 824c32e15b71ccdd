package contract

import (
	"context"
	"time"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApplyStatusUpdate moves a refund apply out of From. Zero-valued optional fields are left untouched.
type ApplyStatusUpdate struct {
	Id   uuid.UUID
	From entity.ApplyStatus
	To   entity.ApplyStatus

	ReviewerId        *uuid.UUID
	ReviewedAt        *time.Time
	SellerRemark      string
	OutRequestNo      string
	RefundAmount      *decimal.Decimal
	RefundInitiatedAt *time.Time
}

type RefundRepository interface {
	Create(ctx context.Context, apply *entity.RefundApply) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RefundApply, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RefundApply, error)
	UpdateStatus(ctx context.Context, upd ApplyStatusUpdate) (int64, error)
	// MarkRefundCompleted stamps refund_completed_at once; a replay affects 0 rows.
	MarkRefundCompleted(ctx context.Context, applyId uuid.UUID, at time.Time) (int64, error)

	CreateApplyItems(ctx context.Context, applyId uuid.UUID, itemIds []uuid.UUID) error
	FindItemIds(ctx context.Context, applyId uuid.UUID) ([]uuid.UUID, error)

	FactExists(ctx context.Context, applyId, orderItemId uuid.UUID) (bool, error)
	CreateFact(ctx context.Context, fact *entity.ItemRefundFact) error
	FindFacts(ctx context.Context, specs ...specification.Specification) ([]*entity.ItemRefundFact, error)
	MarkFactsCompleted(ctx context.Context, applyId uuid.UUID) (int64, error)

	ExtraChargeExists(ctx context.Context, applyId, extraChargeId uuid.UUID) (bool, error)
	CreateExtraCharge(ctx context.Context, charge *entity.RefundExtraCharge) error
	FindExtraCharges(ctx context.Context, specs ...specification.Specification) ([]*entity.RefundExtraCharge, error)
}
