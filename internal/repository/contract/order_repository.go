package contract

import (
	"context"
	"time"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/repository/specification"

	"github.com/google/uuid"
)

// OrderStatusUpdate describes a guarded order transition:
// UPDATE orders SET ... WHERE order_no = ? AND order_status IN (From) [AND guards].
// Zero-valued optional fields are left untouched.
type OrderStatusUpdate struct {
	OrderNo string
	From    []entity.OrderStatus
	To      entity.OrderStatus

	// guards
	RequireUnconfirmed   bool
	RequirePaymentStatus entity.PaymentStatus

	// optional column updates
	PaymentStatus entity.PaymentStatus
	Confirmed     *bool
	RefundApplyId *uuid.UUID
	OutTradeNo    string
	PaymentType   string
	PaidAt        *time.Time
	ConfirmedAt   *time.Time
	CancelledAt   *time.Time
	CompletedAt   *time.Time
}

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	CreateItems(ctx context.Context, items []*entity.OrderItem) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Order, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Order, error)
	FindItems(ctx context.Context, specs ...specification.Specification) ([]*entity.OrderItem, error)

	// Conditional writes return the affected row count; callers compare it with the expected count.
	UpdateStatus(ctx context.Context, upd OrderStatusUpdate) (int64, error)
	UpdateItemRefundStatus(ctx context.Context, orderNo string, itemIds []uuid.UUID, from []entity.ItemRefundStatus, to entity.ItemRefundStatus) (int64, error)
}
