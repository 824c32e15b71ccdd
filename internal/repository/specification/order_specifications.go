package specification

import (
	"booking-order-be/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByBuyer restricts orders to one buyer
type ByBuyer struct {
	BuyerId uuid.UUID
}

func (s ByBuyer) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("buyer_id = ?", s.BuyerId)
}

// ByOrderStatus filters orders by status
type ByOrderStatus struct {
	Statuses []entity.OrderStatus
}

func (s ByOrderStatus) Apply(db *gorm.DB) *gorm.DB {
	values := make([]string, 0, len(s.Statuses))
	for _, st := range s.Statuses {
		values = append(values, string(st))
	}
	return db.Where("order_status IN ?", values)
}

// ByRefundApply filters rows owned by one refund apply
type ByRefundApply struct {
	RefundApplyId uuid.UUID
}

func (s ByRefundApply) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("refund_apply_id = ?", s.RefundApplyId)
}

// ByOutRequestNo finds the apply a payment callback refers to
type ByOutRequestNo struct {
	OutRequestNo string
}

func (s ByOutRequestNo) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("out_request_no = ?", s.OutRequestNo)
}

// ByOrderItemIds filters child rows (links, facts) by order item
type ByOrderItemIds struct {
	OrderItemIds []uuid.UUID
}

func (s ByOrderItemIds) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("order_item_id IN ?", s.OrderItemIds)
}

// OrderLevelOnly keeps extra charges that are not bound to an item
type OrderLevelOnly struct{}

func (s OrderLevelOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("order_item_id IS NULL")
}

// ByFactStatus filters item refund facts by status
type ByFactStatus struct {
	Statuses []entity.FactStatus
}

func (s ByFactStatus) Apply(db *gorm.DB) *gorm.DB {
	values := make([]string, 0, len(s.Statuses))
	for _, st := range s.Statuses {
		values = append(values, string(st))
	}
	return db.Where("refund_status IN ?", values)
}
