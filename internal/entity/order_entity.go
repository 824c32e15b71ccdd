package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending           OrderStatus = "PENDING"
	OrderStatusPaid              OrderStatus = "PAID"
	OrderStatusConfirmed         OrderStatus = "CONFIRMED"
	OrderStatusCompleted         OrderStatus = "COMPLETED"
	OrderStatusCancelled         OrderStatus = "CANCELLED"
	OrderStatusRefundApplying    OrderStatus = "REFUND_APPLYING"
	OrderStatusRefunding         OrderStatus = "REFUNDING"
	OrderStatusRefunded          OrderStatus = "REFUNDED"
	OrderStatusPartiallyRefunded OrderStatus = "PARTIALLY_REFUNDED"
	OrderStatusRefundRejected    OrderStatus = "REFUND_REJECTED"
	OrderStatusRefundCancelled   OrderStatus = "REFUND_CANCELLED"
)

// AllOrderStatuses lists every order state, used by exhaustive checks.
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusConfirmed,
	OrderStatusCompleted,
	OrderStatusCancelled,
	OrderStatusRefundApplying,
	OrderStatusRefunding,
	OrderStatusRefunded,
	OrderStatusPartiallyRefunded,
	OrderStatusRefundRejected,
	OrderStatusRefundCancelled,
}

type PaymentStatus string

const (
	PaymentStatusUnpaid            PaymentStatus = "UNPAID"
	PaymentStatusPaid              PaymentStatus = "PAID"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
)

type SellerType string

const (
	SellerTypeVenue SellerType = "VENUE"
	SellerTypeCoach SellerType = "COACH"
)

type ItemRefundStatus string

const (
	ItemRefundStatusNone          ItemRefundStatus = "NONE"
	ItemRefundStatusWaitApproving ItemRefundStatus = "WAIT_APPROVING"
	ItemRefundStatusApproved      ItemRefundStatus = "APPROVED"
	ItemRefundStatusCompleted     ItemRefundStatus = "COMPLETED"
)

var AllItemRefundStatuses = []ItemRefundStatus{
	ItemRefundStatusNone,
	ItemRefundStatusWaitApproving,
	ItemRefundStatusApproved,
	ItemRefundStatusCompleted,
}

// Order is the aggregate root of a booking. Amounts are 2-decimal fixed point.
type Order struct {
	OrderNo        string
	BuyerId        uuid.UUID
	SellerId       uuid.UUID
	SellerType     SellerType
	VenueId        uuid.UUID
	OrderStatus    OrderStatus
	PaymentStatus  PaymentStatus
	PaymentType    string
	OutTradeNo     string
	BaseAmount     decimal.Decimal
	ExtraAmount    decimal.Decimal
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	PayAmount      decimal.Decimal
	RefundApplyId  *uuid.UUID
	Confirmed      bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	PaidAt         *time.Time
	ConfirmedAt    *time.Time
	CancelledAt    *time.Time
	CompletedAt    *time.Time

	Items []*OrderItem
}

// AmountsConsistent checks payAmount == base + extra - discount and subtotal == base + extra.
func (o *Order) AmountsConsistent() bool {
	if !o.Subtotal.Equal(o.BaseAmount.Add(o.ExtraAmount)) {
		return false
	}
	return o.PayAmount.Equal(o.BaseAmount.Add(o.ExtraAmount).Sub(o.DiscountAmount))
}

type OrderItem struct {
	Id           uuid.UUID
	OrderNo      string
	ResourceId   uuid.UUID
	ResourceName string
	SlotRecordId string
	BookingDate  string
	StartTime    string
	EndTime      string
	UnitPrice    decimal.Decimal
	ExtraAmount  decimal.Decimal
	Subtotal     decimal.Decimal
	RefundStatus ItemRefundStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
