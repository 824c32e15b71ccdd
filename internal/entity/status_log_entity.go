package entity

import (
	"time"

	"github.com/google/uuid"
)

type OperatorType string

const (
	OperatorTypeBuyer   OperatorType = "BUYER"
	OperatorTypeSeller  OperatorType = "SELLER"
	OperatorTypeSystem  OperatorType = "SYSTEM"
	OperatorTypePayment OperatorType = "PAYMENT"
	OperatorTypeAdmin   OperatorType = "ADMIN"
)

// Actor is whoever triggers a transition.
type Actor struct {
	Type OperatorType
	Id   uuid.UUID
	Name string
}

func SystemActor(name string) Actor {
	return Actor{Type: OperatorTypeSystem, Id: uuid.Nil, Name: name}
}

func (a Actor) IsPrivileged() bool {
	return a.Type == OperatorTypeSystem || a.Type == OperatorTypeAdmin || a.Type == OperatorTypePayment
}

type StatusAction string

const (
	ActionCreate        StatusAction = "CREATE"
	ActionPay           StatusAction = "PAY"
	ActionCancelUnpaid  StatusAction = "CANCEL_UNPAID"
	ActionConfirm       StatusAction = "CONFIRM"
	ActionComplete      StatusAction = "COMPLETE"
	ActionApplyRefund   StatusAction = "APPLY_REFUND"
	ActionApproveRefund StatusAction = "APPROVE_REFUND"
	ActionRejectRefund  StatusAction = "REJECT_REFUND"
	ActionCancelRefund  StatusAction = "CANCEL_REFUND"
	ActionRefundSuccess StatusAction = "REFUND_SUCCESS"
)

var AllStatusActions = []StatusAction{
	ActionCreate,
	ActionPay,
	ActionCancelUnpaid,
	ActionConfirm,
	ActionComplete,
	ActionApplyRefund,
	ActionApproveRefund,
	ActionRejectRefund,
	ActionCancelRefund,
	ActionRefundSuccess,
}

// StatusLog is an append-only audit row. OrderItemId is set for item-level entries.
type StatusLog struct {
	Id                  uuid.UUID
	OrderNo             string
	OrderItemId         *uuid.UUID
	Action              StatusAction
	OldOrderStatus      OrderStatus
	NewOrderStatus      OrderStatus
	OldItemRefundStatus ItemRefundStatus
	NewItemRefundStatus ItemRefundStatus
	RefundApplyId       *uuid.UUID
	OperatorType        OperatorType
	OperatorId          uuid.UUID
	OperatorName        string
	Remark              string
	CreatedAt           time.Time
}

// CanAccess reports whether the actor may see or act on the order.
func (a Actor) CanAccess(o *Order) bool {
	switch a.Type {
	case OperatorTypeBuyer:
		return o.BuyerId == a.Id
	case OperatorTypeSeller:
		return o.SellerId == a.Id
	default:
		return a.IsPrivileged()
	}
}
