// Package statemachine holds the allowed transitions for orders and order items. Every
// conditional update in the workflow takes its WHERE-state list from here.
package statemachine

import (
	"booking-order-be/internal/entity"
	"booking-order-be/pkg/apperror"
)

// Guard is an extra predicate on the order beyond its status.
type Guard struct {
	Name  string
	Check func(o *entity.Order) bool
}

var (
	Unconfirmed = &Guard{Name: "unconfirmed", Check: func(o *entity.Order) bool { return !o.Confirmed }}
	Confirmed   = &Guard{Name: "confirmed", Check: func(o *entity.Order) bool { return o.Confirmed }}
	Unpaid      = &Guard{Name: "unpaid", Check: func(o *entity.Order) bool { return o.PaymentStatus == entity.PaymentStatusUnpaid }}
)

type orderKey struct {
	from   entity.OrderStatus
	action entity.StatusAction
}

// Rule is one row of the order transition table.
type Rule struct {
	To    []entity.OrderStatus
	Guard *Guard
}

func to(states ...entity.OrderStatus) []entity.OrderStatus { return states }

var orderRules = map[orderKey]Rule{
	{entity.OrderStatusPending, entity.ActionPay}:          {To: to(entity.OrderStatusPaid), Guard: Unpaid},
	{entity.OrderStatusPending, entity.ActionCancelUnpaid}: {To: to(entity.OrderStatusCancelled), Guard: Unpaid},

	{entity.OrderStatusPaid, entity.ActionConfirm}:              {To: to(entity.OrderStatusConfirmed), Guard: Unconfirmed},
	{entity.OrderStatusRefundRejected, entity.ActionConfirm}:    {To: to(entity.OrderStatusConfirmed), Guard: Unconfirmed},
	{entity.OrderStatusRefundCancelled, entity.ActionConfirm}:   {To: to(entity.OrderStatusConfirmed), Guard: Unconfirmed},
	{entity.OrderStatusPartiallyRefunded, entity.ActionConfirm}: {To: to(entity.OrderStatusConfirmed), Guard: Unconfirmed},

	{entity.OrderStatusConfirmed, entity.ActionComplete}:         {To: to(entity.OrderStatusCompleted)},
	{entity.OrderStatusPartiallyRefunded, entity.ActionComplete}: {To: to(entity.OrderStatusCompleted), Guard: Confirmed},
	{entity.OrderStatusRefundRejected, entity.ActionComplete}:    {To: to(entity.OrderStatusCompleted), Guard: Confirmed},
	{entity.OrderStatusRefundCancelled, entity.ActionComplete}:   {To: to(entity.OrderStatusCompleted), Guard: Confirmed},

	{entity.OrderStatusPaid, entity.ActionApplyRefund}:              {To: to(entity.OrderStatusRefundApplying)},
	{entity.OrderStatusConfirmed, entity.ActionApplyRefund}:         {To: to(entity.OrderStatusRefundApplying)},
	{entity.OrderStatusPartiallyRefunded, entity.ActionApplyRefund}: {To: to(entity.OrderStatusRefundApplying)},
	{entity.OrderStatusRefundRejected, entity.ActionApplyRefund}:    {To: to(entity.OrderStatusRefundApplying)},
	{entity.OrderStatusRefundCancelled, entity.ActionApplyRefund}:   {To: to(entity.OrderStatusRefundApplying)},

	{entity.OrderStatusRefundApplying, entity.ActionApproveRefund}: {To: to(entity.OrderStatusRefunding)},
	{entity.OrderStatusRefundApplying, entity.ActionRejectRefund}:  {To: to(entity.OrderStatusRefundRejected)},
	{entity.OrderStatusRefundApplying, entity.ActionCancelRefund}:  {To: to(entity.OrderStatusRefundCancelled)},

	{entity.OrderStatusRefunding, entity.ActionRefundSuccess}: {To: to(
		entity.OrderStatusRefunded,
		entity.OrderStatusPartiallyRefunded,
		entity.OrderStatusRefunding,
	)},
}

// orderErrors is the invalid-state error reported per action.
var orderErrors = map[entity.StatusAction]*apperror.Error{
	entity.ActionPay:           apperror.ErrOrderStatusNotAllowPay,
	entity.ActionCancelUnpaid:  apperror.ErrOrderStatusNotAllowCancel,
	entity.ActionConfirm:       apperror.ErrOrderStatusNotAllowConfirm,
	entity.ActionComplete:      apperror.ErrOrderStatusNotAllowComplete,
	entity.ActionApplyRefund:   apperror.ErrOrderStatusNotAllowRefund,
	entity.ActionApproveRefund: apperror.ErrOrderStatusNotAllowRefund,
	entity.ActionRejectRefund:  apperror.ErrOrderStatusNotAllowRefund,
	entity.ActionCancelRefund:  apperror.ErrOrderStatusNotAllowRefund,
	entity.ActionRefundSuccess: apperror.ErrOrderStatusNotAllowRefund,
}

// OrderError returns the error for action being rejected in state.
func OrderError(action entity.StatusAction, state entity.OrderStatus) *apperror.Error {
	base, ok := orderErrors[action]
	if !ok {
		base = apperror.ErrInvalidParam
	}
	return base.WithMessage("%s: action %s not allowed in status %s", base.Message, action, state)
}

// OrderRule looks up the rule for action in the order's current state and checks its guard.
func OrderRule(o *entity.Order, action entity.StatusAction) (Rule, error) {
	rule, ok := orderRules[orderKey{o.OrderStatus, action}]
	if !ok {
		return Rule{}, OrderError(action, o.OrderStatus)
	}
	if rule.Guard != nil && !rule.Guard.Check(o) {
		return Rule{}, OrderError(action, o.OrderStatus).WithMessage("%s: guard %s failed in status %s", orderErrors[action].Message, rule.Guard.Name, o.OrderStatus)
	}
	return rule, nil
}

// NextOrderStatus returns the single target for action. Only valid for actions with one target.
func NextOrderStatus(o *entity.Order, action entity.StatusAction) (entity.OrderStatus, error) {
	rule, err := OrderRule(o, action)
	if err != nil {
		return "", err
	}
	return rule.To[0], nil
}

// CanTransition reports whether from --action--> target is in the table, ignoring guards.
func CanTransition(from entity.OrderStatus, action entity.StatusAction, target entity.OrderStatus) bool {
	rule, ok := orderRules[orderKey{from, action}]
	if !ok {
		return false
	}
	for _, s := range rule.To {
		if s == target {
			return true
		}
	}
	return false
}

// OrderSources lists the states action may start from, in declaration order.
// Used as the WHERE order_status IN (...) of conditional updates.
func OrderSources(action entity.StatusAction) []entity.OrderStatus {
	var sources []entity.OrderStatus
	for _, s := range entity.AllOrderStatuses {
		if _, ok := orderRules[orderKey{s, action}]; ok {
			sources = append(sources, s)
		}
	}
	return sources
}

type itemKey struct {
	from   entity.ItemRefundStatus
	action entity.StatusAction
}

var itemRules = map[itemKey]entity.ItemRefundStatus{
	{entity.ItemRefundStatusNone, entity.ActionApplyRefund}:            entity.ItemRefundStatusWaitApproving,
	{entity.ItemRefundStatusWaitApproving, entity.ActionApproveRefund}: entity.ItemRefundStatusApproved,
	{entity.ItemRefundStatusWaitApproving, entity.ActionRejectRefund}:  entity.ItemRefundStatusNone,
	{entity.ItemRefundStatusWaitApproving, entity.ActionCancelRefund}:  entity.ItemRefundStatusNone,
	{entity.ItemRefundStatusApproved, entity.ActionRefundSuccess}:      entity.ItemRefundStatusCompleted,
	{entity.ItemRefundStatusCompleted, entity.ActionRefundSuccess}:     entity.ItemRefundStatusCompleted,
}

// ItemError returns the error for an item in state that cannot take action.
func ItemError(action entity.StatusAction, state entity.ItemRefundStatus) *apperror.Error {
	if action == entity.ActionApplyRefund {
		switch state {
		case entity.ItemRefundStatusWaitApproving:
			return apperror.ErrRefundItemAlreadyPending
		case entity.ItemRefundStatusApproved:
			return apperror.ErrRefundItemAlreadyApproved
		case entity.ItemRefundStatusCompleted:
			return apperror.ErrRefundItemAlreadyCompleted
		}
	}
	return apperror.ErrRefundItemStatusNotAllow.WithMessage("%s: action %s not allowed in item status %s",
		apperror.ErrRefundItemStatusNotAllow.Message, action, state)
}

// NextItemStatus returns the item's refund status after action.
func NextItemStatus(from entity.ItemRefundStatus, action entity.StatusAction) (entity.ItemRefundStatus, error) {
	next, ok := itemRules[itemKey{from, action}]
	if !ok {
		return "", ItemError(action, from)
	}
	return next, nil
}

// ItemSources lists the item states action may start from.
func ItemSources(action entity.StatusAction) []entity.ItemRefundStatus {
	var sources []entity.ItemRefundStatus
	for _, s := range entity.AllItemRefundStatuses {
		if _, ok := itemRules[itemKey{s, action}]; ok {
			sources = append(sources, s)
		}
	}
	return sources
}
