package refund

import (
	"context"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/repository/contract"
	"booking-order-be/internal/repository/specification"
	"booking-order-be/internal/repository/unitofwork"
	"booking-order-be/pkg/apperror"
	"booking-order-be/pkg/events"
	"booking-order-be/pkg/order/orderlock"
	"booking-order-be/pkg/order/statemachine"
	"booking-order-be/pkg/order/statuslog"

	"github.com/google/uuid"
)

// RefundSuccess applies the payment service's completion callback for one refund request.
// The first delivery completes the covered items and recomputes the order's refund state;
// later deliveries of the same outRequestNo change nothing.
func (p *Processor) RefundSuccess(ctx context.Context, msg events.PaymentRefundMessage) (*SuccessResult, error) {
	if msg.OrderNo == "" || msg.OutRequestNo == "" {
		return nil, apperror.ErrInvalidParam.WithMessage("orderNo and outRequestNo are required")
	}

	actor := entity.Actor{Type: entity.OperatorTypePayment, Name: "payment-callback"}
	res := &SuccessResult{}
	var applyId uuid.UUID
	err := p.runner.WithOrderLock(ctx, "refund_success", msg.OrderNo, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		order, err := orderlock.LoadOrder(ctx, uow, msg.OrderNo, true)
		if err != nil {
			return err
		}
		res.OrderStatus = order.OrderStatus

		apply, err := loadApply(ctx, uow, msg.OrderNo, specification.ByOutRequestNo{OutRequestNo: msg.OutRequestNo})
		if err != nil {
			return err
		}
		applyId = apply.Id
		if apply.ApplyStatus != entity.ApplyStatusApproved {
			return applyLost(apply.Id)
		}

		now := p.now().UTC()
		affected, err := uow.RefundRepository().MarkRefundCompleted(ctx, apply.Id, now)
		if err != nil {
			return apperror.ErrInternal.Wrap(err)
		}
		if affected == 0 {
			res.AlreadyProcessed = true
			return nil
		}

		if _, err := statemachine.OrderRule(order, entity.ActionRefundSuccess); err != nil {
			return err
		}

		items, err := coveredItems(order, apply.ItemIds)
		if err != nil {
			return err
		}
		var completing []uuid.UUID
		for _, item := range items {
			if _, err := statemachine.NextItemStatus(item.RefundStatus, entity.ActionRefundSuccess); err != nil {
				return err
			}
			if item.RefundStatus != entity.ItemRefundStatusCompleted {
				completing = append(completing, item.Id)
			}
		}

		affected, err = uow.OrderRepository().UpdateItemRefundStatus(ctx, msg.OrderNo, apply.ItemIds,
			statemachine.ItemSources(entity.ActionRefundSuccess), entity.ItemRefundStatusCompleted)
		if err != nil {
			return apperror.ErrInternal.Wrap(err)
		}
		if affected != int64(len(apply.ItemIds)) {
			return concurrent(msg.OrderNo, "refund_success", int64(len(apply.ItemIds)), affected)
		}
		if _, err := uow.RefundRepository().MarkFactsCompleted(ctx, apply.Id); err != nil {
			return apperror.ErrInternal.Wrap(err)
		}

		covered := make(map[uuid.UUID]bool, len(apply.ItemIds))
		for _, id := range apply.ItemIds {
			covered[id] = true
		}
		next := aggregateStatus(order.Items, covered)
		if !statemachine.CanTransition(order.OrderStatus, entity.ActionRefundSuccess, next) {
			return statemachine.OrderError(entity.ActionRefundSuccess, order.OrderStatus)
		}

		if next != order.OrderStatus {
			paymentStatus := entity.PaymentStatusPartiallyRefunded
			if next == entity.OrderStatusRefunded {
				paymentStatus = entity.PaymentStatusRefunded
			}
			affected, err := uow.OrderRepository().UpdateStatus(ctx, contract.OrderStatusUpdate{
				OrderNo:       msg.OrderNo,
				From:          []entity.OrderStatus{order.OrderStatus},
				To:            next,
				PaymentStatus: paymentStatus,
			})
			if err != nil {
				return apperror.ErrInternal.Wrap(err)
			}
			if affected != 1 {
				return concurrent(msg.OrderNo, "refund_success", 1, affected)
			}
		}

		if err := p.statusLog.Record(ctx, uow, actor, statuslog.OrderChange{
			OrderNo:       msg.OrderNo,
			Action:        entity.ActionRefundSuccess,
			From:          order.OrderStatus,
			To:            next,
			RefundApplyId: &apply.Id,
			Remark:        msg.OutRequestNo,
		}, statuslog.ItemChanges(completing, entity.ItemRefundStatusApproved, entity.ItemRefundStatusCompleted)...); err != nil {
			return apperror.ErrInternal.Wrap(err)
		}

		res.OrderStatus = next
		res.CompletedItems = len(completing)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !res.AlreadyProcessed {
		p.logTransition("Refund completed", msg.OrderNo, applyId, actor, map[string]interface{}{
			"outRequestNo": msg.OutRequestNo,
			"orderStatus":  string(res.OrderStatus),
			"items":        res.CompletedItems,
		})
	}
	return res, nil
}

// aggregateStatus derives the order status once the covered items are COMPLETED: every item
// completed is REFUNDED, any item still under review keeps the order REFUNDING, anything else
// is PARTIALLY_REFUNDED.
func aggregateStatus(items []*entity.OrderItem, completed map[uuid.UUID]bool) entity.OrderStatus {
	allCompleted := true
	inFlight := false
	for _, item := range items {
		status := item.RefundStatus
		if completed[item.Id] {
			status = entity.ItemRefundStatusCompleted
		}
		switch status {
		case entity.ItemRefundStatusCompleted:
		case entity.ItemRefundStatusWaitApproving, entity.ItemRefundStatusApproved:
			inFlight = true
			allCompleted = false
		default:
			allCompleted = false
		}
	}
	switch {
	case allCompleted:
		return entity.OrderStatusRefunded
	case inFlight:
		return entity.OrderStatusRefunding
	default:
		return entity.OrderStatusPartiallyRefunded
	}
}
