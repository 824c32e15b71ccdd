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

// closing describes how reject and cancel end a pending apply. They differ only in the
// target states and in who may call them.
type closing struct {
	op          string
	action      entity.StatusAction
	applyStatus entity.ApplyStatus
	message     string
}

var (
	rejecting  = closing{op: "reject_refund", action: entity.ActionRejectRefund, applyStatus: entity.ApplyStatusRejected, message: "Refund rejected"}
	cancelling = closing{op: "cancel_refund", action: entity.ActionCancelRefund, applyStatus: entity.ApplyStatusCancelled, message: "Refund apply cancelled"}
)

// Reject closes a pending apply, restoring every covered item to NONE. Items are restored all
// together or not at all.
func (p *Processor) Reject(ctx context.Context, orderNo string, applyId uuid.UUID, actor entity.Actor, remark string) (*ReviewResult, error) {
	if err := reviewer(actor); err != nil {
		return nil, err
	}
	return p.close(ctx, rejecting, orderNo, applyId, actor, remark)
}

// Cancel is the buyer withdrawing a pending apply.
func (p *Processor) Cancel(ctx context.Context, orderNo string, applyId uuid.UUID, actor entity.Actor) (*ReviewResult, error) {
	if actor.Type == entity.OperatorTypeSeller {
		return nil, apperror.ErrApplyStatusNotAllow.WithMessage("only the buyer can cancel a refund apply")
	}
	return p.close(ctx, cancelling, orderNo, applyId, actor, "")
}

func (p *Processor) close(ctx context.Context, c closing, orderNo string, applyId uuid.UUID, actor entity.Actor, remark string) (*ReviewResult, error) {
	res := &ReviewResult{}
	err := p.runner.WithOrderLock(ctx, c.op, orderNo, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		order, err := orderlock.LoadVisibleOrder(ctx, uow, orderNo, actor, true)
		if err != nil {
			return err
		}
		apply, err := loadApply(ctx, uow, orderNo, specification.ByID{ID: applyId})
		if err != nil {
			return err
		}
		res.Apply = apply
		res.OrderStatus = order.OrderStatus

		if apply.ApplyStatus == c.applyStatus {
			res.AlreadyDone = true
			return nil
		}
		if apply.ApplyStatus != entity.ApplyStatusPending {
			return applyLost(apply.Id)
		}

		next, err := statemachine.NextOrderStatus(order, c.action)
		if err != nil {
			return err
		}

		items, err := coveredItems(order, apply.ItemIds)
		if err != nil {
			return err
		}
		for _, item := range items {
			if item.RefundStatus != entity.ItemRefundStatusWaitApproving {
				return statemachine.ItemError(c.action, item.RefundStatus)
			}
		}
		itemTarget, err := statemachine.NextItemStatus(entity.ItemRefundStatusWaitApproving, c.action)
		if err != nil {
			return err
		}

		now := p.now().UTC()
		upd := contract.ApplyStatusUpdate{
			Id:         apply.Id,
			From:       entity.ApplyStatusPending,
			To:         c.applyStatus,
			ReviewedAt: &now,
		}
		if c.action == entity.ActionRejectRefund {
			upd.ReviewerId = &actor.Id
			upd.SellerRemark = remark
		}
		affected, err := uow.RefundRepository().UpdateStatus(ctx, upd)
		if err != nil {
			return apperror.ErrInternal.Wrap(err)
		}
		if affected != 1 {
			return applyLost(apply.Id)
		}

		affected, err = uow.OrderRepository().UpdateItemRefundStatus(ctx, orderNo, apply.ItemIds,
			[]entity.ItemRefundStatus{entity.ItemRefundStatusWaitApproving}, itemTarget)
		if err != nil {
			return apperror.ErrInternal.Wrap(err)
		}
		if affected != int64(len(apply.ItemIds)) {
			p.logger.Warn(logModule, "Covered items changed under the lock", map[string]interface{}{
				"orderNo":       orderNo,
				"refundApplyId": apply.Id.String(),
				"expected":      len(apply.ItemIds),
				"affected":      affected,
			})
			return concurrent(orderNo, c.op, int64(len(apply.ItemIds)), affected)
		}

		affected, err = uow.OrderRepository().UpdateStatus(ctx, contract.OrderStatusUpdate{
			OrderNo: orderNo,
			From:    []entity.OrderStatus{order.OrderStatus},
			To:      next,
		})
		if err != nil {
			return apperror.ErrInternal.Wrap(err)
		}
		if affected != 1 {
			return concurrent(orderNo, c.op, 1, affected)
		}

		if err := p.statusLog.Record(ctx, uow, actor, statuslog.OrderChange{
			OrderNo:       orderNo,
			Action:        c.action,
			From:          order.OrderStatus,
			To:            next,
			RefundApplyId: &apply.Id,
			Remark:        remark,
		}, statuslog.ItemChanges(apply.ItemIds, entity.ItemRefundStatusWaitApproving, itemTarget)...); err != nil {
			return apperror.ErrInternal.Wrap(err)
		}

		if c.action == entity.ActionRejectRefund {
			if err := p.emitter.Emit(ctx, uow, unlockMessage(order, items, actor)); err != nil {
				return err
			}
		}
		if !order.Confirmed {
			if err := p.emitter.Emit(ctx, uow, events.OrderNotifyMerchantConfirmMessage{
				OrderNo:            orderNo,
				VenueId:            order.VenueId,
				CurrentOrderStatus: string(next),
			}); err != nil {
				return err
			}
		}

		apply.ApplyStatus = c.applyStatus
		apply.ReviewedAt = &now
		res.OrderStatus = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !res.AlreadyDone {
		p.logTransition(c.message, orderNo, applyId, actor, map[string]interface{}{
			"items":  len(res.Apply.ItemIds),
			"remark": remark,
		})
	}
	return res, nil
}
