package refund

import (
	"context"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/repository/contract"
	"booking-order-be/internal/repository/unitofwork"
	"booking-order-be/pkg/apperror"
	"booking-order-be/pkg/order/orderlock"
	"booking-order-be/pkg/order/policy"
	"booking-order-be/pkg/order/statemachine"
	"booking-order-be/pkg/order/statuslog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Apply opens a refund apply over the given items and moves the order to REFUND_APPLYING.
func (p *Processor) Apply(ctx context.Context, cmd ApplyCommand) (*ApplyResult, error) {
	itemIds := dedupe(cmd.ItemIds)
	if len(itemIds) == 0 {
		return nil, apperror.ErrRefundItemsEmpty
	}

	res := &ApplyResult{}
	err := p.runner.WithOrderLock(ctx, "apply_refund", cmd.OrderNo, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		order, err := orderlock.LoadVisibleOrder(ctx, uow, cmd.OrderNo, cmd.Actor, true)
		if err != nil {
			return err
		}
		next, err := statemachine.NextOrderStatus(order, entity.ActionApplyRefund)
		if err != nil {
			return err
		}

		items, err := coveredItems(order, itemIds)
		if err != nil {
			return err
		}
		for _, item := range items {
			if _, err := statemachine.NextItemStatus(item.RefundStatus, entity.ActionApplyRefund); err != nil {
				return err
			}
		}
		if err := policy.CheckCoverage(p.policies.For(order.SellerType), len(itemIds), len(order.Items)); err != nil {
			return apperror.ErrPartialRefundNotAllowed.Wrap(err)
		}

		now := p.now().UTC()
		apply := &entity.RefundApply{
			Id:           uuid.New(),
			OrderNo:      order.OrderNo,
			ApplicantId:  cmd.Actor.Id,
			ApplyStatus:  entity.ApplyStatusPending,
			ReasonCode:   cmd.ReasonCode,
			ReasonDetail: cmd.ReasonDetail,
			RefundAmount: decimal.Zero,
			CreatedAt:    now,
			UpdatedAt:    now,
			ItemIds:      itemIds,
		}
		if err := uow.RefundRepository().Create(ctx, apply); err != nil {
			return apperror.ErrInternal.Wrap(err)
		}
		if err := uow.RefundRepository().CreateApplyItems(ctx, apply.Id, itemIds); err != nil {
			return apperror.ErrInternal.Wrap(err)
		}

		for _, id := range itemIds {
			affected, err := uow.OrderRepository().UpdateItemRefundStatus(ctx, order.OrderNo, []uuid.UUID{id},
				[]entity.ItemRefundStatus{entity.ItemRefundStatusNone}, entity.ItemRefundStatusWaitApproving)
			if err != nil {
				return apperror.ErrInternal.Wrap(err)
			}
			if affected != 1 {
				return concurrent(order.OrderNo, "apply item "+id.String(), 1, affected)
			}
		}

		affected, err := uow.OrderRepository().UpdateStatus(ctx, contract.OrderStatusUpdate{
			OrderNo:       order.OrderNo,
			From:          []entity.OrderStatus{order.OrderStatus},
			To:            next,
			RefundApplyId: &apply.Id,
		})
		if err != nil {
			return apperror.ErrInternal.Wrap(err)
		}
		if affected != 1 {
			return concurrent(order.OrderNo, "apply", 1, affected)
		}

		if err := p.statusLog.Record(ctx, uow, cmd.Actor, statuslog.OrderChange{
			OrderNo:       order.OrderNo,
			Action:        entity.ActionApplyRefund,
			From:          order.OrderStatus,
			To:            next,
			RefundApplyId: &apply.Id,
			Remark:        cmd.ReasonCode,
		}, statuslog.ItemChanges(itemIds, entity.ItemRefundStatusNone, entity.ItemRefundStatusWaitApproving)...); err != nil {
			return apperror.ErrInternal.Wrap(err)
		}
		if err := p.emitter.Emit(ctx, uow, unlockMessage(order, items, cmd.Actor)); err != nil {
			return err
		}

		res.Apply = apply
		return nil
	})
	if err != nil {
		return nil, err
	}

	p.logTransition("Refund applied", cmd.OrderNo, res.Apply.Id, cmd.Actor, map[string]interface{}{
		"items":  len(itemIds),
		"reason": cmd.ReasonCode,
	})
	return res, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
