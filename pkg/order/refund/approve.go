package refund

import (
	"context"
	"strings"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/repository/contract"
	"booking-order-be/internal/repository/specification"
	"booking-order-be/internal/repository/unitofwork"
	"booking-order-be/pkg/apperror"
	"booking-order-be/pkg/events"
	"booking-order-be/pkg/metrics"
	"booking-order-be/pkg/order/extracharge"
	"booking-order-be/pkg/order/orderlock"
	"booking-order-be/pkg/order/policy"
	"booking-order-be/pkg/order/statemachine"
	"booking-order-be/pkg/order/statuslog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Approve approves a pending apply: it records the refund facts and extra charges, moves the
// covered items to APPROVED and the order to REFUNDING, and queues the payment refund request.
// Approving an already approved apply returns its recorded outcome.
func (p *Processor) Approve(ctx context.Context, orderNo string, applyId uuid.UUID, actor entity.Actor) (*ApproveResult, error) {
	if err := reviewer(actor); err != nil {
		return nil, err
	}
	res := &ApproveResult{}
	err := p.runner.WithOrderLock(ctx, "approve_refund", orderNo, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		order, err := orderlock.LoadVisibleOrder(ctx, uow, orderNo, actor, true)
		if err != nil {
			return err
		}
		apply, err := loadApply(ctx, uow, orderNo, specification.ByID{ID: applyId})
		if err != nil {
			return err
		}
		res.Apply = apply

		switch apply.ApplyStatus {
		case entity.ApplyStatusApproved:
			res.AlreadyApproved = true
			res.RefundAmount = apply.RefundAmount
			return nil
		case entity.ApplyStatusPending:
		default:
			return applyLost(apply.Id)
		}
		if order.RefundApplyId == nil || *order.RefundApplyId != apply.Id {
			return apperror.ErrApplyStatusNotAllow.WithMessage("refund apply %s is not the active apply of %s", apply.Id, orderNo)
		}

		next, err := statemachine.NextOrderStatus(order, entity.ActionApproveRefund)
		if err != nil {
			return err
		}

		items, err := coveredItems(order, apply.ItemIds)
		if err != nil {
			return err
		}
		var waiting []uuid.UUID
		for _, item := range items {
			switch item.RefundStatus {
			case entity.ItemRefundStatusWaitApproving:
				waiting = append(waiting, item.Id)
			case entity.ItemRefundStatusApproved:
			default:
				return statemachine.ItemError(entity.ActionApproveRefund, item.RefundStatus)
			}
		}

		full := extracharge.FullRefundAfterThis(order.Items, apply.ItemIds)
		now := p.now().UTC()

		alloc, err := p.allocate(ctx, uow, order, apply, full)
		if err != nil {
			return err
		}
		for _, row := range alloc.NewRows {
			exists, err := uow.RefundRepository().ExtraChargeExists(ctx, apply.Id, row.ExtraChargeId)
			if err != nil {
				return apperror.ErrInternal.Wrap(err)
			}
			if exists {
				continue
			}
			row.CreatedAt = now
			if err := uow.RefundRepository().CreateExtraCharge(ctx, row); err != nil {
				return apperror.ErrInternal.Wrap(err)
			}
		}

		pol := p.policies.For(order.SellerType)
		total := alloc.OrderLevelExtra
		for _, item := range items {
			// refundable base is the unit price, item-level discounts are not deducted
			itemAmount := item.UnitPrice
			extra := alloc.ItemExtra[item.Id]
			fee := policy.Fee(pol, itemAmount)
			amount := itemAmount.Add(extra).Sub(fee)
			total = total.Add(amount)

			exists, err := uow.RefundRepository().FactExists(ctx, apply.Id, item.Id)
			if err != nil {
				return apperror.ErrInternal.Wrap(err)
			}
			if exists {
				continue
			}
			if err := uow.RefundRepository().CreateFact(ctx, &entity.ItemRefundFact{
				Id:                uuid.New(),
				RefundApplyId:     apply.Id,
				OrderItemId:       item.Id,
				OrderNo:           orderNo,
				ItemAmount:        itemAmount,
				ExtraChargeAmount: extra,
				RefundFee:         fee,
				RefundAmount:      amount,
				RefundStatus:      entity.FactStatusApproved,
				CreatedAt:         now,
				UpdatedAt:         now,
			}); err != nil {
				return apperror.ErrInternal.Wrap(err)
			}
		}

		for _, id := range waiting {
			affected, err := uow.OrderRepository().UpdateItemRefundStatus(ctx, orderNo, []uuid.UUID{id},
				[]entity.ItemRefundStatus{entity.ItemRefundStatusWaitApproving}, entity.ItemRefundStatusApproved)
			if err != nil {
				return apperror.ErrInternal.Wrap(err)
			}
			if affected != 1 {
				return concurrent(orderNo, "approve item "+id.String(), 1, affected)
			}
		}

		if err := p.checkAmount(ctx, uow, order, apply.Id, total); err != nil {
			return err
		}

		outRequestNo := p.newOutRequestNo()
		affected, err := uow.RefundRepository().UpdateStatus(ctx, contract.ApplyStatusUpdate{
			Id:                apply.Id,
			From:              entity.ApplyStatusPending,
			To:                entity.ApplyStatusApproved,
			ReviewerId:        &actor.Id,
			ReviewedAt:        &now,
			OutRequestNo:      outRequestNo,
			RefundAmount:      &total,
			RefundInitiatedAt: &now,
		})
		if err != nil {
			return apperror.ErrInternal.Wrap(err)
		}
		if affected != 1 {
			return applyLost(apply.Id)
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
			return concurrent(orderNo, "approve", 1, affected)
		}

		if err := p.statusLog.Record(ctx, uow, actor, statuslog.OrderChange{
			OrderNo:       orderNo,
			Action:        entity.ActionApproveRefund,
			From:          order.OrderStatus,
			To:            next,
			RefundApplyId: &apply.Id,
		}, statuslog.ItemChanges(waiting, entity.ItemRefundStatusWaitApproving, entity.ItemRefundStatusApproved)...); err != nil {
			return apperror.ErrInternal.Wrap(err)
		}

		if err := p.emitter.Emit(ctx, uow, events.UserRefundMessage{
			OrderNo:      orderNo,
			OutTradeNo:   order.OutTradeNo,
			OutRequestNo: outRequestNo,
			RefundAmount: total,
			PaymentType:  order.PaymentType,
			RefundReason: refundReason(apply),
		}); err != nil {
			return err
		}
		if err := p.emitter.Emit(ctx, uow, unlockMessage(order, items, actor)); err != nil {
			return err
		}

		apply.ApplyStatus = entity.ApplyStatusApproved
		apply.OutRequestNo = outRequestNo
		apply.RefundAmount = total
		apply.ReviewedAt = &now
		apply.RefundInitiatedAt = &now
		res.ApprovedItemCount = len(waiting)
		res.RefundAmount = total
		res.FullRefund = full
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !res.AlreadyApproved {
		metrics.RefundApprovedAmount.Add(res.RefundAmount.InexactFloat64())
		p.logTransition("Refund approved", orderNo, applyId, actor, map[string]interface{}{
			"items":        res.ApprovedItemCount,
			"refundAmount": res.RefundAmount.StringFixed(2),
			"fullRefund":   res.FullRefund,
			"outRequestNo": res.Apply.OutRequestNo,
		})
	}
	return res, nil
}

// allocate reads the charges, links and already recorded refund charges, then runs the allocator.
func (p *Processor) allocate(ctx context.Context, uow unitofwork.UnitOfWork, order *entity.Order, apply *entity.RefundApply, full bool) (*extracharge.Result, error) {
	charges, err := uow.ExtraChargeRepository().FindCharges(ctx, specification.ByOrderNo{OrderNo: order.OrderNo})
	if err != nil {
		return nil, apperror.ErrInternal.Wrap(err)
	}
	links, err := uow.ExtraChargeRepository().FindLinks(ctx,
		specification.ByOrderNo{OrderNo: order.OrderNo},
		specification.ByOrderItemIds{OrderItemIds: apply.ItemIds},
	)
	if err != nil {
		return nil, apperror.ErrInternal.Wrap(err)
	}
	recordedRows, err := uow.RefundRepository().FindExtraCharges(ctx, specification.ByRefundApply{RefundApplyId: apply.Id})
	if err != nil {
		return nil, apperror.ErrInternal.Wrap(err)
	}
	recorded := make(map[uuid.UUID]bool, len(recordedRows))
	for _, row := range recordedRows {
		recorded[row.ExtraChargeId] = true
	}

	return extracharge.Allocate(extracharge.Input{
		OrderNo:             order.OrderNo,
		RefundApplyId:       apply.Id,
		CoveredItemIds:      apply.ItemIds,
		Charges:             charges,
		Links:               links,
		Recorded:            recorded,
		FullRefundAfterThis: full,
	}, p.now().UTC()), nil
}

// checkAmount enforces 0 <= total <= subtotal, and that this refund plus every refund
// approved before it stays within the subtotal.
func (p *Processor) checkAmount(ctx context.Context, uow unitofwork.UnitOfWork, order *entity.Order, applyId uuid.UUID, total decimal.Decimal) error {
	if total.IsNegative() || total.GreaterThan(order.Subtotal) {
		p.logger.Error(logModule, "Refund amount out of range", map[string]interface{}{
			"orderNo":       order.OrderNo,
			"refundApplyId": applyId.String(),
			"refundAmount":  total.StringFixed(2),
			"subtotal":      order.Subtotal.StringFixed(2),
		})
		return apperror.ErrRefundAmountInvalid.WithMessage("refund %s outside [0, %s]", total.StringFixed(2), order.Subtotal.StringFixed(2))
	}

	facts, err := uow.RefundRepository().FindFacts(ctx, specification.ByOrderNo{OrderNo: order.OrderNo})
	if err != nil {
		return apperror.ErrInternal.Wrap(err)
	}
	prior := decimal.Zero
	for _, fact := range facts {
		if fact.RefundApplyId == applyId {
			continue
		}
		prior = prior.Add(fact.RefundAmount)
	}
	extras, err := uow.RefundRepository().FindExtraCharges(ctx,
		specification.ByOrderNo{OrderNo: order.OrderNo},
		specification.OrderLevelOnly{},
	)
	if err != nil {
		return apperror.ErrInternal.Wrap(err)
	}
	for _, row := range extras {
		if row.RefundApplyId == applyId {
			continue
		}
		prior = prior.Add(row.RefundAmount)
	}

	if prior.Add(total).GreaterThan(order.Subtotal) {
		p.logger.Error(logModule, "Cumulative refund exceeds subtotal", map[string]interface{}{
			"orderNo":       order.OrderNo,
			"refundApplyId": applyId.String(),
			"prior":         prior.StringFixed(2),
			"refundAmount":  total.StringFixed(2),
			"subtotal":      order.Subtotal.StringFixed(2),
		})
		return apperror.ErrRefundAmountInvalid.WithMessage("refunds %s + %s exceed subtotal %s",
			prior.StringFixed(2), total.StringFixed(2), order.Subtotal.StringFixed(2))
	}
	return nil
}

func refundReason(apply *entity.RefundApply) string {
	parts := make([]string, 0, 2)
	if apply.ReasonCode != "" {
		parts = append(parts, apply.ReasonCode)
	}
	if apply.ReasonDetail != "" {
		parts = append(parts, apply.ReasonDetail)
	}
	return strings.Join(parts, ": ")
}
