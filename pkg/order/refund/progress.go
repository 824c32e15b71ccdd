package refund

import (
	"context"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/repository/specification"
	"booking-order-be/pkg/apperror"
)

// Progress is the read model of an order's refunds.
type Progress struct {
	Order *entity.Order
	// Apply is the latest apply, nil if the order never had one.
	Apply        *entity.RefundApply
	Applies      []*entity.RefundApply
	CoveredItems []*entity.OrderItem
	Facts        []*entity.ItemRefundFact
	ExtraCharges []*entity.RefundExtraCharge
	Timeline     []*entity.StatusLog
}

// GetProgress reads the refund state of an order without locking it.
func (p *Processor) GetProgress(ctx context.Context, orderNo string, actor entity.Actor) (*Progress, error) {
	uow := p.factory.NewUnitOfWork(ctx)

	order, err := uow.OrderRepository().FindOne(ctx, specification.ByOrderNo{OrderNo: orderNo})
	if err != nil {
		return nil, apperror.ErrInternal.Wrap(err)
	}
	if order == nil || !actor.CanAccess(order) {
		return nil, apperror.ErrOrderNotFound
	}
	items, err := uow.OrderRepository().FindItems(ctx, specification.ByOrderNo{OrderNo: orderNo})
	if err != nil {
		return nil, apperror.ErrInternal.Wrap(err)
	}
	order.Items = items

	progress := &Progress{Order: order}

	progress.Applies, err = uow.RefundRepository().FindAll(ctx,
		specification.ByOrderNo{OrderNo: orderNo},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperror.ErrInternal.Wrap(err)
	}

	progress.Timeline, err = uow.StatusLogRepository().FindAll(ctx, specification.ByOrderNo{OrderNo: orderNo})
	if err != nil {
		return nil, apperror.ErrInternal.Wrap(err)
	}

	if order.RefundApplyId == nil {
		return progress, nil
	}
	for _, apply := range progress.Applies {
		if apply.Id == *order.RefundApplyId {
			progress.Apply = apply
			break
		}
	}
	if progress.Apply == nil {
		return progress, nil
	}

	progress.Apply.ItemIds, err = uow.RefundRepository().FindItemIds(ctx, progress.Apply.Id)
	if err != nil {
		return nil, apperror.ErrInternal.Wrap(err)
	}
	progress.CoveredItems, err = coveredItems(order, progress.Apply.ItemIds)
	if err != nil {
		return nil, err
	}
	progress.Facts, err = uow.RefundRepository().FindFacts(ctx, specification.ByRefundApply{RefundApplyId: progress.Apply.Id})
	if err != nil {
		return nil, apperror.ErrInternal.Wrap(err)
	}
	progress.ExtraCharges, err = uow.RefundRepository().FindExtraCharges(ctx, specification.ByRefundApply{RefundApplyId: progress.Apply.Id})
	if err != nil {
		return nil, apperror.ErrInternal.Wrap(err)
	}
	return progress, nil
}
