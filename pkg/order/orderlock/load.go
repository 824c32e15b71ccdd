package orderlock

import (
	"context"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/repository/specification"
	"booking-order-be/internal/repository/unitofwork"
	"booking-order-be/pkg/apperror"
)

// LoadOrder reads the order row, and its items when withItems is set, with row locks.
// Call it inside WithOrderLock so every transition is computed from committed state.
func LoadOrder(ctx context.Context, uow unitofwork.UnitOfWork, orderNo string, withItems bool) (*entity.Order, error) {
	order, err := uow.OrderRepository().FindOne(ctx,
		specification.ByOrderNo{OrderNo: orderNo},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, apperror.ErrInternal.Wrap(err)
	}
	if order == nil {
		return nil, apperror.ErrOrderNotFound
	}
	if !withItems {
		return order, nil
	}

	items, err := uow.OrderRepository().FindItems(ctx,
		specification.ByOrderNo{OrderNo: orderNo},
		specification.ForUpdate{},
	)
	if err != nil {
		return nil, apperror.ErrInternal.Wrap(err)
	}
	order.Items = items
	return order, nil
}

// LoadVisibleOrder is LoadOrder plus the actor scope check. Orders outside the actor's scope
// are reported as not found.
func LoadVisibleOrder(ctx context.Context, uow unitofwork.UnitOfWork, orderNo string, actor entity.Actor, withItems bool) (*entity.Order, error) {
	order, err := LoadOrder(ctx, uow, orderNo, withItems)
	if err != nil {
		return nil, err
	}
	if !actor.CanAccess(order) {
		return nil, apperror.ErrOrderNotFound
	}
	return order, nil
}
