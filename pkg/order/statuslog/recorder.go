// Package statuslog appends the audit trail of order transitions.
package statuslog

import (
	"context"
	"time"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// OrderChange is one order-level transition.
type OrderChange struct {
	OrderNo       string
	Action        entity.StatusAction
	From          entity.OrderStatus
	To            entity.OrderStatus
	RefundApplyId *uuid.UUID
	Remark        string
}

// ItemChange is one item refund-status transition.
type ItemChange struct {
	OrderItemId uuid.UUID
	From        entity.ItemRefundStatus
	To          entity.ItemRefundStatus
}

type Recorder struct {
	now func() time.Time
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

// Record appends the order-level entry followed by one entry per item change, all stamped
// with the same time and actor. It must run inside the transaction of the transition.
func (r *Recorder) Record(ctx context.Context, uow unitofwork.UnitOfWork, actor entity.Actor, change OrderChange, items ...ItemChange) error {
	now := r.now().UTC()
	logs := make([]*entity.StatusLog, 0, len(items)+1)
	logs = append(logs, &entity.StatusLog{
		Id:             uuid.New(),
		OrderNo:        change.OrderNo,
		Action:         change.Action,
		OldOrderStatus: change.From,
		NewOrderStatus: change.To,
		RefundApplyId:  change.RefundApplyId,
		OperatorType:   actor.Type,
		OperatorId:     actor.Id,
		OperatorName:   actor.Name,
		Remark:         change.Remark,
		CreatedAt:      now,
	})
	for _, item := range items {
		itemId := item.OrderItemId
		logs = append(logs, &entity.StatusLog{
			Id:                  uuid.New(),
			OrderNo:             change.OrderNo,
			OrderItemId:         &itemId,
			Action:              change.Action,
			OldOrderStatus:      change.From,
			NewOrderStatus:      change.To,
			OldItemRefundStatus: item.From,
			NewItemRefundStatus: item.To,
			RefundApplyId:       change.RefundApplyId,
			OperatorType:        actor.Type,
			OperatorId:          actor.Id,
			OperatorName:        actor.Name,
			Remark:              change.Remark,
			CreatedAt:           now,
		})
	}
	return uow.StatusLogRepository().Append(ctx, logs...)
}

// ItemChanges builds one change per item id with the same from/to.
func ItemChanges(itemIds []uuid.UUID, from, to entity.ItemRefundStatus) []ItemChange {
	changes := make([]ItemChange, 0, len(itemIds))
	for _, id := range itemIds {
		changes = append(changes, ItemChange{OrderItemId: id, From: from, To: to})
	}
	return changes
}
