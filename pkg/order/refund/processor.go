// Package refund runs the refund workflow: apply, review, and the payment completion callback.
package refund

import (
	"context"
	"time"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/pkg/logger"
	"booking-order-be/internal/repository/specification"
	"booking-order-be/internal/repository/unitofwork"
	"booking-order-be/pkg/apperror"
	"booking-order-be/pkg/events"
	"booking-order-be/pkg/order/orderid"
	"booking-order-be/pkg/order/orderlock"
	"booking-order-be/pkg/order/policy"
	"booking-order-be/pkg/order/statuslog"
	"booking-order-be/pkg/outbox"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const logModule = "REFUND"

type Processor struct {
	runner          *orderlock.Runner
	factory         unitofwork.RepositoryFactory
	emitter         outbox.Emitter
	policies        *policy.Registry
	statusLog       *statuslog.Recorder
	logger          logger.ILogger
	now             func() time.Time
	newOutRequestNo orderid.Generator
}

func NewProcessor(runner *orderlock.Runner, factory unitofwork.RepositoryFactory, emitter outbox.Emitter, policies *policy.Registry, log logger.ILogger) *Processor {
	if policies == nil {
		policies = policy.DefaultRegistry()
	}
	return &Processor{
		runner:          runner,
		factory:         factory,
		emitter:         emitter,
		policies:        policies,
		statusLog:       statuslog.NewRecorder(),
		logger:          log,
		now:             time.Now,
		newOutRequestNo: orderid.NewOutRequestNo,
	}
}

type ApplyCommand struct {
	OrderNo      string
	ItemIds      []uuid.UUID
	ReasonCode   string
	ReasonDetail string
	Actor        entity.Actor
}

type ApplyResult struct {
	Apply *entity.RefundApply
}

// ApproveResult carries ApprovedItemCount=0 and AlreadyApproved on an idempotent replay.
type ApproveResult struct {
	Apply             *entity.RefundApply
	ApprovedItemCount int
	RefundAmount      decimal.Decimal
	FullRefund        bool
	AlreadyApproved   bool
}

// ReviewResult is returned by reject and cancel. AlreadyDone marks an idempotent replay.
type ReviewResult struct {
	Apply       *entity.RefundApply
	OrderStatus entity.OrderStatus
	AlreadyDone bool
}

type SuccessResult struct {
	OrderStatus      entity.OrderStatus
	CompletedItems   int
	AlreadyProcessed bool
}

// loadApply reads an apply of the order with a row lock and fills its covered item ids.
func loadApply(ctx context.Context, uow unitofwork.UnitOfWork, orderNo string, specs ...specification.Specification) (*entity.RefundApply, error) {
	specs = append(specs, specification.ByOrderNo{OrderNo: orderNo}, specification.ForUpdate{})
	apply, err := uow.RefundRepository().FindOne(ctx, specs...)
	if err != nil {
		return nil, apperror.ErrInternal.Wrap(err)
	}
	if apply == nil {
		return nil, apperror.ErrRefundApplyNotFound
	}
	ids, err := uow.RefundRepository().FindItemIds(ctx, apply.Id)
	if err != nil {
		return nil, apperror.ErrInternal.Wrap(err)
	}
	apply.ItemIds = ids
	return apply, nil
}

// coveredItems resolves the apply's item ids against the order's items.
func coveredItems(order *entity.Order, ids []uuid.UUID) ([]*entity.OrderItem, error) {
	byId := make(map[uuid.UUID]*entity.OrderItem, len(order.Items))
	for _, item := range order.Items {
		byId[item.Id] = item
	}
	items := make([]*entity.OrderItem, 0, len(ids))
	for _, id := range ids {
		item, ok := byId[id]
		if !ok {
			return nil, apperror.ErrRefundItemNotFound.WithMessage("%s: %s", apperror.ErrRefundItemNotFound.Message, id)
		}
		items = append(items, item)
	}
	return items, nil
}

func concurrent(orderNo, op string, expected, affected int64) error {
	return apperror.ErrConcurrentModification.WithMessage("%s %s: expected %d rows, updated %d", op, orderNo, expected, affected)
}

// reviewer keeps buyers from deciding on their own applies.
func reviewer(actor entity.Actor) error {
	if actor.Type == entity.OperatorTypeBuyer {
		return apperror.ErrApplyStatusNotAllow.WithMessage("only the seller can review a refund apply")
	}
	return nil
}

func applyLost(applyId uuid.UUID) error {
	return apperror.ErrApplyStatusNotAllow.WithMessage("refund apply %s is no longer pending", applyId)
}

func unlockMessage(order *entity.Order, items []*entity.OrderItem, actor entity.Actor) events.UnlockSlotMessage {
	recordIds := make([]string, 0, len(items))
	for _, item := range items {
		recordIds = append(recordIds, item.SlotRecordId)
	}
	bookingDate := ""
	if len(items) > 0 {
		bookingDate = items[0].BookingDate
	}
	return events.UnlockSlotMessage{
		OrderNo:      order.OrderNo,
		UserId:       order.BuyerId,
		RecordIds:    recordIds,
		BookingDate:  bookingDate,
		OperatorType: string(actor.Type),
	}
}

func (p *Processor) logTransition(message string, orderNo string, applyId uuid.UUID, actor entity.Actor, extra map[string]interface{}) {
	details := map[string]interface{}{
		"orderNo":       orderNo,
		"refundApplyId": applyId.String(),
		"operatorType":  string(actor.Type),
		"operatorId":    actor.Id.String(),
	}
	for k, v := range extra {
		details[k] = v
	}
	p.logger.Info(logModule, message, details)
}
