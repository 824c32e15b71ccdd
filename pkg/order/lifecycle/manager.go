// Package lifecycle drives orders through creation, payment, confirmation, cancellation
// and completion.
package lifecycle

import (
	"context"
	"time"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/pkg/logger"
	"booking-order-be/internal/repository/contract"
	"booking-order-be/internal/repository/specification"
	"booking-order-be/internal/repository/unitofwork"
	"booking-order-be/pkg/apperror"
	"booking-order-be/pkg/events"
	"booking-order-be/pkg/order/extracharge"
	"booking-order-be/pkg/order/orderid"
	"booking-order-be/pkg/order/orderlock"
	"booking-order-be/pkg/order/statemachine"
	"booking-order-be/pkg/order/statuslog"
	"booking-order-be/pkg/outbox"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const logModule = "ORDER_LIFECYCLE"

type Config struct {
	// AutoCancelDelay is how long an unpaid order lives.
	AutoCancelDelay time.Duration
	// DirectSink receives the compensating slot unlock when it cannot be queued in the outbox.
	DirectSink outbox.Sink
}

type Manager struct {
	runner     *orderlock.Runner
	factory    unitofwork.RepositoryFactory
	emitter    outbox.Emitter
	statusLog  *statuslog.Recorder
	logger     logger.ILogger
	cfg        Config
	now        func() time.Time
	newOrderNo orderid.Generator
}

func NewManager(runner *orderlock.Runner, factory unitofwork.RepositoryFactory, emitter outbox.Emitter, log logger.ILogger, cfg Config) *Manager {
	if cfg.AutoCancelDelay <= 0 {
		cfg.AutoCancelDelay = 15 * time.Minute
	}
	return &Manager{
		runner:     runner,
		factory:    factory,
		emitter:    emitter,
		statusLog:  statuslog.NewRecorder(),
		logger:     log,
		cfg:        cfg,
		now:        time.Now,
		newOrderNo: orderid.NewOrderNo,
	}
}

// Create stores a PENDING order with its items, extra charges and allocations, and queues the
// auto-cancel timer. If the transaction does not commit, the slots the caller locked are
// released by a compensating unlock event.
func (m *Manager) Create(ctx context.Context, cmd CreateOrderCommand) (*entity.Order, error) {
	order, charges, links, err := m.buildOrder(cmd)
	if err != nil {
		return nil, err
	}

	err = m.runner.WithOrderLock(ctx, "create", order.OrderNo, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		if err := uow.OrderRepository().Create(ctx, order); err != nil {
			return apperror.ErrInternal.Wrap(err)
		}
		if err := uow.OrderRepository().CreateItems(ctx, order.Items); err != nil {
			return apperror.ErrInternal.Wrap(err)
		}
		if len(charges) > 0 {
			if err := uow.ExtraChargeRepository().CreateCharges(ctx, charges); err != nil {
				return apperror.ErrInternal.Wrap(err)
			}
			if err := uow.ExtraChargeRepository().CreateLinks(ctx, links); err != nil {
				return apperror.ErrInternal.Wrap(err)
			}
		}

		if err := m.statusLog.Record(ctx, uow, cmd.Buyer, statuslog.OrderChange{
			OrderNo: order.OrderNo,
			Action:  entity.ActionCreate,
			To:      entity.OrderStatusPending,
		}); err != nil {
			return apperror.ErrInternal.Wrap(err)
		}

		return m.emitter.Emit(ctx, uow, events.OrderAutoCancelMessage{
			OrderNo:     order.OrderNo,
			UserId:      order.BuyerId,
			BookingDate: order.Items[0].BookingDate,
			SlotIds:     slotIds(order.Items),
			DueAt:       order.CreatedAt.Add(m.cfg.AutoCancelDelay),
		})
	})
	if err != nil {
		m.compensateCreate(ctx, order, cmd.Buyer, err)
		return nil, err
	}

	m.logger.Info(logModule, "Order created", map[string]interface{}{
		"orderNo":   order.OrderNo,
		"buyerId":   order.BuyerId.String(),
		"items":     len(order.Items),
		"payAmount": order.PayAmount.StringFixed(2),
	})
	return order, nil
}

// compensateCreate queues the slot release in a transaction of its own.
func (m *Manager) compensateCreate(ctx context.Context, order *entity.Order, actor entity.Actor, cause error) {
	m.logger.Warn(logModule, "Order creation rolled back, releasing slots", map[string]interface{}{
		"orderNo": order.OrderNo,
		"error":   cause.Error(),
	})

	ctx = context.WithoutCancel(ctx)
	err := m.runner.WithOrderLock(ctx, "create_compensate", order.OrderNo, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		return m.emitter.Emit(ctx, uow, unlockMessage(order, actor))
	})
	if err == nil {
		return
	}
	m.logger.Error(logModule, "Failed to queue compensating slot unlock", map[string]interface{}{
		"orderNo": order.OrderNo,
		"slots":   slotIds(order.Items),
		"error":   err.Error(),
	})
	if m.cfg.DirectSink == nil {
		return
	}

	msg, err := outbox.NewMessage(unlockMessage(order, actor), m.now())
	if err == nil {
		err = m.cfg.DirectSink.Deliver(ctx, msg)
	}
	if err != nil {
		m.logger.Error(logModule, "Direct slot unlock failed, slots stay locked until they expire", map[string]interface{}{
			"orderNo": order.OrderNo,
			"slots":   slotIds(order.Items),
			"error":   err.Error(),
		})
		return
	}
	m.logger.Warn(logModule, "Slot unlock delivered directly", map[string]interface{}{
		"orderNo":   order.OrderNo,
		"messageId": msg.Id.String(),
	})
}

func (m *Manager) buildOrder(cmd CreateOrderCommand) (*entity.Order, []*entity.ExtraCharge, []*entity.ExtraChargeLink, error) {
	if len(cmd.Items) == 0 {
		return nil, nil, nil, apperror.ErrOrderItemsEmpty
	}

	now := m.now().UTC()
	orderNo := m.newOrderNo()
	var (
		items   []*entity.OrderItem
		charges []*entity.ExtraCharge
		links   []*entity.ExtraChargeLink
	)
	base := decimal.Zero
	extra := decimal.Zero

	for i, in := range cmd.Items {
		if in.UnitPrice.IsNegative() {
			return nil, nil, nil, apperror.ErrInvalidParam.WithMessage("item %d: negative unit price", i)
		}
		item := &entity.OrderItem{
			Id:           uuid.New(),
			OrderNo:      orderNo,
			ResourceId:   in.ResourceId,
			ResourceName: in.ResourceName,
			SlotRecordId: in.SlotRecordId,
			BookingDate:  in.BookingDate,
			StartTime:    in.StartTime,
			EndTime:      in.EndTime,
			UnitPrice:    in.UnitPrice.Round(2),
			ExtraAmount:  decimal.Zero,
			RefundStatus: entity.ItemRefundStatusNone,
			CreatedAt:    now.Add(time.Duration(i) * time.Microsecond),
			UpdatedAt:    now,
		}
		for _, c := range in.Charges {
			if c.ChargeAmount.IsNegative() {
				return nil, nil, nil, apperror.ErrInvalidParam.WithMessage("item %d: negative extra charge", i)
			}
			itemId := item.Id
			charge := newCharge(orderNo, &itemId, c, now)
			charges = append(charges, charge)
			links = append(links, &entity.ExtraChargeLink{
				Id:              uuid.New(),
				OrderNo:         orderNo,
				OrderItemId:     item.Id,
				ExtraChargeId:   charge.Id,
				AllocatedAmount: charge.ChargeAmount,
				CreatedAt:       now,
			})
			item.ExtraAmount = item.ExtraAmount.Add(charge.ChargeAmount)
		}
		item.Subtotal = item.UnitPrice.Add(item.ExtraAmount)
		base = base.Add(item.UnitPrice)
		extra = extra.Add(item.ExtraAmount)
		items = append(items, item)
	}

	for _, c := range cmd.OrderCharges {
		if c.ChargeAmount.IsNegative() {
			return nil, nil, nil, apperror.ErrInvalidParam.WithMessage("negative order extra charge")
		}
		charge := newCharge(orderNo, nil, c, now)
		charges = append(charges, charge)
		extra = extra.Add(charge.ChargeAmount)
		for i, share := range extracharge.Split(charge.ChargeAmount, items) {
			links = append(links, &entity.ExtraChargeLink{
				Id:              uuid.New(),
				OrderNo:         orderNo,
				OrderItemId:     items[i].Id,
				ExtraChargeId:   charge.Id,
				AllocatedAmount: share,
				CreatedAt:       now,
			})
		}
	}

	subtotal := base.Add(extra)
	discount := cmd.DiscountAmount.Round(2)
	if discount.IsNegative() || discount.GreaterThan(subtotal) {
		return nil, nil, nil, apperror.ErrOrderAmountMismatch.WithMessage("discount %s outside [0, %s]", discount.StringFixed(2), subtotal.StringFixed(2))
	}

	order := &entity.Order{
		OrderNo:        orderNo,
		BuyerId:        cmd.Buyer.Id,
		SellerId:       cmd.SellerId,
		SellerType:     cmd.SellerType,
		VenueId:        cmd.VenueId,
		OrderStatus:    entity.OrderStatusPending,
		PaymentStatus:  entity.PaymentStatusUnpaid,
		BaseAmount:     base,
		ExtraAmount:    extra,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		PayAmount:      subtotal.Sub(discount),
		CreatedAt:      now,
		UpdatedAt:      now,
		Items:          items,
	}
	if !order.AmountsConsistent() {
		return nil, nil, nil, apperror.ErrOrderAmountMismatch
	}
	return order, charges, links, nil
}

func newCharge(orderNo string, itemId *uuid.UUID, c NewCharge, now time.Time) *entity.ExtraCharge {
	mode := c.ChargeMode
	if mode == "" {
		mode = entity.ChargeModeFixed
	}
	return &entity.ExtraCharge{
		Id:           uuid.New(),
		OrderNo:      orderNo,
		OrderItemId:  itemId,
		ChargeTypeId: c.ChargeTypeId,
		ChargeName:   c.ChargeName,
		ChargeMode:   mode,
		ChargeAmount: c.ChargeAmount.Round(2),
		CreatedAt:    now,
	}
}

// CancelUnpaid cancels a PENDING, UNPAID order and releases its slots. Cancelling an already
// cancelled order succeeds without writing.
func (m *Manager) CancelUnpaid(ctx context.Context, orderNo string, actor entity.Actor) (*CancelResult, error) {
	res := &CancelResult{}
	err := m.runner.WithOrderLock(ctx, "cancel_unpaid", orderNo, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		order, err := orderlock.LoadVisibleOrder(ctx, uow, orderNo, actor, true)
		if err != nil {
			return err
		}
		res.Order = order
		if order.OrderStatus == entity.OrderStatusCancelled {
			res.AlreadyCancelled = true
			return nil
		}

		next, err := statemachine.NextOrderStatus(order, entity.ActionCancelUnpaid)
		if err != nil {
			return err
		}

		now := m.now().UTC()
		affected, err := uow.OrderRepository().UpdateStatus(ctx, contract.OrderStatusUpdate{
			OrderNo:              orderNo,
			From:                 []entity.OrderStatus{order.OrderStatus},
			To:                   next,
			RequirePaymentStatus: entity.PaymentStatusUnpaid,
			CancelledAt:          &now,
		})
		if err != nil {
			return apperror.ErrInternal.Wrap(err)
		}
		if affected != 1 {
			return concurrent(orderNo, "cancel", affected)
		}

		if err := m.statusLog.Record(ctx, uow, actor, statuslog.OrderChange{
			OrderNo: orderNo,
			Action:  entity.ActionCancelUnpaid,
			From:    order.OrderStatus,
			To:      next,
		}); err != nil {
			return apperror.ErrInternal.Wrap(err)
		}
		if err := m.emitter.Emit(ctx, uow, unlockMessage(order, actor)); err != nil {
			return err
		}

		order.OrderStatus = next
		order.CancelledAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !res.AlreadyCancelled {
		m.logger.Info(logModule, "Order cancelled", map[string]interface{}{
			"orderNo":  orderNo,
			"operator": string(actor.Type),
		})
	}
	return res, nil
}

// Confirm marks a paid order confirmed by the merchant, or automatically.
func (m *Manager) Confirm(ctx context.Context, orderNo string, autoConfirm bool, actor entity.Actor) (*ConfirmResult, error) {
	res := &ConfirmResult{}
	err := m.runner.WithOrderLock(ctx, "confirm", orderNo, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		order, err := orderlock.LoadVisibleOrder(ctx, uow, orderNo, actor, false)
		if err != nil {
			return err
		}
		res.Order = order
		if order.Confirmed {
			if order.OrderStatus == entity.OrderStatusConfirmed {
				return nil
			}
			return statemachine.OrderError(entity.ActionConfirm, order.OrderStatus)
		}

		next, err := statemachine.NextOrderStatus(order, entity.ActionConfirm)
		if err != nil {
			return err
		}

		now := m.now().UTC()
		confirmed := true
		affected, err := uow.OrderRepository().UpdateStatus(ctx, contract.OrderStatusUpdate{
			OrderNo:            orderNo,
			From:               []entity.OrderStatus{order.OrderStatus},
			To:                 next,
			RequireUnconfirmed: true,
			Confirmed:          &confirmed,
			ConfirmedAt:        &now,
		})
		if err != nil {
			return apperror.ErrInternal.Wrap(err)
		}
		if affected == 0 {
			m.logger.Warn(logModule, "Confirm lost to a concurrent writer", map[string]interface{}{
				"orderNo": orderNo,
			})
			return nil
		}

		remark := ""
		if autoConfirm {
			remark = "auto confirm"
		}
		if err := m.statusLog.Record(ctx, uow, actor, statuslog.OrderChange{
			OrderNo: orderNo,
			Action:  entity.ActionConfirm,
			From:    order.OrderStatus,
			To:      next,
			Remark:  remark,
		}); err != nil {
			return apperror.ErrInternal.Wrap(err)
		}

		order.OrderStatus = next
		order.Confirmed = true
		order.ConfirmedAt = &now
		res.Confirmed = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Confirmed {
		m.logger.Info(logModule, "Order confirmed", map[string]interface{}{
			"orderNo":     orderNo,
			"autoConfirm": autoConfirm,
			"operator":    string(actor.Type),
		})
	}
	return res, nil
}

// PaySuccess applies the payment callback. A callback replayed with the same trade number is
// a no-op; a payment landing on a cancelled order is rejected so the payment side refunds it.
func (m *Manager) PaySuccess(ctx context.Context, cmd PaySuccessCommand) (*PayResult, error) {
	if cmd.OrderNo == "" || cmd.OutTradeNo == "" {
		return nil, apperror.ErrInvalidParam.WithMessage("orderNo and outTradeNo are required")
	}

	actor := entity.Actor{Type: entity.OperatorTypePayment, Name: "payment-callback"}
	res := &PayResult{}
	err := m.runner.WithOrderLock(ctx, "pay", cmd.OrderNo, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		order, err := orderlock.LoadOrder(ctx, uow, cmd.OrderNo, false)
		if err != nil {
			return err
		}
		res.Order = order
		if order.PaymentStatus != entity.PaymentStatusUnpaid && order.OutTradeNo == cmd.OutTradeNo {
			res.AlreadyPaid = true
			return nil
		}

		next, err := statemachine.NextOrderStatus(order, entity.ActionPay)
		if err != nil {
			return err
		}

		now := m.now().UTC()
		affected, err := uow.OrderRepository().UpdateStatus(ctx, contract.OrderStatusUpdate{
			OrderNo:              cmd.OrderNo,
			From:                 []entity.OrderStatus{order.OrderStatus},
			To:                   next,
			RequirePaymentStatus: entity.PaymentStatusUnpaid,
			PaymentStatus:        entity.PaymentStatusPaid,
			OutTradeNo:           cmd.OutTradeNo,
			PaymentType:          cmd.PaymentType,
			PaidAt:               &now,
		})
		if err != nil {
			return apperror.ErrInternal.Wrap(err)
		}
		if affected != 1 {
			return concurrent(cmd.OrderNo, "pay", affected)
		}

		if err := m.statusLog.Record(ctx, uow, actor, statuslog.OrderChange{
			OrderNo: cmd.OrderNo,
			Action:  entity.ActionPay,
			From:    order.OrderStatus,
			To:      next,
			Remark:  cmd.OutTradeNo,
		}); err != nil {
			return apperror.ErrInternal.Wrap(err)
		}

		order.OrderStatus = next
		order.PaymentStatus = entity.PaymentStatusPaid
		order.OutTradeNo = cmd.OutTradeNo
		order.PaymentType = cmd.PaymentType
		order.PaidAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !res.AlreadyPaid {
		m.logger.Info(logModule, "Order paid", map[string]interface{}{
			"orderNo":    cmd.OrderNo,
			"outTradeNo": cmd.OutTradeNo,
		})
	}
	return res, nil
}

// Complete closes a confirmed order.
func (m *Manager) Complete(ctx context.Context, orderNo string, actor entity.Actor) (*entity.Order, error) {
	var result *entity.Order
	err := m.runner.WithOrderLock(ctx, "complete", orderNo, func(ctx context.Context, uow unitofwork.UnitOfWork) error {
		order, err := orderlock.LoadVisibleOrder(ctx, uow, orderNo, actor, false)
		if err != nil {
			return err
		}
		next, err := statemachine.NextOrderStatus(order, entity.ActionComplete)
		if err != nil {
			return err
		}

		now := m.now().UTC()
		affected, err := uow.OrderRepository().UpdateStatus(ctx, contract.OrderStatusUpdate{
			OrderNo:     orderNo,
			From:        []entity.OrderStatus{order.OrderStatus},
			To:          next,
			CompletedAt: &now,
		})
		if err != nil {
			return apperror.ErrInternal.Wrap(err)
		}
		if affected != 1 {
			return concurrent(orderNo, "complete", affected)
		}

		if err := m.statusLog.Record(ctx, uow, actor, statuslog.OrderChange{
			OrderNo: orderNo,
			Action:  entity.ActionComplete,
			From:    order.OrderStatus,
			To:      next,
		}); err != nil {
			return apperror.ErrInternal.Wrap(err)
		}

		order.OrderStatus = next
		order.CompletedAt = &now
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GetOrder returns the order with its items. It takes no lock.
func (m *Manager) GetOrder(ctx context.Context, orderNo string, actor entity.Actor) (*entity.Order, error) {
	uow := m.factory.NewUnitOfWork(ctx)
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
	return order, nil
}

func concurrent(orderNo, op string, affected int64) error {
	return apperror.ErrConcurrentModification.WithMessage("%s %s: expected 1 row, updated %d", op, orderNo, affected)
}

func slotIds(items []*entity.OrderItem) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.SlotRecordId)
	}
	return ids
}

func unlockMessage(order *entity.Order, actor entity.Actor) events.UnlockSlotMessage {
	bookingDate := ""
	if len(order.Items) > 0 {
		bookingDate = order.Items[0].BookingDate
	}
	return events.UnlockSlotMessage{
		OrderNo:      order.OrderNo,
		UserId:       order.BuyerId,
		RecordIds:    slotIds(order.Items),
		BookingDate:  bookingDate,
		OperatorType: string(actor.Type),
	}
}
