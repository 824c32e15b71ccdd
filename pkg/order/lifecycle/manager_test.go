package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/repository/unitofwork"
	"booking-order-be/pkg/apperror"
	"booking-order-be/pkg/events"
	"booking-order-be/pkg/order/ordertest"
	"booking-order-be/pkg/outbox"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newManager(env *ordertest.Env, emitter outbox.Emitter) *Manager {
	if emitter == nil {
		emitter = outbox.NewRecorder()
	}
	return NewManager(env.Runner, env.Factory, emitter, env.Logger, Config{AutoCancelDelay: 15 * time.Minute})
}

func createCommand(buyer uuid.UUID) CreateOrderCommand {
	return CreateOrderCommand{
		Buyer:      entity.Actor{Type: entity.OperatorTypeBuyer, Id: buyer, Name: "buyer"},
		SellerId:   uuid.New(),
		SellerType: entity.SellerTypeVenue,
		VenueId:    uuid.New(),
		Items: []NewItem{
			{
				ResourceId:   uuid.New(),
				ResourceName: "Court 1",
				SlotRecordId: "slot-1",
				BookingDate:  "2026-11-01",
				StartTime:    "08:00",
				EndTime:      "09:00",
				UnitPrice:    ordertest.Money("100.00"),
				Charges: []NewCharge{
					{ChargeTypeId: uuid.New(), ChargeName: "Lighting", ChargeMode: entity.ChargeModeFixed, ChargeAmount: ordertest.Money("20.00")},
				},
			},
			{
				ResourceId:   uuid.New(),
				ResourceName: "Court 1",
				SlotRecordId: "slot-2",
				BookingDate:  "2026-11-01",
				StartTime:    "09:00",
				EndTime:      "10:00",
				UnitPrice:    ordertest.Money("50.00"),
			},
		},
		OrderCharges: []NewCharge{
			{ChargeTypeId: uuid.New(), ChargeName: "Service", ChargeMode: entity.ChargeModePercentage, ChargeAmount: ordertest.Money("15.00")},
		},
		DiscountAmount: ordertest.Money("5.00"),
	}
}

func buyerOf(order *entity.Order) entity.Actor {
	return entity.Actor{Type: entity.OperatorTypeBuyer, Id: order.BuyerId, Name: "buyer"}
}

func sellerOf(order *entity.Order) entity.Actor {
	return entity.Actor{Type: entity.OperatorTypeSeller, Id: order.SellerId, Name: "seller"}
}

func TestCreate(t *testing.T) {
	env := ordertest.NewEnv(t)
	m := newManager(env, nil)
	ctx := context.Background()

	order, err := m.Create(ctx, createCommand(uuid.New()))
	require.NoError(t, err)

	stored := env.Order(t, order.OrderNo)
	assert.Equal(t, entity.OrderStatusPending, stored.OrderStatus)
	assert.Equal(t, entity.PaymentStatusUnpaid, stored.PaymentStatus)
	assert.Equal(t, "150.00", stored.BaseAmount.StringFixed(2))
	assert.Equal(t, "35.00", stored.ExtraAmount.StringFixed(2))
	assert.Equal(t, "185.00", stored.Subtotal.StringFixed(2))
	assert.Equal(t, "180.00", stored.PayAmount.StringFixed(2))
	assert.True(t, stored.AmountsConsistent())

	items := env.Items(t, order.OrderNo)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.Equal(t, entity.ItemRefundStatusNone, item.RefundStatus)
	}

	timers := env.Outbox(t, order.OrderNo, events.TopicOrderAutoCancel)
	require.Len(t, timers, 1)
	var msg events.OrderAutoCancelMessage
	require.NoError(t, json.Unmarshal(timers[0].Payload, &msg))
	assert.Equal(t, order.OrderNo, msg.OrderNo)
	assert.ElementsMatch(t, []string{"slot-1", "slot-2"}, msg.SlotIds)
	assert.WithinDuration(t, order.CreatedAt.Add(15*time.Minute), msg.DueAt, time.Second)

	assert.Empty(t, env.Outbox(t, order.OrderNo, events.TopicUnlockSlot))

	logs := env.StatusLogs(t, order.OrderNo)
	require.Len(t, logs, 1)
	assert.Equal(t, entity.ActionCreate, logs[0].Action)
	assert.Equal(t, entity.OrderStatusPending, logs[0].NewOrderStatus)
}

func TestCreate_Validation(t *testing.T) {
	env := ordertest.NewEnv(t)
	m := newManager(env, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*CreateOrderCommand)
		want   error
	}{
		{"no items", func(c *CreateOrderCommand) { c.Items = nil }, apperror.ErrOrderItemsEmpty},
		{"discount above subtotal", func(c *CreateOrderCommand) { c.DiscountAmount = ordertest.Money("999.00") }, apperror.ErrOrderAmountMismatch},
		{"negative discount", func(c *CreateOrderCommand) { c.DiscountAmount = ordertest.Money("-1.00") }, apperror.ErrOrderAmountMismatch},
		{"negative price", func(c *CreateOrderCommand) { c.Items[0].UnitPrice = ordertest.Money("-1.00") }, apperror.ErrInvalidParam},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := createCommand(uuid.New())
			tt.mutate(&cmd)
			_, err := m.Create(ctx, cmd)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

// failingEmitter fails on the listed topics and records everything else.
type failingEmitter struct {
	topics []string
	next   outbox.Emitter
}

func (f *failingEmitter) Emit(ctx context.Context, uow unitofwork.UnitOfWork, event events.Event) error {
	for _, topic := range f.topics {
		if event.EventType() == topic {
			return errors.New("broker row rejected")
		}
	}
	return f.next.Emit(ctx, uow, event)
}

type recordingSink struct {
	mu       sync.Mutex
	messages []*entity.OutboxMessage
}

func (s *recordingSink) Deliver(ctx context.Context, msg *entity.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

func TestCreate_RollbackReleasesSlots(t *testing.T) {
	env := ordertest.NewEnv(t)
	m := newManager(env, &failingEmitter{topics: []string{events.TopicOrderAutoCancel}, next: outbox.NewRecorder()})
	ctx := context.Background()

	var orderNo string
	m.newOrderNo = func() string {
		orderNo = "BO-ROLLBACK-" + uuid.NewString()[:8]
		return orderNo
	}

	_, err := m.Create(ctx, createCommand(uuid.New()))
	require.Error(t, err)

	uow := env.Factory.NewUnitOfWork(ctx)
	order, err := uow.OrderRepository().FindOne(ctx)
	require.NoError(t, err)
	assert.Nil(t, order, "order must not survive the rollback")

	unlocks := env.Outbox(t, orderNo, events.TopicUnlockSlot)
	require.Len(t, unlocks, 1)
	var msg events.UnlockSlotMessage
	require.NoError(t, json.Unmarshal(unlocks[0].Payload, &msg))
	assert.ElementsMatch(t, []string{"slot-1", "slot-2"}, msg.RecordIds)
	assert.Equal(t, string(entity.OperatorTypeBuyer), msg.OperatorType)
}

func TestCreate_CompensationFallsBackToDirectSink(t *testing.T) {
	env := ordertest.NewEnv(t)
	sink := &recordingSink{}
	emitter := &failingEmitter{topics: []string{events.TopicOrderAutoCancel, events.TopicUnlockSlot}, next: outbox.NewRecorder()}
	m := NewManager(env.Runner, env.Factory, emitter, env.Logger, Config{AutoCancelDelay: 15 * time.Minute, DirectSink: sink})
	ctx := context.Background()

	var orderNo string
	m.newOrderNo = func() string {
		orderNo = "BO-DIRECT-" + uuid.NewString()[:8]
		return orderNo
	}

	_, err := m.Create(ctx, createCommand(uuid.New()))
	require.Error(t, err)

	assert.Empty(t, env.Outbox(t, orderNo, events.TopicUnlockSlot))

	require.Len(t, sink.messages, 1)
	delivered := sink.messages[0]
	assert.Equal(t, events.TopicUnlockSlot, delivered.Topic)
	assert.Equal(t, orderNo, delivered.AggregateId)
	var msg events.UnlockSlotMessage
	require.NoError(t, json.Unmarshal(delivered.Payload, &msg))
	assert.ElementsMatch(t, []string{"slot-1", "slot-2"}, msg.RecordIds)
}

func TestCreate_QueuedCompensationSkipsDirectSink(t *testing.T) {
	env := ordertest.NewEnv(t)
	sink := &recordingSink{}
	emitter := &failingEmitter{topics: []string{events.TopicOrderAutoCancel}, next: outbox.NewRecorder()}
	m := NewManager(env.Runner, env.Factory, emitter, env.Logger, Config{AutoCancelDelay: 15 * time.Minute, DirectSink: sink})

	var orderNo string
	m.newOrderNo = func() string {
		orderNo = "BO-QUEUED-" + uuid.NewString()[:8]
		return orderNo
	}

	_, err := m.Create(context.Background(), createCommand(uuid.New()))
	require.Error(t, err)

	assert.Len(t, env.Outbox(t, orderNo, events.TopicUnlockSlot), 1)
	assert.Empty(t, sink.messages)
}

func TestCancelUnpaid(t *testing.T) {
	env := ordertest.NewEnv(t)
	m := newManager(env, nil)
	ctx := context.Background()

	seeded := env.SeedOrder(t, ordertest.OrderSeed{
		Status: entity.OrderStatusPending,
		Items:  []ordertest.ItemSeed{{UnitPrice: "80.00"}, {UnitPrice: "80.00"}},
	})
	orderNo := seeded.Order.OrderNo

	res, err := m.CancelUnpaid(ctx, orderNo, buyerOf(seeded.Order))
	require.NoError(t, err)
	assert.False(t, res.AlreadyCancelled)
	assert.Equal(t, entity.OrderStatusCancelled, env.Order(t, orderNo).OrderStatus)

	unlocks := env.Outbox(t, orderNo, events.TopicUnlockSlot)
	require.Len(t, unlocks, 1)

	// replay: success, no second unlock
	res, err = m.CancelUnpaid(ctx, orderNo, entity.SystemActor("auto-cancel"))
	require.NoError(t, err)
	assert.True(t, res.AlreadyCancelled)
	assert.Len(t, env.Outbox(t, orderNo, events.TopicUnlockSlot), 1)
	assert.Len(t, env.StatusLogs(t, orderNo), 1)
}

func TestCancelUnpaid_RejectsPaidOrder(t *testing.T) {
	env := ordertest.NewEnv(t)
	m := newManager(env, nil)

	seeded := env.SeedOrder(t, ordertest.OrderSeed{Items: []ordertest.ItemSeed{{UnitPrice: "80.00"}}})

	_, err := m.CancelUnpaid(context.Background(), seeded.Order.OrderNo, buyerOf(seeded.Order))
	assert.ErrorIs(t, err, apperror.ErrOrderStatusNotAllowCancel)
	assert.Equal(t, entity.OrderStatusPaid, env.Order(t, seeded.Order.OrderNo).OrderStatus)
	assert.Empty(t, env.Outbox(t, seeded.Order.OrderNo, events.TopicUnlockSlot))
}

func TestCancelUnpaid_OtherBuyerSeesNotFound(t *testing.T) {
	env := ordertest.NewEnv(t)
	m := newManager(env, nil)

	seeded := env.SeedOrder(t, ordertest.OrderSeed{Status: entity.OrderStatusPending, Items: []ordertest.ItemSeed{{UnitPrice: "80.00"}}})
	stranger := entity.Actor{Type: entity.OperatorTypeBuyer, Id: uuid.New()}

	_, err := m.CancelUnpaid(context.Background(), seeded.Order.OrderNo, stranger)
	assert.ErrorIs(t, err, apperror.ErrOrderNotFound)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name          string
		status        entity.OrderStatus
		confirmed     bool
		wantConfirmed bool
		wantErr       error
	}{
		{"paid", entity.OrderStatusPaid, false, true, nil},
		{"refund rejected", entity.OrderStatusRefundRejected, false, true, nil},
		{"refund cancelled", entity.OrderStatusRefundCancelled, false, true, nil},
		{"partially refunded", entity.OrderStatusPartiallyRefunded, false, true, nil},
		{"already confirmed", entity.OrderStatusConfirmed, true, false, nil},
		{"pending", entity.OrderStatusPending, false, false, apperror.ErrOrderStatusNotAllowConfirm},
		{"refunding", entity.OrderStatusRefunding, false, false, apperror.ErrOrderStatusNotAllowConfirm},
		{"confirmed flag on completed", entity.OrderStatusCompleted, true, false, apperror.ErrOrderStatusNotAllowConfirm},
		{"confirmed flag on refunded", entity.OrderStatusRefunded, true, false, apperror.ErrOrderStatusNotAllowConfirm},
		{"confirmed flag on refunding", entity.OrderStatusRefunding, true, false, apperror.ErrOrderStatusNotAllowConfirm},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := ordertest.NewEnv(t)
			m := newManager(env, nil)
			seeded := env.SeedOrder(t, ordertest.OrderSeed{
				Status:    tt.status,
				Confirmed: tt.confirmed,
				Items:     []ordertest.ItemSeed{{UnitPrice: "80.00"}},
			})

			res, err := m.Confirm(context.Background(), seeded.Order.OrderNo, false, sellerOf(seeded.Order))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.status, env.Order(t, seeded.Order.OrderNo).OrderStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantConfirmed, res.Confirmed)

			stored := env.Order(t, seeded.Order.OrderNo)
			assert.True(t, stored.Confirmed)
			if tt.wantConfirmed {
				assert.Equal(t, entity.OrderStatusConfirmed, stored.OrderStatus)
				assert.NotNil(t, stored.ConfirmedAt)
			}
		})
	}
}

func TestConfirm_ConcurrentConfirmersConfirmOnce(t *testing.T) {
	env := ordertest.NewEnv(t)
	m := newManager(env, nil)
	seeded := env.SeedOrder(t, ordertest.OrderSeed{Items: []ordertest.ItemSeed{{UnitPrice: "80.00"}}})

	const workers = 5
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		confirmed int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := m.Confirm(context.Background(), seeded.Order.OrderNo, true, entity.SystemActor("auto-confirm"))
			if !assert.NoError(t, err) {
				return
			}
			if res.Confirmed {
				mu.Lock()
				confirmed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, confirmed)
	assert.Len(t, env.StatusLogs(t, seeded.Order.OrderNo), 1)
}

func TestPaySuccess(t *testing.T) {
	env := ordertest.NewEnv(t)
	m := newManager(env, nil)
	ctx := context.Background()

	order, err := m.Create(ctx, createCommand(uuid.New()))
	require.NoError(t, err)

	cmd := PaySuccessCommand{OrderNo: order.OrderNo, OutTradeNo: "T-1", PaymentType: "WECHAT"}
	res, err := m.PaySuccess(ctx, cmd)
	require.NoError(t, err)
	assert.False(t, res.AlreadyPaid)

	stored := env.Order(t, order.OrderNo)
	assert.Equal(t, entity.OrderStatusPaid, stored.OrderStatus)
	assert.Equal(t, entity.PaymentStatusPaid, stored.PaymentStatus)
	assert.Equal(t, "T-1", stored.OutTradeNo)
	assert.NotNil(t, stored.PaidAt)

	res, err = m.PaySuccess(ctx, cmd)
	require.NoError(t, err)
	assert.True(t, res.AlreadyPaid)

	_, err = m.PaySuccess(ctx, PaySuccessCommand{OrderNo: order.OrderNo, OutTradeNo: "T-2"})
	assert.ErrorIs(t, err, apperror.ErrOrderStatusNotAllowPay)
}

func TestPaySuccess_AfterAutoCancel(t *testing.T) {
	env := ordertest.NewEnv(t)
	m := newManager(env, nil)
	ctx := context.Background()

	order, err := m.Create(ctx, createCommand(uuid.New()))
	require.NoError(t, err)
	_, err = m.CancelUnpaid(ctx, order.OrderNo, entity.SystemActor("auto-cancel"))
	require.NoError(t, err)

	_, err = m.PaySuccess(ctx, PaySuccessCommand{OrderNo: order.OrderNo, OutTradeNo: "T-1"})
	assert.ErrorIs(t, err, apperror.ErrOrderStatusNotAllowPay)
	assert.Equal(t, entity.OrderStatusCancelled, env.Order(t, order.OrderNo).OrderStatus)
}

func TestPayVersusCancelRace(t *testing.T) {
	env := ordertest.NewEnv(t)
	m := newManager(env, nil)
	ctx := context.Background()

	order, err := m.Create(ctx, createCommand(uuid.New()))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var payErr, cancelErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, payErr = m.PaySuccess(ctx, PaySuccessCommand{OrderNo: order.OrderNo, OutTradeNo: "T-1"})
	}()
	go func() {
		defer wg.Done()
		_, cancelErr = m.CancelUnpaid(ctx, order.OrderNo, entity.SystemActor("auto-cancel"))
	}()
	wg.Wait()

	stored := env.Order(t, order.OrderNo)
	switch stored.OrderStatus {
	case entity.OrderStatusPaid:
		assert.NoError(t, payErr)
		assert.ErrorIs(t, cancelErr, apperror.ErrOrderStatusNotAllowCancel)
		assert.Empty(t, env.Outbox(t, order.OrderNo, events.TopicUnlockSlot))
	case entity.OrderStatusCancelled:
		assert.NoError(t, cancelErr)
		assert.ErrorIs(t, payErr, apperror.ErrOrderStatusNotAllowPay)
		assert.Len(t, env.Outbox(t, order.OrderNo, events.TopicUnlockSlot), 1)
	default:
		t.Fatalf("unexpected status %s", stored.OrderStatus)
	}
}

func TestComplete(t *testing.T) {
	tests := []struct {
		name      string
		status    entity.OrderStatus
		confirmed bool
		wantErr   error
	}{
		{"confirmed", entity.OrderStatusConfirmed, true, nil},
		{"partially refunded after confirm", entity.OrderStatusPartiallyRefunded, true, nil},
		{"refund rejected after confirm", entity.OrderStatusRefundRejected, true, nil},
		{"refund rejected never confirmed", entity.OrderStatusRefundRejected, false, apperror.ErrOrderStatusNotAllowComplete},
		{"paid", entity.OrderStatusPaid, false, apperror.ErrOrderStatusNotAllowComplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := ordertest.NewEnv(t)
			m := newManager(env, nil)
			seeded := env.SeedOrder(t, ordertest.OrderSeed{
				Status:    tt.status,
				Confirmed: tt.confirmed,
				Items:     []ordertest.ItemSeed{{UnitPrice: "80.00"}},
			})

			order, err := m.Complete(context.Background(), seeded.Order.OrderNo, sellerOf(seeded.Order))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.status, env.Order(t, seeded.Order.OrderNo).OrderStatus)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, entity.OrderStatusCompleted, order.OrderStatus)
			assert.Equal(t, entity.OrderStatusCompleted, env.Order(t, seeded.Order.OrderNo).OrderStatus)
		})
	}
}

func TestGetOrder(t *testing.T) {
	env := ordertest.NewEnv(t)
	m := newManager(env, nil)
	seeded := env.SeedOrder(t, ordertest.OrderSeed{Items: []ordertest.ItemSeed{{UnitPrice: "80.00"}, {UnitPrice: "20.00"}}})
	ctx := context.Background()

	order, err := m.GetOrder(ctx, seeded.Order.OrderNo, buyerOf(seeded.Order))
	require.NoError(t, err)
	assert.Len(t, order.Items, 2)

	_, err = m.GetOrder(ctx, seeded.Order.OrderNo, sellerOf(seeded.Order))
	assert.NoError(t, err)

	_, err = m.GetOrder(ctx, seeded.Order.OrderNo, entity.Actor{Type: entity.OperatorTypeSeller, Id: uuid.New()})
	assert.ErrorIs(t, err, apperror.ErrOrderNotFound)

	_, err = m.GetOrder(ctx, "BO-missing", entity.SystemActor("ops"))
	assert.ErrorIs(t, err, apperror.ErrOrderNotFound)
}
