// Package ordertest wires an in-memory ledger for order workflow tests.
package ordertest

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/model"
	"booking-order-be/internal/pkg/logger"
	"booking-order-be/internal/repository/specification"
	"booking-order-be/internal/repository/unitofwork"
	"booking-order-be/pkg/database"
	"booking-order-be/pkg/lock"
	"booking-order-be/pkg/order/extracharge"
	"booking-order-be/pkg/order/orderid"
	"booking-order-be/pkg/order/orderlock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Env is a migrated database plus the shared plumbing every workflow needs.
type Env struct {
	DB       *gorm.DB
	Factory  unitofwork.RepositoryFactory
	Locker   lock.Locker
	Runner   *orderlock.Runner
	Notifier *CountingNotifier
	Logger   logger.ILogger
}

// CountingNotifier counts commit nudges.
type CountingNotifier struct {
	n atomic.Int64
}

func (c *CountingNotifier) Nudge() { c.n.Add(1) }

func (c *CountingNotifier) Count() int64 { return c.n.Load() }

// NewEnv opens a private in-memory database for t.
func NewEnv(t testing.TB) *Env {
	t.Helper()

	db, err := database.NewSQLiteDB("file:" + uuid.NewString() + "?mode=memory&cache=shared")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, model.LedgerModels()...))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	log := logger.NewNopLogger()
	locker := lock.NewLocalLocker(lock.Options{
		TTL:        10 * time.Second,
		Wait:       5 * time.Second,
		RetryDelay: 5 * time.Millisecond,
	})
	factory := unitofwork.NewRepositoryFactory(db)
	notifier := &CountingNotifier{}

	return &Env{
		DB:       db,
		Factory:  factory,
		Locker:   locker,
		Runner:   orderlock.NewRunner(locker, factory, notifier, log),
		Notifier: notifier,
		Logger:   log,
	}
}

// Money parses a 2-decimal amount.
func Money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// ItemSeed describes one item. Extra, when set, becomes an item-level FIXED charge.
type ItemSeed struct {
	UnitPrice    string
	Extra        string
	RefundStatus entity.ItemRefundStatus
}

// OrderSeed describes an order written straight into the ledger.
type OrderSeed struct {
	SellerType    entity.SellerType
	Status        entity.OrderStatus
	PaymentStatus entity.PaymentStatus
	Confirmed     bool
	Discount      string
	Items         []ItemSeed
	// OrderCharges are order-level FIXED charges, allocated over items by unit price.
	OrderCharges []string
}

// Seeded is what SeedOrder wrote.
type Seeded struct {
	Order        *entity.Order
	Items        []*entity.OrderItem
	Charges      []*entity.ExtraCharge
	Links        []*entity.ExtraChargeLink
	OrderCharges []*entity.ExtraCharge
}

func (s *Seeded) ItemIds() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s.Items))
	for _, item := range s.Items {
		ids = append(ids, item.Id)
	}
	return ids
}

// SeedOrder writes an order with items, charges and links. Defaults: VENUE, PAID/PAID.
func (e *Env) SeedOrder(t testing.TB, seed OrderSeed) *Seeded {
	t.Helper()

	if seed.SellerType == "" {
		seed.SellerType = entity.SellerTypeVenue
	}
	if seed.Status == "" {
		seed.Status = entity.OrderStatusPaid
	}
	if seed.PaymentStatus == "" {
		seed.PaymentStatus = entity.PaymentStatusPaid
		if seed.Status == entity.OrderStatusPending || seed.Status == entity.OrderStatusCancelled {
			seed.PaymentStatus = entity.PaymentStatusUnpaid
		}
	}
	discount := decimal.Zero
	if seed.Discount != "" {
		discount = Money(seed.Discount)
	}

	now := time.Now().UTC()
	orderNo := orderid.NewOrderNo()
	out := &Seeded{}

	base := decimal.Zero
	extra := decimal.Zero
	for i, s := range seed.Items {
		status := s.RefundStatus
		if status == "" {
			status = entity.ItemRefundStatusNone
		}
		item := &entity.OrderItem{
			Id:           uuid.New(),
			OrderNo:      orderNo,
			ResourceId:   uuid.New(),
			ResourceName: "Court",
			SlotRecordId: uuid.NewString(),
			BookingDate:  "2026-11-01",
			StartTime:    time.Date(2026, 11, 1, 8+i, 0, 0, 0, time.UTC).Format("15:04"),
			EndTime:      time.Date(2026, 11, 1, 9+i, 0, 0, 0, time.UTC).Format("15:04"),
			UnitPrice:    Money(s.UnitPrice),
			ExtraAmount:  decimal.Zero,
			RefundStatus: status,
			// keep insertion order stable for FindItems
			CreatedAt: now.Add(time.Duration(i) * time.Millisecond),
			UpdatedAt: now,
		}
		base = base.Add(item.UnitPrice)
		if s.Extra != "" {
			itemId := item.Id
			charge := &entity.ExtraCharge{
				Id:           uuid.New(),
				OrderNo:      orderNo,
				OrderItemId:  &itemId,
				ChargeTypeId: uuid.New(),
				ChargeName:   "Lighting",
				ChargeMode:   entity.ChargeModeFixed,
				ChargeAmount: Money(s.Extra),
				CreatedAt:    now,
			}
			out.Charges = append(out.Charges, charge)
			out.Links = append(out.Links, &entity.ExtraChargeLink{
				Id:              uuid.New(),
				OrderNo:         orderNo,
				OrderItemId:     item.Id,
				ExtraChargeId:   charge.Id,
				AllocatedAmount: charge.ChargeAmount,
				CreatedAt:       now,
			})
			item.ExtraAmount = charge.ChargeAmount
			extra = extra.Add(charge.ChargeAmount)
		}
		item.Subtotal = item.UnitPrice.Add(item.ExtraAmount)
		out.Items = append(out.Items, item)
	}

	for _, amount := range seed.OrderCharges {
		charge := &entity.ExtraCharge{
			Id:           uuid.New(),
			OrderNo:      orderNo,
			ChargeTypeId: uuid.New(),
			ChargeName:   "Service",
			ChargeMode:   entity.ChargeModeFixed,
			ChargeAmount: Money(amount),
			CreatedAt:    now,
		}
		out.Charges = append(out.Charges, charge)
		out.OrderCharges = append(out.OrderCharges, charge)
		extra = extra.Add(charge.ChargeAmount)

		shares := extracharge.Split(charge.ChargeAmount, out.Items)
		for i, item := range out.Items {
			share := shares[i]
			out.Links = append(out.Links, &entity.ExtraChargeLink{
				Id:              uuid.New(),
				OrderNo:         orderNo,
				OrderItemId:     item.Id,
				ExtraChargeId:   charge.Id,
				AllocatedAmount: share,
				CreatedAt:       now,
			})
		}
	}

	subtotal := base.Add(extra)
	order := &entity.Order{
		OrderNo:        orderNo,
		BuyerId:        uuid.New(),
		SellerId:       uuid.New(),
		SellerType:     seed.SellerType,
		VenueId:        uuid.New(),
		OrderStatus:    seed.Status,
		PaymentStatus:  seed.PaymentStatus,
		BaseAmount:     base,
		ExtraAmount:    extra,
		Subtotal:       subtotal,
		DiscountAmount: discount,
		PayAmount:      subtotal.Sub(discount),
		Confirmed:      seed.Confirmed,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if seed.PaymentStatus != entity.PaymentStatusUnpaid {
		order.PaymentType = "WECHAT"
		order.OutTradeNo = "T" + orderNo
		order.PaidAt = &now
	}
	out.Order = order

	ctx := context.Background()
	uow := e.Factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.OrderRepository().Create(ctx, order))
	require.NoError(t, uow.OrderRepository().CreateItems(ctx, out.Items))
	if len(out.Charges) > 0 {
		require.NoError(t, uow.ExtraChargeRepository().CreateCharges(ctx, out.Charges))
		require.NoError(t, uow.ExtraChargeRepository().CreateLinks(ctx, out.Links))
	}
	require.NoError(t, uow.Commit())

	order.Items = out.Items
	return out
}

// Order reloads an order outside any transaction.
func (e *Env) Order(t testing.TB, orderNo string) *entity.Order {
	t.Helper()
	order, err := e.Factory.NewUnitOfWork(context.Background()).OrderRepository().
		FindOne(context.Background(), specification.ByOrderNo{OrderNo: orderNo})
	require.NoError(t, err)
	require.NotNil(t, order)
	return order
}

// Items reloads the items of an order keyed by id.
func (e *Env) Items(t testing.TB, orderNo string) map[uuid.UUID]*entity.OrderItem {
	t.Helper()
	items, err := e.Factory.NewUnitOfWork(context.Background()).OrderRepository().
		FindItems(context.Background(), specification.ByOrderNo{OrderNo: orderNo})
	require.NoError(t, err)
	byId := make(map[uuid.UUID]*entity.OrderItem, len(items))
	for _, item := range items {
		byId[item.Id] = item
	}
	return byId
}

// Outbox returns the outbox rows of an order with the given topic.
func (e *Env) Outbox(t testing.TB, orderNo, topic string) []*entity.OutboxMessage {
	t.Helper()
	msgs, err := e.Factory.NewUnitOfWork(context.Background()).OutboxRepository().FindAll(context.Background(),
		specification.Filter("aggregate_id", orderNo),
		specification.Filter("topic", topic),
	)
	require.NoError(t, err)
	return msgs
}

// StatusLogs returns the audit trail of an order.
func (e *Env) StatusLogs(t testing.TB, orderNo string) []*entity.StatusLog {
	t.Helper()
	logs, err := e.Factory.NewUnitOfWork(context.Background()).StatusLogRepository().
		FindAll(context.Background(), specification.ByOrderNo{OrderNo: orderNo})
	require.NoError(t, err)
	return logs
}

// SetItemStatus moves an item out of band, simulating a concurrent writer.
func (e *Env) SetItemStatus(t testing.TB, itemId uuid.UUID, status entity.ItemRefundStatus) {
	t.Helper()
	require.NoError(t, e.DB.Model(&model.OrderItem{}).Where("id = ?", itemId).
		Update("refund_status", string(status)).Error)
}
