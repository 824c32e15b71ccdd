package extracharge

import (
	"testing"
	"time"

	"booking-order-be/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type fixture struct {
	itemA, itemB  uuid.UUID
	chargeA       *entity.ExtraCharge
	chargeB       *entity.ExtraCharge
	orderCharge   *entity.ExtraCharge
	links         []*entity.ExtraChargeLink
	allCharges    []*entity.ExtraCharge
	orderNo       string
	refundApplyId uuid.UUID
}

func newFixture() *fixture {
	f := &fixture{
		itemA:         uuid.New(),
		itemB:         uuid.New(),
		orderNo:       "ORD1",
		refundApplyId: uuid.New(),
	}
	f.chargeA = &entity.ExtraCharge{Id: uuid.New(), OrderNo: f.orderNo, OrderItemId: &f.itemA, ChargeMode: entity.ChargeModeFixed, ChargeAmount: dec("20.00")}
	f.chargeB = &entity.ExtraCharge{Id: uuid.New(), OrderNo: f.orderNo, OrderItemId: &f.itemB, ChargeMode: entity.ChargeModePercentage, ChargeAmount: dec("7.50")}
	f.orderCharge = &entity.ExtraCharge{Id: uuid.New(), OrderNo: f.orderNo, ChargeMode: entity.ChargeModeFixed, ChargeAmount: dec("10.00")}
	f.allCharges = []*entity.ExtraCharge{f.chargeA, f.chargeB, f.orderCharge}
	f.links = []*entity.ExtraChargeLink{
		{Id: uuid.New(), OrderNo: f.orderNo, OrderItemId: f.itemA, ExtraChargeId: f.chargeA.Id, AllocatedAmount: dec("20.00")},
		{Id: uuid.New(), OrderNo: f.orderNo, OrderItemId: f.itemB, ExtraChargeId: f.chargeB.Id, AllocatedAmount: dec("7.50")},
		// allocation of the order-level charge, ignored for item sums
		{Id: uuid.New(), OrderNo: f.orderNo, OrderItemId: f.itemA, ExtraChargeId: f.orderCharge.Id, AllocatedAmount: dec("5.00")},
		{Id: uuid.New(), OrderNo: f.orderNo, OrderItemId: f.itemB, ExtraChargeId: f.orderCharge.Id, AllocatedAmount: dec("5.00")},
	}
	return f
}

func (f *fixture) input(covered []uuid.UUID, full bool, recorded map[uuid.UUID]bool) Input {
	return Input{
		OrderNo:             f.orderNo,
		RefundApplyId:       f.refundApplyId,
		CoveredItemIds:      covered,
		Charges:             f.allCharges,
		Links:               f.links,
		Recorded:            recorded,
		FullRefundAfterThis: full,
	}
}

func TestAllocate_FullRefundIncludesOrderLevelCharge(t *testing.T) {
	f := newFixture()

	res := Allocate(f.input([]uuid.UUID{f.itemA, f.itemB}, true, nil), time.Now())

	assert.Equal(t, "20.00", res.ItemExtra[f.itemA].StringFixed(2))
	assert.Equal(t, "7.50", res.ItemExtra[f.itemB].StringFixed(2))
	assert.Equal(t, "27.50", res.TotalItemExtra().StringFixed(2))
	assert.Equal(t, "10.00", res.OrderLevelExtra.StringFixed(2))
	require.Len(t, res.NewRows, 3)

	var orderLevelRows int
	for _, row := range res.NewRows {
		assert.Equal(t, f.refundApplyId, row.RefundApplyId)
		if row.OrderItemId == nil {
			orderLevelRows++
			assert.Equal(t, f.orderCharge.Id, row.ExtraChargeId)
		}
	}
	assert.Equal(t, 1, orderLevelRows)
}

func TestAllocate_PartialRefundExcludesOrderLevelCharge(t *testing.T) {
	f := newFixture()

	res := Allocate(f.input([]uuid.UUID{f.itemA}, false, nil), time.Now())

	assert.Equal(t, "20.00", res.TotalItemExtra().StringFixed(2))
	assert.True(t, res.OrderLevelExtra.IsZero())
	require.Len(t, res.NewRows, 1)
	assert.Equal(t, f.chargeA.Id, res.NewRows[0].ExtraChargeId)
	require.NotNil(t, res.NewRows[0].OrderItemId)
	assert.Equal(t, f.itemA, *res.NewRows[0].OrderItemId)
	_, hasB := res.ItemExtra[f.itemB]
	assert.False(t, hasB)
}

func TestAllocate_RecordedChargesAreNotReinserted(t *testing.T) {
	f := newFixture()
	recorded := map[uuid.UUID]bool{f.chargeA.Id: true, f.orderCharge.Id: true}

	res := Allocate(f.input([]uuid.UUID{f.itemA, f.itemB}, true, recorded), time.Now())

	require.Len(t, res.NewRows, 1)
	assert.Equal(t, f.chargeB.Id, res.NewRows[0].ExtraChargeId)
	// amounts stay the same so a replay computes the same total
	assert.Equal(t, "27.50", res.TotalItemExtra().StringFixed(2))
	assert.Equal(t, "10.00", res.OrderLevelExtra.StringFixed(2))
}

func TestAllocate_NoCharges(t *testing.T) {
	item := uuid.New()
	res := Allocate(Input{OrderNo: "ORD2", RefundApplyId: uuid.New(), CoveredItemIds: []uuid.UUID{item}, FullRefundAfterThis: true}, time.Now())

	assert.True(t, res.TotalItemExtra().IsZero())
	assert.True(t, res.OrderLevelExtra.IsZero())
	assert.Empty(t, res.NewRows)
	assert.True(t, res.ItemExtra[item].IsZero())
}

func TestFullRefundAfterThis(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	items := func(sb, sc entity.ItemRefundStatus) []*entity.OrderItem {
		return []*entity.OrderItem{
			{Id: a, RefundStatus: entity.ItemRefundStatusWaitApproving},
			{Id: b, RefundStatus: sb},
			{Id: c, RefundStatus: sc},
		}
	}

	tests := []struct {
		name    string
		items   []*entity.OrderItem
		covered []uuid.UUID
		want    bool
	}{
		{"all covered", items(entity.ItemRefundStatusWaitApproving, entity.ItemRefundStatusWaitApproving), []uuid.UUID{a, b, c}, true},
		{"other item untouched", items(entity.ItemRefundStatusNone, entity.ItemRefundStatusCompleted), []uuid.UUID{a, c}, false},
		{"other item waiting", items(entity.ItemRefundStatusWaitApproving, entity.ItemRefundStatusCompleted), []uuid.UUID{a}, false},
		{"others already refunded", items(entity.ItemRefundStatusCompleted, entity.ItemRefundStatusCompleted), []uuid.UUID{a}, true},
		{"others approved elsewhere", items(entity.ItemRefundStatusApproved, entity.ItemRefundStatusCompleted), []uuid.UUID{a}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FullRefundAfterThis(tt.items, tt.covered))
		})
	}
}
