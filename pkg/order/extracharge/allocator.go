// Package extracharge computes which extra charges a refund carries. It does no I/O.
package extracharge

import (
	"time"

	"booking-order-be/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Input is everything the allocator needs, already read by the caller under the order lock.
type Input struct {
	OrderNo       string
	RefundApplyId uuid.UUID

	// CoveredItemIds are the items bound to the apply.
	CoveredItemIds []uuid.UUID
	// Charges are all extra charges of the order.
	Charges []*entity.ExtraCharge
	// Links are the allocations for the covered items.
	Links []*entity.ExtraChargeLink
	// Recorded holds extra charge ids that already have a RefundExtraCharge row for this apply.
	Recorded map[uuid.UUID]bool

	FullRefundAfterThis bool
}

// Result of an allocation.
type Result struct {
	// ItemExtra is the item-scoped extra amount per covered item.
	ItemExtra map[uuid.UUID]decimal.Decimal
	// OrderLevelExtra is the sum of order-scoped charges, non-zero only on a full refund.
	OrderLevelExtra decimal.Decimal
	// NewRows are the RefundExtraCharge rows not yet recorded for this apply.
	NewRows []*entity.RefundExtraCharge
}

// TotalItemExtra sums ItemExtra.
func (r *Result) TotalItemExtra() decimal.Decimal {
	total := decimal.Zero
	for _, amount := range r.ItemExtra {
		total = total.Add(amount)
	}
	return total
}

// Allocate sums link allocations of item-scoped charges per covered item and, on a full
// refund, folds in every order-scoped charge. Link amounts are used as stored; charge modes
// are never re-evaluated.
func Allocate(in Input, now time.Time) *Result {
	res := &Result{
		ItemExtra:       make(map[uuid.UUID]decimal.Decimal, len(in.CoveredItemIds)),
		OrderLevelExtra: decimal.Zero,
	}

	covered := make(map[uuid.UUID]bool, len(in.CoveredItemIds))
	for _, id := range in.CoveredItemIds {
		covered[id] = true
		res.ItemExtra[id] = decimal.Zero
	}

	charges := make(map[uuid.UUID]*entity.ExtraCharge, len(in.Charges))
	for _, c := range in.Charges {
		charges[c.Id] = c
	}

	// item-scoped: one refund row per charge, amount = its links over covered items
	perCharge := make(map[uuid.UUID]decimal.Decimal)
	var chargeOrder []uuid.UUID
	for _, link := range in.Links {
		if !covered[link.OrderItemId] {
			continue
		}
		charge, ok := charges[link.ExtraChargeId]
		if !ok || charge.IsOrderLevel() {
			continue
		}
		res.ItemExtra[link.OrderItemId] = res.ItemExtra[link.OrderItemId].Add(link.AllocatedAmount)
		if _, seen := perCharge[charge.Id]; !seen {
			chargeOrder = append(chargeOrder, charge.Id)
			perCharge[charge.Id] = decimal.Zero
		}
		perCharge[charge.Id] = perCharge[charge.Id].Add(link.AllocatedAmount)
	}

	for _, chargeId := range chargeOrder {
		if in.Recorded[chargeId] {
			continue
		}
		itemId := *charges[chargeId].OrderItemId
		res.NewRows = append(res.NewRows, &entity.RefundExtraCharge{
			Id:            uuid.New(),
			OrderNo:       in.OrderNo,
			RefundApplyId: in.RefundApplyId,
			ExtraChargeId: chargeId,
			OrderItemId:   &itemId,
			RefundAmount:  perCharge[chargeId],
			CreatedAt:     now,
		})
	}

	if !in.FullRefundAfterThis {
		return res
	}

	for _, c := range in.Charges {
		if !c.IsOrderLevel() {
			continue
		}
		res.OrderLevelExtra = res.OrderLevelExtra.Add(c.ChargeAmount)
		if in.Recorded[c.Id] {
			continue
		}
		res.NewRows = append(res.NewRows, &entity.RefundExtraCharge{
			Id:            uuid.New(),
			OrderNo:       in.OrderNo,
			RefundApplyId: in.RefundApplyId,
			ExtraChargeId: c.Id,
			RefundAmount:  c.ChargeAmount,
			CreatedAt:     now,
		})
	}

	return res
}

// FullRefundAfterThis reports whether refunding the covered items leaves no other item of the
// order refundable or awaiting review. Items already APPROVED or COMPLETED do not block.
func FullRefundAfterThis(items []*entity.OrderItem, coveredItemIds []uuid.UUID) bool {
	covered := make(map[uuid.UUID]bool, len(coveredItemIds))
	for _, id := range coveredItemIds {
		covered[id] = true
	}
	for _, item := range items {
		if covered[item.Id] {
			continue
		}
		if item.RefundStatus == entity.ItemRefundStatusNone || item.RefundStatus == entity.ItemRefundStatusWaitApproving {
			return false
		}
	}
	return true
}
