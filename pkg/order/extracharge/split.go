package extracharge

import (
	"booking-order-be/internal/entity"

	"github.com/shopspring/decimal"
)

// Split allocates an order-level charge over items in proportion to unit price, rounding
// each share to 2 decimals and giving the remainder to the last item so shares sum to
// amount. Items with no price at all share it evenly.
func Split(amount decimal.Decimal, items []*entity.OrderItem) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(items))
	if len(items) == 0 {
		return shares
	}

	base := decimal.Zero
	for _, item := range items {
		base = base.Add(item.UnitPrice)
	}

	remaining := amount
	for i, item := range items {
		if i == len(items)-1 {
			shares[i] = remaining
			break
		}
		var share decimal.Decimal
		if base.IsZero() {
			share = amount.Div(decimal.NewFromInt(int64(len(items)))).Round(2)
		} else {
			share = amount.Mul(item.UnitPrice).Div(base).Round(2)
		}
		shares[i] = share
		remaining = remaining.Sub(share)
	}
	return shares
}
