// Package policy holds per-seller-type refund rules.
package policy

import (
	"fmt"

	"booking-order-be/internal/entity"

	"github.com/shopspring/decimal"
)

// RefundPolicy is looked up once per refund operation.
type RefundPolicy interface {
	AllowPartialRefund() bool
	// FeeRate is the share of an item's refundable base kept as a fee, in [0, 1].
	FeeRate() decimal.Decimal
}

type refundPolicy struct {
	allowPartial bool
	feeRate      decimal.Decimal
}

func (p refundPolicy) AllowPartialRefund() bool  { return p.allowPartial }
func (p refundPolicy) FeeRate() decimal.Decimal { return p.feeRate }

// New builds a policy. feeRate is clamped to [0, 1].
func New(allowPartial bool, feeRate decimal.Decimal) RefundPolicy {
	if feeRate.IsNegative() {
		feeRate = decimal.Zero
	}
	if feeRate.GreaterThan(decimal.NewFromInt(1)) {
		feeRate = decimal.NewFromInt(1)
	}
	return refundPolicy{allowPartial: allowPartial, feeRate: feeRate}
}

// Registry maps seller types to policies.
type Registry struct {
	policies map[entity.SellerType]RefundPolicy
	fallback RefundPolicy
}

// DefaultRegistry: venues refund per item without a fee, coach sessions refund whole orders only.
func DefaultRegistry() *Registry {
	return NewRegistry(map[entity.SellerType]RefundPolicy{
		entity.SellerTypeVenue: New(true, decimal.Zero),
		entity.SellerTypeCoach: New(false, decimal.Zero),
	})
}

func NewRegistry(policies map[entity.SellerType]RefundPolicy) *Registry {
	copied := make(map[entity.SellerType]RefundPolicy, len(policies))
	for k, v := range policies {
		copied[k] = v
	}
	return &Registry{
		policies: copied,
		fallback: New(false, decimal.Zero),
	}
}

// For returns the policy of a seller type. Unknown types get the strictest policy.
func (r *Registry) For(sellerType entity.SellerType) RefundPolicy {
	if p, ok := r.policies[sellerType]; ok {
		return p
	}
	return r.fallback
}

// Fee computes round2(itemAmount * rate).
func Fee(p RefundPolicy, itemAmount decimal.Decimal) decimal.Decimal {
	return itemAmount.Mul(p.FeeRate()).Round(2)
}

// CheckCoverage enforces the partial-refund rule: when partial refunds are not allowed the
// requested items must be every item of the order.
func CheckCoverage(p RefundPolicy, requested, total int) error {
	if p.AllowPartialRefund() || requested == total {
		return nil
	}
	return fmt.Errorf("requested %d of %d items", requested, total)
}
