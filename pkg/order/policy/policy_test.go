package policy

import (
	"testing"

	"booking-order-be/internal/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDefaultRegistry(t *testing.T) {
	reg := DefaultRegistry()

	assert.True(t, reg.For(entity.SellerTypeVenue).AllowPartialRefund())
	assert.False(t, reg.For(entity.SellerTypeCoach).AllowPartialRefund())
	assert.True(t, reg.For(entity.SellerTypeVenue).FeeRate().IsZero())

	unknown := reg.For(entity.SellerType("SHOP"))
	assert.False(t, unknown.AllowPartialRefund())
}

func TestNew_ClampsFeeRate(t *testing.T) {
	assert.Equal(t, "0", New(true, decimal.RequireFromString("-0.5")).FeeRate().String())
	assert.Equal(t, "1", New(true, decimal.RequireFromString("1.5")).FeeRate().String())
	assert.Equal(t, "0.05", New(true, decimal.RequireFromString("0.05")).FeeRate().String())
}

func TestFee(t *testing.T) {
	tests := []struct {
		rate   string
		amount string
		want   string
	}{
		{"0", "100.00", "0.00"},
		{"0.05", "100.00", "5.00"},
		{"0.1", "33.33", "3.33"},
		{"0.125", "10.00", "1.25"},
		{"0.015", "99.99", "1.50"},
	}

	for _, tt := range tests {
		t.Run(tt.rate+"x"+tt.amount, func(t *testing.T) {
			p := New(true, decimal.RequireFromString(tt.rate))
			assert.Equal(t, tt.want, Fee(p, decimal.RequireFromString(tt.amount)).StringFixed(2))
		})
	}
}

func TestCheckCoverage(t *testing.T) {
	partial := New(true, decimal.Zero)
	whole := New(false, decimal.Zero)

	assert.NoError(t, CheckCoverage(partial, 1, 3))
	assert.NoError(t, CheckCoverage(whole, 3, 3))
	assert.Error(t, CheckCoverage(whole, 2, 3))
}
