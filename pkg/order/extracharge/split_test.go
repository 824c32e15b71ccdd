package extracharge

import (
	"testing"

	"booking-order-be/internal/entity"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func itemsWithPrices(prices ...string) []*entity.OrderItem {
	items := make([]*entity.OrderItem, 0, len(prices))
	for _, p := range prices {
		items = append(items, &entity.OrderItem{UnitPrice: dec(p)})
	}
	return items
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		amount string
		prices []string
		want   []string
	}{
		{"single item", "10.00", []string{"50.00"}, []string{"10.00"}},
		{"proportional", "10.00", []string{"100.00", "300.00"}, []string{"2.50", "7.50"}},
		{"remainder to last", "10.00", []string{"100.00", "100.00", "100.00"}, []string{"3.33", "3.33", "3.34"}},
		{"free items split evenly", "1.00", []string{"0", "0", "0"}, []string{"0.33", "0.33", "0.34"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shares := Split(dec(tt.amount), itemsWithPrices(tt.prices...))

			got := make([]string, 0, len(shares))
			sum := decimal.Zero
			for _, s := range shares {
				got = append(got, s.StringFixed(2))
				sum = sum.Add(s)
			}
			assert.Equal(t, tt.want, got)
			assert.True(t, sum.Equal(dec(tt.amount)))
		})
	}
}

func TestSplit_NoItems(t *testing.T) {
	assert.Empty(t, Split(dec("5.00"), nil))
}
