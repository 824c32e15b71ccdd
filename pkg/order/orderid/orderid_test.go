package orderid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOrderNo(t *testing.T) {
	a := NewOrderNo()
	b := NewOrderNo()

	assert.NotEqual(t, a, b)
	assert.Len(t, a, 28)
	assert.True(t, IsOrderNo(a))
}

func TestNewOutRequestNo(t *testing.T) {
	token := NewOutRequestNo()

	assert.Equal(t, "RF", token[:2])
	assert.False(t, IsOrderNo(token))
}

func TestIsOrderNo(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", false},
		{"BO", false},
		{"BOnot-a-ulid", false},
		{"XX01ARZ3NDEKTSV4RRFFQ69G5FAV", false},
		{"BO01ARZ3NDEKTSV4RRFFQ69G5FAV", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsOrderNo(tt.in))
		})
	}
}
