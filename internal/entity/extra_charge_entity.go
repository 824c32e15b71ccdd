package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ChargeMode string

const (
	ChargeModeFixed      ChargeMode = "FIXED"
	ChargeModePercentage ChargeMode = "PERCENTAGE"
)

// ExtraCharge is a snapshot taken at order creation. A nil OrderItemId marks an order-level charge.
type ExtraCharge struct {
	Id           uuid.UUID
	OrderNo      string
	OrderItemId  *uuid.UUID
	ChargeTypeId uuid.UUID
	ChargeName   string
	ChargeMode   ChargeMode
	ChargeAmount decimal.Decimal
	CreatedAt    time.Time
}

func (c *ExtraCharge) IsOrderLevel() bool {
	return c.OrderItemId == nil
}

// ExtraChargeLink is the allocation of an extra charge to an item, used verbatim on refund.
type ExtraChargeLink struct {
	Id              uuid.UUID
	OrderNo         string
	OrderItemId     uuid.UUID
	ExtraChargeId   uuid.UUID
	AllocatedAmount decimal.Decimal
	CreatedAt       time.Time
}
