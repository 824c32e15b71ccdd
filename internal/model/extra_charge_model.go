package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ExtraCharge struct {
	Id           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderNo      string          `gorm:"type:varchar(32);not null;index"`
	OrderItemId  *uuid.UUID      `gorm:"type:uuid"` // nil = order-level
	ChargeTypeId uuid.UUID       `gorm:"type:uuid;not null"`
	ChargeName   string          `gorm:"type:varchar(100)"`
	ChargeMode   string          `gorm:"type:varchar(20);not null"`
	ChargeAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt    time.Time
}

func (ExtraCharge) TableName() string {
	return "extra_charges"
}

type ExtraChargeLink struct {
	Id              uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderNo         string          `gorm:"type:varchar(32);not null;index"`
	OrderItemId     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ExtraChargeId   uuid.UUID       `gorm:"type:uuid;not null"`
	AllocatedAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt       time.Time
}

func (ExtraChargeLink) TableName() string {
	return "extra_charge_links"
}
