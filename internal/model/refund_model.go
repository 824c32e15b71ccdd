package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RefundApply struct {
	Id                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderNo           string          `gorm:"type:varchar(32);not null;index"`
	ApplicantId       uuid.UUID       `gorm:"type:uuid;not null"`
	ApplyStatus       string          `gorm:"type:varchar(20);not null"`
	ReasonCode        string          `gorm:"type:varchar(50)"`
	ReasonDetail      string          `gorm:"type:text"`
	SellerRemark      string          `gorm:"type:text"`
	ReviewerId        *uuid.UUID      `gorm:"type:uuid"`
	ReviewedAt        *time.Time
	OutRequestNo      string          `gorm:"type:varchar(64);index"`
	RefundAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RefundInitiatedAt *time.Time
	RefundCompletedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (RefundApply) TableName() string {
	return "refund_applies"
}

type RefundApplyItem struct {
	RefundApplyId uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderItemId   uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt     time.Time
}

func (RefundApplyItem) TableName() string {
	return "refund_apply_items"
}

type ItemRefundFact struct {
	Id                uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RefundApplyId     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_fact_apply_item"`
	OrderItemId       uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_fact_apply_item"`
	OrderNo           string          `gorm:"type:varchar(32);not null;index"`
	ItemAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ExtraChargeAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RefundFee         decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RefundAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RefundStatus      string          `gorm:"type:varchar(20);not null"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (ItemRefundFact) TableName() string {
	return "item_refund_facts"
}

type RefundExtraCharge struct {
	Id            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderNo       string          `gorm:"type:varchar(32);not null;index"`
	RefundApplyId uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_refund_extra_charge"`
	ExtraChargeId uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:uk_refund_extra_charge"`
	OrderItemId   *uuid.UUID      `gorm:"type:uuid"`
	RefundAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt     time.Time
}

func (RefundExtraCharge) TableName() string {
	return "refund_extra_charges"
}
