package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Order struct {
	OrderNo        string          `gorm:"type:varchar(32);primaryKey"`
	BuyerId        uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerId       uuid.UUID       `gorm:"type:uuid;not null;index"`
	SellerType     string          `gorm:"type:varchar(20);not null"`
	VenueId        uuid.UUID       `gorm:"type:uuid"`
	OrderStatus    string          `gorm:"type:varchar(32);not null;index"`
	PaymentStatus  string          `gorm:"type:varchar(32);not null"`
	PaymentType    string          `gorm:"type:varchar(32)"`
	OutTradeNo     string          `gorm:"type:varchar(64)"`
	BaseAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ExtraAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PayAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RefundApplyId  *uuid.UUID      `gorm:"type:uuid"`
	Confirmed      bool            `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
	PaidAt         *time.Time
	ConfirmedAt    *time.Time
	CancelledAt    *time.Time
	CompletedAt    *time.Time
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	Id           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderNo      string          `gorm:"type:varchar(32);not null;index"`
	ResourceId   uuid.UUID       `gorm:"type:uuid;not null"`
	ResourceName string          `gorm:"type:varchar(255)"`
	SlotRecordId string          `gorm:"type:varchar(64)"`
	BookingDate  string          `gorm:"type:varchar(10);not null"`
	StartTime    string          `gorm:"type:varchar(8)"`
	EndTime      string          `gorm:"type:varchar(8)"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ExtraAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Subtotal     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RefundStatus string          `gorm:"type:varchar(32);not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (OrderItem) TableName() string {
	return "order_items"
}
