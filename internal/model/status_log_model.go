package model

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatusLog rows are never updated or deleted.
type OrderStatusLog struct {
	Id                  uuid.UUID  `gorm:"type:uuid;primaryKey"`
	OrderNo             string     `gorm:"type:varchar(32);not null;index"`
	OrderItemId         *uuid.UUID `gorm:"type:uuid"`
	Action              string     `gorm:"type:varchar(32);not null"`
	OldOrderStatus      string     `gorm:"type:varchar(32)"`
	NewOrderStatus      string     `gorm:"type:varchar(32)"`
	OldItemRefundStatus string     `gorm:"type:varchar(32)"`
	NewItemRefundStatus string     `gorm:"type:varchar(32)"`
	RefundApplyId       *uuid.UUID `gorm:"type:uuid"`
	OperatorType        string     `gorm:"type:varchar(20);not null"`
	OperatorId          uuid.UUID  `gorm:"type:uuid"`
	OperatorName        string     `gorm:"type:varchar(100)"`
	Remark              string     `gorm:"type:text"`
	CreatedAt           time.Time  `gorm:"not null;index"`
}

func (OrderStatusLog) TableName() string {
	return "order_status_logs"
}
