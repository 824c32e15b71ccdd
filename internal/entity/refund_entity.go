package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ApplyStatus is the lifecycle of a refund apply. Every value but PENDING is terminal.
type ApplyStatus string

const (
	ApplyStatusPending   ApplyStatus = "PENDING"
	ApplyStatusApproved  ApplyStatus = "APPROVED"
	ApplyStatusRejected  ApplyStatus = "REJECTED"
	ApplyStatusCancelled ApplyStatus = "CANCELLED"
)

type FactStatus string

const (
	FactStatusApproved  FactStatus = "APPROVED"
	FactStatusCompleted FactStatus = "COMPLETED"
)

type RefundApply struct {
	Id                uuid.UUID
	OrderNo           string
	ApplicantId       uuid.UUID
	ApplyStatus       ApplyStatus
	ReasonCode        string
	ReasonDetail      string
	SellerRemark      string
	ReviewerId        *uuid.UUID
	ReviewedAt        *time.Time
	OutRequestNo      string
	RefundAmount      decimal.Decimal
	RefundInitiatedAt *time.Time
	RefundCompletedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time

	// ItemIds is loaded from the apply-item join rows.
	ItemIds []uuid.UUID
}

// RefundApplyItem binds an order item to the apply that covers it.
type RefundApplyItem struct {
	RefundApplyId uuid.UUID
	OrderItemId   uuid.UUID
	CreatedAt     time.Time
}

// ItemRefundFact is the approved financial outcome for one (apply, item) pair.
type ItemRefundFact struct {
	Id                uuid.UUID
	RefundApplyId     uuid.UUID
	OrderItemId       uuid.UUID
	OrderNo           string
	ItemAmount        decimal.Decimal
	ExtraChargeAmount decimal.Decimal
	RefundFee         decimal.Decimal
	RefundAmount      decimal.Decimal
	RefundStatus      FactStatus
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// RefundExtraCharge records one extra charge included in a given refund.
type RefundExtraCharge struct {
	Id            uuid.UUID
	OrderNo       string
	RefundApplyId uuid.UUID
	ExtraChargeId uuid.UUID
	OrderItemId   *uuid.UUID
	RefundAmount  decimal.Decimal
	CreatedAt     time.Time
}
