package dto

import (
	"time"

	"booking-order-be/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Buyer-Side Refund Apply ---

type ApplyRefundRequest struct {
	ItemIds      []uuid.UUID `json:"item_ids" validate:"required,min=1"`
	ReasonCode   string      `json:"reason_code" validate:"required,max=50"`
	ReasonDetail string      `json:"reason_detail" validate:"max=500"`
}

// --- Seller-Side Review ---

type RejectRefundRequest struct {
	Remark string `json:"remark" validate:"max=500"`
}

type RefundApplyResponse struct {
	Id                uuid.UUID       `json:"id"`
	OrderNo           string          `json:"order_no"`
	ApplyStatus       string          `json:"apply_status"`
	ItemIds           []uuid.UUID     `json:"item_ids"`
	ReasonCode        string          `json:"reason_code"`
	ReasonDetail      string          `json:"reason_detail,omitempty"`
	SellerRemark      string          `json:"seller_remark,omitempty"`
	OutRequestNo      string          `json:"out_request_no,omitempty"`
	RefundAmount      decimal.Decimal `json:"refund_amount"`
	CreatedAt         time.Time       `json:"created_at"`
	ReviewedAt        *time.Time      `json:"reviewed_at,omitempty"`
	RefundInitiatedAt *time.Time      `json:"refund_initiated_at,omitempty"`
	RefundCompletedAt *time.Time      `json:"refund_completed_at,omitempty"`
}

type ApproveRefundResponse struct {
	Apply             RefundApplyResponse `json:"apply"`
	ApprovedItemCount int                 `json:"approved_item_count"`
	RefundAmount      decimal.Decimal     `json:"refund_amount"`
	FullRefund        bool                `json:"full_refund"`
	AlreadyApproved   bool                `json:"already_approved"`
}

type ReviewRefundResponse struct {
	Apply       RefundApplyResponse `json:"apply"`
	OrderStatus string              `json:"order_status"`
	AlreadyDone bool                `json:"already_done"`
}

// --- Progress ---

type RefundFactResponse struct {
	OrderItemId       uuid.UUID       `json:"order_item_id"`
	ItemAmount        decimal.Decimal `json:"item_amount"`
	ExtraChargeAmount decimal.Decimal `json:"extra_charge_amount"`
	RefundFee         decimal.Decimal `json:"refund_fee"`
	RefundAmount      decimal.Decimal `json:"refund_amount"`
	RefundStatus      string          `json:"refund_status"`
}

type RefundExtraChargeResponse struct {
	ExtraChargeId uuid.UUID       `json:"extra_charge_id"`
	OrderItemId   *uuid.UUID      `json:"order_item_id,omitempty"`
	RefundAmount  decimal.Decimal `json:"refund_amount"`
}

type TimelineEntry struct {
	Action        string     `json:"action"`
	OrderItemId   *uuid.UUID `json:"order_item_id,omitempty"`
	From          string     `json:"from"`
	To            string     `json:"to"`
	OperatorType  string     `json:"operator_type"`
	OperatorName  string     `json:"operator_name,omitempty"`
	RefundApplyId *uuid.UUID `json:"refund_apply_id,omitempty"`
	Remark        string     `json:"remark,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

type RefundProgressResponse struct {
	OrderNo       string                      `json:"order_no"`
	OrderStatus   string                      `json:"order_status"`
	PaymentStatus string                      `json:"payment_status"`
	Apply         *RefundApplyResponse        `json:"apply,omitempty"`
	History       []RefundApplyResponse       `json:"history"`
	CoveredItems  []OrderItemResponse         `json:"covered_items"`
	Facts         []RefundFactResponse        `json:"facts"`
	ExtraCharges  []RefundExtraChargeResponse `json:"extra_charges"`
	Timeline      []TimelineEntry             `json:"timeline"`
}

func NewRefundApplyResponse(a *entity.RefundApply) RefundApplyResponse {
	return RefundApplyResponse{
		Id:                a.Id,
		OrderNo:           a.OrderNo,
		ApplyStatus:       string(a.ApplyStatus),
		ItemIds:           a.ItemIds,
		ReasonCode:        a.ReasonCode,
		ReasonDetail:      a.ReasonDetail,
		SellerRemark:      a.SellerRemark,
		OutRequestNo:      a.OutRequestNo,
		RefundAmount:      a.RefundAmount,
		CreatedAt:         a.CreatedAt,
		ReviewedAt:        a.ReviewedAt,
		RefundInitiatedAt: a.RefundInitiatedAt,
		RefundCompletedAt: a.RefundCompletedAt,
	}
}

func NewTimelineEntry(l *entity.StatusLog) TimelineEntry {
	entry := TimelineEntry{
		Action:        string(l.Action),
		OrderItemId:   l.OrderItemId,
		From:          string(l.OldOrderStatus),
		To:            string(l.NewOrderStatus),
		OperatorType:  string(l.OperatorType),
		OperatorName:  l.OperatorName,
		RefundApplyId: l.RefundApplyId,
		Remark:        l.Remark,
		CreatedAt:     l.CreatedAt,
	}
	if l.OrderItemId != nil {
		entry.From = string(l.OldItemRefundStatus)
		entry.To = string(l.NewItemRefundStatus)
	}
	return entry
}
