package dto

import (
	"time"

	"booking-order-be/internal/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Create Order ---

type ChargeRequest struct {
	ChargeTypeId uuid.UUID       `json:"charge_type_id" validate:"required"`
	ChargeName   string          `json:"charge_name"`
	ChargeMode   string          `json:"charge_mode" validate:"required,oneof=FIXED PERCENTAGE"`
	ChargeAmount decimal.Decimal `json:"charge_amount"`
}

type CreateOrderItemRequest struct {
	ResourceId   uuid.UUID       `json:"resource_id" validate:"required"`
	ResourceName string          `json:"resource_name"`
	SlotRecordId string          `json:"slot_record_id" validate:"required"`
	BookingDate  string          `json:"booking_date" validate:"required,datetime=2006-01-02"`
	StartTime    string          `json:"start_time" validate:"required"`
	EndTime      string          `json:"end_time" validate:"required"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Charges      []ChargeRequest `json:"charges" validate:"dive"`
}

type CreateOrderRequest struct {
	SellerId       uuid.UUID                `json:"seller_id" validate:"required"`
	SellerType     string                   `json:"seller_type" validate:"required,oneof=VENUE COACH"`
	VenueId        uuid.UUID                `json:"venue_id"`
	DiscountAmount decimal.Decimal          `json:"discount_amount"`
	Items          []CreateOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	OrderCharges   []ChargeRequest          `json:"order_charges" validate:"dive"`
}

type ConfirmOrderRequest struct {
	AutoConfirm bool `json:"auto_confirm"`
}

// --- Responses ---

type OrderItemResponse struct {
	Id           uuid.UUID       `json:"id"`
	ResourceId   uuid.UUID       `json:"resource_id"`
	ResourceName string          `json:"resource_name"`
	SlotRecordId string          `json:"slot_record_id"`
	BookingDate  string          `json:"booking_date"`
	StartTime    string          `json:"start_time"`
	EndTime      string          `json:"end_time"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ExtraAmount  decimal.Decimal `json:"extra_amount"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	RefundStatus string          `json:"refund_status"`
}

type OrderResponse struct {
	OrderNo        string              `json:"order_no"`
	BuyerId        uuid.UUID           `json:"buyer_id"`
	SellerId       uuid.UUID           `json:"seller_id"`
	SellerType     string              `json:"seller_type"`
	VenueId        uuid.UUID           `json:"venue_id"`
	OrderStatus    string              `json:"order_status"`
	PaymentStatus  string              `json:"payment_status"`
	BaseAmount     decimal.Decimal     `json:"base_amount"`
	ExtraAmount    decimal.Decimal     `json:"extra_amount"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	PayAmount      decimal.Decimal     `json:"pay_amount"`
	Confirmed      bool                `json:"confirmed"`
	RefundApplyId  *uuid.UUID          `json:"refund_apply_id,omitempty"`
	Items          []OrderItemResponse `json:"items,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	PaidAt         *time.Time          `json:"paid_at,omitempty"`
	ConfirmedAt    *time.Time          `json:"confirmed_at,omitempty"`
	CancelledAt    *time.Time          `json:"cancelled_at,omitempty"`
	CompletedAt    *time.Time          `json:"completed_at,omitempty"`
}

type CancelOrderResponse struct {
	Order            OrderResponse `json:"order"`
	AlreadyCancelled bool          `json:"already_cancelled"`
}

type ConfirmOrderResponse struct {
	Order     OrderResponse `json:"order"`
	Confirmed bool          `json:"confirmed"`
}

func NewOrderResponse(o *entity.Order) OrderResponse {
	res := OrderResponse{
		OrderNo:        o.OrderNo,
		BuyerId:        o.BuyerId,
		SellerId:       o.SellerId,
		SellerType:     string(o.SellerType),
		VenueId:        o.VenueId,
		OrderStatus:    string(o.OrderStatus),
		PaymentStatus:  string(o.PaymentStatus),
		BaseAmount:     o.BaseAmount,
		ExtraAmount:    o.ExtraAmount,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		PayAmount:      o.PayAmount,
		Confirmed:      o.Confirmed,
		RefundApplyId:  o.RefundApplyId,
		CreatedAt:      o.CreatedAt,
		PaidAt:         o.PaidAt,
		ConfirmedAt:    o.ConfirmedAt,
		CancelledAt:    o.CancelledAt,
		CompletedAt:    o.CompletedAt,
	}
	for _, item := range o.Items {
		res.Items = append(res.Items, NewOrderItemResponse(item))
	}
	return res
}

func NewOrderItemResponse(i *entity.OrderItem) OrderItemResponse {
	return OrderItemResponse{
		Id:           i.Id,
		ResourceId:   i.ResourceId,
		ResourceName: i.ResourceName,
		SlotRecordId: i.SlotRecordId,
		BookingDate:  i.BookingDate,
		StartTime:    i.StartTime,
		EndTime:      i.EndTime,
		UnitPrice:    i.UnitPrice,
		ExtraAmount:  i.ExtraAmount,
		Subtotal:     i.Subtotal,
		RefundStatus: string(i.RefundStatus),
	}
}
