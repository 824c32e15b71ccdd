package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnlockSlotMessage releases booked slots in the inventory service.
type UnlockSlotMessage struct {
	OrderNo      string    `json:"orderNo"`
	UserId       uuid.UUID `json:"userId"`
	RecordIds    []string  `json:"recordIds"`
	BookingDate  string    `json:"bookingDate"`
	OperatorType string    `json:"operatorType"`
}

func (m UnlockSlotMessage) EventType() string { return TopicUnlockSlot }
func (m UnlockSlotMessage) Key() string       { return m.OrderNo }

// UserRefundMessage asks the payment service to refund. OutRequestNo is the dedupe key downstream.
type UserRefundMessage struct {
	OrderNo      string          `json:"orderNo"`
	OutTradeNo   string          `json:"outTradeNo"`
	OutRequestNo string          `json:"outRequestNo"`
	RefundAmount decimal.Decimal `json:"refundAmount"`
	PaymentType  string          `json:"paymentType"`
	RefundReason string          `json:"refundReason"`
}

func (m UserRefundMessage) EventType() string { return TopicUserRefund }
func (m UserRefundMessage) Key() string       { return m.OrderNo }

// OrderNotifyMerchantConfirmMessage reminds the merchant an order still awaits confirmation.
type OrderNotifyMerchantConfirmMessage struct {
	OrderNo            string    `json:"orderNo"`
	VenueId            uuid.UUID `json:"venueId"`
	CurrentOrderStatus string    `json:"currentOrderStatus"`
}

func (m OrderNotifyMerchantConfirmMessage) EventType() string { return TopicMerchantConfirmNotify }
func (m OrderNotifyMerchantConfirmMessage) Key() string       { return m.OrderNo }

// OrderAutoCancelMessage is delivered at DueAt, when the payment window closes.
type OrderAutoCancelMessage struct {
	OrderNo     string    `json:"orderNo"`
	UserId      uuid.UUID `json:"userId"`
	BookingDate string    `json:"bookingDate"`
	SlotIds     []string  `json:"slotIds"`
	DueAt       time.Time `json:"dueAt"`
}

func (m OrderAutoCancelMessage) EventType() string { return TopicOrderAutoCancel }
func (m OrderAutoCancelMessage) Key() string       { return m.OrderNo }

// PaymentRefundMessage is the payment service's refund completion callback.
type PaymentRefundMessage struct {
	OrderNo      string `json:"orderNo"`
	OutRequestNo string `json:"outRequestNo"`
}

func (m PaymentRefundMessage) EventType() string { return TopicPaymentRefundSucceeded }
func (m PaymentRefundMessage) Key() string       { return m.OrderNo }

// OrderPaidMessage is the payment service's pay-success callback.
type OrderPaidMessage struct {
	OrderNo     string `json:"orderNo"`
	OutTradeNo  string `json:"outTradeNo"`
	PaymentType string `json:"paymentType"`
}

func (m OrderPaidMessage) EventType() string { return TopicPaymentOrderPaid }
func (m OrderPaidMessage) Key() string       { return m.OrderNo }
