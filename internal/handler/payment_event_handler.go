package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"booking-order-be/internal/pkg/logger"
	"booking-order-be/pkg/apperror"
	"booking-order-be/pkg/events"
	pktNats "booking-order-be/pkg/nats"
	"booking-order-be/pkg/order/lifecycle"
	"booking-order-be/pkg/order/refund"
)

// PaymentEventHandler consumes the payment service's callbacks.
type PaymentEventHandler struct {
	orders  *lifecycle.Manager
	refunds *refund.Processor
	logger  logger.ILogger
}

func NewPaymentEventHandler(orders *lifecycle.Manager, refunds *refund.Processor, log logger.ILogger) *PaymentEventHandler {
	return &PaymentEventHandler{orders: orders, refunds: refunds, logger: log}
}

// HandleRefundSucceeded applies payment.refund.succeeded. Replays are acknowledged.
func (h *PaymentEventHandler) HandleRefundSucceeded(ctx context.Context, subject string, data []byte) error {
	var msg events.PaymentRefundMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %v", pktNats.ErrMalformed, err)
	}

	res, err := h.refunds.RefundSuccess(ctx, msg)
	if err != nil {
		return h.settle(subject, msg.OrderNo, err)
	}
	h.logger.Info("PAYMENT_EVENT", "Refund callback applied", map[string]interface{}{
		"orderNo":          msg.OrderNo,
		"outRequestNo":     msg.OutRequestNo,
		"orderStatus":      string(res.OrderStatus),
		"completedItems":   res.CompletedItems,
		"alreadyProcessed": res.AlreadyProcessed,
	})
	return nil
}

// HandleOrderPaid applies payment.order.paid.
func (h *PaymentEventHandler) HandleOrderPaid(ctx context.Context, subject string, data []byte) error {
	var msg events.OrderPaidMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return fmt.Errorf("%w: %v", pktNats.ErrMalformed, err)
	}

	res, err := h.orders.PaySuccess(ctx, lifecycle.PaySuccessCommand{
		OrderNo:     msg.OrderNo,
		OutTradeNo:  msg.OutTradeNo,
		PaymentType: msg.PaymentType,
	})
	if err != nil {
		return h.settle(subject, msg.OrderNo, err)
	}
	h.logger.Info("PAYMENT_EVENT", "Pay callback applied", map[string]interface{}{
		"orderNo":     msg.OrderNo,
		"outTradeNo":  msg.OutTradeNo,
		"alreadyPaid": res.AlreadyPaid,
	})
	return nil
}

// settle decides between redelivery and acknowledgement. Only lock contention, lost races and
// infrastructure failures can succeed on a later delivery; business rejections are final.
func (h *PaymentEventHandler) settle(subject, orderNo string, err error) error {
	switch apperror.KindOf(err) {
	case apperror.KindLockBusy, apperror.KindConcurrencyLost, apperror.KindInternal:
		return err
	}
	h.logger.Error("PAYMENT_EVENT", "Callback rejected", map[string]interface{}{
		"subject": subject,
		"orderNo": orderNo,
		"error":   err.Error(),
	})
	return nil
}
