package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"booking-order-be/internal/entity"
	"booking-order-be/internal/pkg/logger"
	"booking-order-be/pkg/apperror"
	"booking-order-be/pkg/events"
	"booking-order-be/pkg/order/lifecycle"

	"github.com/hibiken/asynq"
)

// AutoCancelHandler runs the order:auto_cancel timer.
type AutoCancelHandler struct {
	orders *lifecycle.Manager
	logger logger.ILogger
}

func NewAutoCancelHandler(orders *lifecycle.Manager, log logger.ILogger) *AutoCancelHandler {
	return &AutoCancelHandler{orders: orders, logger: log}
}

func (h *AutoCancelHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var msg events.OrderAutoCancelMessage
	if err := json.Unmarshal(task.Payload(), &msg); err != nil {
		return fmt.Errorf("decode auto cancel: %v: %w", err, asynq.SkipRetry)
	}

	res, err := h.orders.CancelUnpaid(ctx, msg.OrderNo, entity.SystemActor("auto_cancel"))
	switch {
	case err == nil:
		h.logger.Info("AUTO_CANCEL", "Unpaid order timer fired", map[string]interface{}{
			"orderNo":          msg.OrderNo,
			"alreadyCancelled": res.AlreadyCancelled,
		})
		return nil
	case errors.Is(err, apperror.ErrOrderStatusNotAllowCancel):
		// paid in time
		h.logger.Debug("AUTO_CANCEL", "Order no longer cancellable", map[string]interface{}{
			"orderNo": msg.OrderNo,
		})
		return nil
	case errors.Is(err, apperror.ErrOrderNotFound):
		h.logger.Warn("AUTO_CANCEL", "Order not found", map[string]interface{}{"orderNo": msg.OrderNo})
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	default:
		return err
	}
}
