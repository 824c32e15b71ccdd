package serverutils

import (
	"errors"
	"strconv"

	"booking-order-be/pkg/apperror"

	"github.com/gofiber/fiber/v2"
)

// RetryAfterSeconds is advertised when the order lock is busy.
const RetryAfterSeconds = 1

// StatusFor maps an error kind to an HTTP status.
func StatusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindNotFound:
		return fiber.StatusNotFound
	case apperror.KindInvalidState, apperror.KindConcurrencyLost:
		return fiber.StatusConflict
	case apperror.KindFinancialInvariant:
		return fiber.StatusUnprocessableEntity
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindLockBusy:
		return fiber.StatusLocked
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler renders any error returned by a handler. It is used both as fiber's
// Config.ErrorHandler and by ErrorHandlerMiddleware.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
	}

	appErr, ok := apperror.From(err)
	if !ok {
		appErr = apperror.ErrInternal.Wrap(err)
	}
	status := StatusFor(appErr.Kind)
	if appErr.Kind == apperror.KindLockBusy {
		ctx.Set(fiber.HeaderRetryAfter, strconv.Itoa(RetryAfterSeconds))
	}

	message := appErr.Message
	if status == fiber.StatusInternalServerError {
		message = apperror.ErrInternal.Message
	}
	return ctx.Status(status).JSON(ErrorResponse(appErr.Code, message))
}

// ErrorHandlerMiddleware converts errors from downstream handlers into JSON responses.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if err := ctx.Next(); err != nil {
			return ErrorHandler(ctx, err)
		}
		return nil
	}
}
