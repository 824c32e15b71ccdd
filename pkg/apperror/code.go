package apperror

// Error codes use the SSMMEE layout, SS=21 for the order service.
//   01: order lifecycle
//   02: refund workflow
//   03: concurrency
//   09: common

// Order lifecycle (210100-210199)
const (
	CodeOrderNotFound               = 210101
	CodeOrderStatusNotAllowCancel   = 210102
	CodeOrderStatusNotAllowConfirm  = 210103
	CodeOrderStatusNotAllowPay      = 210104
	CodeOrderStatusNotAllowComplete = 210105
	CodeOrderAmountMismatch         = 210106
	CodeOrderItemsEmpty             = 210107
)

// Refund workflow (210200-210299)
const (
	CodeRefundApplyNotFound        = 210201
	CodeApplyStatusNotAllow        = 210202
	CodeOrderStatusNotAllowRefund  = 210203
	CodeRefundItemNotFound         = 210204
	CodeRefundItemAlreadyPending   = 210205
	CodeRefundItemAlreadyApproved  = 210206
	CodeRefundItemAlreadyCompleted = 210207
	CodePartialRefundNotAllowed    = 210208
	CodeRefundItemsEmpty           = 210209
	CodeRefundAmountInvalid        = 210210
	CodeRefundItemStatusNotAllow   = 210211
)

// Concurrency (210300-210399)
const (
	CodeConcurrentModification = 210301
	CodeOrderBusy              = 210302
)

// Common (210900-210999)
const (
	CodeInvalidParam = 210901
	CodeInternal     = 210902
)

var (
	ErrOrderNotFound               = New(CodeOrderNotFound, KindNotFound, "order not found")
	ErrOrderStatusNotAllowCancel   = New(CodeOrderStatusNotAllowCancel, KindInvalidState, "order status does not allow cancel")
	ErrOrderStatusNotAllowConfirm  = New(CodeOrderStatusNotAllowConfirm, KindInvalidState, "order status does not allow confirm")
	ErrOrderStatusNotAllowPay      = New(CodeOrderStatusNotAllowPay, KindInvalidState, "order status does not allow payment")
	ErrOrderStatusNotAllowComplete = New(CodeOrderStatusNotAllowComplete, KindInvalidState, "order status does not allow completion")
	ErrOrderAmountMismatch         = New(CodeOrderAmountMismatch, KindValidation, "order amounts are inconsistent")
	ErrOrderItemsEmpty             = New(CodeOrderItemsEmpty, KindValidation, "order has no items")

	ErrRefundApplyNotFound        = New(CodeRefundApplyNotFound, KindNotFound, "refund apply not found")
	ErrApplyStatusNotAllow        = New(CodeApplyStatusNotAllow, KindInvalidState, "refund apply status does not allow this operation")
	ErrOrderStatusNotAllowRefund  = New(CodeOrderStatusNotAllowRefund, KindInvalidState, "order status does not allow refund")
	ErrRefundItemNotFound         = New(CodeRefundItemNotFound, KindNotFound, "order item not found")
	ErrRefundItemAlreadyPending   = New(CodeRefundItemAlreadyPending, KindInvalidState, "order item already has a pending refund")
	ErrRefundItemAlreadyApproved  = New(CodeRefundItemAlreadyApproved, KindInvalidState, "order item refund already approved")
	ErrRefundItemAlreadyCompleted = New(CodeRefundItemAlreadyCompleted, KindInvalidState, "order item already refunded")
	ErrPartialRefundNotAllowed    = New(CodePartialRefundNotAllowed, KindValidation, "this seller does not allow partial refunds")
	ErrRefundItemsEmpty           = New(CodeRefundItemsEmpty, KindValidation, "no items selected for refund")
	ErrRefundAmountInvalid        = New(CodeRefundAmountInvalid, KindFinancialInvariant, "computed refund amount is out of range")
	ErrRefundItemStatusNotAllow   = New(CodeRefundItemStatusNotAllow, KindInvalidState, "order item refund status does not allow this operation")

	ErrConcurrentModification = New(CodeConcurrentModification, KindConcurrencyLost, "order was modified concurrently")
	ErrOrderBusy              = New(CodeOrderBusy, KindLockBusy, "order is being processed, retry later")

	ErrInvalidParam = New(CodeInvalidParam, KindValidation, "invalid parameter")
	ErrInternal     = New(CodeInternal, KindInternal, "internal error")
)
