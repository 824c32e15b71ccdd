package events

// Event is anything the order service publishes or consumes on the bus.
type Event interface {
	// EventType is the bus subject, e.g. "order.slot.unlock".
	EventType() string

	// Key identifies the aggregate the event belongs to (the order number).
	Key() string
}

// Subjects. Everything the service produces lives under "order.", everything it
// consumes from the payment service under "payment.".
const (
	TopicUnlockSlot            = "order.slot.unlock"
	TopicUserRefund            = "order.payment.refund_request"
	TopicMerchantConfirmNotify = "order.merchant.confirm_notify"
	TopicOrderAutoCancel       = "order.auto_cancel"

	TopicPaymentRefundSucceeded = "payment.refund.succeeded"
	TopicPaymentOrderPaid       = "payment.order.paid"
)

// StreamSubjects are the JetStream stream bindings.
var StreamSubjects = []string{"order.>", "payment.>"}
