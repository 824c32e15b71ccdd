package scheduler

// Task types
const (
	TypeOrderAutoCancel = "order:auto_cancel"
)

// QueueOrder is the queue all order timers run on.
const QueueOrder = "order"
