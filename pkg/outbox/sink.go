package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"booking-order-be/internal/entity"
	"booking-order-be/pkg/events"
	pktNats "booking-order-be/pkg/nats"
	"booking-order-be/pkg/scheduler"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/hibiken/asynq"
)

// Sink delivers one outbox row. Delivery must be safe to repeat.
type Sink interface {
	Deliver(ctx context.Context, msg *entity.OutboxMessage) error
}

// Router picks a sink by topic.
type Router struct {
	routes   map[string]Sink
	fallback Sink
}

func NewRouter(fallback Sink) *Router {
	return &Router{routes: make(map[string]Sink), fallback: fallback}
}

func (r *Router) Route(topic string, sink Sink) *Router {
	r.routes[topic] = sink
	return r
}

func (r *Router) Deliver(ctx context.Context, msg *entity.OutboxMessage) error {
	if sink, ok := r.routes[msg.Topic]; ok {
		return sink.Deliver(ctx, msg)
	}
	if r.fallback == nil {
		return fmt.Errorf("outbox: no sink for topic %s", msg.Topic)
	}
	return r.fallback.Deliver(ctx, msg)
}

// NatsSink publishes on JetStream with the outbox id as Nats-Msg-Id so broker-side
// dedupe drops redeliveries inside the duplicate window.
type NatsSink struct {
	publisher *pktNats.Publisher
}

func NewNatsSink(publisher *pktNats.Publisher) *NatsSink {
	return &NatsSink{publisher: publisher}
}

func (s *NatsSink) Deliver(ctx context.Context, msg *entity.OutboxMessage) error {
	return s.publisher.Publish(ctx, msg.Topic, msg.Payload, msg.Id.String())
}

// WatermillSink publishes to an in-process watermill publisher (gochannel).
type WatermillSink struct {
	publisher message.Publisher
}

func NewWatermillSink(publisher message.Publisher) *WatermillSink {
	return &WatermillSink{publisher: publisher}
}

func (s *WatermillSink) Deliver(ctx context.Context, msg *entity.OutboxMessage) error {
	m := message.NewMessage(msg.Id.String(), message.Payload(msg.Payload))
	m.Metadata.Set("aggregate_id", msg.AggregateId)
	m.SetContext(ctx)
	return s.publisher.Publish(msg.Topic, m)
}

// Enqueuer is the part of *asynq.Client the scheduler sink needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AutoCancelSink turns order.auto_cancel rows into delayed asynq tasks. The outbox id is the
// task id, so a redelivered row does not schedule a second timer.
type AutoCancelSink struct {
	client Enqueuer
	now    func() time.Time
}

func NewAutoCancelSink(client Enqueuer) *AutoCancelSink {
	return &AutoCancelSink{client: client, now: time.Now}
}

func (s *AutoCancelSink) Deliver(ctx context.Context, msg *entity.OutboxMessage) error {
	var payload events.OrderAutoCancelMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("outbox: decode auto cancel %s: %w", msg.Id, err)
	}

	opts := []asynq.Option{
		asynq.Queue(scheduler.QueueOrder),
		asynq.TaskID(msg.Id.String()),
		asynq.MaxRetry(10),
		asynq.Retention(24 * time.Hour),
	}
	if delay := payload.DueAt.Sub(s.now()); delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}

	_, err := s.client.EnqueueContext(ctx, asynq.NewTask(scheduler.TypeOrderAutoCancel, msg.Payload), opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	return err
}
